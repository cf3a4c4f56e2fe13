/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package graphql_test

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/parser"
	"github.com/botobag/graphcache/internal/testutil"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func newError(message string, args ...interface{}) *graphql.Error {
	e, ok := graphql.NewError(message, args...).(*graphql.Error)
	Expect(ok).Should(BeTrue())
	return e
}

func wrapError(message string, err error) *graphql.Error {
	e, ok := graphql.WrapError(err, message).(*graphql.Error)
	Expect(ok).Should(BeTrue())
	return e
}

func expectSerializationResult(e error, expected string) {
	s, err := json.Marshal(e)
	Expect(err).ShouldNot(HaveOccurred())
	Expect(s).Should(MatchJSON(expected))
}

func expectOutputResult(e error, expected string) {
	Expect(e.Error()).Should(Equal(expected), e.Error())
}

type errWithLocations struct {
	locations []graphql.ErrorLocation
}

// Locations implements graphql.ErrorWithLocations.
func (e *errWithLocations) Locations() []graphql.ErrorLocation {
	return e.locations
}

// Error implements Go's error interface
func (e *errWithLocations) Error() string {
	return "error provided locations"
}

var (
	_ graphql.ErrorWithLocations = (*errWithLocations)(nil)
	_ error                      = (*errWithLocations)(nil)
)

var _ = Describe("Error", func() {
	var (
		mockLocation  graphql.ErrorLocation
		mockLocation2 graphql.ErrorLocation
		mockPath      graphql.ResponsePath
	)

	BeforeEach(func() {
		mockLocation = graphql.ErrorLocation{
			Line:   1,
			Column: 3,
		}

		mockLocation2 = graphql.ErrorLocation{
			Line:   2,
			Column: 5,
		}

		mockPath = graphql.ResponsePath{}.
			WithFieldName("path").
			WithIndex(3).
			WithFieldName("to").
			WithFieldName("field")
	})

	It("has a message", func() {
		e := newError("msg")
		Expect(e.Message).Should(Equal("msg"))
		expectSerializationResult(e, `{"message":"msg"}`)
	})

	It("serializes to include message and locations", func() {
		e := newError("msg", mockLocation)
		expectSerializationResult(e, `{"message":"msg","locations":[{"line":1,"column":3}]}`)
	})

	It("serializes to include path", func() {
		e := newError("msg", mockPath)
		Expect(e.Path).Should(Equal(mockPath))
		Expect(e.Path.Keys()).Should(Equal([]interface{}{"path", 3, "to", "field"}))
		expectSerializationResult(e, `{"message":"msg","path":["path",3,"to","field"]}`)
		expectOutputResult(e, `msg for field in the path path[3].to.field`)
	})

	It("does not change the path it extends", func() {
		parent := graphql.ResponsePath{}.WithFieldName("todos")
		first := parent.WithIndex(0)
		second := parent.WithIndex(1)
		Expect(parent.String()).Should(Equal("todos"))
		Expect(first.String()).Should(Equal("todos[0]"))
		Expect(second.String()).Should(Equal("todos[1]"))
		Expect(graphql.ResponsePath{}.Empty()).Should(BeTrue())
	})

	It("can include an underlying error", func() {
		underlyingErr := errors.New("hello")
		e := newError("msg", underlyingErr)
		Expect(e.Err).Should(Equal(underlyingErr))
		Expect(errors.Is(e, underlyingErr)).Should(BeTrue())
		expectOutputResult(e, `msg: hello`)
	})

	It("can include an op and kind", func() {
		const op graphql.Op = "cache.ReadQuery"
		e := newError("msg", op, graphql.ErrKindInternal)
		Expect(e.Op).Should(Equal(op))
		Expect(e.Kind).Should(Equal(graphql.ErrKindInternal))

		// Op is not serialized. Kind shows up in extensions.
		expectSerializationResult(e, fmt.Sprintf(`{"message":"msg","extensions":{"code":%d,"kind":"internal error"}}`,
			graphql.ErrKindInternal.Code()))
		expectOutputResult(e, `cache.ReadQuery: msg: internal error`)
	})

	It("can include multiple locations", func() {
		e := newError("msg", []graphql.ErrorLocation{mockLocation, mockLocation2})
		expectSerializationResult(e,
			`{"message":"msg","locations":[{"line":1,"column":3},{"line":2,"column":5}]}`)
		expectOutputResult(e,
			"msg at [{Line:1 Column:3} {Line:2 Column:5}]")
	})

	It("pulls locations from underlying error", func() {
		locations := []graphql.ErrorLocation{
			mockLocation,
			mockLocation2,
		}
		e := newError("error with locations", &errWithLocations{
			locations: locations,
		})
		Expect(e.Locations).Should(Equal(locations))
		expectOutputResult(e,
			`error with locations at [{Line:1 Column:3} {Line:2 Column:5}]: error provided locations`)

		// Wrap an error again without given new locations.
		e = wrapError("error wraps an error with locations", e)
		Expect(e.Locations).Should(Equal(locations))
		expectOutputResult(e,
			`error wraps an error with locations at [{Line:1 Column:3} {Line:2 Column:5}]:
  error with locations: error provided locations`)

		// Wrap an error with custom locations.
		mockLocation3 := graphql.ErrorLocation{
			Line:   10,
			Column: 30,
		}
		e = newError("error wraps with custom locations", e, mockLocation3)
		Expect(e.Locations).Should(Equal([]graphql.ErrorLocation{mockLocation3}))
		expectOutputResult(e,
			`error wraps with custom locations at [{Line:10 Column:30}]:
  error wraps an error with locations at [{Line:1 Column:3} {Line:2 Column:5}]:
  error with locations: error provided locations`)
	})

	It("pulls path from underlying error", func() {
		e := newError("error with path", mockPath)
		e = wrapError("error wraps an error with path", e)
		Expect(e.Path).Should(Equal(mockPath))
		expectOutputResult(e,
			`error wraps an error with path for field in the path path[3].to.field:
  error with path`)
	})

	It("pulls kind from underlying error", func() {
		e := newError("error without kind")
		Expect(e.Kind).Should(Equal(graphql.ErrKindOther))
		expectOutputResult(e, `error without kind`)

		// Wrap error without a kind still doesn't have kind.
		e = newError("wrap an error without kind", e)
		Expect(e.Kind).Should(Equal(graphql.ErrKindOther))
		expectOutputResult(e, `wrap an error without kind:
  error without kind`)

		// Wrap error with a kind.
		e = newError("wrap an error with kind", e, graphql.ErrKindStorage)
		Expect(e.Kind).Should(Equal(graphql.ErrKindStorage))
		expectOutputResult(e, `wrap an error with kind: storage error:
  wrap an error without kind:
  error without kind`)

		// Wrap error without given a kind again.
		e = newError("wrap an error without kind #2", e)
		Expect(e.Kind).Should(Equal(graphql.ErrKindStorage))
		expectOutputResult(e, `wrap an error without kind #2: storage error:
  wrap an error with kind:
  wrap an error without kind:
  error without kind`)

		// Finally, wrap the error with new kind.
		e = newError("wrap an error with new kind", e, graphql.ErrKindCallback)
		Expect(e.Kind).Should(Equal(graphql.ErrKindCallback))
		Expect(graphql.IsKind(e, graphql.ErrKindCallback)).Should(BeTrue())
		Expect(graphql.IsKind(e, graphql.ErrKindStorage)).Should(BeFalse())
		expectOutputResult(e, `wrap an error with new kind: callback error:
  wrap an error without kind #2: storage error:
  wrap an error with kind:
  wrap an error without kind:
  error without kind`)
	})

	It("throws error when building from unknown argument", func() {
		e := graphql.NewError("msg", 1)
		Expect(e).ShouldNot(BeNil())
		Expect(e.Error()).Should(Equal("unknown type int, value 1 in error call"))
	})

	It("wraps error with formatting string", func() {
		e := graphql.WrapErrorf(errors.New("disk full"), "write %d rows", 3)
		Expect(e.Error()).Should(Equal("write 3 rows: disk full"))
	})

	It("reports syntax errors with their locations", func() {
		_, err := parser.ParseString("{ todos ")
		Expect(err).Should(HaveOccurred())
		Expect(graphql.IsKind(err, graphql.ErrKindSyntax)).Should(BeTrue())

		e, ok := err.(*graphql.Error)
		Expect(ok).Should(BeTrue())
		Expect(e.Locations).Should(Equal([]graphql.ErrorLocation{{Line: 1, Column: 9}}))
		Expect(e.Message).Should(HavePrefix("Syntax Error: "))
	})
})

var _ = Describe("Errors", func() {
	It("collects errors", func() {
		errs := graphql.NoErrors()
		Expect(errs.HaveOccurred()).Should(BeFalse())

		errs.Emplace("missing field", graphql.ErrKindInvalidData)
		errs.Append(graphql.NewError("mixed", graphql.ErrKindMixedShape))
		errs.AppendErrors(graphql.Errors{
			Errors: []*graphql.Error{newError("other missing field", graphql.ErrKindInvalidData)},
		})

		Expect(errs.HaveOccurred()).Should(BeTrue())
		Expect(errs.Errors).Should(HaveLen(3))
		Expect(errs.OfKind(graphql.ErrKindInvalidData)).Should(HaveLen(2))
		Expect(errs.OfKind(graphql.ErrKindMixedShape)[0].Message).Should(Equal("mixed"))
		Expect(errs.OfKind(graphql.ErrKindStorage)).Should(BeEmpty())

		Expect(errs).Should(testutil.ConsistOfGraphQLErrors(
			testutil.MatchGraphQLError(
				testutil.MessageEqual("missing field"),
				testutil.KindIs(graphql.ErrKindInvalidData),
			),
			testutil.MatchGraphQLError(
				testutil.MessageContainSubstring("other"),
				testutil.KindIs(graphql.ErrKindInvalidData),
			),
			testutil.MatchGraphQLError(
				testutil.KindIs(graphql.ErrKindMixedShape),
			),
		))
	})

	It("serializes to a list of errors", func() {
		errs := graphql.NoErrors()
		errs.Emplace("first", graphql.ResponsePath{}.WithFieldName("todos").WithIndex(0))
		errs.Emplace("second")

		Expect(errs.Errors).Should(testutil.SerializeToJSONAs([]map[string]interface{}{
			{"message": "first", "path": []interface{}{"todos", 0}},
			{"message": "second"},
		}))
	})

	It("panics on errors of other types", func() {
		errs := graphql.NoErrors()
		Expect(func() { errs.Append(errors.New("plain")) }).Should(Panic())
	})

	It("names every kind", func() {
		kinds := []graphql.ErrKind{
			graphql.ErrKindOther,
			graphql.ErrKindSyntax,
			graphql.ErrKindCacheMiss,
			graphql.ErrKindMixedShape,
			graphql.ErrKindUnresolvedEntity,
			graphql.ErrKindInvalidData,
			graphql.ErrKindCallback,
			graphql.ErrKindStorage,
			graphql.ErrKindInternal,
		}
		for i, kind := range kinds {
			Expect(kind.Code()).Should(Equal(i))
			Expect(kind.String()).ShouldNot(Equal("unknown error kind"))
		}
	})
})
