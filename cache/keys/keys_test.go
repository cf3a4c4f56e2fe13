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

package keys_test

import (
	"math"

	"github.com/botobag/graphcache/cache/keys"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("FieldKey", func() {
	It("is the field name without arguments", func() {
		Expect(keys.FieldKey("todos", nil)).Should(Equal("todos"))
		Expect(keys.FieldKey("todos", map[string]interface{}{})).Should(Equal("todos"))
		Expect(keys.FieldKey("todos", map[string]interface{}{"a": keys.Undefined})).Should(Equal("todos"))
	})

	It("does not depend on argument order", func() {
		a := keys.FieldKey("f", map[string]interface{}{"a": 1, "b": 2})
		b := keys.FieldKey("f", map[string]interface{}{"b": 2, "a": 1})
		Expect(a).Should(Equal(`f({"a":1,"b":2})`))
		Expect(b).Should(Equal(a))
	})

	It("treats literal and decoded numbers alike", func() {
		Expect(keys.FieldKey("f", map[string]interface{}{"n": int64(10)})).Should(
			Equal(keys.FieldKey("f", map[string]interface{}{"n": 10.0})))
	})

	It("omits undefined arguments and nulls non-finite numbers", func() {
		Expect(keys.FieldKey("f", map[string]interface{}{"a": keys.Undefined, "b": math.NaN()})).Should(
			Equal(`f({"b":null})`))
	})

	It("round trips through ParseFieldKey", func() {
		fieldKey := keys.FieldKey("author", map[string]interface{}{"id": "1", "nested": map[string]interface{}{"x": []interface{}{1, 2}}})
		name, args, err := keys.ParseFieldKey(fieldKey)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(name).Should(Equal("author"))
		Expect(args).Should(Equal(map[string]interface{}{
			"id":     "1",
			"nested": map[string]interface{}{"x": []interface{}{1.0, 2.0}},
		}))
		Expect(keys.FieldName(fieldKey)).Should(Equal("author"))

		name, args, err = keys.ParseFieldKey("plain")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(name).Should(Equal("plain"))
		Expect(args).Should(BeNil())

		_, _, err = keys.ParseFieldKey("broken({")
		Expect(err).Should(HaveOccurred())
	})
})

var _ = Describe("Resolver", func() {
	var resolver *keys.Resolver

	BeforeEach(func() {
		resolver = keys.NewResolver(map[string]keys.KeyFunc{
			"Image":  keys.Embedded,
			"Book":   keys.Field("isbn"),
			"Custom": func(string, map[string]interface{}) (string, keys.KeyResult) { return "", keys.KeyDefault },
		}, keys.RootTypes{Query: "query_root"})
	})

	It("keys objects on id then _id", func() {
		Expect(resolver.Identify("Todo", map[string]interface{}{"id": "1"})).Should(Equal("Todo:1"))
		key, identity := resolver.Identify("Todo", map[string]interface{}{"_id": 2.0})
		Expect(key).Should(Equal("Todo:2"))
		Expect(identity).Should(Equal(keys.Keyed))
	})

	It("is stable for equal input", func() {
		data := map[string]interface{}{"id": 7.5}
		first, _ := resolver.Key("Todo", data)
		second, _ := resolver.Key("Todo", data)
		Expect(first).Should(Equal("Todo:7.5"))
		Expect(second).Should(Equal(first))
	})

	It("reports objects without id", func() {
		key, identity := resolver.Identify("Todo", map[string]interface{}{"text": "x"})
		Expect(key).Should(BeEmpty())
		Expect(identity).Should(Equal(keys.Unkeyed))

		_, identity = resolver.Identify("", map[string]interface{}{"id": "1"})
		Expect(identity).Should(Equal(keys.Unkeyed))

		_, identity = resolver.Identify("Todo", map[string]interface{}{"id": nil})
		Expect(identity).Should(Equal(keys.Unkeyed))
	})

	It("applies per-type key functions", func() {
		_, identity := resolver.Identify("Image", map[string]interface{}{"id": "1"})
		Expect(identity).Should(Equal(keys.ExplicitlyEmbedded))

		key, ok := resolver.Key("Book", map[string]interface{}{"isbn": "123", "id": "x"})
		Expect(ok).Should(BeTrue())
		Expect(key).Should(Equal("Book:123"))

		key, ok = resolver.Key("Custom", map[string]interface{}{"id": "9"})
		Expect(ok).Should(BeTrue())
		Expect(key).Should(Equal("Custom:9"))
	})

	It("maps root types to fixed keys", func() {
		Expect(resolver.Identify("query_root", nil)).Should(Equal("Query"))
		Expect(resolver.Identify("Query", nil)).Should(Equal("Query"))
		Expect(resolver.Identify("Mutation", nil)).Should(Equal("Mutation"))
		key, ok := resolver.RootKey("Subscription")
		Expect(ok).Should(BeTrue())
		Expect(key).Should(Equal("Subscription"))
	})
})
