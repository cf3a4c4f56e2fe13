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

package token_test

import (
	"github.com/botobag/graphcache/graphql/token"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Source", func() {
	It("defaults the source name", func() {
		Expect(token.NewSource("{ a }").Name()).Should(Equal("GraphQL request"))
		Expect(token.NewSource("{ a }", "Foo.graphql").Name()).Should(Equal("Foo.graphql"))
	})

	It("computes line and column of locations", func() {
		source := token.NewSource("{\n  a\r\n  b\rc }")

		info := func(pos uint) token.SourceLocationInfo {
			return source.LocationInfoOf(source.LocationFromPos(pos))
		}

		Expect(info(0)).Should(Equal(token.SourceLocationInfo{Name: "GraphQL request", Line: 1, Column: 1}))
		// "a"
		Expect(info(4)).Should(Equal(token.SourceLocationInfo{Name: "GraphQL request", Line: 2, Column: 3}))
		// "b" follows "\r\n"
		Expect(info(9)).Should(Equal(token.SourceLocationInfo{Name: "GraphQL request", Line: 3, Column: 3}))
		// "c" follows a lone "\r"
		Expect(info(11)).Should(Equal(token.SourceLocationInfo{Name: "GraphQL request", Line: 4, Column: 1}))
	})

	It("returns only the name for an invalid location", func() {
		source := token.NewSource("{ a }")
		Expect(source.LocationInfoOf(token.NoSourceLocation)).Should(Equal(token.SourceLocationInfo{
			Name: "GraphQL request",
		}))
	})

	It("describes tokens", func() {
		Expect((&token.Token{Kind: token.KindName, Value: "foo"}).Description()).Should(Equal(`Name "foo"`))
		Expect((&token.Token{Kind: token.KindSpread}).Description()).Should(Equal("..."))
	})
})
