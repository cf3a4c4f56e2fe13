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

package cache_test

import (
	"github.com/botobag/graphcache/cache"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRUDocumentCache", func() {
	It("requires a size", func() {
		_, err := cache.NewLRUDocumentCache(0)
		Expect(err).Should(HaveOccurred())
	})

	It("evicts the least recently used document", func() {
		documents, err := cache.NewLRUDocumentCache(2)
		Expect(err).ShouldNot(HaveOccurred())

		a := cache.MustParseDocument(`{ a }`)
		b := cache.MustParseDocument(`{ b }`)
		c := cache.MustParseDocument(`{ c }`)

		documents.Add("a", a)
		documents.Add("b", b)
		Expect(documents.Len()).Should(BeEquivalentTo(2))

		doc, ok := documents.Get("a")
		Expect(ok).Should(BeTrue())
		Expect(doc).Should(BeIdenticalTo(a))

		documents.Add("c", c)
		Expect(documents.Len()).Should(BeEquivalentTo(2))

		_, ok = documents.Get("b")
		Expect(ok).Should(BeFalse())

		doc, ok = documents.Get("c")
		Expect(ok).Should(BeTrue())
		Expect(doc).Should(BeIdenticalTo(c))

		doc, ok = documents.Get("a")
		Expect(ok).Should(BeTrue())
		Expect(doc).Should(BeIdenticalTo(a))
	})

	It("replaces the document of a known source", func() {
		documents, err := cache.NewLRUDocumentCache(1)
		Expect(err).ShouldNot(HaveOccurred())

		first := cache.MustParseDocument(`{ a }`)
		second := cache.MustParseDocument(`{ a }`)
		documents.Add("a", first)
		documents.Add("a", second)

		Expect(documents.Len()).Should(BeEquivalentTo(1))
		doc, ok := documents.Get("a")
		Expect(ok).Should(BeTrue())
		Expect(doc).Should(BeIdenticalTo(second))
	})
})
