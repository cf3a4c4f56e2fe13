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
	"bytes"
	"log/slog"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/graphql"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache with schema", func() {
	var c *cache.Cache

	BeforeEach(func() {
		c = cache.New(cache.Config{
			Schema: todoSchema(),
			Logger: discardLogger(),
		})
	})

	nodeQuery := cache.MustParseDocument(`
		query Node($id: ID!) {
			node(id: $id) {
				__typename
				id
				... on Todo { text }
				... on Author { name }
			}
		}`)

	It("matches fragments on abstract types exactly", func() {
		req := request(nodeQuery, map[string]interface{}{"id": "1"})
		outcome, err := c.ProcessResult(cache.NewOperation(req, ""), map[string]interface{}{
			"node": map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(outcome.Warnings.HaveOccurred()).Should(BeFalse())
		Expect(outcome.Data).Should(Equal(map[string]interface{}{
			"node": map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
		}))
	})

	It("reads lists of union members", func() {
		doc := cache.MustParseDocument(`
			query Search($term: String) {
				search(term: $term) {
					__typename
					... on Node { id }
					... on Todo { text }
					... on Author { name }
				}
			}`)
		data := map[string]interface{}{
			"search": []interface{}{
				map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
				map[string]interface{}{"__typename": "Author", "id": "1", "name": "Ada"},
			},
		}

		req := request(doc, map[string]interface{}{"term": "a"})
		outcome, err := c.ProcessResult(cache.NewOperation(req, ""), data)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(outcome.Warnings.HaveOccurred()).Should(BeFalse())
		Expect(outcome.Data).Should(Equal(data))
		Expect(outcome.Touched).Should(Equal([]string{"Author:1", "Query", "Todo:1"}))
	})

	It("returns partial data when nullable fields are missing", func() {
		write := cache.MustParseDocument(`{ todos { __typename id text } }`)
		_, err := c.ProcessResult(operation(write, nil), map[string]interface{}{
			"todos": []interface{}{
				map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
			},
		})
		Expect(err).ShouldNot(HaveOccurred())

		result, err := c.ReadQuery(request(todosQuery, nil))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Partial).Should(BeTrue())
		Expect(result.Complete).Should(BeFalse())
		Expect(result.Data).Should(Equal(map[string]interface{}{
			"todos": []interface{}{
				map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a", "complete": nil},
			},
		}))

		result, err = c.ReadQuery(request(authorQuery, nil))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Partial).Should(BeTrue())
		Expect(result.Data).Should(Equal(map[string]interface{}{"author": nil}))
	})

	It("misses when a non-null field is missing", func() {
		write := cache.MustParseDocument(`{ todos { __typename id complete } }`)
		_, err := c.ProcessResult(operation(write, nil), map[string]interface{}{
			"todos": []interface{}{
				map[string]interface{}{"__typename": "Todo", "id": "1", "complete": true},
			},
		})
		Expect(err).ShouldNot(HaveOccurred())

		result, err := c.ReadQuery(request(todosQuery, nil))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(BeNil())
		Expect(result.Complete).Should(BeFalse())
	})

	Context("without schema", func() {
		var logs bytes.Buffer

		BeforeEach(func() {
			logs.Reset()
			c = cache.New(cache.Config{
				Logger: slog.New(slog.NewTextHandler(&logs, nil)),
			})
		})

		It("matches fragments by the fields present and warns", func() {
			req := request(nodeQuery, map[string]interface{}{"id": "1"})
			outcome, err := c.ProcessResult(cache.NewOperation(req, ""), map[string]interface{}{
				"node": map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
			})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(outcome.Data).Should(Equal(map[string]interface{}{
				"node": map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
			}))

			Expect(outcome.Warnings.OfKind(graphql.ErrKindInvalidData)).ShouldNot(BeEmpty())
			Expect(outcome.Warnings.Errors[0].Message).Should(ContainSubstring("Heuristic fragment matching"))
			Expect(logs.String()).Should(ContainSubstring("Heuristic fragment matching"))
		})

		It("warns about operation names shared by different documents", func() {
			_, err := c.Parse(`query Todos { todos { id } }`)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(logs.String()).ShouldNot(ContainSubstring("is used by documents of different shapes"))

			_, err = c.Parse(`query Todos { todos { id text } }`)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(logs.String()).Should(ContainSubstring("is used by documents of different shapes"))
		})
	})
})
