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
	"github.com/botobag/graphcache/cache/deps"
	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/graphql"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		c = cache.New(cache.Config{
			Logger:            discardLogger(),
			ExactInvalidation: true,
		})
	})

	readQuery := func(req cache.Request) *cache.Result {
		result, err := c.ReadQuery(req)
		Expect(err).ShouldNot(HaveOccurred())
		return result
	}

	processResult := func(op cache.Operation, data map[string]interface{}) *cache.Outcome {
		outcome, err := c.ProcessResult(op, data)
		Expect(err).ShouldNot(HaveOccurred())
		return outcome
	}

	It("reads back what a query wrote", func() {
		req := request(todosQuery, nil)
		outcome := processResult(cache.NewOperation(req, ""), todosData(todo("1", "a", false)))
		Expect(outcome.Complete).Should(BeTrue())
		Expect(outcome.Data).Should(Equal(todoList(todo("1", "a", false))))
		Expect(outcome.Touched).Should(Equal([]string{"Query", "Todo:1"}))
		Expect(outcome.Warnings.HaveOccurred()).Should(BeFalse())

		result := readQuery(req)
		Expect(result.Complete).Should(BeTrue())
		Expect(result.Partial).Should(BeFalse())
		Expect(result.Data).Should(Equal(todoList(todo("1", "a", false))))
	})

	It("reports the list query after a mutation changes an entity in it", func() {
		req := request(todosQuery, nil)
		processResult(cache.NewOperation(req, ""), todosData(todo("1", "a", false)))

		outcome := processResult(operation(toggleMutation, map[string]interface{}{"id": "1"}), toggle("1", true))
		Expect(outcome.Dependents).Should(ContainElement(req.Key))
		Expect(outcome.AffectedTypenames).Should(Equal([]string{"Todo"}))
		Expect(outcome.Touched).Should(Equal([]string{"Todo:1"}))
		Expect(outcome.Data).Should(Equal(toggle("1", true)))

		Expect(readQuery(req).Data).Should(Equal(todoList(todo("1", "a", true))))
	})

	It("stores objects of types without identity inside their parent", func() {
		c = cache.New(cache.Config{
			Keys:   map[string]keys.KeyFunc{"Todo": keys.Embedded},
			Logger: discardLogger(),
		})

		req := request(todosQuery, nil)
		outcome := processResult(cache.NewOperation(req, ""), todosData(todo("1", "a", false)))
		Expect(outcome.Warnings.HaveOccurred()).Should(BeFalse())

		snapshot := c.Snapshot()
		Expect(snapshot).ShouldNot(HaveKey("Todo:1"))
		Expect(snapshot).Should(HaveKey("Query.todos.0"))
		Expect(snapshot["Query"]["todos"]).Should(Equal([]interface{}{"Query.todos.0"}))

		_, identity := c.Resolver().Identify("Todo", todo("1", "a", false))
		Expect(identity).Should(Equal(keys.ExplicitlyEmbedded))
		key, ok := c.KeyOfEntity(todo("1", "a", false))
		Expect(ok).Should(BeFalse())
		Expect(key).Should(BeEmpty())

		Expect(readQuery(req).Data).Should(Equal(todoList(todo("1", "a", false))))
	})

	It("stores arguments given in any order in the same field", func() {
		Expect(keys.FieldKey("todos", map[string]interface{}{"a": 1, "b": 2})).Should(
			Equal(keys.FieldKey("todos", map[string]interface{}{"b": 2, "a": 1})))

		write := cache.MustParseDocument(`{ todos(a: 1, b: 2) { __typename id text complete } }`)
		read := cache.MustParseDocument(`{ todos(b: 2, a: 1) { __typename id text complete } }`)
		processResult(operation(write, nil), todosData(todo("1", "a", false)))

		result := readQuery(request(read, nil))
		Expect(result.Complete).Should(BeTrue())
		Expect(result.Data).Should(Equal(todoList(todo("1", "a", false))))
	})

	It("leaves the store unchanged when the same result is written twice", func() {
		req := request(todosQuery, nil)
		processResult(cache.NewOperation(req, ""), todosData(todo("1", "a", false), todo("2", "b", true)))
		snapshot := c.Snapshot()

		outcome := processResult(cache.NewOperation(req, ""), todosData(todo("1", "a", false), todo("2", "b", true)))
		Expect(c.Snapshot()).Should(Equal(snapshot))
		Expect(outcome.Dependents).ShouldNot(ContainElement(req.Key))
	})

	It("misses a query that was never written", func() {
		result := readQuery(request(todosQuery, nil))
		Expect(result.Data).Should(BeNil())
		Expect(result.Complete).Should(BeFalse())
		Expect(c.Queries()).Should(Equal([]string{request(todosQuery, nil).Key}))
	})

	It("reads variables and arguments", func() {
		doc := cache.MustParseDocument(`
			query Todo($id: ID!) {
				todo(id: $id) { __typename id text }
			}`)

		processResult(operation(doc, map[string]interface{}{"id": "1"}), map[string]interface{}{
			"todo": map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
		})

		Expect(readQuery(request(doc, map[string]interface{}{"id": "1"})).Data).Should(Equal(map[string]interface{}{
			"todo": map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
		}))
		Expect(readQuery(request(doc, map[string]interface{}{"id": "2"})).Data).Should(BeNil())
		Expect(c.InspectFields("Query")).Should(Equal([]cache.FieldInfo{
			{
				FieldKey:  `todo({"id":"1"})`,
				FieldName: "todo",
				Arguments: map[string]interface{}{"id": "1"},
			},
		}))
	})

	It("stores aliased fields under the field key", func() {
		write := cache.MustParseDocument(`{ first: todo(id: "1") { __typename id text } }`)
		read := cache.MustParseDocument(`{ other: todo(id: "1") { id text } }`)

		processResult(operation(write, nil), map[string]interface{}{
			"first": map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
		})
		Expect(readQuery(request(read, nil)).Data).Should(Equal(map[string]interface{}{
			"other": map[string]interface{}{"id": "1", "text": "a"},
		}))
	})

	It("stores null links", func() {
		req := request(authorQuery, nil)
		processResult(cache.NewOperation(req, ""), map[string]interface{}{"author": nil})

		result := readQuery(req)
		Expect(result.Complete).Should(BeTrue())
		Expect(result.Data).Should(Equal(map[string]interface{}{"author": nil}))
	})

	Describe("directives", func() {
		doc := cache.MustParseDocument(`
			query Todos($withText: Boolean!, $skipDone: Boolean = false) {
				todos {
					__typename
					id
					text @include(if: $withText)
					complete @skip(if: $skipDone)
				}
			}`)

		It("writes without the excluded fields", func() {
			outcome := processResult(operation(doc, map[string]interface{}{"withText": false}), map[string]interface{}{
				"todos": []interface{}{
					map[string]interface{}{"__typename": "Todo", "id": "1", "complete": true},
				},
			})
			Expect(outcome.Warnings.HaveOccurred()).Should(BeFalse())

			Expect(readQuery(request(doc, map[string]interface{}{"withText": false})).Data).Should(Equal(map[string]interface{}{
				"todos": []interface{}{
					map[string]interface{}{"__typename": "Todo", "id": "1", "complete": true},
				},
			}))
			Expect(readQuery(request(doc, map[string]interface{}{"withText": false, "skipDone": true})).Data).Should(Equal(map[string]interface{}{
				"todos": []interface{}{
					map[string]interface{}{"__typename": "Todo", "id": "1"},
				},
			}))

			// text was never written.
			Expect(readQuery(request(doc, map[string]interface{}{"withText": true})).Data).Should(BeNil())
		})

		It("records no dependency on excluded fields", func() {
			processResult(operation(doc, map[string]interface{}{"withText": true}), todosData(todo("1", "a", false)))

			result := readQuery(request(doc, map[string]interface{}{"withText": false, "skipDone": true}))
			Expect(result.Complete).Should(BeTrue())
			Expect(result.Dependencies.Has(deps.Field("Todo:1", "id"))).Should(BeTrue())
			Expect(result.Dependencies.Has(deps.Field("Todo:1", "text"))).Should(BeFalse())
			Expect(result.Dependencies.Has(deps.Field("Todo:1", "complete"))).Should(BeFalse())
		})
	})

	Describe("warnings", func() {
		It("warns about objects without key and stores them inside their parent", func() {
			doc := cache.MustParseDocument(`{ author { __typename name } }`)
			data := map[string]interface{}{
				"author": map[string]interface{}{"__typename": "Author", "name": "Ada"},
			}

			outcome := processResult(operation(doc, nil), data)
			Expect(outcome.Warnings.OfKind(graphql.ErrKindUnresolvedEntity)).Should(HaveLen(1))
			Expect(c.Snapshot()).Should(HaveKey("Query.author"))
			Expect(readQuery(request(doc, nil)).Data).Should(Equal(data))
		})

		It("warns about objects without __typename", func() {
			doc := cache.MustParseDocument(`{ author { id name } }`)
			outcome := processResult(operation(doc, nil), map[string]interface{}{
				"author": map[string]interface{}{"id": "1", "name": "Ada"},
			})

			Expect(outcome.Warnings.OfKind(graphql.ErrKindInvalidData)).ShouldNot(BeEmpty())
			Expect(outcome.Warnings.Errors[0].Message).Should(ContainSubstring("__typename"))
			Expect(c.Snapshot()).ShouldNot(HaveKey("Query.author"))
		})

		It("warns about fields missing from the data", func() {
			outcome := processResult(operation(todosQuery, nil), map[string]interface{}{
				"todos": []interface{}{
					map[string]interface{}{"__typename": "Todo", "id": "1", "text": "a"},
				},
			})

			Expect(outcome.Warnings.OfKind(graphql.ErrKindInvalidData)).Should(HaveLen(1))
			Expect(outcome.Warnings.Errors[0].Message).Should(ContainSubstring(`field "complete" on "Todo:1"`))
			Expect(outcome.Complete).Should(BeFalse())
		})

		It("locates warnings in the response", func() {
			outcome := processResult(operation(todosQuery, nil), map[string]interface{}{
				"todos": []interface{}{
					todo("1", "a", false),
					map[string]interface{}{"__typename": "Todo", "id": "2", "complete": true},
				},
			})

			warnings := outcome.Warnings.OfKind(graphql.ErrKindInvalidData)
			Expect(warnings).Should(HaveLen(1))
			Expect(warnings[0].Path.Keys()).Should(Equal([]interface{}{"todos", 1, "text"}))
			Expect(warnings[0].Path.String()).Should(Equal("todos[1].text"))
		})

		It("refuses to change a link into a scalar", func() {
			req := request(todosQuery, nil)
			processResult(cache.NewOperation(req, ""), todosData(todo("1", "a", false)))

			scalar := cache.MustParseDocument(`{ todos }`)
			outcome := processResult(operation(scalar, nil), map[string]interface{}{"todos": "none"})
			Expect(outcome.Warnings.OfKind(graphql.ErrKindMixedShape)).Should(HaveLen(2))
			Expect(outcome.Data).Should(BeNil())

			Expect(readQuery(req).Data).Should(Equal(todoList(todo("1", "a", false))))
		})
	})

	Describe("Parse", func() {
		It("reuses documents parsed before", func() {
			doc, err := c.Parse(`{ todos { id } }`)
			Expect(err).ShouldNot(HaveOccurred())

			again, err := c.Parse(`{ todos { id } }`)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(again).Should(BeIdenticalTo(doc))
		})

		It("returns syntax errors", func() {
			_, err := c.Parse(`{ todos { id }`)
			Expect(err).Should(HaveOccurred())
			Expect(graphql.IsKind(err, graphql.ErrKindSyntax)).Should(BeTrue())
		})

		It("gives equivalent documents the same key", func() {
			a := cache.MustParseDocument(`{ todos { id } }`)
			b := cache.MustParseDocument(`
				{
					todos {
						id
					}
				}`)
			Expect(a.Key()).Should(Equal(b.Key()))

			Expect(cache.NewRequest(a, map[string]interface{}{"a": 1, "b": "x"}).Key).Should(
				Equal(cache.NewRequest(b, map[string]interface{}{"b": "x", "a": 1}).Key))
			Expect(cache.NewRequest(a, nil).Key).Should(Equal(cache.NewRequest(a, map[string]interface{}{}).Key))
			Expect(cache.NewRequest(a, nil).Key).ShouldNot(Equal(cache.NewRequest(a, map[string]interface{}{"a": 1}).Key))
		})

		It("rejects duplicate fragment names", func() {
			_, err := cache.ParseDocument(`
				fragment A on Todo { id }
				fragment A on Todo { text }`)
			Expect(err).Should(HaveOccurred())
			Expect(graphql.IsKind(err, graphql.ErrKindInvalidData)).Should(BeTrue())
		})
	})

	It("resets", func() {
		req := request(todosQuery, nil)
		processResult(cache.NewOperation(req, ""), todosData(todo("1", "a", false)))
		c.Reset()

		Expect(c.Snapshot()).Should(BeEmpty())
		Expect(c.Queries()).Should(BeEmpty())
	})
})
