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

package store_test

import (
	"github.com/botobag/graphcache/cache/deps"
	"github.com/botobag/graphcache/cache/store"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/iterator"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func entities(s *store.Store) []string {
	var keys []string
	iter := s.Entities()
	for {
		key, err := iter.Next()
		if err == iterator.Done {
			break
		}
		Expect(err).ShouldNot(HaveOccurred())
		keys = append(keys, key)
	}
	return keys
}

func readValue(s *store.Store, entityKey string, fieldKey string) interface{} {
	value, ok := s.ReadValue(entityKey, fieldKey)
	ExpectWithOffset(1, ok).Should(BeTrue(), "%s.%s is missing", entityKey, fieldKey)
	return value
}

var _ = Describe("Store", func() {
	var s *store.Store

	BeforeEach(func() {
		s = store.New()
	})

	Describe("base layer", func() {
		It("tells a stored null apart from a miss", func() {
			Expect(s.WriteLink("Todo:1", "author", store.NullLink(), "")).Should(Succeed())

			link, ok := s.ReadLink("Todo:1", "author")
			Expect(ok).Should(BeTrue())
			Expect(link.IsNull()).Should(BeTrue())

			_, ok = s.ReadLink("Todo:1", "assignee")
			Expect(ok).Should(BeFalse())

			Expect(s.WriteValue("Todo:1", "note", nil, "")).Should(Succeed())
			value, ok := s.ReadValue("Todo:1", "note")
			Expect(ok).Should(BeTrue())
			Expect(value).Should(BeNil())
		})

		It("overwrites fields in arrival order", func() {
			Expect(s.WriteValue("Todo:1", "text", "a", "")).Should(Succeed())
			Expect(s.WriteValue("Todo:1", "text", "b", "")).Should(Succeed())
			Expect(readValue(s, "Todo:1", "text")).Should(Equal("b"))
		})

		It("refuses to change the shape of a field", func() {
			Expect(s.WriteValue("Todo:1", "author", "Ann", "")).Should(Succeed())

			err := s.WriteLink("Todo:1", "author", store.KeyLink("User:1"), "")
			Expect(err).Should(HaveOccurred())
			Expect(graphql.IsKind(err, graphql.ErrKindMixedShape)).Should(BeTrue())
			Expect(readValue(s, "Todo:1", "author")).Should(Equal("Ann"))

			_, ok := s.ReadLink("Todo:1", "author")
			Expect(ok).Should(BeFalse())
		})

		It("deletes fields and entities", func() {
			Expect(s.WriteValue("Todo:1", "text", "a", "")).Should(Succeed())
			Expect(s.WriteValue("Todo:1", "complete", false, "")).Should(Succeed())
			Expect(s.WriteValue("Todo:2", "text", "b", "")).Should(Succeed())

			s.DeleteField("Todo:1", "text", "")
			Expect(s.Fields("Todo:1")).Should(Equal([]string{"complete"}))

			s.DeleteEntity("Todo:2", "")
			Expect(s.HasEntity("Todo:2")).Should(BeFalse())
			Expect(entities(s)).Should(Equal([]string{"Todo:1"}))
		})
	})

	Describe("optimistic layers", func() {
		BeforeEach(func() {
			Expect(s.WriteValue("Todo:1", "text", "base", "")).Should(Succeed())
			Expect(s.WriteValue("Todo:1", "complete", false, "")).Should(Succeed())
		})

		It("reads the most recent layer first", func() {
			s.CreateOptimisticLayer("m1")
			s.CreateOptimisticLayer("m2")
			Expect(s.WriteValue("Todo:1", "text", "first", "m1")).Should(Succeed())
			Expect(s.WriteValue("Todo:1", "text", "second", "m2")).Should(Succeed())

			Expect(readValue(s, "Todo:1", "text")).Should(Equal("second"))
			Expect(readValue(s, "Todo:1", "complete")).Should(Equal(false))
			Expect(s.Layers()).Should(Equal([]string{"m1", "m2"}))

			Expect(s.DiscardLayer("m2")).Should(BeTrue())
			Expect(readValue(s, "Todo:1", "text")).Should(Equal("first"))
		})

		It("restores the base data exactly after discarding", func() {
			before := s.Dump()

			s.CreateOptimisticLayer("m1")
			Expect(s.WriteValue("Todo:1", "complete", true, "m1")).Should(Succeed())
			Expect(s.WriteValue("Todo:3", "text", "new", "m1")).Should(Succeed())
			s.DeleteField("Todo:1", "text", "m1")

			_, ok := s.ReadValue("Todo:1", "text")
			Expect(ok).Should(BeFalse())
			Expect(s.HasEntity("Todo:3")).Should(BeTrue())

			Expect(s.DiscardLayer("m1")).Should(BeTrue())
			Expect(s.DiscardLayer("m1")).Should(BeFalse())
			Expect(s.DiscardLayer("unknown")).Should(BeFalse())

			Expect(s.Dump()).Should(Equal(before))
			Expect(readValue(s, "Todo:1", "text")).Should(Equal("base"))
			Expect(s.HasEntity("Todo:3")).Should(BeFalse())
		})

		It("hides every field of an entity deleted in a layer", func() {
			s.CreateOptimisticLayer("m1")
			s.DeleteEntity("Todo:1", "m1")
			Expect(s.HasEntity("Todo:1")).Should(BeFalse())

			Expect(s.WriteValue("Todo:1", "text", "again", "m1")).Should(Succeed())
			Expect(s.Fields("Todo:1")).Should(Equal([]string{"text"}))
			_, ok := s.ReadValue("Todo:1", "complete")
			Expect(ok).Should(BeFalse())
		})

		It("commits writes in order into the layer below", func() {
			s.CreateOptimisticLayer("m1")
			Expect(s.WriteValue("Todo:1", "text", "one", "m1")).Should(Succeed())
			s.DeleteField("Todo:1", "complete", "m1")
			Expect(s.WriteValue("Todo:1", "text", "two", "m1")).Should(Succeed())
			s.TakeDelta()

			Expect(s.CommitLayer("m1")).Should(BeTrue())
			Expect(s.HasLayer("m1")).Should(BeFalse())
			Expect(s.Dump()).Should(Equal(map[string]map[string]interface{}{
				"Todo:1": {"text": "two"},
			}))
			Expect(s.TakeDelta()).Should(ConsistOf(
				store.Change{Entity: "Todo:1", Field: "text", Entry: store.Value("two")},
				store.Change{Entity: "Todo:1", Field: "complete", Deleted: true},
			))

			Expect(s.CommitLayer("m1")).Should(BeFalse())
		})

		It("commits into an optimistic layer below", func() {
			s.CreateOptimisticLayer("m1")
			s.CreateOptimisticLayer("m2")
			Expect(s.WriteValue("Todo:1", "text", "two", "m2")).Should(Succeed())
			Expect(s.CommitLayer("m2")).Should(BeTrue())
			Expect(readValue(s, "Todo:1", "text")).Should(Equal("two"))

			s.DiscardLayer("m1")
			Expect(readValue(s, "Todo:1", "text")).Should(Equal("base"))
		})

		It("clears a layer created again with the same id", func() {
			s.CreateOptimisticLayer("m1")
			Expect(s.WriteValue("Todo:1", "text", "guess", "m1")).Should(Succeed())
			s.CreateOptimisticLayer("m1")
			Expect(readValue(s, "Todo:1", "text")).Should(Equal("base"))
			Expect(s.LayerDependencies("m1").Len()).Should(Equal(0))
		})

		It("reports the dependencies written in a layer", func() {
			s.CreateOptimisticLayer("m1")
			Expect(s.WriteValue("Todo:1", "complete", true, "m1")).Should(Succeed())
			s.DeleteEntity("Todo:2", "m1")
			Expect(s.LayerDependencies("m1").Keys()).Should(Equal([]string{
				deps.Field("Todo:1", "complete"),
				deps.Entity("Todo:2"),
			}))
		})
	})

	Describe("persistence", func() {
		It("collects base changes and drains them", func() {
			Expect(s.WriteValue("Todo:1", "text", "a", "")).Should(Succeed())
			Expect(s.WriteValue("Todo:1", "text", "b", "")).Should(Succeed())
			s.CreateOptimisticLayer("m1")
			Expect(s.WriteValue("Todo:1", "text", "c", "m1")).Should(Succeed())

			Expect(s.PendingChanges()).Should(Equal(1))
			Expect(s.TakeDelta()).Should(Equal([]store.Change{
				{Entity: "Todo:1", Field: "text", Entry: store.Value("b")},
			}))
			Expect(s.TakeDelta()).Should(BeEmpty())
		})

		It("keeps a re-write behind an entity deletion", func() {
			Expect(s.WriteValue("Todo:1", "text", "a", "")).Should(Succeed())
			s.DeleteEntity("Todo:1", "")
			Expect(s.WriteValue("Todo:1", "text", "b", "")).Should(Succeed())

			Expect(s.TakeDelta()).Should(Equal([]store.Change{
				{Entity: "Todo:1", Field: "text", Entry: store.Value("a")},
				{Entity: "Todo:1", Deleted: true},
				{Entity: "Todo:1", Field: "text", Entry: store.Value("b")},
			}))
		})

		It("hydrates without producing changes", func() {
			s.Hydrate([]store.Change{
				{Entity: "Query", Field: "todos", Entry: store.LinkEntry(store.ListLink(store.KeyLink("Todo:1")))},
				{Entity: "Todo:1", Field: "text", Entry: store.Value("a")},
				{Entity: "Todo:2", Field: "text", Entry: store.Value("gone")},
				{Entity: "Todo:2", Deleted: true},
			})
			Expect(s.PendingChanges()).Should(Equal(0))
			Expect(entities(s)).Should(Equal([]string{"Query", "Todo:1"}))

			link, ok := s.ReadLink("Query", "todos")
			Expect(ok).Should(BeTrue())
			Expect(link.Keys()).Should(Equal([]string{"Todo:1"}))
		})

		It("encodes entries", func() {
			link := store.ListLink(store.KeyLink("Todo:1"), store.NullLink(), store.ListLink(store.KeyLink("Todo:2")))
			data, err := store.MarshalEntry(store.LinkEntry(link))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(data)).Should(MatchJSON(`{"kind":"link","data":["Todo:1",null,["Todo:2"]]}`))

			entry, err := store.UnmarshalEntry(data)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(entry.Kind).Should(Equal(store.EntryLink))
			Expect(entry.Link.Equal(link)).Should(BeTrue())

			data, err = store.MarshalEntry(store.Value(map[string]interface{}{"lat": 1.5}))
			Expect(err).ShouldNot(HaveOccurred())
			entry, err = store.UnmarshalEntry(data)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(entry).Should(Equal(store.Value(map[string]interface{}{"lat": 1.5})))

			_, err = store.MarshalEntry(store.Tombstone)
			Expect(err).Should(HaveOccurred())
			_, err = store.UnmarshalEntry([]byte(`{"kind":"other"}`))
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("dependency index", func() {
		It("finds queries that read written fields", func() {
			s.SetDependencies("q1", deps.NewSet(deps.Field("Query", "todos"), deps.Field("Todo:1", "text")))
			s.SetDependencies("q2", deps.NewSet(deps.Field("Todo:2", "text")))

			written := deps.NewSet(deps.Field("Todo:1", "text"))
			Expect(s.Dependents(written, true)).Should(Equal([]string{"q1"}))
			Expect(s.Dependents(written, false)).Should(ContainElement("q1"))
			Expect(s.Dependents(deps.NewSet(), true)).Should(BeEmpty())
			Expect(s.QueriesOf(deps.Field("Todo:2", "text"))).Should(Equal([]string{"q2"}))
		})

		It("replaces and forgets dependencies", func() {
			s.SetDependencies("q1", deps.NewSet("a"))
			s.SetDependencies("q1", deps.NewSet("b"))
			Expect(s.QueriesOf("a")).Should(BeEmpty())
			Expect(s.QueriesOf("b")).Should(Equal([]string{"q1"}))

			s.Forget("q1")
			Expect(s.Queries()).Should(BeEmpty())
			_, ok := s.Dependencies("q1")
			Expect(ok).Should(BeFalse())
		})

		It("exports and restores the index", func() {
			s.SetDependencies("q1", deps.NewSet("b", "a"))
			index := s.DependencyIndex()
			Expect(index).Should(Equal(map[string][]string{"q1": {"a", "b"}}))

			restored := store.New()
			restored.RestoreDependencyIndex(index)
			Expect(restored.Dependents(deps.NewSet("a"), true)).Should(Equal([]string{"q1"}))
		})

		It("is cleared by Reset", func() {
			s.SetDependencies("q1", deps.NewSet("a"))
			Expect(s.WriteValue("Todo:1", "text", "a", "")).Should(Succeed())
			s.Reset()
			Expect(s.Queries()).Should(BeEmpty())
			Expect(entities(s)).Should(BeEmpty())
			Expect(s.PendingChanges()).Should(Equal(0))
		})
	})
})
