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
	"context"
	"errors"
	"sync"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/storage"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// flakyStorage fails writes while failing is set.
type flakyStorage struct {
	*storage.Memory
	failing bool
}

func (s *flakyStorage) WriteData(ctx context.Context, rows []storage.Row) error {
	if s.failing {
		return errors.New("disk full")
	}
	return s.Memory.WriteData(ctx, rows)
}

// gatedStorage holds the first WriteData until release is closed.
type gatedStorage struct {
	*storage.Memory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStorage) WriteData(ctx context.Context, rows []storage.Row) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.Memory.WriteData(ctx, rows)
}

var _ = Describe("Persistence", func() {
	var (
		ctx      context.Context
		memory   *storage.Memory
		c        *cache.Cache
		todosReq cache.Request
	)

	newCache := func(adapter storage.Adapter) *cache.Cache {
		return cache.New(cache.Config{
			Storage: adapter,
			Logger:  discardLogger(),
			Optimistic: map[string]cache.OptimisticResolver{
				"toggleTodo": func(args map[string]interface{}, accessor cache.Accessor, info *cache.ResolveInfo) (interface{}, error) {
					return map[string]interface{}{"__typename": "Todo", "id": args["id"], "complete": true}, nil
				},
			},
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		memory = storage.NewMemory()
		c = newCache(memory)

		todosReq = request(todosQuery, nil)
		_, err := c.ProcessResult(cache.NewOperation(todosReq, ""), todosData(todo("1", "a", false), todo("2", "b", true)))
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("restores records and dependencies", func() {
		Expect(c.Persist(ctx)).Should(Succeed())

		restored := newCache(memory)
		Expect(restored.Hydrate(ctx)).Should(Succeed())
		Expect(restored.Snapshot()).Should(Equal(c.Snapshot()))
		Expect(restored.Queries()).Should(Equal([]string{todosReq.Key}))

		result, err := restored.ReadQuery(todosReq)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(Equal(todoList(todo("1", "a", false), todo("2", "b", true))))

		outcome, err := restored.ProcessResult(operation(toggleMutation, map[string]interface{}{"id": "1"}), toggle("1", true))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(outcome.Dependents).Should(ContainElement(todosReq.Key))
	})

	It("writes only what changed since the last flush", func() {
		Expect(c.Persist(ctx)).Should(Succeed())
		c.Invalidate("Todo:2", "", nil)
		Expect(c.Persist(ctx)).Should(Succeed())

		rows, err := memory.ReadData(ctx)
		Expect(err).ShouldNot(HaveOccurred())
		entities := map[string]bool{}
		for _, row := range rows {
			entities[row.Entity] = true
		}
		Expect(entities).Should(Equal(map[string]bool{"Query": true, "Todo:1": true}))
	})

	It("never persists optimistic writes", func() {
		op := cache.NewOperation(request(toggleMutation, map[string]interface{}{"id": "1"}), "m1")
		_, err := c.BeginOptimistic(op)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(c.Persist(ctx)).Should(Succeed())

		restored := newCache(memory)
		Expect(restored.Hydrate(ctx)).Should(Succeed())
		Expect(restored.Snapshot()["Todo:1"]["complete"]).Should(Equal(false))
	})

	It("keeps changes pending when the write fails", func() {
		flaky := &flakyStorage{Memory: storage.NewMemory(), failing: true}
		c = newCache(flaky)
		_, err := c.ProcessResult(cache.NewOperation(todosReq, ""), todosData(todo("1", "a", false)))
		Expect(err).ShouldNot(HaveOccurred())

		err = c.Persist(ctx)
		Expect(graphql.IsKind(err, graphql.ErrKindStorage)).Should(BeTrue())

		flaky.failing = false
		Expect(c.Persist(ctx)).Should(Succeed())

		restored := newCache(flaky)
		Expect(restored.Hydrate(ctx)).Should(Succeed())
		Expect(restored.Snapshot()).Should(Equal(c.Snapshot()))
	})

	It("writes concurrent flushes in the order their changes were taken", func() {
		gated := &gatedStorage{
			Memory:  storage.NewMemory(),
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		c = newCache(gated)
		_, err := c.ProcessResult(cache.NewOperation(todosReq, ""), todosData(todo("1", "a", false)))
		Expect(err).ShouldNot(HaveOccurred())

		first := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			first <- c.Persist(ctx)
		}()
		Eventually(gated.entered).Should(BeClosed())

		_, err = c.ProcessResult(cache.NewOperation(todosReq, ""), todosData(todo("1", "b", false)))
		Expect(err).ShouldNot(HaveOccurred())

		second := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			second <- c.Persist(ctx)
		}()
		Consistently(second).ShouldNot(Receive())

		close(gated.release)
		Eventually(first).Should(Receive(BeNil()))
		Eventually(second).Should(Receive(BeNil()))

		restored := newCache(gated.Memory)
		Expect(restored.Hydrate(ctx)).Should(Succeed())
		Expect(restored.Snapshot()["Todo:1"]["text"]).Should(Equal("b"))
	})

	It("does nothing without storage", func() {
		c = cache.New(cache.Config{Logger: discardLogger()})
		Expect(c.Persist(ctx)).Should(Succeed())
		Expect(c.Hydrate(ctx)).Should(Succeed())
	})
})
