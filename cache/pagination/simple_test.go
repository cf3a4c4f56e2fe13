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

package pagination_test

import (
	"io"
	"log/slog"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/cache/pagination"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func todos(ids ...string) []interface{} {
	list := make([]interface{}, len(ids))
	for i, id := range ids {
		list[i] = map[string]interface{}{"__typename": "Todo", "id": id}
	}
	return list
}

var _ = Describe("Simple", func() {
	var c *cache.Cache

	pageQuery := cache.MustParseDocument(`
		query Page($skip: Int, $limit: Int, $done: Boolean) {
			todos(skip: $skip, limit: $limit, done: $done) { __typename id }
		}`)

	page := func(skip int, done interface{}) map[string]interface{} {
		vars := map[string]interface{}{"skip": skip, "limit": 2}
		if done != nil {
			vars["done"] = done
		}
		return vars
	}

	write := func(vars map[string]interface{}, ids ...string) {
		_, err := c.ProcessResult(cache.NewOperation(cache.NewRequest(pageQuery, vars), ""), map[string]interface{}{
			"todos": todos(ids...),
		})
		Expect(err).ShouldNot(HaveOccurred())
	}

	read := func(vars map[string]interface{}) interface{} {
		result, err := c.ReadQuery(cache.NewRequest(pageQuery, vars))
		Expect(err).ShouldNot(HaveOccurred())
		if result.Data == nil {
			return nil
		}
		return result.Data["todos"]
	}

	newCache := func(config pagination.SimpleConfig) {
		c = cache.New(cache.Config{
			Logger: discardLogger(),
			Resolvers: map[string]map[string]cache.Resolver{
				"Query": {"todos": pagination.Simple(config)},
			},
		})
	}

	It("merges pages in offset order", func() {
		newCache(pagination.SimpleConfig{})
		write(page(2, nil), "3", "4")
		write(page(0, nil), "1", "2")

		Expect(read(page(0, nil))).Should(Equal(todos("1", "2", "3", "4")))
		Expect(read(page(2, nil))).Should(Equal(todos("1", "2", "3", "4")))
	})

	It("prepends later pages in MergeBefore mode", func() {
		newCache(pagination.SimpleConfig{Merge: pagination.MergeBefore})
		write(page(0, nil), "1", "2")
		write(page(2, nil), "3", "4")

		Expect(read(page(2, nil))).Should(Equal(todos("3", "4", "1", "2")))
	})

	It("drops entities repeated across pages", func() {
		newCache(pagination.SimpleConfig{})
		write(page(0, nil), "1", "2")
		write(page(2, nil), "2", "3")

		Expect(read(page(2, nil))).Should(Equal(todos("1", "2", "3")))
	})

	It("keeps pages with other arguments apart", func() {
		newCache(pagination.SimpleConfig{})
		write(page(0, nil), "1", "2")
		write(page(0, true), "5")
		write(page(2, true), "6")

		Expect(read(page(0, nil))).Should(Equal(todos("1", "2")))
		Expect(read(page(2, true))).Should(Equal(todos("5", "6")))
	})

	It("misses until the requested page is cached", func() {
		newCache(pagination.SimpleConfig{})
		write(page(0, nil), "1", "2")

		Expect(read(page(4, nil))).Should(BeNil())
	})

	It("supports custom argument names", func() {
		offsetQuery := cache.MustParseDocument(`
			query Offset($offset: Int, $first: Int) {
				todos(offset: $offset, first: $first) { __typename id }
			}`)
		newCache(pagination.SimpleConfig{OffsetArgument: "offset", LimitArgument: "first"})

		for _, p := range []struct {
			offset int
			ids    []string
		}{{0, []string{"1"}}, {1, []string{"2"}}} {
			vars := map[string]interface{}{"offset": p.offset, "first": 1}
			_, err := c.ProcessResult(cache.NewOperation(cache.NewRequest(offsetQuery, vars), ""), map[string]interface{}{
				"todos": todos(p.ids...),
			})
			Expect(err).ShouldNot(HaveOccurred())
		}

		result, err := c.ReadQuery(cache.NewRequest(offsetQuery, map[string]interface{}{"offset": 1, "first": 1}))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(Equal(map[string]interface{}{"todos": todos("1", "2")}))
	})
})
