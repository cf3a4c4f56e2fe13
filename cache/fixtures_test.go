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
	"io"
	"log/slog"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/graphql/schema"
	"github.com/botobag/graphcache/internal/testutil"
)

var (
	todosQuery = cache.MustParseDocument(`{ todos { __typename id text complete } }`)

	authorQuery = cache.MustParseDocument(`{ author { __typename id name } }`)

	toggleMutation = cache.MustParseDocument(`
		mutation Toggle($id: ID!) {
			toggleTodo(id: $id) { __typename id complete }
		}`)

	addMutation = cache.MustParseDocument(`
		mutation Add($text: String!) {
			addTodo(text: $text) { __typename id text complete }
		}`)

	removeMutation = cache.MustParseDocument(`
		mutation Remove($id: ID!) {
			removeTodo(id: $id)
		}`)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func todoSchema() *schema.Schema {
	s, err := schema.Parse([]byte(testutil.TodoSchema))
	if err != nil {
		panic(err)
	}
	return s
}

func todo(id string, text string, complete bool) map[string]interface{} {
	return map[string]interface{}{
		"__typename": "Todo",
		"id":         id,
		"text":       text,
		"complete":   complete,
	}
}

func todosData(todos ...map[string]interface{}) map[string]interface{} {
	list := make([]interface{}, len(todos))
	for i, t := range todos {
		list[i] = t
	}
	return map[string]interface{}{
		"__typename": "Query",
		"todos":      list,
	}
}

func todoList(todos ...map[string]interface{}) map[string]interface{} {
	data := todosData(todos...)
	delete(data, "__typename")
	return data
}

func request(doc *cache.Document, variables map[string]interface{}) cache.Request {
	return cache.NewRequest(doc, variables)
}

func operation(doc *cache.Document, variables map[string]interface{}) cache.Operation {
	return cache.NewOperation(cache.NewRequest(doc, variables), "")
}

func toggle(id string, complete bool) map[string]interface{} {
	return map[string]interface{}{
		"toggleTodo": map[string]interface{}{
			"__typename": "Todo",
			"id":         id,
			"complete":   complete,
		},
	}
}
