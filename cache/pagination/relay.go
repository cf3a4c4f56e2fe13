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

package pagination

import (
	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/cache/keys"
)

var cursorArguments = []string{"first", "last", "after", "before"}

// connection is a page of a Relay connection read from the cache.
type connection struct {
	fieldKey string
	key      string
	typename string
	after    string
	before   string

	edges    []interface{}
	nodes    []interface{}
	hasNodes bool

	pageInfoTypename string
	startCursor      interface{}
	endCursor        interface{}
	hasNextPage      interface{}
	hasPreviousPage  interface{}
}

func resolveKey(accessor cache.Accessor, entityKey string, fieldKey string) (string, bool) {
	value, ok := accessor.Resolve(entityKey, fieldKey, nil)
	if !ok {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

func resolveList(accessor cache.Accessor, entityKey string, fieldKey string) ([]interface{}, bool) {
	value, ok := accessor.Resolve(entityKey, fieldKey, nil)
	if !ok {
		return nil, false
	}
	list, ok := value.([]interface{})
	return list, ok
}

func readConnection(accessor cache.Accessor, entityKey string, field cache.FieldInfo) *connection {
	key, ok := resolveKey(accessor, entityKey, field.FieldKey)
	if !ok {
		return nil
	}

	conn := &connection{
		fieldKey: field.FieldKey,
		key:      key,
	}
	conn.after, _ = field.Arguments["after"].(string)
	conn.before, _ = field.Arguments["before"].(string)
	if typename, ok := accessor.Resolve(key, "__typename", nil); ok {
		conn.typename, _ = typename.(string)
	}

	edges, hasEdges := resolveList(accessor, key, "edges")
	conn.edges = edges
	conn.nodes, conn.hasNodes = resolveList(accessor, key, "nodes")
	if !hasEdges && !conn.hasNodes {
		return nil
	}

	if pageInfo, ok := resolveKey(accessor, key, "pageInfo"); ok {
		if typename, ok := accessor.Resolve(pageInfo, "__typename", nil); ok {
			conn.pageInfoTypename, _ = typename.(string)
		}
		conn.startCursor, _ = accessor.Resolve(pageInfo, "startCursor", nil)
		conn.endCursor, _ = accessor.Resolve(pageInfo, "endCursor", nil)
		conn.hasNextPage, _ = accessor.Resolve(pageInfo, "hasNextPage", nil)
		conn.hasPreviousPage, _ = accessor.Resolve(pageInfo, "hasPreviousPage", nil)
	}
	return conn
}

// Relay returns a resolver for a connection field following the Relay cursor connections
// specification. Starting from the page fetched without cursor, it appends the pages fetched with
// "after" set to the end cursor so far and prepends the pages fetched with "before" set to the
// start cursor so far. Edges pointing to a node already seen are dropped.
//
// Fields of the connection other than edges, nodes and pageInfo are taken from the page requested.
func Relay() cache.Resolver {
	return func(parent map[string]interface{}, args map[string]interface{}, accessor cache.Accessor, info *cache.ResolveInfo) (interface{}, error) {
		currentKey, ok := resolveKey(accessor, info.ParentKey, info.ParentFieldKey)
		if !ok {
			return keys.Undefined, nil
		}

		var (
			pages   []*connection
			current *connection
			base    *connection
		)
		for _, field := range pagesOf(accessor, info, args, cursorArguments) {
			conn := readConnection(accessor, info.ParentKey, field)
			if conn == nil {
				continue
			}
			pages = append(pages, conn)
			if conn.fieldKey == info.ParentFieldKey {
				current = conn
			}
			if base == nil && len(conn.after) == 0 && len(conn.before) == 0 {
				base = conn
			}
		}
		if current == nil {
			// Neither edges nor nodes; read the connection as stored.
			return currentKey, nil
		}
		if base == nil {
			base = current
		}

		seen := map[string]bool{}
		merged := *base
		merged.edges = appendEdges(accessor, nil, base.edges, seen)
		merged.nodes = appendNodes(nil, base.nodes)

		visited := map[*connection]bool{base: true}
		for {
			next := findPage(pages, visited, func(conn *connection) bool {
				return len(conn.after) > 0 && conn.after == merged.endCursor
			})
			if next == nil {
				break
			}
			visited[next] = true
			merged.edges = appendEdges(accessor, merged.edges, next.edges, seen)
			merged.nodes = appendNodes(merged.nodes, next.nodes)
			merged.endCursor = next.endCursor
			merged.hasNextPage = next.hasNextPage
		}
		for {
			prev := findPage(pages, visited, func(conn *connection) bool {
				return len(conn.before) > 0 && conn.before == merged.startCursor
			})
			if prev == nil {
				break
			}
			visited[prev] = true
			merged.edges = append(appendEdges(accessor, nil, prev.edges, seen), merged.edges...)
			merged.nodes = appendNodes(appendNodes(nil, prev.nodes), merged.nodes)
			merged.startCursor = prev.startCursor
			merged.hasPreviousPage = prev.hasPreviousPage
		}

		if !visited[current] {
			return currentKey, nil
		}
		return merged.object(accessor, current), nil
	}
}

func findPage(pages []*connection, visited map[*connection]bool, match func(*connection) bool) *connection {
	for _, conn := range pages {
		if !visited[conn] && match(conn) {
			return conn
		}
	}
	return nil
}

// appendEdges appends the edges whose node is not in seen.
func appendEdges(accessor cache.Accessor, list []interface{}, edges []interface{}, seen map[string]bool) []interface{} {
	for _, edge := range edges {
		if edgeKey, ok := edge.(string); ok {
			if node, ok := resolveKey(accessor, edgeKey, "node"); ok {
				if seen[node] {
					continue
				}
				seen[node] = true
			}
		}
		list = append(list, edge)
	}
	return list
}

func appendNodes(list []interface{}, nodes []interface{}) []interface{} {
	seen := map[string]bool{}
	for _, node := range list {
		if key, ok := node.(string); ok {
			seen[key] = true
		}
	}
	for _, node := range nodes {
		if key, ok := node.(string); ok {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		list = append(list, node)
	}
	return list
}

// object builds the merged connection in the form resolvers return objects.
func (conn *connection) object(accessor cache.Accessor, current *connection) map[string]interface{} {
	object := map[string]interface{}{}
	for _, field := range accessor.InspectFields(current.key) {
		switch field.FieldName {
		case "edges", "nodes", "pageInfo":
			continue
		}
		if value, ok := accessor.Resolve(current.key, field.FieldKey, nil); ok {
			object[field.FieldKey] = value
		}
	}

	object["__typename"] = conn.typename
	if conn.edges == nil {
		conn.edges = []interface{}{}
	}
	object["edges"] = conn.edges
	if conn.hasNodes {
		object["nodes"] = conn.nodes
	}
	object["pageInfo"] = map[string]interface{}{
		"__typename":      conn.pageInfoTypename,
		"startCursor":     conn.startCursor,
		"endCursor":       conn.endCursor,
		"hasNextPage":     conn.hasNextPage,
		"hasPreviousPage": conn.hasPreviousPage,
	}
	return object
}
