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

package store

import (
	"sort"

	"github.com/botobag/graphcache/cache/deps"
)

// SetDependencies replaces the dependencies recorded for a query.
func (s *Store) SetDependencies(queryKey string, set *deps.Set) {
	s.Forget(queryKey)

	set = set.Clone()
	s.queries[queryKey] = set
	for _, key := range set.Keys() {
		queries := s.dependents[key]
		if queries == nil {
			queries = map[string]struct{}{}
			s.dependents[key] = queries
		}
		queries[queryKey] = struct{}{}
	}
}

// Dependencies returns the dependencies recorded for a query.
func (s *Store) Dependencies(queryKey string) (*deps.Set, bool) {
	set, ok := s.queries[queryKey]
	return set, ok
}

// Forget removes a query from the index.
func (s *Store) Forget(queryKey string) {
	set, exists := s.queries[queryKey]
	if !exists {
		return
	}
	for _, key := range set.Keys() {
		queries := s.dependents[key]
		delete(queries, queryKey)
		if len(queries) == 0 {
			delete(s.dependents, key)
		}
	}
	delete(s.queries, queryKey)
}

// Queries returns the keys of all indexed queries in sorted order.
func (s *Store) Queries() []string {
	keys := make([]string, 0, len(s.queries))
	for key := range s.queries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// QueriesOf returns the queries that recorded the dependency key (an entity key, a field or a
// typename marker).
func (s *Store) QueriesOf(dependencyKey string) []string {
	queries := s.dependents[dependencyKey]
	keys := make([]string, 0, len(queries))
	for key := range queries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Dependents returns the queries whose dependencies overlap the written set. Each query is first
// tested against the hashed bit field; with exact the candidates are confirmed against the key
// sets so hash collisions are dropped. The result is sorted.
func (s *Store) Dependents(written *deps.Set, exact bool) []string {
	if written.Len() == 0 {
		return nil
	}

	var result []string
	for queryKey, set := range s.queries {
		if !set.MayIntersect(written) {
			continue
		}
		if exact && !set.Intersects(written) {
			continue
		}
		result = append(result, queryKey)
	}
	sort.Strings(result)
	return result
}

// DependencyIndex exports the index as query key → sorted dependency keys.
func (s *Store) DependencyIndex() map[string][]string {
	index := make(map[string][]string, len(s.queries))
	for queryKey, set := range s.queries {
		index[queryKey] = set.Keys()
	}
	return index
}

// RestoreDependencyIndex replaces the index with one exported by DependencyIndex.
func (s *Store) RestoreDependencyIndex(index map[string][]string) {
	s.queries = map[string]*deps.Set{}
	s.dependents = map[string]map[string]struct{}{}
	for queryKey, keys := range index {
		s.SetDependencies(queryKey, deps.NewSet(keys...))
	}
}
