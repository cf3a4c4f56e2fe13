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

	"github.com/botobag/graphcache/iterator"
)

// EntityIterator iterates the keys of entities visible in the store.
type EntityIterator struct {
	keys []string
}

// Entities returns an iterator over the keys of every entity with at least one visible field, in
// sorted order. The iterator works on a snapshot; writes made during iteration are not observed.
func (s *Store) Entities() *EntityIterator {
	candidates := map[string]struct{}{}
	for _, l := range s.layersTopDown() {
		for key := range l.records {
			candidates[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		if s.HasEntity(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return &EntityIterator{
		keys: keys,
	}
}

// Next returns the next entity key. It returns iterator.Done when there are no more entities.
func (iter *EntityIterator) Next() (string, error) {
	if len(iter.keys) == 0 {
		return "", iterator.Done
	}
	key := iter.keys[0]
	iter.keys = iter.keys[1:]
	return key, nil
}
