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

// Package deps records which entities and fields an operation read or wrote.
//
// A Set keeps every dependency key twice: in a fixed-width bit field addressed by a hash of the key,
// and in an exact key map. The bit field answers "may these two sets overlap" in constant time with
// possible false positives; the map answers exactly.
package deps

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/willf/bitset"
)

// Width is the number of bits in the hashed dependency field.
const Width uint = 4096

// Entity returns the dependency key for a whole entity record.
func Entity(entityKey string) string {
	return entityKey
}

// Field returns the dependency key for a single field of an entity.
func Field(entityKey string, fieldKey string) string {
	return entityKey + "." + fieldKey
}

// Typename returns the dependency key for "any entity of the type", used for list invalidation.
func Typename(typename string) string {
	return "__typename:" + typename
}

// BitOf returns the bit position of a dependency key.
func BitOf(key string) uint {
	return uint(xxhash.Sum64String(key) % uint64(Width))
}

// Set is a set of dependency keys. The zero value is an empty set ready to use.
type Set struct {
	bits *bitset.BitSet
	keys map[string]struct{}
}

// NewSet creates a set containing the given keys.
func NewSet(keys ...string) *Set {
	s := &Set{}
	for _, key := range keys {
		s.Add(key)
	}
	return s
}

func (s *Set) init() {
	if s.bits == nil {
		s.bits = bitset.New(Width)
		s.keys = map[string]struct{}{}
	}
}

// Add puts a key into the set.
func (s *Set) Add(key string) {
	s.init()
	s.bits.Set(BitOf(key))
	s.keys[key] = struct{}{}
}

// Has returns true if the exact key is in the set.
func (s *Set) Has(key string) bool {
	if s == nil || s.keys == nil {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

// Merge adds every key of other into s.
func (s *Set) Merge(other *Set) {
	if other.Len() == 0 {
		return
	}
	s.init()
	s.bits.InPlaceUnion(other.bits)
	for key := range other.keys {
		s.keys[key] = struct{}{}
	}
}

// MayIntersect tests the bit fields of two sets. A false result is definite; a true result may be a
// hash collision.
func (s *Set) MayIntersect(other *Set) bool {
	if s.Len() == 0 || other.Len() == 0 {
		return false
	}
	return s.bits.IntersectionCardinality(other.bits) > 0
}

// Intersects returns true if the two sets share a key.
func (s *Set) Intersects(other *Set) bool {
	if !s.MayIntersect(other) {
		return false
	}

	small, large := s, other
	if len(small.keys) > len(large.keys) {
		small, large = large, small
	}
	for key := range small.keys {
		if _, ok := large.keys[key]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in the set in sorted order.
func (s *Set) Keys() []string {
	if s.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of s.
func (s *Set) Clone() *Set {
	clone := &Set{}
	clone.Merge(s)
	return clone
}

// Reset removes all keys.
func (s *Set) Reset() {
	if s.bits != nil {
		s.bits.ClearAll()
		s.keys = map[string]struct{}{}
	}
}
