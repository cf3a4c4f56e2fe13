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

package cache

import (
	"errors"

	"github.com/willf/bitset"
)

// DocumentCache keeps parsed documents by their source text to save parsing efforts.
type DocumentCache interface {
	// Get looks up the document parsed from the source.
	Get(source string) (doc *Document, ok bool)

	// Add adds a document parsed from the source.
	Add(source string, doc *Document)
}

type lruEntry struct {
	source string
	doc    *Document

	// Index of the entry in lruEntryAllocator.entries
	index uint

	// Next and previous pointers in the doubly-linked list of elements. The list is a ring such
	// that &l.root is both the next element of the last list element and the previous element of
	// the first.
	next, prev *lruEntry
}

// lruEntryAllocator hands out entries from a fixed array. Free entries have their bits set.
type lruEntryAllocator struct {
	entries []lruEntry
	free    bitset.BitSet
}

func newLRUEntryAllocator(maxEntries uint) *lruEntryAllocator {
	allocator := &lruEntryAllocator{
		entries: make([]lruEntry, maxEntries),
	}
	for i := uint(0); i < maxEntries; i++ {
		allocator.entries[i].index = i
		allocator.free.Set(i)
	}
	return allocator
}

// New reserves an entry. It panics if every entry is in use.
func (allocator *lruEntryAllocator) New(source string, doc *Document) *lruEntry {
	i, found := allocator.free.NextSet(0)
	if !found {
		panic("LRUDocumentCache: no available entry to return")
	}
	allocator.free.Clear(i)

	entry := &allocator.entries[i]
	entry.source = source
	entry.doc = doc
	return entry
}

// Free marks the entry available for reuse.
func (allocator *lruEntryAllocator) Free(entry *lruEntry) {
	entry.source = ""
	entry.doc = nil
	allocator.free.Set(entry.index)
}

// LRUDocumentCache is a DocumentCache that evicts the least recently used document once full. It
// is not safe for concurrent use; Cache calls it under its lock.
type LRUDocumentCache struct {
	maxEntries uint
	allocator  *lruEntryAllocator
	entries    map[string]*lruEntry

	// sentinel list element, only &root, root.prev, and root.next are used
	root lruEntry
	len  uint
}

var _ DocumentCache = (*LRUDocumentCache)(nil)

var errZeroCacheSize = errors.New("LRUDocumentCache: must specify a non-zero cache size")

// NewLRUDocumentCache creates a LRUDocumentCache holding up to maxEntries documents.
func NewLRUDocumentCache(maxEntries uint) (*LRUDocumentCache, error) {
	if maxEntries == 0 {
		return nil, errZeroCacheSize
	}

	c := &LRUDocumentCache{
		maxEntries: maxEntries,
		allocator:  newLRUEntryAllocator(maxEntries),
		entries:    make(map[string]*lruEntry, maxEntries),
	}
	c.root.next = &c.root
	c.root.prev = &c.root
	return c, nil
}

// Len returns the number of cached documents.
func (c *LRUDocumentCache) Len() uint {
	return c.len
}

// Get implements DocumentCache.
func (c *LRUDocumentCache) Get(source string) (*Document, bool) {
	e, hit := c.entries[source]
	if !hit {
		return nil, false
	}
	c.moveToFront(e)
	return e.doc, true
}

// Add implements DocumentCache.
func (c *LRUDocumentCache) Add(source string, doc *Document) {
	if e, ok := c.entries[source]; ok {
		c.moveToFront(e)
		e.doc = doc
		return
	}

	if c.len >= c.maxEntries {
		c.removeOldest()
	}

	e := c.allocator.New(source, doc)
	c.insert(e, &c.root)
	c.entries[source] = e
}

// insert inserts e after at.
func (c *LRUDocumentCache) insert(e, at *lruEntry) {
	n := at.next
	at.next = e
	e.prev = at
	e.next = n
	n.prev = e
	c.len++
}

func (c *LRUDocumentCache) moveToFront(e *lruEntry) {
	if c.root.next == e {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev

	n := c.root.next
	c.root.next = e
	e.prev = &c.root
	e.next = n
	n.prev = e
}

func (c *LRUDocumentCache) removeOldest() {
	e := c.root.prev
	if e == &c.root {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
	c.len--

	delete(c.entries, e.source)
	c.allocator.Free(e)
}
