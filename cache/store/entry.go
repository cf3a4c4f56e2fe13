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
	"github.com/json-iterator/go"
)

// EntryKind distinguishes the three kinds of Entry.
type EntryKind int

// Enumeration of EntryKind
const (
	// EntryValue holds a JSON-safe scalar (or the JSON object of a custom scalar).
	EntryValue EntryKind = iota

	// EntryLink holds a Link to other records.
	EntryLink

	// EntryTombstone marks a field as deleted in an optimistic layer. It stops a read from falling
	// through to the layers below.
	EntryTombstone
)

func (kind EntryKind) String() string {
	switch kind {
	case EntryValue:
		return "value"
	case EntryLink:
		return "link"
	case EntryTombstone:
		return "tombstone"
	}
	return "unknown"
}

// Entry is the content of one field of a Record.
type Entry struct {
	Kind  EntryKind
	Value interface{}
	Link  Link
}

// Value creates an Entry storing a scalar value.
func Value(value interface{}) Entry {
	return Entry{Kind: EntryValue, Value: value}
}

// LinkEntry creates an Entry storing a link.
func LinkEntry(link Link) Entry {
	return Entry{Kind: EntryLink, Link: link}
}

// Tombstone is the Entry that marks a field deleted in a layer.
var Tombstone = Entry{Kind: EntryTombstone}

// IsTombstone returns true if the entry marks a deleted field.
func (e Entry) IsTombstone() bool {
	return e.Kind == EntryTombstone
}

// Interface returns the entry as a plain Go value: the scalar for value entries and the
// Link.Interface form for links.
func (e Entry) Interface() interface{} {
	switch e.Kind {
	case EntryValue:
		return e.Value
	case EntryLink:
		return e.Link.Interface()
	}
	return nil
}

// Compatible returns false when writing other over e would change the shape of the field from a
// value to a link or the other way around.
func (e Entry) Compatible(other Entry) bool {
	if e.Kind == EntryTombstone || other.Kind == EntryTombstone {
		return true
	}
	return e.Kind == other.Kind
}

// encodedEntry is the persisted form of an Entry.
type encodedEntry struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalEntry serializes an entry for a storage adapter. Tombstones are never persisted.
func MarshalEntry(e Entry) ([]byte, error) {
	if e.Kind == EntryTombstone {
		return nil, errTombstoneNotPersistable
	}
	return json.Marshal(encodedEntry{
		Kind: e.Kind.String(),
		Data: e.Interface(),
	})
}

// UnmarshalEntry decodes the data produced by MarshalEntry. Numbers are decoded as float64.
func UnmarshalEntry(data []byte) (Entry, error) {
	var encoded encodedEntry
	if err := json.Unmarshal(data, &encoded); err != nil {
		return Entry{}, err
	}

	switch encoded.Kind {
	case "value":
		return Value(encoded.Data), nil
	case "link":
		link, ok := LinkOf(encoded.Data)
		if !ok {
			return Entry{}, errMalformedLink
		}
		return LinkEntry(link), nil
	}

	return Entry{}, errUnknownEntryKind
}
