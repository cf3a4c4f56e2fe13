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

// LinkKind distinguishes the shapes of Link.
type LinkKind int

// Enumeration of LinkKind
const (
	// LinkNull is a relation known not to exist.
	LinkNull LinkKind = iota

	// LinkKey points to one record.
	LinkKey

	// LinkList is an ordered list of links. Lists of lists nest.
	LinkList
)

// Link references other records by key. Records never point to each other directly so cyclic data
// needs no special treatment.
type Link struct {
	Kind LinkKind
	Key  string
	List []Link
}

// NullLink returns a null link.
func NullLink() Link {
	return Link{}
}

// KeyLink returns a link to the record with the given key.
func KeyLink(key string) Link {
	return Link{Kind: LinkKey, Key: key}
}

// ListLink returns a link of the given items.
func ListLink(items ...Link) Link {
	if items == nil {
		items = []Link{}
	}
	return Link{Kind: LinkList, List: items}
}

// IsNull returns true for a null link.
func (l Link) IsNull() bool {
	return l.Kind == LinkNull
}

// Equal compares two links structurally.
func (l Link) Equal(other Link) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case LinkKey:
		return l.Key == other.Key
	case LinkList:
		if len(l.List) != len(other.List) {
			return false
		}
		for i := range l.List {
			if !l.List[i].Equal(other.List[i]) {
				return false
			}
		}
	}
	return true
}

// Keys returns every record key referenced by the link, depth first.
func (l Link) Keys() []string {
	var keys []string
	l.appendKeys(&keys)
	return keys
}

func (l Link) appendKeys(keys *[]string) {
	switch l.Kind {
	case LinkKey:
		*keys = append(*keys, l.Key)
	case LinkList:
		for _, item := range l.List {
			item.appendKeys(keys)
		}
	}
}

// Interface converts the link to nil, a string or a []interface{} of those.
func (l Link) Interface() interface{} {
	switch l.Kind {
	case LinkKey:
		return l.Key
	case LinkList:
		list := make([]interface{}, len(l.List))
		for i, item := range l.List {
			list[i] = item.Interface()
		}
		return list
	}
	return nil
}

// LinkOf converts the form returned by Interface back to a Link. It also accepts []string and
// Link values.
func LinkOf(v interface{}) (Link, bool) {
	switch v := v.(type) {
	case nil:
		return NullLink(), true
	case Link:
		return v, true
	case string:
		return KeyLink(v), true
	case []string:
		list := make([]Link, len(v))
		for i, key := range v {
			list[i] = KeyLink(key)
		}
		return ListLink(list...), true
	case []interface{}:
		list := make([]Link, len(v))
		for i, item := range v {
			link, ok := LinkOf(item)
			if !ok {
				return Link{}, false
			}
			list[i] = link
		}
		return ListLink(list...), true
	}
	return Link{}, false
}
