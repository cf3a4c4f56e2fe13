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

// Package iterator documents the iterator convention used in graphcache. It follows the Iterator
// Guidelines established for Google Cloud Client Libraries for Go [0].
//
// An iterable resource provides a method that returns an iterator over its elements, named after
// the elements in plural when appropriate. For example, the store lists its entities with
//
//	// Entities returns an iterator over the keys of every entity with at least one visible field.
//	func (s *Store) Entities() *EntityIterator {
//		...
//	}
//
// The iterator has a single method Next that returns the next element, or the error Done when the
// iteration is complete:
//
//	iter := s.Entities()
//	for {
//		key, err := iter.Next()
//		if err == iterator.Done {
//			break
//		} else if err != nil {
//			return err
//		}
//		process(key)
//	}
//
// Iterators are not safe for concurrent use.
//
// [0]: https://github.com/googleapis/google-cloud-go/wiki/Iterator-Guidelines
package iterator
