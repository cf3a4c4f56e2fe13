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
	"errors"
	"fmt"

	"github.com/botobag/graphcache/graphql"
)

var (
	errTombstoneNotPersistable = errors.New("store: tombstone entries cannot be persisted")
	errMalformedLink           = errors.New("store: malformed link in persisted entry")
	errUnknownEntryKind        = errors.New("store: unknown kind of persisted entry")
)

// NewMixedShapeError reports a write that would turn a value into a link or the other way around.
func NewMixedShapeError(entityKey string, fieldKey string, stored EntryKind, incoming EntryKind) error {
	return graphql.NewError(
		fmt.Sprintf(`Field "%s" on "%s" is stored as a %s but was written as a %s.`,
			fieldKey, entityKey, stored, incoming),
		graphql.ErrKindMixedShape)
}
