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

// Package storage defines the persistence boundary of the cache: an Adapter saves changes made to
// the base layer and the dependency index, and hands them back when a cache is hydrated.
package storage

import (
	"context"
)

// Row is one persisted field. Data holds the encoded entry; nil Data deletes the field, and nil
// Data with an empty Field deletes every field of the entity.
type Row struct {
	Entity string
	Field  string
	Data   []byte
}

// Deleted returns true if the row removes data.
func (row Row) Deleted() bool {
	return row.Data == nil
}

// Adapter persists cache data. WriteData receives changes in the order they were made; ReadData
// returns the resulting fields (deletions already applied).
type Adapter interface {
	ReadData(ctx context.Context) ([]Row, error)
	WriteData(ctx context.Context, rows []Row) error

	// Metadata is the dependency index: query key → dependency keys. WriteMetadata replaces it.
	ReadMetadata(ctx context.Context) (map[string][]string, error)
	WriteMetadata(ctx context.Context, metadata map[string][]string) error
}
