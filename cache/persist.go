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
	"context"

	"github.com/botobag/graphcache/cache/store"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/storage"
)

// Hydrate loads records and the dependency index from the configured storage into the base layer.
// Loaded records are not written back by the next Persist. It is a no-op without storage.
func (c *Cache) Hydrate(ctx context.Context) error {
	adapter := c.config.Storage
	if adapter == nil {
		return nil
	}

	c.flushMutex.Lock()
	defer c.flushMutex.Unlock()

	rows, err := adapter.ReadData(ctx)
	if err != nil {
		return graphql.NewError("Failed to read data from storage.", err, graphql.ErrKindStorage, opHydrate)
	}

	changes := make([]store.Change, 0, len(rows))
	for _, row := range rows {
		change := store.Change{
			Entity:  row.Entity,
			Field:   row.Field,
			Deleted: row.Deleted(),
		}
		if !change.Deleted {
			entry, err := store.UnmarshalEntry(row.Data)
			if err != nil {
				return graphql.NewError(`Failed to decode field "`+row.Field+`" of "`+row.Entity+`".`,
					err, graphql.ErrKindStorage, opHydrate)
			}
			change.Entry = entry
		}
		changes = append(changes, change)
	}

	metadata, err := adapter.ReadMetadata(ctx)
	if err != nil {
		return graphql.NewError("Failed to read metadata from storage.", err, graphql.ErrKindStorage, opHydrate)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.store.Hydrate(changes)
	if len(metadata) > 0 {
		c.store.RestoreDependencyIndex(metadata)
	}
	c.logger.Debug("hydrated cache", "rows", len(rows), "queries", len(metadata))
	return nil
}

// Persist flushes the base-layer changes made since the last flush, followed by the dependency
// index. Writes in optimistic layers are never persisted. On failure the changes stay pending.
func (c *Cache) Persist(ctx context.Context) error {
	adapter := c.config.Storage
	if adapter == nil {
		return nil
	}

	c.flushMutex.Lock()
	defer c.flushMutex.Unlock()

	c.mutex.Lock()
	changes := c.store.TakeDelta()
	metadata := c.store.DependencyIndex()
	c.mutex.Unlock()

	rows := make([]storage.Row, 0, len(changes))
	for _, change := range changes {
		row := storage.Row{
			Entity: change.Entity,
			Field:  change.Field,
		}
		if !change.Deleted {
			data, err := store.MarshalEntry(change.Entry)
			if err != nil {
				c.requeue(changes)
				return graphql.NewError(`Failed to encode field "`+change.Field+`" of "`+change.Entity+`".`,
					err, graphql.ErrKindStorage, opPersist)
			}
			row.Data = data
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := adapter.WriteData(ctx, rows); err != nil {
			c.requeue(changes)
			return graphql.NewError("Failed to write data to storage.", err, graphql.ErrKindStorage, opPersist)
		}
	}

	if err := adapter.WriteMetadata(ctx, metadata); err != nil {
		return graphql.NewError("Failed to write metadata to storage.", err, graphql.ErrKindStorage, opPersist)
	}

	c.logger.Debug("persisted cache", "rows", len(rows), "queries", len(metadata))
	return nil
}

func (c *Cache) requeue(changes []store.Change) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store.Requeue(changes)
}
