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

package storage

import (
	"context"
	"sort"
	"sync"
)

// Memory is an Adapter that keeps data in memory. It is useful in tests and for sharing state
// between caches in the same process.
type Memory struct {
	mutex    sync.Mutex
	entities map[string]map[string][]byte
	metadata map[string][]string
}

var _ Adapter = (*Memory)(nil)

// NewMemory creates an empty Memory adapter.
func NewMemory() *Memory {
	return &Memory{
		entities: map[string]map[string][]byte{},
		metadata: map[string][]string{},
	}
}

// ReadData implements Adapter. Rows are sorted by entity and field.
func (m *Memory) ReadData(ctx context.Context) ([]Row, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var rows []Row
	for entity, fields := range m.entities {
		for field, data := range fields {
			rows = append(rows, Row{
				Entity: entity,
				Field:  field,
				Data:   append([]byte(nil), data...),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Entity != rows[j].Entity {
			return rows[i].Entity < rows[j].Entity
		}
		return rows[i].Field < rows[j].Field
	})
	return rows, nil
}

// WriteData implements Adapter.
func (m *Memory) WriteData(ctx context.Context, rows []Row) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, row := range rows {
		switch {
		case row.Deleted() && len(row.Field) == 0:
			delete(m.entities, row.Entity)

		case row.Deleted():
			if fields := m.entities[row.Entity]; fields != nil {
				delete(fields, row.Field)
				if len(fields) == 0 {
					delete(m.entities, row.Entity)
				}
			}

		default:
			fields := m.entities[row.Entity]
			if fields == nil {
				fields = map[string][]byte{}
				m.entities[row.Entity] = fields
			}
			fields[row.Field] = append([]byte(nil), row.Data...)
		}
	}
	return nil
}

// ReadMetadata implements Adapter.
func (m *Memory) ReadMetadata(ctx context.Context) (map[string][]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return copyMetadata(m.metadata), nil
}

// WriteMetadata implements Adapter.
func (m *Memory) WriteMetadata(ctx context.Context, metadata map[string][]string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.metadata = copyMetadata(metadata)
	return nil
}

func copyMetadata(metadata map[string][]string) map[string][]string {
	result := make(map[string][]string, len(metadata))
	for key, values := range metadata {
		result[key] = append([]string(nil), values...)
	}
	return result
}
