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

// Package store implements the normalized record store: records keyed by entity key, each mapping
// field keys to values or links, with a stack of optimistic layers above a base layer and an index
// from executed queries to the dependencies they read.
//
// A Store is not safe for concurrent use. Its owner (cache.Cache) serializes every access.
package store

import (
	"sort"

	"github.com/botobag/graphcache/cache/deps"
)

// Record is the content of one entity in one layer.
type Record struct {
	Fields map[string]Entry

	// Deleted marks the entity removed in this layer. Fields not re-written in the same layer do not
	// fall through to layers below.
	Deleted bool
}

func newRecord() *Record {
	return &Record{
		Fields: map[string]Entry{},
	}
}

// layerWrite is one entry in the write log of an optimistic layer.
type layerWrite struct {
	entity       string
	field        string
	entry        Entry
	deleteEntity bool
}

type layer struct {
	id      string
	records map[string]*Record
	log     []layerWrite
}

func newLayer(id string) *layer {
	return &layer{
		id:      id,
		records: map[string]*Record{},
	}
}

func (l *layer) isBase() bool {
	return len(l.id) == 0
}

// Change is a base-layer modification recorded for persistence, or a row loaded by Hydrate. Deleted
// with an empty Field removes the whole entity.
type Change struct {
	Entity  string
	Field   string
	Entry   Entry
	Deleted bool
}

// Store holds records in layers.
type Store struct {
	base *layer

	// Optimistic layers ordered from bottom to top.
	optimistic []*layer

	// queries maps the key of an executed query to the dependencies of its last read.
	queries map[string]*deps.Set

	// dependents maps a dependency key to the queries that recorded it.
	dependents map[string]map[string]struct{}

	delta      []Change
	hydrating  bool
	deltaIndex map[fieldRef]int
}

type fieldRef struct {
	entity string
	field  string
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset drops all records, layers, dependency information and pending deltas.
func (s *Store) Reset() {
	s.base = newLayer("")
	s.optimistic = nil
	s.queries = map[string]*deps.Set{}
	s.dependents = map[string]map[string]struct{}{}
	s.delta = nil
	s.deltaIndex = nil
}

// layersTopDown returns all layers from the most recent optimistic layer to the base.
func (s *Store) layersTopDown() []*layer {
	layers := make([]*layer, 0, len(s.optimistic)+1)
	for i := len(s.optimistic) - 1; i >= 0; i-- {
		layers = append(layers, s.optimistic[i])
	}
	return append(layers, s.base)
}

//===----------------------------------------------------------------------------------------====//
// Read
//===----------------------------------------------------------------------------------------====//

// ReadField returns the entry visible for the field. A tombstone or nothing found in any layer is a
// miss.
func (s *Store) ReadField(entityKey string, fieldKey string) (Entry, bool) {
	for _, l := range s.layersTopDown() {
		record := l.records[entityKey]
		if record == nil {
			continue
		}
		if entry, exists := record.Fields[fieldKey]; exists {
			if entry.IsTombstone() {
				return Entry{}, false
			}
			return entry, true
		}
		if record.Deleted {
			return Entry{}, false
		}
	}
	return Entry{}, false
}

// ReadValue returns the scalar stored in the field. It returns false if the field is missing or
// holds a link.
func (s *Store) ReadValue(entityKey string, fieldKey string) (interface{}, bool) {
	entry, ok := s.ReadField(entityKey, fieldKey)
	if !ok || entry.Kind != EntryValue {
		return nil, false
	}
	return entry.Value, true
}

// ReadLink returns the link stored in the field. It returns false if the field is missing or holds
// a value.
func (s *Store) ReadLink(entityKey string, fieldKey string) (Link, bool) {
	entry, ok := s.ReadField(entityKey, fieldKey)
	if !ok || entry.Kind != EntryLink {
		return Link{}, false
	}
	return entry.Link, true
}

// Fields returns the sorted keys of the fields visible for the entity.
func (s *Store) Fields(entityKey string) []string {
	var (
		seen   = map[string]bool{}
		fields []string
	)
	for _, l := range s.layersTopDown() {
		record := l.records[entityKey]
		if record == nil {
			continue
		}
		for field, entry := range record.Fields {
			if seen[field] {
				continue
			}
			seen[field] = true
			if !entry.IsTombstone() {
				fields = append(fields, field)
			}
		}
		if record.Deleted {
			break
		}
	}
	sort.Strings(fields)
	return fields
}

// HasEntity returns true if any field of the entity is visible.
func (s *Store) HasEntity(entityKey string) bool {
	return len(s.Fields(entityKey)) > 0
}

//===----------------------------------------------------------------------------------------====//
// Write
//===----------------------------------------------------------------------------------------====//

// layer returns the layer with the id or the base layer for an empty id. A missing optimistic layer
// is created on top of the stack.
func (s *Store) layer(layerID string) *layer {
	if len(layerID) == 0 {
		return s.base
	}
	if l := s.findLayer(layerID); l != nil {
		return l
	}
	l := newLayer(layerID)
	s.optimistic = append(s.optimistic, l)
	return l
}

func (s *Store) findLayer(layerID string) *layer {
	for _, l := range s.optimistic {
		if l.id == layerID {
			return l
		}
	}
	return nil
}

// WriteField stores an entry into the layer (the base layer when layerID is empty). A write that
// would change the field from a value to a link (or back) is refused with an ErrKindMixedShape
// error and leaves the store untouched.
func (s *Store) WriteField(entityKey string, fieldKey string, entry Entry, layerID string) error {
	if existing, ok := s.ReadField(entityKey, fieldKey); ok && !existing.Compatible(entry) {
		return NewMixedShapeError(entityKey, fieldKey, existing.Kind, entry.Kind)
	}
	s.writeIn(s.layer(layerID), entityKey, fieldKey, entry)
	return nil
}

// WriteValue is a shortcut of WriteField for scalar values.
func (s *Store) WriteValue(entityKey string, fieldKey string, value interface{}, layerID string) error {
	return s.WriteField(entityKey, fieldKey, Value(value), layerID)
}

// WriteLink is a shortcut of WriteField for links.
func (s *Store) WriteLink(entityKey string, fieldKey string, link Link, layerID string) error {
	return s.WriteField(entityKey, fieldKey, LinkEntry(link), layerID)
}

// DeleteField removes a field. In the base layer the field is dropped; in an optimistic layer a
// tombstone hides the field below.
func (s *Store) DeleteField(entityKey string, fieldKey string, layerID string) {
	l := s.layer(layerID)
	if l.isBase() {
		s.deleteBaseField(entityKey, fieldKey)
	} else {
		s.writeIn(l, entityKey, fieldKey, Tombstone)
	}
}

// DeleteEntity removes every field of an entity. In an optimistic layer the record is replaced by a
// deleted marker.
func (s *Store) DeleteEntity(entityKey string, layerID string) {
	l := s.layer(layerID)
	if l.isBase() {
		s.deleteBaseEntity(entityKey)
		return
	}
	record := newRecord()
	record.Deleted = true
	l.records[entityKey] = record
	l.log = append(l.log, layerWrite{entity: entityKey, deleteEntity: true})
}

func (s *Store) writeIn(l *layer, entityKey string, fieldKey string, entry Entry) {
	if l.isBase() && entry.IsTombstone() {
		s.deleteBaseField(entityKey, fieldKey)
		return
	}

	record := l.records[entityKey]
	if record == nil {
		record = newRecord()
		l.records[entityKey] = record
	}
	record.Fields[fieldKey] = entry

	if l.isBase() {
		s.recordChange(Change{Entity: entityKey, Field: fieldKey, Entry: entry})
	} else {
		l.log = append(l.log, layerWrite{entity: entityKey, field: fieldKey, entry: entry})
	}
}

func (s *Store) deleteBaseField(entityKey string, fieldKey string) {
	record := s.base.records[entityKey]
	if record == nil {
		return
	}
	if _, exists := record.Fields[fieldKey]; !exists {
		return
	}
	delete(record.Fields, fieldKey)
	if len(record.Fields) == 0 {
		delete(s.base.records, entityKey)
	}
	s.recordChange(Change{Entity: entityKey, Field: fieldKey, Deleted: true})
}

func (s *Store) deleteBaseEntity(entityKey string) {
	if _, exists := s.base.records[entityKey]; !exists {
		return
	}
	delete(s.base.records, entityKey)
	s.recordChange(Change{Entity: entityKey, Deleted: true})
}

//===----------------------------------------------------------------------------------------====//
// Layers
//===----------------------------------------------------------------------------------------====//

// CreateOptimisticLayer pushes an empty layer on top of the stack. An existing layer with the same
// id is discarded first.
func (s *Store) CreateOptimisticLayer(layerID string) {
	s.DiscardLayer(layerID)
	s.optimistic = append(s.optimistic, newLayer(layerID))
}

// DiscardLayer removes the layer and every write in it. It returns false if there was no such
// layer.
func (s *Store) DiscardLayer(layerID string) bool {
	for i, l := range s.optimistic {
		if l.id == layerID {
			s.optimistic = append(s.optimistic[:i], s.optimistic[i+1:]...)
			return true
		}
	}
	return false
}

// CommitLayer replays the writes of the layer, in write order, into the layer below it and removes
// it. It returns false if there was no such layer.
func (s *Store) CommitLayer(layerID string) bool {
	for i, l := range s.optimistic {
		if l.id != layerID {
			continue
		}

		target := s.base
		if i > 0 {
			target = s.optimistic[i-1]
		}

		for _, w := range l.log {
			switch {
			case w.deleteEntity && target.isBase():
				s.deleteBaseEntity(w.entity)
			case w.deleteEntity:
				record := newRecord()
				record.Deleted = true
				target.records[w.entity] = record
				target.log = append(target.log, w)
			default:
				s.writeIn(target, w.entity, w.field, w.entry)
			}
		}

		s.optimistic = append(s.optimistic[:i], s.optimistic[i+1:]...)
		return true
	}
	return false
}

// HasLayer returns true if an optimistic layer with the id exists.
func (s *Store) HasLayer(layerID string) bool {
	return s.findLayer(layerID) != nil
}

// Layers returns the ids of optimistic layers from bottom to top.
func (s *Store) Layers() []string {
	ids := make([]string, len(s.optimistic))
	for i, l := range s.optimistic {
		ids[i] = l.id
	}
	return ids
}

// LayerDependencies returns the dependency keys of every write in the layer, or an empty set if
// there is no such layer.
func (s *Store) LayerDependencies(layerID string) *deps.Set {
	set := deps.NewSet()
	l := s.findLayer(layerID)
	if l == nil {
		return set
	}
	for _, w := range l.log {
		if w.deleteEntity {
			set.Add(deps.Entity(w.entity))
		} else {
			set.Add(deps.Field(w.entity, w.field))
		}
	}
	return set
}

//===----------------------------------------------------------------------------------------====//
// Persistence
//===----------------------------------------------------------------------------------------====//

func (s *Store) recordChange(change Change) {
	if s.hydrating {
		return
	}

	if s.deltaIndex == nil {
		s.deltaIndex = map[fieldRef]int{}
	}

	// Only the last change to a field is kept. Changes after an entity deletion are appended behind
	// it.
	if len(change.Field) == 0 {
		for ref := range s.deltaIndex {
			if ref.entity == change.Entity {
				delete(s.deltaIndex, ref)
			}
		}
		s.delta = append(s.delta, change)
		return
	}

	ref := fieldRef{change.Entity, change.Field}
	if i, exists := s.deltaIndex[ref]; exists {
		s.delta[i] = change
		return
	}
	s.deltaIndex[ref] = len(s.delta)
	s.delta = append(s.delta, change)
}

// PendingChanges returns the number of base-layer changes not yet taken by TakeDelta.
func (s *Store) PendingChanges() int {
	return len(s.delta)
}

// TakeDelta returns the base-layer changes since the last call and clears them.
func (s *Store) TakeDelta() []Change {
	delta := s.delta
	s.delta = nil
	s.deltaIndex = nil
	return delta
}

// Requeue puts changes back in front of the pending ones, e.g. after a failed flush.
func (s *Store) Requeue(changes []Change) {
	pending := s.TakeDelta()
	for _, change := range changes {
		s.recordChange(change)
	}
	for _, change := range pending {
		s.recordChange(change)
	}
}

// Hydrate applies changes to the base layer without recording them as pending.
func (s *Store) Hydrate(changes []Change) {
	s.hydrating = true
	defer func() { s.hydrating = false }()

	for _, change := range changes {
		switch {
		case change.Deleted && len(change.Field) == 0:
			s.deleteBaseEntity(change.Entity)
		case change.Deleted:
			s.deleteBaseField(change.Entity, change.Field)
		default:
			s.writeIn(s.base, change.Entity, change.Field, change.Entry)
		}
	}
}

// Dump exports the base layer as entity key → field key → Entry.Interface.
func (s *Store) Dump() map[string]map[string]interface{} {
	dump := make(map[string]map[string]interface{}, len(s.base.records))
	for entityKey, record := range s.base.records {
		fields := make(map[string]interface{}, len(record.Fields))
		for fieldKey, entry := range record.Fields {
			fields[fieldKey] = entry.Interface()
		}
		dump[entityKey] = fields
	}
	return dump
}
