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
	"fmt"
	"strings"

	"github.com/botobag/graphcache/cache/deps"
	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/cache/store"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
)

// FieldInfo describes a field stored on an entity.
type FieldInfo struct {
	FieldKey  string
	FieldName string
	Arguments map[string]interface{}
}

// Accessor is the API given to resolvers, updaters and optimistic resolvers. It works inside the
// operation that invoked the callback: reads are recorded as its dependencies and writes go into
// its layer.
//
// Entities are given either as an entity key string or as an object with __typename and the fields
// its key is computed from.
type Accessor interface {
	// KeyOfEntity computes the entity key.
	KeyOfEntity(entity interface{}) (string, bool)

	// KeyOfField computes a field key.
	KeyOfField(fieldName string, args map[string]interface{}) string

	// Resolve reads a field of an entity. Links are returned as entity keys, nil or lists of those.
	Resolve(entity interface{}, fieldName string, args map[string]interface{}) (interface{}, bool)

	// InspectFields lists the fields stored on an entity.
	InspectFields(entity interface{}) []FieldInfo

	// Invalidate removes a field of an entity, or the whole entity when fieldName is empty.
	// fieldName may also be a field key returned from InspectFields.
	Invalidate(entity interface{}, fieldName string, args map[string]interface{})

	// Link writes a link: nil, an entity key, an entity object, or a list of those.
	Link(entity interface{}, fieldName string, args map[string]interface{}, link interface{}) error

	// ReadQuery reads a query. Data is nil when the cache cannot answer it.
	ReadQuery(req Request) (map[string]interface{}, error)

	// UpdateQuery reads a query, passes the data (nil when not cached) to fn and writes back what fn
	// returns. Returning nil writes nothing.
	UpdateQuery(req Request, fn func(data map[string]interface{}) (map[string]interface{}, error)) error

	// ReadFragment reads a fragment of an entity. fragmentName may be empty when the document has a
	// single fragment.
	ReadFragment(fragment *Document, entity interface{}, variables map[string]interface{}, fragmentName string) (map[string]interface{}, error)

	// WriteFragment writes data through a fragment.
	WriteFragment(fragment *Document, data map[string]interface{}, variables map[string]interface{}, fragmentName string) error
}

// writeState is shared by an operation and the nested operations started from its callbacks.
type writeState struct {
	written   *deps.Set
	touched   map[string]bool
	typenames map[string]bool
	warnings  graphql.Errors
}

// operation carries the state of one read or write walk.
type operation struct {
	cache *Cache
	store *store.Store
	op    graphql.Op

	variables map[string]interface{}
	fragments map[string]*ast.FragmentDefinition

	// Writes go to this layer; empty for the base layer.
	layerID    string
	optimistic bool

	// Fields read so far, including those read by callbacks
	dependencies *deps.Set
	partial      bool

	// path locates the field being walked in the response.
	path graphql.ResponsePath

	state *writeState
}

var _ Accessor = (*operation)(nil)

func (c *Cache) newOperation(op graphql.Op, doc *Document, variables map[string]interface{}) *operation {
	o := &operation{
		cache:        c,
		store:        c.store,
		op:           op,
		dependencies: deps.NewSet(),
		state: &writeState{
			written:   deps.NewSet(),
			touched:   map[string]bool{},
			typenames: map[string]bool{},
		},
	}
	if doc != nil {
		o.variables = variablesWithDefaults(doc.Operation(), variables)
		o.fragments = doc.Fragments()
	} else {
		o.variables = variables
	}
	return o
}

// child starts a nested operation for another document. It shares the layer, the dependencies and
// the write state of o.
func (o *operation) child(doc *Document, variables map[string]interface{}) *operation {
	return &operation{
		cache:        o.cache,
		store:        o.store,
		op:           o.op,
		variables:    variablesWithDefaults(doc.Operation(), variables),
		fragments:    doc.Fragments(),
		layerID:      o.layerID,
		optimistic:   o.optimistic,
		dependencies: o.dependencies,
		state:        o.state,
	}
}

// enterField appends a response key to the path and returns the previous path for leave.
func (o *operation) enterField(responseKey string) graphql.ResponsePath {
	parent := o.path
	o.path = parent.WithFieldName(responseKey)
	return parent
}

// enterIndex appends a list index to the path and returns the previous path for leave.
func (o *operation) enterIndex(index int) graphql.ResponsePath {
	parent := o.path
	o.path = parent.WithIndex(index)
	return parent
}

func (o *operation) leave(parent graphql.ResponsePath) {
	o.path = parent
}

func (o *operation) warn(message string, kind graphql.ErrKind) {
	o.warnError(graphql.NewError(message, kind, o.op, o.path))
}

func (o *operation) warnError(err error) {
	e, ok := err.(*graphql.Error)
	if !ok {
		e = graphql.NewError(err.Error(), err, graphql.ErrKindInternal, o.op, o.path).(*graphql.Error)
	} else {
		if len(e.Op) == 0 {
			e.Op = o.op
		}
		if e.Path.Empty() {
			e.Path = o.path
		}
	}
	o.state.warnings.Append(e)
	o.cache.warn(e)
}

func (o *operation) callbackError(err error, kind string, typename string, fieldName string) error {
	return graphql.NewError(fmt.Sprintf(`%s for "%s.%s" failed.`, kind, typename, fieldName),
		err, graphql.ErrKindCallback, o.op, o.path)
}

func (o *operation) info(parentTypename string, parentKey string, fieldKey string, fieldName string) *ResolveInfo {
	return &ResolveInfo{
		ParentTypename: parentTypename,
		ParentKey:      parentKey,
		ParentFieldKey: fieldKey,
		FieldName:      fieldName,
		Variables:      o.variables,
		Fragments:      o.fragments,
		Partial:        o.partial,
		Optimistic:     o.optimistic,
	}
}

// writeEntry writes into the operation's layer and records the write.
func (o *operation) writeEntry(entityKey string, fieldKey string, entry store.Entry) bool {
	if err := o.store.WriteField(entityKey, fieldKey, entry, o.layerID); err != nil {
		o.warnError(err)
		return false
	}
	o.state.written.Add(deps.Field(entityKey, fieldKey))
	o.state.touched[entityKey] = true
	return true
}

//===----------------------------------------------------------------------------------------====//
// Accessor
//===----------------------------------------------------------------------------------------====//

// KeyOfEntity implements Accessor.
func (o *operation) KeyOfEntity(entity interface{}) (string, bool) {
	switch entity := entity.(type) {
	case string:
		return entity, len(entity) > 0
	case map[string]interface{}:
		typename, _ := entity["__typename"].(string)
		return o.cache.resolver.Key(typename, entity)
	}
	return "", false
}

// KeyOfField implements Accessor.
func (o *operation) KeyOfField(fieldName string, args map[string]interface{}) string {
	return keys.FieldKey(fieldName, args)
}

// fieldKeyOf accepts either a field name with arguments or a complete field key.
func fieldKeyOf(fieldName string, args map[string]interface{}) string {
	if len(args) == 0 && strings.IndexByte(fieldName, '(') >= 0 {
		return fieldName
	}
	return keys.FieldKey(fieldName, args)
}

// Resolve implements Accessor.
func (o *operation) Resolve(entity interface{}, fieldName string, args map[string]interface{}) (interface{}, bool) {
	entityKey, ok := o.KeyOfEntity(entity)
	if !ok {
		return nil, false
	}
	fieldKey := fieldKeyOf(fieldName, args)
	o.dependencies.Add(deps.Entity(entityKey))
	o.dependencies.Add(deps.Field(entityKey, fieldKey))

	entry, ok := o.store.ReadField(entityKey, fieldKey)
	if !ok {
		return nil, false
	}
	return entry.Interface(), true
}

// InspectFields implements Accessor.
func (o *operation) InspectFields(entity interface{}) []FieldInfo {
	entityKey, ok := o.KeyOfEntity(entity)
	if !ok {
		return nil
	}
	return inspectFields(o.store, entityKey)
}

func inspectFields(s *store.Store, entityKey string) []FieldInfo {
	var infos []FieldInfo
	for _, fieldKey := range s.Fields(entityKey) {
		name, args, err := keys.ParseFieldKey(fieldKey)
		if err != nil || name == "__typename" {
			continue
		}
		infos = append(infos, FieldInfo{
			FieldKey:  fieldKey,
			FieldName: name,
			Arguments: args,
		})
	}
	return infos
}

// Invalidate implements Accessor.
func (o *operation) Invalidate(entity interface{}, fieldName string, args map[string]interface{}) {
	entityKey, ok := o.KeyOfEntity(entity)
	if !ok {
		o.warn("Can't invalidate an entity without key.", graphql.ErrKindInvalidData)
		return
	}

	if len(fieldName) == 0 {
		// Readers of a root record only depend on its fields.
		for _, fieldKey := range o.store.Fields(entityKey) {
			o.state.written.Add(deps.Field(entityKey, fieldKey))
		}
		o.store.DeleteEntity(entityKey, o.layerID)
		o.state.written.Add(deps.Entity(entityKey))
	} else {
		fieldKey := fieldKeyOf(fieldName, args)
		o.store.DeleteField(entityKey, fieldKey, o.layerID)
		o.state.written.Add(deps.Field(entityKey, fieldKey))
	}
	o.state.touched[entityKey] = true
}

// Link implements Accessor.
func (o *operation) Link(entity interface{}, fieldName string, args map[string]interface{}, link interface{}) error {
	entityKey, ok := o.KeyOfEntity(entity)
	if !ok {
		return graphql.NewError("Can't write a link on an entity without key.", graphql.ErrKindInvalidData, o.op)
	}

	l, ok := o.linkOf(link)
	if !ok {
		return graphql.NewError(fmt.Sprintf("Can't write %T as a link.", link), graphql.ErrKindInvalidData, o.op)
	}

	fieldKey := fieldKeyOf(fieldName, args)
	if err := o.store.WriteField(entityKey, fieldKey, store.LinkEntry(l), o.layerID); err != nil {
		return err
	}
	o.state.written.Add(deps.Field(entityKey, fieldKey))
	o.state.touched[entityKey] = true
	return nil
}

// linkOf converts link values given by callbacks, which may include entity objects.
func (o *operation) linkOf(v interface{}) (store.Link, bool) {
	switch v := v.(type) {
	case map[string]interface{}:
		key, ok := o.KeyOfEntity(v)
		if !ok {
			return store.Link{}, false
		}
		return store.KeyLink(key), true
	case []interface{}:
		list := make([]store.Link, len(v))
		for i, item := range v {
			link, ok := o.linkOf(item)
			if !ok {
				return store.Link{}, false
			}
			list[i] = link
		}
		return store.ListLink(list...), true
	}
	return store.LinkOf(v)
}

// ReadQuery implements Accessor.
func (o *operation) ReadQuery(req Request) (map[string]interface{}, error) {
	result, err := o.child(req.Document, req.Variables).readOperation(req.Document)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// UpdateQuery implements Accessor.
func (o *operation) UpdateQuery(req Request, fn func(data map[string]interface{}) (map[string]interface{}, error)) error {
	doc := req.Document
	if doc.Operation() == nil {
		return graphql.NewError("Document has no operation to update.", graphql.ErrKindInvalidData, o.op)
	}

	child := o.child(doc, req.Variables)
	result, err := child.readOperation(doc)
	if err != nil {
		return err
	}

	next, err := fn(result.Data)
	if err != nil {
		return graphql.NewError("UpdateQuery function failed.", err, graphql.ErrKindCallback, o.op)
	}
	if next == nil {
		return nil
	}

	rootKey := rootKeyOf(doc.OperationType())
	return child.writeSelection(rootKey, o.cache.rootTypenames[rootKey], doc.Operation().SelectionSet, next)
}

// fragmentOf picks the fragment to read or write.
func (o *operation) fragmentOf(doc *Document, fragmentName string) (*ast.FragmentDefinition, error) {
	fragments := doc.Fragments()
	if len(fragmentName) == 0 {
		if len(fragments) != 1 {
			return nil, graphql.NewError(
				fmt.Sprintf("Expected one fragment in the document but found %d; pass the name of the fragment to use.", len(fragments)),
				graphql.ErrKindInvalidData, o.op)
		}
		for _, fragment := range fragments {
			return fragment, nil
		}
	}

	fragment, ok := fragments[fragmentName]
	if !ok {
		names := make([]string, 0, len(fragments))
		for name := range fragments {
			names = append(names, name)
		}
		return nil, graphql.NewError(
			fmt.Sprintf(`Unknown fragment "%s".%s`, fragmentName, didYouMean(fragmentName, names)),
			graphql.ErrKindInvalidData, o.op)
	}
	return fragment, nil
}

// ReadFragment implements Accessor.
func (o *operation) ReadFragment(doc *Document, entity interface{}, variables map[string]interface{}, fragmentName string) (map[string]interface{}, error) {
	result, err := o.child(doc, variables).readFragment(doc, entity, fragmentName)
	if err != nil || result == nil {
		return nil, err
	}
	return result.Data, nil
}

// WriteFragment implements Accessor.
func (o *operation) WriteFragment(doc *Document, data map[string]interface{}, variables map[string]interface{}, fragmentName string) error {
	return o.child(doc, variables).writeFragment(doc, data, fragmentName)
}

func (o *operation) writeFragment(doc *Document, data map[string]interface{}, fragmentName string) error {
	fragment, err := o.fragmentOf(doc, fragmentName)
	if err != nil {
		return err
	}

	typename, _ := data["__typename"].(string)
	if len(typename) == 0 {
		typename = fragment.TypeCondition.Name.Value
	}

	entityKey, ok := o.cache.resolver.Key(typename, data)
	if !ok {
		o.warn(fmt.Sprintf(`Can't generate a key for writing fragment "%s" of type "%s". Make sure the data contains the fields the key is computed from.`,
			fragment.Name.Value, typename), graphql.ErrKindInvalidData)
		return nil
	}

	return o.writeSelection(entityKey, typename, fragment.SelectionSet, data)
}
