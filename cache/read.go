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

	"github.com/botobag/graphcache/cache/deps"
	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/cache/store"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
)

// Result is the outcome of reading a query or a fragment from the cache.
type Result struct {
	// Data is nil when the cache cannot answer the selection.
	Data map[string]interface{}

	// Complete is true when every selected field was found.
	Complete bool

	// Partial is true when some nullable fields were missing and have been set to nil. It requires a
	// schema.
	Partial bool

	// Dependencies records every field consulted, hit or miss.
	Dependencies *deps.Set

	Warnings graphql.Errors
}

func (o *operation) result(data map[string]interface{}, ok bool) *Result {
	result := &Result{
		Dependencies: o.dependencies,
		Warnings:     o.state.warnings,
	}
	if ok {
		result.Data = data
		result.Complete = !o.partial
		result.Partial = o.partial
	}
	return result
}

func (o *operation) readOperation(doc *Document) (*Result, error) {
	if doc.Operation() == nil {
		return nil, graphql.NewError("Document has no operation to read.", graphql.ErrKindInvalidData, o.op)
	}
	rootKey := rootKeyOf(doc.OperationType())
	data, ok, err := o.readSelection(rootKey, o.cache.rootTypenames[rootKey], doc.Operation().SelectionSet)
	if err != nil {
		return nil, err
	}
	return o.result(data, ok), nil
}

func (o *operation) readFragment(doc *Document, entity interface{}, fragmentName string) (*Result, error) {
	fragment, err := o.fragmentOf(doc, fragmentName)
	if err != nil {
		return nil, err
	}

	entityKey, ok := o.KeyOfEntity(entity)
	if !ok {
		o.warn(fmt.Sprintf(`Can't generate a key for reading fragment "%s".`, fragment.Name.Value), graphql.ErrKindInvalidData)
		return o.result(nil, false), nil
	}

	typename := o.typenameOf(entityKey)
	if len(typename) == 0 {
		o.dependencies.Add(deps.Entity(entityKey))
		return o.result(nil, false), nil
	}
	if !o.readMatcher(entityKey, typename)(fragment.TypeCondition.Name.Value, fragment.SelectionSet) {
		return o.result(nil, false), nil
	}

	data, ok, err := o.readSelection(entityKey, typename, fragment.SelectionSet)
	if err != nil {
		return nil, err
	}
	return o.result(data, ok), nil
}

// typenameOf returns the typename stored for an entity, or the root typename for root keys.
func (o *operation) typenameOf(entityKey string) string {
	if typename, ok := o.cache.rootTypenames[entityKey]; ok {
		return typename
	}
	typename, _ := o.store.ReadValue(entityKey, "__typename")
	s, _ := typename.(string)
	return s
}

func (o *operation) isNullable(typename string, fieldName string) bool {
	s := o.cache.config.Schema
	return s != nil && s.IsFieldNullable(typename, fieldName)
}

func (o *operation) isListNullable(typename string, fieldName string) bool {
	s := o.cache.config.Schema
	return s != nil && s.IsListNullable(typename, fieldName)
}

// readSelection reads the selection set on an entity. It returns false when a required field is
// missing.
func (o *operation) readSelection(entityKey string, typename string, selectionSet ast.SelectionSet) (map[string]interface{}, bool, error) {
	if !isRootKey(entityKey) {
		o.dependencies.Add(deps.Entity(entityKey))
		o.dependencies.Add(deps.Typename(typename))
	}

	var (
		data       = map[string]interface{}{}
		hasMissing = false
	)

	err := o.eachField(selectionSet, o.readMatcher(entityKey, typename), false, func(field *ast.Field, optional bool) error {
		responseKey := field.ResponseKey()
		fieldName := field.Name.Value
		if fieldName == "__typename" {
			data[responseKey] = typename
			return nil
		}

		defer o.leave(o.enterField(responseKey))

		args := ast.ArgumentValues(field.Arguments, o.variables)
		fieldKey := keys.FieldKey(fieldName, args)
		o.dependencies.Add(deps.Field(entityKey, fieldKey))

		value, found, err := o.readField(data, entityKey, typename, field, fieldKey, args)
		if err != nil {
			return err
		}

		if !found {
			if o.isNullable(typename, fieldName) {
				o.partial = true
				if _, exists := data[responseKey]; !exists {
					data[responseKey] = nil
				}
			} else {
				hasMissing = true
			}
			return nil
		}

		data[responseKey] = mergeData(data[responseKey], value)
		return nil
	})

	if err != nil {
		return nil, false, err
	}
	if hasMissing {
		return nil, false, nil
	}
	return data, true, nil
}

func (o *operation) readField(
	parent map[string]interface{},
	entityKey string,
	typename string,
	field *ast.Field,
	fieldKey string,
	args map[string]interface{}) (interface{}, bool, error) {

	fieldName := field.Name.Value
	if resolver := o.cache.config.Resolvers[typename][fieldName]; resolver != nil {
		value, err := resolver(parent, args, o, o.info(typename, entityKey, fieldKey, fieldName))
		if err != nil {
			return nil, false, o.callbackError(err, "Resolver", typename, fieldName)
		}
		if keys.IsUndefined(value) {
			return nil, false, nil
		}
		if len(field.SelectionSet) == 0 {
			return value, true, nil
		}
		return o.readValue(value, typename, fieldName, field.SelectionSet)
	}

	entry, ok := o.store.ReadField(entityKey, fieldKey)
	if !ok {
		return nil, false, nil
	}

	if len(field.SelectionSet) == 0 {
		if entry.Kind != store.EntryValue {
			o.warnMixedShape(entityKey, fieldKey, "a scalar", "a link")
			return nil, false, nil
		}
		return entry.Value, true, nil
	}

	if entry.Kind != store.EntryLink {
		if entry.Value == nil {
			return nil, true, nil
		}
		o.warnMixedShape(entityKey, fieldKey, "a link", "a scalar")
		return nil, false, nil
	}
	return o.readLink(entry.Link, typename, fieldName, field.SelectionSet)
}

func (o *operation) warnMixedShape(entityKey string, fieldKey string, expected string, stored string) {
	o.warn(fmt.Sprintf(`Field "%s" on "%s" is selected as %s but stored as %s.`, fieldKey, entityKey, expected, stored),
		graphql.ErrKindMixedShape)
}

// readLink follows a link. parentTypename and fieldName locate the field for nullability checks.
func (o *operation) readLink(link store.Link, parentTypename string, fieldName string, selectionSet ast.SelectionSet) (interface{}, bool, error) {
	switch link.Kind {
	case store.LinkNull:
		return nil, true, nil

	case store.LinkKey:
		typename := o.typenameOf(link.Key)
		if len(typename) == 0 {
			o.dependencies.Add(deps.Entity(link.Key))
			return nil, false, nil
		}
		data, ok, err := o.readSelection(link.Key, typename, selectionSet)
		if err != nil || !ok {
			return nil, false, err
		}
		return data, true, nil

	case store.LinkList:
		list := make([]interface{}, len(link.List))
		for i, item := range link.List {
			parent := o.enterIndex(i)
			value, ok, err := o.readLink(item, parentTypename, fieldName, selectionSet)
			o.leave(parent)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				if !o.isListNullable(parentTypename, fieldName) {
					return nil, false, nil
				}
				o.partial = true
			}
			list[i] = value
		}
		return list, true, nil
	}

	return nil, false, nil
}

// readValue reads the selection set on a value returned by a resolver.
func (o *operation) readValue(value interface{}, parentTypename string, fieldName string, selectionSet ast.SelectionSet) (interface{}, bool, error) {
	switch value := value.(type) {
	case nil:
		return nil, true, nil

	case store.Link:
		return o.readLink(value, parentTypename, fieldName, selectionSet)

	case string:
		return o.readLink(store.KeyLink(value), parentTypename, fieldName, selectionSet)

	case []string:
		link, _ := store.LinkOf(value)
		return o.readLink(link, parentTypename, fieldName, selectionSet)

	case []interface{}:
		list := make([]interface{}, len(value))
		for i, item := range value {
			parent := o.enterIndex(i)
			v, ok, err := o.readValue(item, parentTypename, fieldName, selectionSet)
			o.leave(parent)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				if keys.IsUndefined(item) || !o.isListNullable(parentTypename, fieldName) {
					return nil, false, nil
				}
				o.partial = true
			}
			list[i] = v
		}
		return list, true, nil

	case map[string]interface{}:
		if key, ok := o.KeyOfEntity(value); ok && o.store.HasEntity(key) {
			return o.readLink(store.KeyLink(key), parentTypename, fieldName, selectionSet)
		}
		data, ok, err := o.readObject(value, selectionSet)
		if err != nil || !ok {
			return nil, false, err
		}
		return data, true, nil
	}

	if keys.IsUndefined(value) {
		return nil, false, nil
	}
	o.warn(fmt.Sprintf(`Resolver for "%s.%s" returned %T for a field with a selection set.`, parentTypename, fieldName, value),
		graphql.ErrKindInvalidData)
	return nil, false, nil
}

// readObject reads a selection set from an object that is not in the store, such as an object
// built by a resolver.
func (o *operation) readObject(object map[string]interface{}, selectionSet ast.SelectionSet) (map[string]interface{}, bool, error) {
	typename, _ := object["__typename"].(string)

	var (
		data       = map[string]interface{}{}
		hasMissing = false
	)

	err := o.eachField(selectionSet, o.dataMatcher(typename, object), false, func(field *ast.Field, optional bool) error {
		responseKey := field.ResponseKey()
		fieldName := field.Name.Value
		if fieldName == "__typename" {
			data[responseKey] = typename
			return nil
		}

		defer o.leave(o.enterField(responseKey))

		value, exists := object[fieldName]
		if !exists {
			value, exists = object[responseKey]
		}
		if !exists || keys.IsUndefined(value) {
			if o.isNullable(typename, fieldName) {
				o.partial = true
				data[responseKey] = nil
			} else {
				hasMissing = true
			}
			return nil
		}

		if len(field.SelectionSet) == 0 {
			data[responseKey] = value
			return nil
		}

		v, ok, err := o.readValue(value, typename, fieldName, field.SelectionSet)
		if err != nil {
			return err
		}
		if !ok {
			hasMissing = true
			return nil
		}
		data[responseKey] = mergeData(data[responseKey], v)
		return nil
	})

	if err != nil || hasMissing {
		return nil, false, err
	}
	return data, true, nil
}
