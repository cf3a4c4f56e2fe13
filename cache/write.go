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
	"sort"
	"strconv"

	"github.com/botobag/graphcache/cache/deps"
	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/cache/store"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
)

// WriteResult summarizes a write.
type WriteResult struct {
	// Keys of the entities written, sorted
	Touched []string

	// Typenames of the objects written, sorted
	Typenames []string

	// Dependency keys of the fields written
	Written *deps.Set

	Warnings graphql.Errors
}

func (o *operation) writeResult() *WriteResult {
	return &WriteResult{
		Touched:   sortedKeys(o.state.touched),
		Typenames: sortedKeys(o.state.typenames),
		Written:   o.state.written,
		Warnings:  o.state.warnings,
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	result := make([]string, 0, len(m))
	for key := range m {
		result = append(result, key)
	}
	sort.Strings(result)
	return result
}

func (o *operation) writeOperation(doc *Document, data map[string]interface{}) error {
	if doc.Operation() == nil {
		return graphql.NewError("Document has no operation to write.", graphql.ErrKindInvalidData, o.op)
	}
	rootKey := rootKeyOf(doc.OperationType())
	return o.writeSelection(rootKey, o.cache.rootTypenames[rootKey], doc.Operation().SelectionSet, data)
}

// writeSelection writes data for a selection set on an entity. Fields of the Mutation and
// Subscription roots are not stored but the objects they return are.
func (o *operation) writeSelection(entityKey string, typename string, selectionSet ast.SelectionSet, data map[string]interface{}) error {
	isRoot := isRootKey(entityKey)
	storeFields := !isRoot || entityKey == keys.QueryKey

	if !isRoot {
		o.writeEntry(entityKey, "__typename", store.Value(typename))
		o.state.typenames[typename] = true
	}

	return o.eachField(selectionSet, o.dataMatcher(typename, data), false, func(field *ast.Field, optional bool) error {
		fieldName := field.Name.Value
		if fieldName == "__typename" {
			return nil
		}

		defer o.leave(o.enterField(field.ResponseKey()))

		args := ast.ArgumentValues(field.Arguments, o.variables)
		fieldKey := keys.FieldKey(fieldName, args)

		value, exists := data[field.ResponseKey()]
		if !exists || keys.IsUndefined(value) {
			if !optional {
				o.warn(fmt.Sprintf(`Invalid undefined: field "%s" on "%s" is missing from the data.`, fieldKey, entityKey),
					graphql.ErrKindInvalidData)
			}
			return nil
		}

		if len(field.SelectionSet) == 0 {
			if storeFields {
				o.writeEntry(entityKey, fieldKey, store.Value(value))
			}
			return nil
		}

		link, ok := o.writeLink(keys.JoinKeys(entityKey, fieldKey), value, field.SelectionSet)
		if ok && storeFields {
			o.writeEntry(entityKey, fieldKey, store.LinkEntry(link))
		}
		return nil
	})
}

// writeLink writes the objects in value and returns the link to them. embeddedKey is the key given
// to an object without identity.
func (o *operation) writeLink(embeddedKey string, value interface{}, selectionSet ast.SelectionSet) (store.Link, bool) {
	switch value := value.(type) {
	case nil:
		return store.NullLink(), true

	case []interface{}:
		list := make([]store.Link, len(value))
		for i, item := range value {
			parent := o.enterIndex(i)
			link, ok := o.writeLink(embeddedKey+"."+strconv.Itoa(i), item, selectionSet)
			o.leave(parent)
			if !ok {
				link = store.NullLink()
			}
			list[i] = link
		}
		return store.ListLink(list...), true

	case map[string]interface{}:
		typename, _ := value["__typename"].(string)
		if len(typename) == 0 {
			o.warn(fmt.Sprintf(`Couldn't find __typename when writing "%s". Make sure __typename is selected on every object.`, embeddedKey),
				graphql.ErrKindInvalidData)
			return store.Link{}, false
		}

		key, identity := o.cache.resolver.Identify(typename, value)
		if identity != keys.Keyed {
			if identity == keys.Unkeyed {
				o.warn(fmt.Sprintf(`Invalid key: no key could be generated for "%s" of type "%s"; it is stored as "%s". Select its id or configure a key function.`,
					embeddedKey, typename, embeddedKey), graphql.ErrKindUnresolvedEntity)
			}
			key = embeddedKey
		}

		if err := o.writeSelection(key, typename, selectionSet, value); err != nil {
			return store.Link{}, false
		}
		return store.KeyLink(key), true
	}

	o.warn(fmt.Sprintf(`Invalid value for "%s": expected an object, a list or null but got %T.`, embeddedKey, value),
		graphql.ErrKindInvalidData)
	return store.Link{}, false
}
