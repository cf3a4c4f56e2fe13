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
	"log/slog"

	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/graphql/ast"
	"github.com/botobag/graphcache/graphql/schema"
	"github.com/botobag/graphcache/storage"
)

// Resolver computes a field from cached data instead of the plain store lookup. parent is the data
// read so far for the parent selection. Returning keys.Undefined reports a cache miss.
//
// For a field with a selection set the result may be an entity key, an object (identifiable or
// not), nil, or a list of those.
type Resolver func(parent map[string]interface{}, args map[string]interface{}, cache Accessor, info *ResolveInfo) (interface{}, error)

// Updater runs after a mutation or subscription result with that root field was written. result is
// the whole response data.
type Updater func(result map[string]interface{}, args map[string]interface{}, cache Accessor, info *ResolveInfo) error

// OptimisticResolver guesses the result of a mutation field before the server answers.
type OptimisticResolver func(args map[string]interface{}, cache Accessor, info *ResolveInfo) (interface{}, error)

// ResolveInfo describes the field for which a callback is invoked.
type ResolveInfo struct {
	// Typename and key of the record that holds the field
	ParentTypename string
	ParentKey      string

	// The field key of the field on its parent record
	ParentFieldKey string

	FieldName string

	// Variables of the operation with defaults applied
	Variables map[string]interface{}

	// Fragments declared in the document being processed
	Fragments map[string]*ast.FragmentDefinition

	// Partial is set during a read once a nullable field was found missing.
	Partial bool

	// Optimistic is set when writing the result of optimistic resolvers.
	Optimistic bool
}

// Config configures a Cache. All fields are optional.
type Config struct {
	// Keys overrides how entities of a type are identified.
	Keys map[string]keys.KeyFunc

	// Resolvers maps a typename and a field name to a resolver.
	Resolvers map[string]map[string]Resolver

	// Updaters maps a root typename (the mutation or subscription type) and a field name to an
	// updater.
	Updaters map[string]map[string]Updater

	// Optimistic maps a mutation field name to an optimistic resolver.
	Optimistic map[string]OptimisticResolver

	// Schema enables exact fragment matching on abstract types and partial results for nullable
	// fields. Without it the cache guesses from the fields present.
	Schema *schema.Schema

	// Storage persists the base layer. Nil keeps the cache in memory only.
	Storage storage.Adapter

	// Logger receives warnings. Defaults to slog.Default().
	Logger *slog.Logger

	// ExactInvalidation confirms dependents found through the hashed dependency field against the
	// exact dependency keys, dropping hash collisions.
	ExactInvalidation bool

	// DocumentCacheSize is the number of parsed documents kept by Cache.Parse. Defaults to 128.
	DocumentCacheSize uint
}

const defaultDocumentCacheSize = 128
