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
	"sync"

	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/cache/store"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
)

// Operations of the cache, attached to errors and warnings.
const (
	opParse              graphql.Op = "cache.Parse"
	opReadQuery          graphql.Op = "cache.ReadQuery"
	opWriteQuery         graphql.Op = "cache.WriteQuery"
	opReadFragment       graphql.Op = "cache.ReadFragment"
	opWriteFragment      graphql.Op = "cache.WriteFragment"
	opUpdateQuery        graphql.Op = "cache.UpdateQuery"
	opProcessResult      graphql.Op = "cache.ProcessResult"
	opInvalidate         graphql.Op = "cache.Invalidate"
	opLink               graphql.Op = "cache.Link"
	opBeginOptimistic    graphql.Op = "cache.BeginOptimistic"
	opConfirmOptimistic  graphql.Op = "cache.ConfirmOptimistic"
	opRollbackOptimistic graphql.Op = "cache.RollbackOptimistic"
	opHydrate            graphql.Op = "cache.Hydrate"
	opPersist            graphql.Op = "cache.Persist"
)

// Cache is a normalized GraphQL cache. It is safe for concurrent use.
type Cache struct {
	config   Config
	logger   *slog.Logger
	resolver *keys.Resolver

	// rootTypenames maps the fixed root keys to the typenames of the root types.
	rootTypenames map[string]string

	// flushMutex serializes Hydrate and Persist so storage sees flushes in the order their changes
	// were taken.
	flushMutex sync.Mutex

	// mutex serializes every operation.
	mutex     sync.Mutex
	store     *store.Store
	documents DocumentCache

	// names maps an operation name to the key of the first document seen with it.
	names map[string]string
}

// New creates a Cache.
func New(config Config) *Cache {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rootTypenames := map[string]string{
		keys.QueryKey:        keys.QueryKey,
		keys.MutationKey:     keys.MutationKey,
		keys.SubscriptionKey: keys.SubscriptionKey,
	}
	var roots keys.RootTypes
	if s := config.Schema; s != nil {
		roots = keys.RootTypes{
			Query:        s.QueryType(),
			Mutation:     s.MutationType(),
			Subscription: s.SubscriptionType(),
		}
		for key, name := range map[string]string{
			keys.QueryKey:        roots.Query,
			keys.MutationKey:     roots.Mutation,
			keys.SubscriptionKey: roots.Subscription,
		} {
			if len(name) > 0 {
				rootTypenames[key] = name
			}
		}
	}

	size := config.DocumentCacheSize
	if size == 0 {
		size = defaultDocumentCacheSize
	}
	documents, _ := NewLRUDocumentCache(size)

	return &Cache{
		config:        config,
		logger:        logger,
		resolver:      keys.NewResolver(config.Keys, roots),
		rootTypenames: rootTypenames,
		store:         store.New(),
		documents:     documents,
		names:         map[string]string{},
	}
}

// rootKeyOf returns the fixed key of the root record of an operation type.
func rootKeyOf(operationType ast.OperationType) string {
	switch operationType {
	case ast.OperationTypeMutation:
		return keys.MutationKey
	case ast.OperationTypeSubscription:
		return keys.SubscriptionKey
	}
	return keys.QueryKey
}

func isRootKey(entityKey string) bool {
	return entityKey == keys.QueryKey || entityKey == keys.MutationKey || entityKey == keys.SubscriptionKey
}

// warn logs a recoverable condition.
func (c *Cache) warn(err *graphql.Error) {
	attrs := []any{
		slog.Int("code", err.Kind.Code()),
		slog.String("kind", err.Kind.String()),
		slog.String("op", string(err.Op)),
	}
	if !err.Path.Empty() {
		attrs = append(attrs, slog.String("path", err.Path.String()))
	}
	c.logger.Warn(err.Message, attrs...)
}

// checkDocument warns when two different documents share an operation name.
func (c *Cache) checkDocument(doc *Document) *graphql.Error {
	name := doc.Name()
	if len(name) == 0 {
		return nil
	}
	key, seen := c.names[name]
	if !seen {
		c.names[name] = doc.Key()
		return nil
	}
	if key == doc.Key() {
		return nil
	}
	err := graphql.NewError(`Operation name "`+name+`" is used by documents of different shapes.`,
		graphql.ErrKindInvalidData, opParse).(*graphql.Error)
	c.warn(err)
	return err
}

// Parse parses a document, reusing the result for a source seen recently.
func (c *Cache) Parse(source string) (*Document, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if doc, ok := c.documents.Get(source); ok {
		return doc, nil
	}

	doc, err := ParseDocument(source)
	if err != nil {
		return nil, graphql.NewError("Failed to parse document.", err, opParse)
	}
	c.checkDocument(doc)
	c.documents.Add(source, doc)
	return doc, nil
}

// Resolver returns the key resolver configured for the cache.
func (c *Cache) Resolver() *keys.Resolver {
	return c.resolver
}

// Forget removes a query from the dependency index. Call it when no one observes the query anymore.
func (c *Cache) Forget(queryKey string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store.Forget(queryKey)
}

// Queries returns the keys of the queries in the dependency index.
func (c *Cache) Queries() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.Queries()
}

// Entities returns an iterator over the keys of entities in the cache.
func (c *Cache) Entities() *store.EntityIterator {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.Entities()
}

// Snapshot exports the base layer as entity key → field key → value, where links appear as entity
// keys (or lists of them). Optimistic layers are not included.
func (c *Cache) Snapshot() map[string]map[string]interface{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.Dump()
}

// Reset drops every record, optimistic layer and dependency.
func (c *Cache) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store.Reset()
}
