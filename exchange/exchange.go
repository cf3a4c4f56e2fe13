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

// Package exchange sits between a GraphQL client and the network. Queries are answered from the
// normalized cache according to their request policy. Network results are written to the cache and
// the active queries they change are delivered again.
package exchange

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/botobag/graphcache/cache"
)

const tracerName = "github.com/botobag/graphcache/exchange"

// Config configures an Exchange.
type Config struct {
	// Defaults to the global provider which does nothing unless the application installs one.
	TracerProvider trace.TracerProvider

	Logger *slog.Logger
}

// Exchange connects operations to a cache. It is safe for concurrent use.
type Exchange struct {
	cache  *cache.Cache
	tracer trace.Tracer
	logger *slog.Logger

	mutex sync.Mutex

	// Queries being watched by a client, by operation key
	active map[string]Operation

	// Mutations sent to the network and not answered yet, by operation key
	pending map[string]Operation
}

// New creates an Exchange over the cache.
func New(c *cache.Cache, config Config) *Exchange {
	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(tracerName)
	} else {
		tracer = otel.Tracer(tracerName)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Exchange{
		cache:   c,
		tracer:  tracer,
		logger:  logger,
		active:  map[string]Operation{},
		pending: map[string]Operation{},
	}
}

// Cache returns the cache behind the exchange.
func (e *Exchange) Cache() *cache.Cache {
	return e.cache
}

func (e *Exchange) start(ctx context.Context, name string, op Operation) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("graphql.operation.key", op.Key),
		attribute.String("graphql.operation.kind", op.Kind.String()),
		attribute.String("graphcache.policy", op.Policy.String()),
	))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Execute dispatches the operation on its kind.
func (e *Exchange) Execute(ctx context.Context, op Operation) (*Reaction, error) {
	if op.Kind == KindMutation {
		return e.Mutate(ctx, op)
	}
	return e.Query(ctx, op)
}

// Query starts watching a query and decides whether the cache answers it or the network must be
// consulted. Subscriptions are watched and always forwarded.
func (e *Exchange) Query(ctx context.Context, op Operation) (*Reaction, error) {
	_, span := e.start(ctx, "exchange.Query", op)
	defer span.End()

	e.mutex.Lock()
	e.active[op.Key] = op
	e.mutex.Unlock()

	reaction := &Reaction{}
	if op.Kind == KindSubscription || op.Policy == NetworkOnly {
		reaction.forward(op)
		return reaction, nil
	}

	result, err := e.cache.ReadQuery(op.Request)
	if err != nil {
		return nil, fail(span, err)
	}

	outcome := outcomeOf(result)
	span.SetAttributes(attribute.String("graphcache.outcome", outcome.String()))
	e.logger.Debug("query read from cache", "operation", op.Key, "outcome", outcome.String(), "policy", op.Policy.String())

	switch {
	case op.Policy == CacheOnly:
		reaction.emit(OperationResult{
			Operation:    op,
			Data:         result.Data,
			CacheOutcome: outcome,
		})

	case outcome == CacheMiss:
		reaction.forward(op)

	default:
		refresh := outcome == CachePartial || op.Policy == CacheAndNetwork
		reaction.emit(OperationResult{
			Operation:    op,
			Data:         result.Data,
			Stale:        refresh,
			CacheOutcome: outcome,
		})
		if refresh {
			reaction.forward(op.withPolicy(NetworkOnly))
		}
	}
	return reaction, nil
}

func outcomeOf(result *cache.Result) CacheOutcome {
	switch {
	case result.Data == nil:
		return CacheMiss
	case result.Partial || !result.Complete:
		return CachePartial
	}
	return CacheHit
}

// Mutate applies the optimistic update of a mutation and forwards it. The reaction carries the
// active queries that observe the optimistic writes.
func (e *Exchange) Mutate(ctx context.Context, op Operation) (*Reaction, error) {
	_, span := e.start(ctx, "exchange.Mutate", op)
	defer span.End()

	outcome, err := e.cache.BeginOptimistic(op.cacheOperation())
	if err != nil {
		return nil, fail(span, err)
	}

	e.mutex.Lock()
	e.pending[op.Key] = op
	e.mutex.Unlock()

	reaction := &Reaction{}
	span.SetAttributes(attribute.Int("graphcache.dependents", len(outcome.Dependents)))
	if err := e.reemit(reaction, outcome.Dependents, op.Key); err != nil {
		return nil, fail(span, err)
	}
	reaction.forward(op)
	return reaction, nil
}

// Receive handles a result from the network. The result itself is delivered first, followed by the
// active queries whose data changed. Queries that can no longer be answered from the cache are
// forwarded again.
func (e *Exchange) Receive(ctx context.Context, result OperationResult) (*Reaction, error) {
	op := result.Operation
	_, span := e.start(ctx, "exchange.Receive", op)
	defer span.End()

	reaction := &Reaction{}

	if op.Kind == KindMutation {
		e.mutex.Lock()
		delete(e.pending, op.Key)
		e.mutex.Unlock()
	}

	if result.Data == nil {
		// Nothing to write. A failed mutation takes its guess back.
		var dependents []string
		if op.Kind == KindMutation {
			dependents = e.cache.RollbackOptimistic(op.cacheOperation())
		}
		if result.Error != nil {
			span.RecordError(result.Error)
		}
		reaction.emit(result)
		if err := e.reemit(reaction, dependents, op.Key); err != nil {
			return nil, fail(span, err)
		}
		return reaction, nil
	}

	var (
		outcome *cache.Outcome
		err     error
	)
	if op.Kind == KindMutation && e.cache.HasOptimisticLayer(op.cacheOperation()) {
		outcome, err = e.cache.ConfirmOptimistic(op.cacheOperation(), result.Data)
	} else {
		outcome, err = e.cache.ProcessResult(op.cacheOperation(), result.Data)
	}
	if err != nil {
		if op.Kind == KindMutation {
			e.cache.RollbackOptimistic(op.cacheOperation())
		}
		return nil, fail(span, err)
	}

	for _, warning := range outcome.Warnings.Errors {
		e.logger.Warn("result written with warnings", "operation", op.Key, "warning", warning.Error())
	}

	delivered := result
	delivered.Stale = false
	delivered.CacheOutcome = CacheMiss
	if op.Kind == KindQuery && outcome.Data != nil {
		delivered.Data = outcome.Data
	}
	reaction.emit(delivered)

	span.SetAttributes(attribute.Int("graphcache.dependents", len(outcome.Dependents)))
	if err := e.reemit(reaction, outcome.Dependents, op.Key); err != nil {
		return nil, fail(span, err)
	}
	return reaction, nil
}

// Teardown stops watching an operation. A query no other operation watches is forgotten by the
// cache. A mutation still waiting for its result has its optimistic update rolled back.
func (e *Exchange) Teardown(ctx context.Context, key string) (*Reaction, error) {
	e.mutex.Lock()
	op, active := e.active[key]
	mutation, pending := e.pending[key]
	delete(e.active, key)
	delete(e.pending, key)

	forget := active
	if active {
		for _, other := range e.active {
			if other.Request.Key == op.Request.Key {
				forget = false
				break
			}
		}
	}
	e.mutex.Unlock()

	reaction := &Reaction{}
	if !active && !pending {
		return reaction, nil
	}

	if active {
		_, span := e.start(ctx, "exchange.Teardown", op)
		defer span.End()
		if forget {
			e.cache.Forget(op.Request.Key)
		}
		return reaction, nil
	}

	_, span := e.start(ctx, "exchange.Teardown", mutation)
	defer span.End()
	dependents := e.cache.RollbackOptimistic(mutation.cacheOperation())
	if err := e.reemit(reaction, dependents, key); err != nil {
		return nil, fail(span, err)
	}
	return reaction, nil
}

// Active returns the keys of the watched operations, sorted.
func (e *Exchange) Active() []string {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	result := make([]string, 0, len(e.active))
	for key := range e.active {
		result = append(result, key)
	}
	sort.Strings(result)
	return result
}

// reemit reads again the active queries whose request is among the dependents.
func (e *Exchange) reemit(reaction *Reaction, dependents []string, exclude string) error {
	if len(dependents) == 0 {
		return nil
	}

	wanted := make(map[string]bool, len(dependents))
	for _, queryKey := range dependents {
		wanted[queryKey] = true
	}

	e.mutex.Lock()
	var ops []Operation
	for key, op := range e.active {
		if key != exclude && op.Kind == KindQuery && wanted[op.Request.Key] {
			ops = append(ops, op)
		}
	}
	e.mutex.Unlock()

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Key < ops[j].Key
	})

	for _, op := range ops {
		result, err := e.cache.ReadQuery(op.Request)
		if err != nil {
			return err
		}

		outcome := outcomeOf(result)
		if outcome == CacheMiss {
			if op.Policy != CacheOnly {
				reaction.forward(op.withPolicy(NetworkOnly))
			}
			continue
		}

		refresh := outcome == CachePartial && op.Policy != CacheOnly
		reaction.emit(OperationResult{
			Operation:    op,
			Data:         result.Data,
			Stale:        refresh,
			CacheOutcome: outcome,
		})
		if refresh {
			reaction.forward(op.withPolicy(NetworkOnly))
		}
	}
	return nil
}
