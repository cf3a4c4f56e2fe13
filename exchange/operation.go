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

package exchange

import (
	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/graphql/ast"
)

// Kind is the kind of an operation.
type Kind int

// Enumeration of Kind
const (
	KindQuery Kind = iota
	KindMutation
	KindSubscription
)

func (kind Kind) String() string {
	switch kind {
	case KindQuery:
		return "query"
	case KindMutation:
		return "mutation"
	case KindSubscription:
		return "subscription"
	}
	return "unknown"
}

// Policy tells how a query consults the cache and the network.
type Policy int

// Enumeration of Policy
const (
	// CacheFirst answers from the cache and only goes to the network on a miss or a partial result.
	CacheFirst Policy = iota

	// CacheOnly never goes to the network. A miss produces a result without data.
	CacheOnly

	// NetworkOnly skips the cache read.
	NetworkOnly

	// CacheAndNetwork answers from the cache when possible and always refreshes from the network.
	CacheAndNetwork
)

func (policy Policy) String() string {
	switch policy {
	case CacheFirst:
		return "cache-first"
	case CacheOnly:
		return "cache-only"
	case NetworkOnly:
		return "network-only"
	case CacheAndNetwork:
		return "cache-and-network"
	}
	return "unknown"
}

// CacheOutcome describes how the cache answered a query.
type CacheOutcome int

// Enumeration of CacheOutcome
const (
	CacheMiss CacheOutcome = iota
	CachePartial
	CacheHit
)

func (outcome CacheOutcome) String() string {
	switch outcome {
	case CacheMiss:
		return "miss"
	case CachePartial:
		return "partial"
	case CacheHit:
		return "hit"
	}
	return "unknown"
}

// Operation is a request issued by a client. Key identifies the operation for its lifetime: two
// components watching the same query use two operations with the same request.
type Operation struct {
	Kind    Kind
	Request cache.Request
	Key     string
	Policy  Policy
}

// NewOperation creates an operation for the request. The kind is taken from the document. An empty
// key defaults to the request key.
func NewOperation(req cache.Request, key string, policy Policy) Operation {
	if len(key) == 0 {
		key = req.Key
	}
	return Operation{
		Kind:    kindOf(req.Document),
		Request: req,
		Key:     key,
		Policy:  policy,
	}
}

func kindOf(doc *cache.Document) Kind {
	switch doc.OperationType() {
	case ast.OperationTypeMutation:
		return KindMutation
	case ast.OperationTypeSubscription:
		return KindSubscription
	}
	return KindQuery
}

func (op Operation) cacheOperation() cache.Operation {
	return cache.NewOperation(op.Request, op.Key)
}

// withPolicy returns a copy of the operation with another policy.
func (op Operation) withPolicy(policy Policy) Operation {
	op.Policy = policy
	return op
}

// OperationResult is delivered to the client of an operation.
type OperationResult struct {
	Operation Operation
	Data      map[string]interface{}

	// Error reported by the network, if any
	Error error

	// Stale is set when the data comes from the cache and a network request is under way to refresh
	// it.
	Stale bool

	// CacheOutcome is CacheMiss for results that come from the network.
	CacheOutcome CacheOutcome
}

// Reaction lists what the client pipeline has to do after an event.
type Reaction struct {
	// Results to deliver, in order
	Results []OperationResult

	// Operations to send to the network
	Forward []Operation
}

func (r *Reaction) emit(result OperationResult) {
	r.Results = append(r.Results, result)
}

func (r *Reaction) forward(op Operation) {
	r.Forward = append(r.Forward, op)
}
