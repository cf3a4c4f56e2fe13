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

// Package cache implements a normalized GraphQL cache.
//
// Response data is split into records keyed by entity identity (see package keys) and stored in a
// store.Store. Queries and fragments are answered by walking their selection sets against the
// store. Every read records the fields it consulted so that a later write can find the queries that
// went stale. Mutation and subscription results run user-supplied updaters, and mutations may write
// a guessed result into an optimistic layer that is rolled back or replaced once the real response
// arrives.
//
// A Cache serializes all of its operations. Resolvers and updaters are called while the cache is
// locked and receive an Accessor for nested reads and writes; they must not call back into the
// Cache itself.
package cache
