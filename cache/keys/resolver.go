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

package keys

// KeyResult tells the Resolver how to treat the value returned from a KeyFunc.
type KeyResult int

// Enumeration of KeyResult
const (
	// KeyDefault ignores the returned key and applies the default policy.
	KeyDefault KeyResult = iota

	// KeyEmbedded marks the object as having no identity. It is stored inside its parent.
	KeyEmbedded

	// KeyCustom uses the returned key.
	KeyCustom
)

// KeyFunc computes the key of an object of a given type.
type KeyFunc func(typename string, data map[string]interface{}) (string, KeyResult)

// Embedded is a KeyFunc for types that never have an identity.
func Embedded(string, map[string]interface{}) (string, KeyResult) {
	return "", KeyEmbedded
}

// Field returns a KeyFunc that keys objects on the given field instead of "id".
func Field(name string) KeyFunc {
	return func(typename string, data map[string]interface{}) (string, KeyResult) {
		if id, ok := FormatID(data[name]); ok {
			return EntityKey(typename, id), KeyCustom
		}
		return "", KeyEmbedded
	}
}

// Identity describes the outcome of Resolver.Identify.
type Identity int

// Enumeration of Identity
const (
	// Keyed objects are stored as their own record.
	Keyed Identity = iota

	// ExplicitlyEmbedded objects were configured to have no identity.
	ExplicitlyEmbedded

	// Unkeyed objects have no usable id. They are stored like embedded objects but reported.
	Unkeyed
)

// RootTypes names the root operation types when the schema renames them.
type RootTypes struct {
	Query        string
	Mutation     string
	Subscription string
}

// Resolver identifies objects. It holds no state besides its configuration: calling Identify twice
// with the same input returns the same result.
type Resolver struct {
	keys  map[string]KeyFunc
	roots map[string]string
}

// NewResolver creates a Resolver with per-type key functions and the names of root types. Empty
// root type names default to Query, Mutation and Subscription.
func NewResolver(keyFuncs map[string]KeyFunc, roots RootTypes) *Resolver {
	r := &Resolver{
		keys: keyFuncs,
		roots: map[string]string{
			QueryKey:        QueryKey,
			MutationKey:     MutationKey,
			SubscriptionKey: SubscriptionKey,
		},
	}
	for name, key := range map[string]string{
		roots.Query:        QueryKey,
		roots.Mutation:     MutationKey,
		roots.Subscription: SubscriptionKey,
	} {
		if len(name) > 0 {
			r.roots[name] = key
		}
	}
	return r
}

// RootKey returns the fixed key of a root type.
func (r *Resolver) RootKey(typename string) (string, bool) {
	key, ok := r.roots[typename]
	return key, ok
}

// Identify computes the entity key of an object from its typename and data.
func (r *Resolver) Identify(typename string, data map[string]interface{}) (string, Identity) {
	if key, ok := r.RootKey(typename); ok {
		return key, Keyed
	}

	if keyFunc, ok := r.keys[typename]; ok && keyFunc != nil {
		key, result := keyFunc(typename, data)
		switch result {
		case KeyCustom:
			if len(key) > 0 {
				return key, Keyed
			}
			return "", Unkeyed
		case KeyEmbedded:
			return "", ExplicitlyEmbedded
		}
	}

	if len(typename) == 0 {
		return "", Unkeyed
	}

	for _, field := range []string{"id", "_id"} {
		if v, exists := data[field]; exists && v != nil {
			if id, ok := FormatID(v); ok {
				return EntityKey(typename, id), Keyed
			}
		}
	}

	return "", Unkeyed
}

// Key is a shortcut of Identify that reports whether the object is keyed.
func (r *Resolver) Key(typename string, data map[string]interface{}) (string, bool) {
	key, identity := r.Identify(typename, data)
	return key, identity == Keyed
}
