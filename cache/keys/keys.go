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

// Package keys computes the identities used by the normalized store: entity keys for objects in
// response data and field keys for fields with their arguments.
package keys

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/botobag/graphcache/jsonwriter"

	"github.com/json-iterator/go"
)

type undefined int

// Undefined marks the absence of a value. A resolver returns it to report a cache miss, and it is
// dropped from arguments when computing field keys.
const Undefined undefined = 0

var _ jsonwriter.Omitter = Undefined

// OmitJSON implements jsonwriter.Omitter.
func (undefined) OmitJSON() bool {
	return true
}

func (undefined) String() string {
	return "undefined"
}

// IsUndefined returns true if v is Undefined.
func IsUndefined(v interface{}) bool {
	_, ok := v.(undefined)
	return ok
}

// Fixed entity keys of the root records.
const (
	QueryKey        = "Query"
	MutationKey     = "Mutation"
	SubscriptionKey = "Subscription"
)

// EntityKey builds the default key "Typename:id".
func EntityKey(typename string, id string) string {
	return typename + ":" + id
}

// FormatID renders an id value in its canonical string form. Numbers are written without trailing
// zeros so 1 and 1.0 identify the same entity. Returns false for values that cannot be an id.
func FormatID(id interface{}) (string, bool) {
	switch id := id.(type) {
	case string:
		return id, true
	case json.Number:
		return id.String(), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32), true
	case int:
		return strconv.Itoa(id), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	}
	return "", false
}

// Stringify returns the canonical JSON text of v (sorted object keys, Undefined omitted).
func Stringify(v interface{}) string {
	s, err := jsonwriter.Stringify(v)
	if err != nil {
		// Values come from decoded JSON or user code; fall back to something stable enough to key on.
		return fmt.Sprintf("%v", v)
	}
	return s
}

// FieldKey returns "name" when args is empty and "name(<canonical JSON of args>)" otherwise.
// Arguments whose value is Undefined are ignored.
func FieldKey(name string, args map[string]interface{}) string {
	defined := 0
	for _, v := range args {
		if !IsUndefined(v) {
			defined++
		}
	}
	if defined == 0 {
		return name
	}
	return name + "(" + Stringify(args) + ")"
}

// FieldName returns the field name part of a field key.
func FieldName(fieldKey string) string {
	if i := strings.IndexByte(fieldKey, '('); i >= 0 {
		return fieldKey[:i]
	}
	return fieldKey
}

// ParseFieldKey splits a field key into the field name and its arguments. Numbers in arguments are
// decoded as float64. Arguments is nil for a field key without arguments.
func ParseFieldKey(fieldKey string) (string, map[string]interface{}, error) {
	i := strings.IndexByte(fieldKey, '(')
	if i < 0 {
		return fieldKey, nil, nil
	}
	if !strings.HasSuffix(fieldKey, ")") {
		return "", nil, fmt.Errorf("malformed field key %q", fieldKey)
	}

	var args map[string]interface{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(fieldKey[i+1:len(fieldKey)-1], &args); err != nil {
		return "", nil, fmt.Errorf("malformed arguments in field key %q: %w", fieldKey, err)
	}
	return fieldKey[:i], args, nil
}

// JoinKeys builds the key of a record embedded in its parent: "parentKey.fieldKey".
func JoinKeys(parentKey string, fieldKey string) string {
	return parentKey + "." + fieldKey
}
