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

// Package pagination provides resolvers that merge the pages of a paginated field, so a list read
// with any page's arguments returns every page fetched so far.
package pagination

import (
	"encoding/json"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/cache/keys"
)

// withoutArgs copies args without the named arguments. The result is never nil.
func withoutArgs(args map[string]interface{}, names ...string) map[string]interface{} {
	result := make(map[string]interface{}, len(args))
	for name, value := range args {
		result[name] = value
	}
	for _, name := range names {
		delete(result, name)
	}
	return result
}

// sameArgs compares two sets of arguments by their canonical form, so 1 and 1.0 are equal.
func sameArgs(a map[string]interface{}, b map[string]interface{}) bool {
	return keys.Stringify(a) == keys.Stringify(b)
}

func toFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// pagesOf lists the fields on the parent record that hold pages of the field being resolved.
func pagesOf(accessor cache.Accessor, info *cache.ResolveInfo, args map[string]interface{}, pageArgs []string) []cache.FieldInfo {
	fieldArgs := withoutArgs(args, pageArgs...)

	var pages []cache.FieldInfo
	for _, field := range accessor.InspectFields(info.ParentKey) {
		if field.FieldName != info.FieldName {
			continue
		}
		if !sameArgs(fieldArgs, withoutArgs(field.Arguments, pageArgs...)) {
			continue
		}
		pages = append(pages, field)
	}
	return pages
}
