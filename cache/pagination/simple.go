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

package pagination

import (
	"sort"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/cache/keys"
)

// MergeMode tells where a page with a greater offset goes.
type MergeMode int

// Enumeration of MergeMode
const (
	// MergeAfter appends later pages, as in an infinite scroll.
	MergeAfter MergeMode = iota

	// MergeBefore prepends later pages, as in a chat history.
	MergeBefore
)

// SimpleConfig configures Simple.
type SimpleConfig struct {
	// Name of the offset argument; defaults to "skip"
	OffsetArgument string

	// Name of the limit argument; defaults to "limit"
	LimitArgument string

	Merge MergeMode
}

// Simple returns a resolver for a list field paginated with offset and limit arguments. It merges
// the pages stored for the same other arguments in offset order and drops repeated entities. It
// reports a cache miss until the page requested is in the cache.
func Simple(config SimpleConfig) cache.Resolver {
	offsetArgument := config.OffsetArgument
	if len(offsetArgument) == 0 {
		offsetArgument = "skip"
	}
	limitArgument := config.LimitArgument
	if len(limitArgument) == 0 {
		limitArgument = "limit"
	}

	type page struct {
		offset float64
		links  []interface{}
	}

	return func(parent map[string]interface{}, args map[string]interface{}, accessor cache.Accessor, info *cache.ResolveInfo) (interface{}, error) {
		if _, ok := accessor.Resolve(info.ParentKey, info.ParentFieldKey, nil); !ok {
			return keys.Undefined, nil
		}

		var pages []page
		for _, field := range pagesOf(accessor, info, args, []string{offsetArgument, limitArgument}) {
			offset, ok := toFloat(field.Arguments[offsetArgument])
			if !ok {
				if _, present := field.Arguments[offsetArgument]; present {
					continue
				}
			}

			value, ok := accessor.Resolve(info.ParentKey, field.FieldKey, nil)
			links, isList := value.([]interface{})
			if !ok || !isList {
				continue
			}
			pages = append(pages, page{offset, links})
		}

		sort.SliceStable(pages, func(i, j int) bool {
			if config.Merge == MergeBefore {
				return pages[i].offset > pages[j].offset
			}
			return pages[i].offset < pages[j].offset
		})

		var (
			result  = []interface{}{}
			visited = map[string]bool{}
		)
		for _, p := range pages {
			for _, link := range p.links {
				if key, ok := link.(string); ok {
					if visited[key] {
						continue
					}
					visited[key] = true
				}
				result = append(result, link)
			}
		}
		return result, nil
	}
}
