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

	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
	"github.com/botobag/graphcache/internal/util"
)

// fragmentMatcher decides whether a fragment with the type condition applies.
type fragmentMatcher func(typeCondition string, selectionSet ast.SelectionSet) bool

// fieldVisitor is called for each field selected. optional is true when the field sits under an
// @include or @skip directive, in which case its absence from data is expected.
type fieldVisitor func(field *ast.Field, optional bool) error

func directiveCondition(directive *ast.Directive, variables map[string]interface{}) bool {
	arg := directive.Arguments.Get("if")
	if arg == nil {
		return false
	}
	value, ok := ast.ValueOf(arg.Value, variables)
	b, isBool := value.(bool)
	return ok && isBool && b
}

// shouldInclude evaluates @skip and @include.
func shouldInclude(directives ast.Directives, variables map[string]interface{}) bool {
	if skip := directives.Get("skip"); skip != nil && directiveCondition(skip, variables) {
		return false
	}
	if include := directives.Get("include"); include != nil && !directiveCondition(include, variables) {
		return false
	}
	return true
}

func isConditional(directives ast.Directives) bool {
	return directives.Get("skip") != nil || directives.Get("include") != nil
}

// eachField visits the fields of a selection set, expanding fragments that match. Skipped fields
// are never visited.
func (o *operation) eachField(selectionSet ast.SelectionSet, match fragmentMatcher, optional bool, visit fieldVisitor) error {
	for _, selection := range selectionSet {
		directives := selection.GetDirectives()
		if !shouldInclude(directives, o.variables) {
			continue
		}
		conditional := optional || isConditional(directives)

		switch selection := selection.(type) {
		case *ast.Field:
			if err := visit(selection, conditional); err != nil {
				return err
			}

		case *ast.InlineFragment:
			if selection.HasTypeCondition() && !match(selection.TypeCondition.Name.Value, selection.SelectionSet) {
				continue
			}
			if err := o.eachField(selection.SelectionSet, match, conditional, visit); err != nil {
				return err
			}

		case *ast.FragmentSpread:
			name := selection.Name.Value
			fragment, exists := o.fragments[name]
			if !exists {
				o.warn(fmt.Sprintf(`No fragment named "%s" in the document.`, name), graphql.ErrKindInvalidData)
				continue
			}
			if !match(fragment.TypeCondition.Name.Value, fragment.SelectionSet) {
				continue
			}
			if err := o.eachField(fragment.SelectionSet, match, conditional, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchType matches a type condition against the typename of the data. Without a schema it falls
// back to present(field), which tells whether the data has a field the fragment selects.
func (o *operation) matchType(typename string, present func(field *ast.Field) bool) fragmentMatcher {
	return func(typeCondition string, selectionSet ast.SelectionSet) bool {
		if typeCondition == typename {
			return true
		}
		if s := o.cache.config.Schema; s != nil {
			return s.IsSubtype(typeCondition, typename)
		}

		o.warn(fmt.Sprintf(`Heuristic fragment matching: fragment on "%s" is matched against "%s" by the fields present. Configure a schema for exact matching.`,
			typeCondition, typename), graphql.ErrKindInvalidData)

		for _, selection := range selectionSet {
			field, ok := selection.(*ast.Field)
			if !ok || field.Name.Value == "__typename" || isConditional(field.Directives) {
				continue
			}
			if !present(field) {
				return false
			}
		}
		return true
	}
}

// readMatcher matches against a stored entity.
func (o *operation) readMatcher(entityKey string, typename string) fragmentMatcher {
	return o.matchType(typename, func(field *ast.Field) bool {
		fieldKey := keys.FieldKey(field.Name.Value, ast.ArgumentValues(field.Arguments, o.variables))
		if _, ok := o.store.ReadField(entityKey, fieldKey); ok {
			return true
		}
		_, hasResolver := o.cache.config.Resolvers[typename][field.Name.Value]
		return hasResolver
	})
}

// dataMatcher matches against an object in response data.
func (o *operation) dataMatcher(typename string, data map[string]interface{}) fragmentMatcher {
	return o.matchType(typename, func(field *ast.Field) bool {
		_, ok := data[field.ResponseKey()]
		return ok
	})
}

// didYouMean suggests options similar to input.
func didYouMean(input string, options []string) string {
	sort.Strings(options)
	suggestions := util.SuggestionList(input, options)
	if len(suggestions) == 0 {
		return ""
	}
	return " Did you mean " + util.OrList(suggestions, 5, true) + "?"
}

// mergeData combines two results read for the same response key, as happens when a field is
// selected both directly and through a fragment.
func mergeData(existing interface{}, incoming interface{}) interface{} {
	switch existing := existing.(type) {
	case map[string]interface{}:
		if incoming, ok := incoming.(map[string]interface{}); ok {
			for key, value := range incoming {
				existing[key] = mergeData(existing[key], value)
			}
			return existing
		}
	case []interface{}:
		if incoming, ok := incoming.([]interface{}); ok && len(incoming) == len(existing) {
			for i := range existing {
				existing[i] = mergeData(existing[i], incoming[i])
			}
			return existing
		}
	}
	return incoming
}
