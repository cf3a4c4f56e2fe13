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

package ast

import (
	"strconv"
)

// ValueOf converts a Value into its Go representation given variable values: int64 or float64 for
// numbers, string for strings and enums, bool, nil for null, []interface{} for lists and
// map[string]interface{} for objects.
//
// The second result is false if the value is undefined, which only happens for a variable that is
// not provided. Undefined list items become nil; undefined object fields are omitted.
func ValueOf(value Value, variables map[string]interface{}) (interface{}, bool) {
	switch value := value.(type) {
	case Variable:
		v, ok := variables[value.Name.Value]
		return v, ok

	case IntValue:
		if i, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
			return i, true
		}
		// Out of range for int64.
		f, _ := strconv.ParseFloat(value.Value, 64)
		return f, true

	case FloatValue:
		f, _ := strconv.ParseFloat(value.Value, 64)
		return f, true

	case StringValue:
		return value.Value, true

	case EnumValue:
		return value.Value, true

	case BooleanValue:
		return value.Value, true

	case NullValue:
		return nil, true

	case ListValue:
		list := make([]interface{}, len(value.Values))
		for i, item := range value.Values {
			list[i], _ = ValueOf(item, variables)
		}
		return list, true

	case ObjectValue:
		object := make(map[string]interface{}, len(value.Fields))
		for _, field := range value.Fields {
			if v, ok := ValueOf(field.Value, variables); ok {
				object[field.Name.Value] = v
			}
		}
		return object, true
	}

	return nil, false
}

// ArgumentValues resolves arguments into a map. Arguments bound to an absent variable are omitted.
// Returns nil if there are no arguments.
func ArgumentValues(args Arguments, variables map[string]interface{}) map[string]interface{} {
	if len(args) == 0 {
		return nil
	}
	result := make(map[string]interface{}, len(args))
	for _, arg := range args {
		if v, ok := ValueOf(arg.Value, variables); ok {
			result[arg.Name.Value] = v
		}
	}
	return result
}

// NamedTypeOf unwraps list and non-null wrappers.
func NamedTypeOf(t Type) NamedType {
	for {
		switch wrapped := t.(type) {
		case NamedType:
			return wrapped
		case ListType:
			t = wrapped.ItemType
		case NonNullType:
			t = wrapped.Type
		default:
			return NamedType{}
		}
	}
}
