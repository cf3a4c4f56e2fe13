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

package jsonwriter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/botobag/graphcache/internal/unsafe"
)

// Omitter is implemented by sentinel values that stand for "no value". They are skipped in objects
// and written as null elsewhere.
type Omitter interface {
	OmitJSON() bool
}

// WriteInterface writes v in its canonical form: object keys are sorted, omitted values are dropped
// from objects, and numbers are written in their shortest form. Supported values are nil, booleans,
// strings, numbers, json.Number, slices, string-keyed maps, pointers to those, and ValueMarshaler's.
func (stream *Stream) WriteInterface(v interface{}) {
	if stream.err != nil {
		return
	}

	switch v := v.(type) {
	case nil:
		stream.WriteNil()
	case Omitter:
		stream.WriteNil()
	case ValueMarshaler:
		stream.WriteValue(v)
	case bool:
		stream.WriteBool(v)
	case string:
		stream.WriteString(v)
	case json.Number:
		stream.WriteRawString(v.String())
	case int:
		stream.WriteInt64(int64(v))
	case int32:
		stream.WriteInt64(int64(v))
	case int64:
		stream.WriteInt64(v)
	case uint:
		stream.WriteUint64(uint64(v))
	case uint32:
		stream.WriteUint64(uint64(v))
	case uint64:
		stream.WriteUint64(v)
	case float32:
		stream.WriteFloat64(float64(v))
	case float64:
		stream.WriteFloat64(v)
	case []interface{}:
		stream.WriteArrayStart()
		for i, item := range v {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteInterface(item)
		}
		stream.WriteArrayEnd()
	case map[string]interface{}:
		stream.writeMap(len(v), func(yield func(string, interface{})) {
			for key, value := range v {
				yield(key, value)
			}
		})
	default:
		stream.writeReflect(reflect.ValueOf(v))
	}
}

func (stream *Stream) writeMap(size int, each func(yield func(string, interface{}))) {
	keys := make([]string, 0, size)
	values := make(map[string]interface{}, size)
	each(func(key string, value interface{}) {
		if omitter, ok := value.(Omitter); ok && omitter.OmitJSON() {
			return
		}
		keys = append(keys, key)
		values[key] = value
	})
	sort.Strings(keys)

	stream.WriteObjectStart()
	for i, key := range keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(key)
		stream.WriteInterface(values[key])
	}
	stream.WriteObjectEnd()
}

func (stream *Stream) writeReflect(value reflect.Value) {
	switch value.Kind() {
	case reflect.Invalid:
		stream.WriteNil()
	case reflect.Bool:
		stream.WriteBool(value.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		stream.WriteInt64(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		stream.WriteUint64(value.Uint())
	case reflect.Float32, reflect.Float64:
		stream.WriteFloat64(value.Float())
	case reflect.String:
		stream.WriteString(value.String())
	case reflect.Ptr, reflect.Interface:
		if value.IsNil() {
			stream.WriteNil()
		} else {
			stream.WriteInterface(value.Elem().Interface())
		}
	case reflect.Slice, reflect.Array:
		if value.Kind() == reflect.Slice && value.IsNil() {
			stream.WriteNil()
			return
		}
		stream.WriteArrayStart()
		for i := 0; i < value.Len(); i++ {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteInterface(value.Index(i).Interface())
		}
		stream.WriteArrayEnd()
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			stream.err = fmt.Errorf("jsonwriter: unsupported map key type %s", value.Type().Key())
			return
		}
		stream.writeMap(value.Len(), func(yield func(string, interface{})) {
			iter := value.MapRange()
			for iter.Next() {
				yield(iter.Key().String(), iter.Value().Interface())
			}
		})
	default:
		stream.err = fmt.Errorf("jsonwriter: unsupported value of type %s", value.Type())
	}
}

// Stringify returns the canonical JSON text of v. Two values that differ only in key order produce
// the same text.
func Stringify(v interface{}) (string, error) {
	var (
		buf    bytes.Buffer
		stream = NewStream(&buf)
	)
	stream.WriteInterface(v)
	if err := stream.Flush(); err != nil {
		return "", err
	}
	return unsafe.String(buf.Bytes()), nil
}

// Quote returns s as a JSON string literal.
func Quote(s string) string {
	var (
		buf    bytes.Buffer
		stream = NewStream(&buf)
	)
	stream.WriteString(s)
	stream.Flush()
	return unsafe.String(buf.Bytes())
}
