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

// Package schema reads the result of an introspection query into the small view the cache needs:
// which concrete types satisfy an abstract type, which fields exist and whether they are nullable,
// and the names of the root operation types.
package schema

import (
	"fmt"

	"github.com/botobag/graphcache/graphql"

	"github.com/json-iterator/go"
)

// TypeKind is the __TypeKind of an introspected type.
type TypeKind string

// Enumeration of TypeKind
const (
	KindScalar      TypeKind = "SCALAR"
	KindObject      TypeKind = "OBJECT"
	KindInterface   TypeKind = "INTERFACE"
	KindUnion       TypeKind = "UNION"
	KindEnum        TypeKind = "ENUM"
	KindInputObject TypeKind = "INPUT_OBJECT"
	KindList        TypeKind = "LIST"
	KindNonNull     TypeKind = "NON_NULL"
)

// TypeRef references a type, possibly wrapped in lists and non-null.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// NamedType unwraps list and non-null wrappers.
func (ref *TypeRef) NamedType() string {
	for ref != nil {
		if ref.Kind != KindList && ref.Kind != KindNonNull {
			return ref.Name
		}
		ref = ref.OfType
	}
	return ""
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name         string  `json:"name"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

// Field is a field of an object or interface type.
type Field struct {
	Name string       `json:"name"`
	Args []InputValue `json:"args"`
	Type TypeRef      `json:"type"`
}

// Type is one named type in the schema.
type Type struct {
	Kind          TypeKind     `json:"kind"`
	Name          string       `json:"name"`
	Fields        []*Field     `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`

	fields map[string]*Field
}

// IsAbstract returns true for interfaces and unions.
func (t *Type) IsAbstract() bool {
	return t.Kind == KindInterface || t.Kind == KindUnion
}

// Field looks up a field by name.
func (t *Type) Field(name string) (*Field, bool) {
	field, ok := t.fields[name]
	return field, ok
}

type introspection struct {
	Schema *struct {
		QueryType        *TypeRef `json:"queryType"`
		MutationType     *TypeRef `json:"mutationType"`
		SubscriptionType *TypeRef `json:"subscriptionType"`
		Types            []*Type  `json:"types"`
	} `json:"__schema"`

	// Set when the input is a whole response.
	Data *introspection `json:"data"`
}

// Schema is a parsed introspection result.
type Schema struct {
	query        string
	mutation     string
	subscription string

	types map[string]*Type

	// possibleTypes maps an abstract type to the set of its concrete types.
	possibleTypes map[string]map[string]bool
}

// Parse reads an introspection result. It accepts both the "__schema" object and a whole response
// with the result under "data".
func Parse(data []byte) (*Schema, error) {
	var result introspection
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &result); err != nil {
		return nil, graphql.NewError("Invalid introspection result", err, graphql.ErrKindInvalidData)
	}

	if result.Schema == nil && result.Data != nil {
		result = *result.Data
	}
	if result.Schema == nil {
		return nil, graphql.NewError(`Introspection result is missing "__schema"`, graphql.ErrKindInvalidData)
	}

	s := &Schema{
		query:         "Query",
		types:         make(map[string]*Type, len(result.Schema.Types)),
		possibleTypes: map[string]map[string]bool{},
	}
	if ref := result.Schema.QueryType; ref != nil {
		s.query = ref.Name
	}
	if ref := result.Schema.MutationType; ref != nil {
		s.mutation = ref.Name
	}
	if ref := result.Schema.SubscriptionType; ref != nil {
		s.subscription = ref.Name
	}

	for _, t := range result.Schema.Types {
		if t == nil || len(t.Name) == 0 {
			continue
		}
		t.fields = make(map[string]*Field, len(t.Fields))
		for _, field := range t.Fields {
			t.fields[field.Name] = field
		}
		s.types[t.Name] = t
	}

	for _, t := range s.types {
		if !t.IsAbstract() {
			continue
		}
		possible := map[string]bool{}
		for _, ref := range t.PossibleTypes {
			possible[ref.Name] = true
		}
		s.possibleTypes[t.Name] = possible
	}

	if _, exists := s.types[s.query]; !exists {
		return nil, graphql.NewError(fmt.Sprintf(`Query root type "%s" is not defined`, s.query), graphql.ErrKindInvalidData)
	}

	return s, nil
}

// QueryType returns the name of the query root type.
func (s *Schema) QueryType() string {
	return s.query
}

// MutationType returns the name of the mutation root type or an empty string.
func (s *Schema) MutationType() string {
	return s.mutation
}

// SubscriptionType returns the name of the subscription root type or an empty string.
func (s *Schema) SubscriptionType() string {
	return s.subscription
}

// Type looks up a named type.
func (s *Schema) Type(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// IsAbstract returns true if the named type is an interface or a union.
func (s *Schema) IsAbstract(name string) bool {
	t, ok := s.types[name]
	return ok && t.IsAbstract()
}

// IsSubtype returns true if concrete is the abstract type itself or one of its possible types.
func (s *Schema) IsSubtype(abstract string, concrete string) bool {
	if abstract == concrete {
		return true
	}
	return s.possibleTypes[abstract][concrete]
}

// Field looks up a field of an object or interface type.
func (s *Schema) Field(typename string, fieldName string) (*Field, bool) {
	t, ok := s.types[typename]
	if !ok {
		return nil, false
	}
	return t.Field(fieldName)
}

// FieldExists returns true if the type defines the field. __typename exists on every type.
func (s *Schema) FieldExists(typename string, fieldName string) bool {
	if fieldName == "__typename" {
		return true
	}
	_, ok := s.Field(typename, fieldName)
	return ok
}

// IsFieldNullable returns true if the field may be null. Unknown fields are not nullable.
func (s *Schema) IsFieldNullable(typename string, fieldName string) bool {
	field, ok := s.Field(typename, fieldName)
	return ok && field.Type.Kind != KindNonNull
}

// IsListNullable returns true if the field is a list whose items may be null.
func (s *Schema) IsListNullable(typename string, fieldName string) bool {
	field, ok := s.Field(typename, fieldName)
	if !ok {
		return false
	}
	ref := &field.Type
	if ref.Kind == KindNonNull {
		ref = ref.OfType
	}
	if ref == nil || ref.Kind != KindList || ref.OfType == nil {
		return false
	}
	return ref.OfType.Kind != KindNonNull
}

// FieldTypename returns the named type of a field or an empty string when the field is unknown.
func (s *Schema) FieldTypename(typename string, fieldName string) string {
	field, ok := s.Field(typename, fieldName)
	if !ok {
		return ""
	}
	return field.Type.NamedType()
}
