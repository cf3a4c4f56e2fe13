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
	"github.com/botobag/graphcache/graphql/token"
)

// Node is implemented by every AST node.
type Node interface {
	// Location returns the location of the first token of the node.
	Location() token.SourceLocation
}

// Name represents an identifier.
type Name struct {
	Value string
	Loc   token.SourceLocation
}

// Location implements Node.
func (name Name) Location() token.SourceLocation {
	return name.Loc
}

// IsNil returns true if the name is absent (e.g., an anonymous operation or a field without alias).
func (name Name) IsNil() bool {
	return len(name.Value) == 0
}

//===----------------------------------------------------------------------------------------====//
// Document
//===----------------------------------------------------------------------------------------====//

// Document contains the executable definitions parsed from a source.
type Document struct {
	Definitions []Definition
}

// Location implements Node.
func (doc Document) Location() token.SourceLocation {
	if len(doc.Definitions) > 0 {
		return doc.Definitions[0].Location()
	}
	return token.NoSourceLocation
}

// Operations returns the operation definitions in the order they appear.
func (doc Document) Operations() []*OperationDefinition {
	var operations []*OperationDefinition
	for _, definition := range doc.Definitions {
		if operation, ok := definition.(*OperationDefinition); ok {
			operations = append(operations, operation)
		}
	}
	return operations
}

// Fragments returns the fragment definitions in the order they appear.
func (doc Document) Fragments() []*FragmentDefinition {
	var fragments []*FragmentDefinition
	for _, definition := range doc.Definitions {
		if fragment, ok := definition.(*FragmentDefinition); ok {
			fragments = append(fragments, fragment)
		}
	}
	return fragments
}

// Definition is either an OperationDefinition or a FragmentDefinition.
type Definition interface {
	Node
	isDefinition()
}

// OperationType is one of query, mutation or subscription.
type OperationType string

// Enumeration of OperationType
const (
	OperationTypeQuery        OperationType = "query"
	OperationTypeMutation     OperationType = "mutation"
	OperationTypeSubscription OperationType = "subscription"
)

// OperationDefinition defines a query, mutation or subscription.
type OperationDefinition struct {
	Operation           OperationType
	Name                Name
	VariableDefinitions []*VariableDefinition
	Directives          Directives
	SelectionSet        SelectionSet
	Loc                 token.SourceLocation
}

func (*OperationDefinition) isDefinition() {}

// Location implements Node.
func (operation *OperationDefinition) Location() token.SourceLocation {
	return operation.Loc
}

// VariableDefinition declares a variable used by an operation.
type VariableDefinition struct {
	Variable     Variable
	Type         Type
	DefaultValue Value // nil if absent
}

// Location implements Node.
func (varDef *VariableDefinition) Location() token.SourceLocation {
	return varDef.Variable.Location()
}

// FragmentDefinition defines a named fragment.
type FragmentDefinition struct {
	Name          Name
	TypeCondition NamedType
	Directives    Directives
	SelectionSet  SelectionSet
	Loc           token.SourceLocation
}

func (*FragmentDefinition) isDefinition() {}

// Location implements Node.
func (fragment *FragmentDefinition) Location() token.SourceLocation {
	return fragment.Loc
}

//===----------------------------------------------------------------------------------------====//
// Selections
//===----------------------------------------------------------------------------------------====//

// SelectionSet is a list of Selection's.
type SelectionSet []Selection

// Selection is a Field, a FragmentSpread or an InlineFragment.
type Selection interface {
	Node
	GetDirectives() Directives
}

// Field selects a field on an object.
type Field struct {
	Alias        Name
	Name         Name
	Arguments    Arguments
	Directives   Directives
	SelectionSet SelectionSet
}

// Location implements Node.
func (field *Field) Location() token.SourceLocation {
	if !field.Alias.IsNil() {
		return field.Alias.Loc
	}
	return field.Name.Loc
}

// GetDirectives implements Selection.
func (field *Field) GetDirectives() Directives {
	return field.Directives
}

// ResponseKey returns the key under which the field value appears in the response: the alias if
// given, otherwise the field name.
func (field *Field) ResponseKey() string {
	if !field.Alias.IsNil() {
		return field.Alias.Value
	}
	return field.Name.Value
}

// FragmentSpread includes a named fragment.
type FragmentSpread struct {
	Name       Name
	Directives Directives
	Loc        token.SourceLocation
}

// Location implements Node.
func (spread *FragmentSpread) Location() token.SourceLocation {
	return spread.Loc
}

// GetDirectives implements Selection.
func (spread *FragmentSpread) GetDirectives() Directives {
	return spread.Directives
}

// InlineFragment is an anonymous fragment with an optional type condition.
type InlineFragment struct {
	TypeCondition NamedType // zero value when absent
	Directives    Directives
	SelectionSet  SelectionSet
	Loc           token.SourceLocation
}

// Location implements Node.
func (fragment *InlineFragment) Location() token.SourceLocation {
	return fragment.Loc
}

// GetDirectives implements Selection.
func (fragment *InlineFragment) GetDirectives() Directives {
	return fragment.Directives
}

// HasTypeCondition returns true if the fragment has a type condition.
func (fragment *InlineFragment) HasTypeCondition() bool {
	return !fragment.TypeCondition.Name.IsNil()
}

//===----------------------------------------------------------------------------------------====//
// Arguments and Directives
//===----------------------------------------------------------------------------------------====//

// Argument is a name-value pair passed to a field or a directive.
type Argument struct {
	Name  Name
	Value Value
}

// Location implements Node.
func (arg *Argument) Location() token.SourceLocation {
	return arg.Name.Loc
}

// Arguments is a list of Argument's.
type Arguments []*Argument

// Get returns the argument with given name or nil.
func (args Arguments) Get(name string) *Argument {
	for _, arg := range args {
		if arg.Name.Value == name {
			return arg
		}
	}
	return nil
}

// Directive annotates a node.
type Directive struct {
	Name      Name
	Arguments Arguments
}

// Location implements Node.
func (directive *Directive) Location() token.SourceLocation {
	return directive.Name.Loc
}

// Directives is a list of Directive's.
type Directives []*Directive

// Get returns the first directive with given name or nil.
func (directives Directives) Get(name string) *Directive {
	for _, directive := range directives {
		if directive.Name.Value == name {
			return directive
		}
	}
	return nil
}

//===----------------------------------------------------------------------------------------====//
// Values
//===----------------------------------------------------------------------------------------====//

// Value is an input value literal or a variable.
type Value interface {
	Node
	isValue()
}

// Variable references a variable by name ("$name").
type Variable struct {
	Name Name
}

// IntValue holds an integer literal as written.
type IntValue struct {
	Value string
	Loc   token.SourceLocation
}

// FloatValue holds a float literal as written.
type FloatValue struct {
	Value string
	Loc   token.SourceLocation
}

// StringValue holds a string or block string literal.
type StringValue struct {
	Value string
	Block bool
	Loc   token.SourceLocation
}

// BooleanValue holds true or false.
type BooleanValue struct {
	Value bool
	Loc   token.SourceLocation
}

// NullValue is the null literal.
type NullValue struct {
	Loc token.SourceLocation
}

// EnumValue holds an enum literal.
type EnumValue struct {
	Value string
	Loc   token.SourceLocation
}

// ListValue is a list literal.
type ListValue struct {
	Values []Value
	Loc    token.SourceLocation
}

// ObjectField is a name-value pair in an input object literal.
type ObjectField struct {
	Name  Name
	Value Value
}

// ObjectValue is an input object literal.
type ObjectValue struct {
	Fields []*ObjectField
	Loc    token.SourceLocation
}

func (Variable) isValue()     {}
func (IntValue) isValue()     {}
func (FloatValue) isValue()   {}
func (StringValue) isValue()  {}
func (BooleanValue) isValue() {}
func (NullValue) isValue()    {}
func (EnumValue) isValue()    {}
func (ListValue) isValue()    {}
func (ObjectValue) isValue()  {}

// Location implements Node.
func (v Variable) Location() token.SourceLocation { return v.Name.Loc }

// Location implements Node.
func (v IntValue) Location() token.SourceLocation { return v.Loc }

// Location implements Node.
func (v FloatValue) Location() token.SourceLocation { return v.Loc }

// Location implements Node.
func (v StringValue) Location() token.SourceLocation { return v.Loc }

// Location implements Node.
func (v BooleanValue) Location() token.SourceLocation { return v.Loc }

// Location implements Node.
func (v NullValue) Location() token.SourceLocation { return v.Loc }

// Location implements Node.
func (v EnumValue) Location() token.SourceLocation { return v.Loc }

// Location implements Node.
func (v ListValue) Location() token.SourceLocation { return v.Loc }

// Location implements Node.
func (v ObjectValue) Location() token.SourceLocation { return v.Loc }

//===----------------------------------------------------------------------------------------====//
// Types
//===----------------------------------------------------------------------------------------====//

// Type is a NamedType, a ListType or a NonNullType.
type Type interface {
	Node
	isType()
}

// NamedType references a type by name.
type NamedType struct {
	Name Name
}

// ListType wraps an item type.
type ListType struct {
	ItemType Type
	Loc      token.SourceLocation
}

// NonNullType wraps a nullable type.
type NonNullType struct {
	Type Type
}

func (NamedType) isType()   {}
func (ListType) isType()    {}
func (NonNullType) isType() {}

// Location implements Node.
func (t NamedType) Location() token.SourceLocation { return t.Name.Loc }

// Location implements Node.
func (t ListType) Location() token.SourceLocation { return t.Loc }

// Location implements Node.
func (t NonNullType) Location() token.SourceLocation { return t.Type.Location() }
