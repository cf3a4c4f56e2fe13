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
	"fmt"
	"strings"

	"github.com/botobag/graphcache/jsonwriter"
)

// Print converts an AST into a string using formatting rules compatible with graphql-js. The output
// is stable for equal documents which makes it suitable for computing document keys.
func Print(node Node) string {
	p := &printer{}
	p.printNode(node)
	return p.String()
}

type printer struct {
	strings.Builder
	indentLevel int
}

func (p *printer) beginBlock() {
	p.WriteString("{")
	p.indentLevel++
}

func (p *printer) endBlock() {
	p.indentLevel--
	p.newLine()
	p.WriteString("}")
}

func (p *printer) newLine() {
	p.WriteString("\n")
	p.WriteString(strings.Repeat("  ", p.indentLevel))
}

// join prints items separated by sep.
func join[T any](p *printer, items []T, sep string, print func(T)) {
	for i, item := range items {
		if i > 0 {
			p.WriteString(sep)
		}
		print(item)
	}
}

func (p *printer) printNode(node Node) {
	switch node := node.(type) {
	case Document:
		p.printDocument(node)
	case *Document:
		p.printDocument(*node)
	case Definition:
		p.printDefinition(node)
	case Selection:
		p.printSelection(node)
	case Value:
		p.printValue(node)
	case Type:
		p.printType(node)
	case *Directive:
		p.printDirective(node)
	case Name:
		p.WriteString(node.Value)
	default:
		panic(fmt.Sprintf("unsupported node type %T to print", node))
	}
}

func (p *printer) printDocument(doc Document) {
	join(p, doc.Definitions, "\n\n", p.printDefinition)
	p.WriteString("\n")
}

func (p *printer) printDefinition(node Definition) {
	switch node := node.(type) {
	case *OperationDefinition:
		p.printOperationDefinition(node)
	case *FragmentDefinition:
		p.printFragmentDefinition(node)
	default:
		panic(fmt.Sprintf("unexpected node type %T when printing Definition", node))
	}
}

func (p *printer) printOperationDefinition(operation *OperationDefinition) {
	var (
		name    = operation.Name
		varDefs = operation.VariableDefinitions
	)

	// Anonymous query shorthand
	if name.IsNil() && len(operation.Directives) == 0 && len(varDefs) == 0 &&
		operation.Operation == OperationTypeQuery {
		p.printSelectionSet(operation.SelectionSet)
		return
	}

	p.WriteString(string(operation.Operation))
	if !name.IsNil() || len(varDefs) > 0 {
		p.WriteString(" ")
		p.WriteString(name.Value)
		if len(varDefs) > 0 {
			p.WriteString("(")
			join(p, varDefs, ", ", p.printVariableDefinition)
			p.WriteString(")")
		}
	}
	p.printDirectivesWithSpace(operation.Directives)
	p.WriteString(" ")
	p.printSelectionSet(operation.SelectionSet)
}

func (p *printer) printVariableDefinition(varDef *VariableDefinition) {
	p.printValue(varDef.Variable)
	p.WriteString(": ")
	p.printType(varDef.Type)
	if varDef.DefaultValue != nil {
		p.WriteString(" = ")
		p.printValue(varDef.DefaultValue)
	}
}

func (p *printer) printFragmentDefinition(fragment *FragmentDefinition) {
	p.WriteString("fragment ")
	p.WriteString(fragment.Name.Value)
	p.WriteString(" on ")
	p.WriteString(fragment.TypeCondition.Name.Value)
	p.printDirectivesWithSpace(fragment.Directives)
	p.WriteString(" ")
	p.printSelectionSet(fragment.SelectionSet)
}

func (p *printer) printSelectionSet(selectionSet SelectionSet) {
	if len(selectionSet) == 0 {
		return
	}
	p.beginBlock()
	for _, selection := range selectionSet {
		p.newLine()
		p.printSelection(selection)
	}
	p.endBlock()
}

func (p *printer) printSelection(node Selection) {
	switch node := node.(type) {
	case *Field:
		p.printField(node)
	case *FragmentSpread:
		p.WriteString("...")
		p.WriteString(node.Name.Value)
		p.printDirectivesWithSpace(node.Directives)
	case *InlineFragment:
		p.WriteString("...")
		if node.HasTypeCondition() {
			p.WriteString(" on ")
			p.WriteString(node.TypeCondition.Name.Value)
		}
		p.printDirectivesWithSpace(node.Directives)
		p.WriteString(" ")
		p.printSelectionSet(node.SelectionSet)
	default:
		panic(fmt.Sprintf("unexpected node type %T when printing Selection", node))
	}
}

func (p *printer) printField(field *Field) {
	if !field.Alias.IsNil() {
		p.WriteString(field.Alias.Value)
		p.WriteString(": ")
	}
	p.WriteString(field.Name.Value)
	p.printArguments(field.Arguments)
	p.printDirectivesWithSpace(field.Directives)
	if len(field.SelectionSet) > 0 {
		p.WriteString(" ")
		p.printSelectionSet(field.SelectionSet)
	}
}

func (p *printer) printArguments(args Arguments) {
	if len(args) == 0 {
		return
	}
	p.WriteString("(")
	join(p, args, ", ", func(arg *Argument) {
		p.WriteString(arg.Name.Value)
		p.WriteString(": ")
		p.printValue(arg.Value)
	})
	p.WriteString(")")
}

func (p *printer) printDirectivesWithSpace(directives Directives) {
	if len(directives) > 0 {
		p.WriteString(" ")
		join(p, directives, " ", p.printDirective)
	}
}

func (p *printer) printDirective(directive *Directive) {
	p.WriteString("@")
	p.WriteString(directive.Name.Value)
	p.printArguments(directive.Arguments)
}

func (p *printer) printValue(node Value) {
	switch node := node.(type) {
	case Variable:
		p.WriteString("$")
		p.WriteString(node.Name.Value)
	case IntValue:
		p.WriteString(node.Value)
	case FloatValue:
		p.WriteString(node.Value)
	case EnumValue:
		p.WriteString(node.Value)
	case BooleanValue:
		if node.Value {
			p.WriteString("true")
		} else {
			p.WriteString("false")
		}
	case NullValue:
		p.WriteString("null")
	case StringValue:
		if node.Block {
			p.printBlockString(node.Value)
		} else {
			// graphql-js: JSON.stringify(value)
			p.WriteString(jsonwriter.Quote(node.Value))
		}
	case ListValue:
		p.WriteString("[")
		join(p, node.Values, ", ", p.printValue)
		p.WriteString("]")
	case ObjectValue:
		p.WriteString("{")
		join(p, node.Fields, ", ", func(field *ObjectField) {
			p.WriteString(field.Name.Value)
			p.WriteString(": ")
			p.printValue(field.Value)
		})
		p.WriteString("}")
	default:
		panic(fmt.Sprintf("unexpected node type %T when printing Value", node))
	}
}

// printBlockString prints a block string in the indented block form. A single-line block string
// that starts with whitespace stays on one line so the whitespace survives.
func (p *printer) printBlockString(value string) {
	var (
		isSingleLine     = !strings.ContainsRune(value, '\n')
		hasLeadingSpace  = len(value) > 0 && (value[0] == ' ' || value[0] == '\t')
		hasTrailingQuote = len(value) > 0 && value[len(value)-1] == '"'
		multipleLines    = !isSingleLine || hasTrailingQuote
	)

	p.WriteString(`"""`)
	if multipleLines && !(isSingleLine && hasLeadingSpace) {
		p.newLine()
	}
	p.WriteString(strings.Replace(value, `"""`, `\"""`, -1))
	if multipleLines {
		p.newLine()
	}
	p.WriteString(`"""`)
}

func (p *printer) printType(node Type) {
	switch node := node.(type) {
	case NamedType:
		p.WriteString(node.Name.Value)
	case ListType:
		p.WriteString("[")
		p.printType(node.ItemType)
		p.WriteString("]")
	case NonNullType:
		p.printType(node.Type)
		p.WriteString("!")
	default:
		panic(fmt.Sprintf("unexpected node type %T when printing Type", node))
	}
}
