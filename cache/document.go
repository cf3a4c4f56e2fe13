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

	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
	"github.com/botobag/graphcache/graphql/parser"

	"github.com/cespare/xxhash/v2"
)

// Document is a parsed document prepared for the cache: its main operation, its fragments by name,
// its printed form and a key derived from it.
type Document struct {
	ast       ast.Document
	operation *ast.OperationDefinition
	fragments map[string]*ast.FragmentDefinition
	printed   string
	key       string
}

func hashKey(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// ParseDocument parses source into a Document.
func ParseDocument(source string) (*Document, error) {
	doc, err := parser.ParseString(source)
	if err != nil {
		return nil, err
	}
	return NewDocument(doc)
}

// MustParseDocument is like ParseDocument but panics on error.
func MustParseDocument(source string) *Document {
	doc, err := ParseDocument(source)
	if err != nil {
		panic(err)
	}
	return doc
}

// NewDocument prepares a parsed document. The first operation in the document is its main
// operation. A document with only fragments is valid for ReadFragment and WriteFragment.
func NewDocument(doc ast.Document) (*Document, error) {
	d := &Document{
		ast:       doc,
		fragments: map[string]*ast.FragmentDefinition{},
		printed:   ast.Print(doc),
	}
	d.key = hashKey(d.printed)

	if operations := doc.Operations(); len(operations) > 0 {
		d.operation = operations[0]
	}
	for _, fragment := range doc.Fragments() {
		name := fragment.Name.Value
		if _, exists := d.fragments[name]; exists {
			return nil, graphql.NewError(fmt.Sprintf(`There can be only one fragment named "%s".`, name), graphql.ErrKindInvalidData)
		}
		d.fragments[name] = fragment
	}
	if d.operation == nil && len(d.fragments) == 0 {
		return nil, graphql.NewError("Document has neither operation nor fragment.", graphql.ErrKindInvalidData)
	}

	return d, nil
}

// AST returns the parsed document.
func (d *Document) AST() ast.Document {
	return d.ast
}

// Operation returns the main operation or nil for a fragment-only document.
func (d *Document) Operation() *ast.OperationDefinition {
	return d.operation
}

// OperationType returns the type of the main operation.
func (d *Document) OperationType() ast.OperationType {
	if d.operation == nil {
		return ast.OperationTypeQuery
	}
	return d.operation.Operation
}

// Name returns the name of the main operation, if any.
func (d *Document) Name() string {
	if d.operation == nil {
		return ""
	}
	return d.operation.Name.Value
}

// Fragment looks up a fragment by name.
func (d *Document) Fragment(name string) (*ast.FragmentDefinition, bool) {
	fragment, ok := d.fragments[name]
	return fragment, ok
}

// Fragments returns the fragments by name. The map must not be modified.
func (d *Document) Fragments() map[string]*ast.FragmentDefinition {
	return d.fragments
}

// Key identifies documents with the same printed form.
func (d *Document) Key() string {
	return d.key
}

// String returns the printed document.
func (d *Document) String() string {
	return d.printed
}

// Request pairs a document with variables. Key identifies the pair: two requests with the same
// printed document and canonically equal variables have the same key.
type Request struct {
	Document  *Document
	Variables map[string]interface{}
	Key       string
}

// NewRequest creates a Request.
func NewRequest(doc *Document, variables map[string]interface{}) Request {
	return Request{
		Document:  doc,
		Variables: variables,
		Key:       requestKey(doc, variables),
	}
}

func requestKey(doc *Document, variables map[string]interface{}) string {
	if variables == nil {
		variables = map[string]interface{}{}
	}
	return hashKey(doc.key + ":" + keys.Stringify(variables))
}

// Operation is one execution of a request. Key tells concurrent executions of the same request
// apart and names the optimistic layer of a mutation. It defaults to the request key.
type Operation struct {
	Request Request
	Key     string
}

// NewOperation creates an Operation for the request.
func NewOperation(req Request, key string) Operation {
	return Operation{
		Request: req,
		Key:     key,
	}
}

func (op Operation) key() string {
	if len(op.Key) > 0 {
		return op.Key
	}
	return op.Request.Key
}

// variablesWithDefaults overlays the provided variables over the defaults declared by the operation.
func variablesWithDefaults(operation *ast.OperationDefinition, variables map[string]interface{}) map[string]interface{} {
	if operation == nil || len(operation.VariableDefinitions) == 0 {
		return variables
	}

	result := make(map[string]interface{}, len(operation.VariableDefinitions)+len(variables))
	for _, varDef := range operation.VariableDefinitions {
		if varDef.DefaultValue == nil {
			continue
		}
		if value, ok := ast.ValueOf(varDef.DefaultValue, nil); ok {
			result[varDef.Variable.Name.Value] = value
		}
	}
	for name, value := range variables {
		if !keys.IsUndefined(value) {
			result[name] = value
		}
	}
	return result
}
