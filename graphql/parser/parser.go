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

package parser

import (
	"fmt"

	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
	"github.com/botobag/graphcache/graphql/lexer"
	"github.com/botobag/graphcache/graphql/token"
)

// parser holds internal state during parsing.
type parser struct {
	lexer *lexer.Lexer
}

// newParser creates a parser and advances past <SOF>.
func newParser(source *token.Source) (*parser, error) {
	if source == nil {
		return nil, graphql.NewError("Must provide Source. Received: nil")
	}
	p := &parser{
		lexer: lexer.New(source),
	}
	if _, err := p.lexer.Advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// peek returns current token without consuming it.
func (p *parser) peek() *token.Token {
	return p.lexer.Token()
}

func (p *parser) advance() error {
	_, err := p.lexer.Advance()
	return err
}

// skip advances the lexer and returns true if the current token is of the given kind.
func (p *parser) skip(kind token.Kind) (bool, error) {
	if p.peek().Kind != kind {
		return false, nil
	}
	return true, p.advance()
}

// expect returns the current token after advancing the lexer if it is of the given kind; otherwise
// it returns a syntax error.
func (p *parser) expect(kind token.Kind) (*token.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return nil, p.syntaxError(tok, "Expected %v, found %s", kind, tok.Description())
	}
	return tok, p.advance()
}

// expectKeyword is like expect but requires a Name token with the given value.
func (p *parser) expectKeyword(keyword string) error {
	tok := p.peek()
	if tok.Kind != token.KindName || tok.Value != keyword {
		return p.syntaxError(tok, `Expected "%s", found %s`, keyword, tok.Description())
	}
	return p.advance()
}

func (p *parser) unexpected(tok *token.Token) error {
	return p.syntaxError(tok, "Unexpected %s", tok.Description())
}

func (p *parser) syntaxError(tok *token.Token, format string, args ...interface{}) error {
	return graphql.NewSyntaxError(p.lexer.Source(), tok.Location, fmt.Sprintf(format, args...))
}

// many parses a non-empty list of nodes with parseFunc between openKind and closeKind. It advances
// past the closing token.
func many[T any](p *parser, openKind token.Kind, parseFunc func() (T, error), closeKind token.Kind) ([]T, error) {
	if _, err := p.expect(openKind); err != nil {
		return nil, err
	}

	var nodes []T
	for {
		node, err := parseFunc()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)

		closed, err := p.skip(closeKind)
		if err != nil {
			return nil, err
		} else if closed {
			return nodes, nil
		}
	}
}

// optionalMany is like many but returns nil without consuming anything if the current token is not
// openKind.
func optionalMany[T any](p *parser, openKind token.Kind, parseFunc func() (T, error), closeKind token.Kind) ([]T, error) {
	if p.peek().Kind != openKind {
		return nil, nil
	}
	return many(p, openKind, parseFunc, closeKind)
}

func (p *parser) parseName() (ast.Name, error) {
	tok, err := p.expect(token.KindName)
	if err != nil {
		return ast.Name{}, err
	}
	return ast.Name{
		Value: tok.Value,
		Loc:   tok.Location,
	}, nil
}

//===----------------------------------------------------------------------------------------====//
// Document
//===----------------------------------------------------------------------------------------====//

// Document : Definition+
func (p *parser) parseDocument() (ast.Document, error) {
	var doc ast.Document
	for {
		definition, err := p.parseDefinition()
		if err != nil {
			return ast.Document{}, err
		}
		doc.Definitions = append(doc.Definitions, definition)

		if p.peek().Kind == token.KindEOF {
			return doc, nil
		}
	}
}

// Definition :
//   - OperationDefinition
//   - FragmentDefinition
func (p *parser) parseDefinition() (ast.Definition, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.KindLeftBrace:
		return p.parseOperationDefinition()
	case token.KindName:
		switch tok.Value {
		case "query", "mutation", "subscription":
			return p.parseOperationDefinition()
		case "fragment":
			return p.parseFragmentDefinition()
		}
	}
	return nil, p.unexpected(tok)
}

// OperationDefinition :
//   - SelectionSet
//   - OperationType Name? VariableDefinitions? Directives? SelectionSet
func (p *parser) parseOperationDefinition() (*ast.OperationDefinition, error) {
	start := p.peek()
	operation := &ast.OperationDefinition{
		Operation: ast.OperationTypeQuery,
		Loc:       start.Location,
	}

	var err error
	if start.Kind == token.KindLeftBrace {
		operation.SelectionSet, err = p.parseSelectionSet()
		if err != nil {
			return nil, err
		}
		return operation, nil
	}

	operation.Operation = ast.OperationType(start.Value)
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.peek().Kind == token.KindName {
		if operation.Name, err = p.parseName(); err != nil {
			return nil, err
		}
	}

	operation.VariableDefinitions, err = optionalMany(p, token.KindLeftParen, p.parseVariableDefinition, token.KindRightParen)
	if err != nil {
		return nil, err
	}

	if operation.Directives, err = p.parseDirectives(false); err != nil {
		return nil, err
	}

	if operation.SelectionSet, err = p.parseSelectionSet(); err != nil {
		return nil, err
	}

	return operation, nil
}

// VariableDefinition : Variable : Type DefaultValue?
func (p *parser) parseVariableDefinition() (*ast.VariableDefinition, error) {
	variable, err := p.parseVariable()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.KindColon); err != nil {
		return nil, err
	}

	t, err := p.parseType()
	if err != nil {
		return nil, err
	}

	varDef := &ast.VariableDefinition{
		Variable: variable,
		Type:     t,
	}

	if hasDefault, err := p.skip(token.KindEquals); err != nil {
		return nil, err
	} else if hasDefault {
		if varDef.DefaultValue, err = p.parseValue(true); err != nil {
			return nil, err
		}
	}

	return varDef, nil
}

// Variable : $ Name
func (p *parser) parseVariable() (ast.Variable, error) {
	if _, err := p.expect(token.KindDollar); err != nil {
		return ast.Variable{}, err
	}
	name, err := p.parseName()
	if err != nil {
		return ast.Variable{}, err
	}
	return ast.Variable{Name: name}, nil
}

// SelectionSet : { Selection+ }
func (p *parser) parseSelectionSet() (ast.SelectionSet, error) {
	return many(p, token.KindLeftBrace, p.parseSelection, token.KindRightBrace)
}

// Selection :
//   - Field
//   - FragmentSpread
//   - InlineFragment
func (p *parser) parseSelection() (ast.Selection, error) {
	if p.peek().Kind == token.KindSpread {
		return p.parseFragment()
	}
	return p.parseField()
}

// Field : Alias? Name Arguments? Directives? SelectionSet?
//
// Alias : Name :
func (p *parser) parseField() (*ast.Field, error) {
	nameOrAlias, err := p.parseName()
	if err != nil {
		return nil, err
	}

	field := &ast.Field{}
	if hasAlias, err := p.skip(token.KindColon); err != nil {
		return nil, err
	} else if hasAlias {
		field.Alias = nameOrAlias
		if field.Name, err = p.parseName(); err != nil {
			return nil, err
		}
	} else {
		field.Name = nameOrAlias
	}

	if field.Arguments, err = p.parseArguments(false); err != nil {
		return nil, err
	}

	if field.Directives, err = p.parseDirectives(false); err != nil {
		return nil, err
	}

	if p.peek().Kind == token.KindLeftBrace {
		if field.SelectionSet, err = p.parseSelectionSet(); err != nil {
			return nil, err
		}
	}

	return field, nil
}

// Arguments : ( Argument+ )
func (p *parser) parseArguments(isConst bool) (ast.Arguments, error) {
	return optionalMany(p, token.KindLeftParen, func() (*ast.Argument, error) {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.KindColon); err != nil {
			return nil, err
		}

		value, err := p.parseValue(isConst)
		if err != nil {
			return nil, err
		}

		return &ast.Argument{
			Name:  name,
			Value: value,
		}, nil
	}, token.KindRightParen)
}

//===----------------------------------------------------------------------------------------====//
// Fragments
//===----------------------------------------------------------------------------------------====//

// Corresponds to both FragmentSpread and InlineFragment in the GraphQL grammar.
//
// FragmentSpread : ... FragmentName Directives?
//
// InlineFragment : ... TypeCondition? Directives? SelectionSet
func (p *parser) parseFragment() (ast.Selection, error) {
	spread, err := p.expect(token.KindSpread)
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind == token.KindName && tok.Value != "on" {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		directives, err := p.parseDirectives(false)
		if err != nil {
			return nil, err
		}
		return &ast.FragmentSpread{
			Name:       name,
			Directives: directives,
			Loc:        spread.Location,
		}, nil
	}

	fragment := &ast.InlineFragment{
		Loc: spread.Location,
	}

	if tok := p.peek(); tok.Kind == token.KindName && tok.Value == "on" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if fragment.TypeCondition, err = p.parseNamedType(); err != nil {
			return nil, err
		}
	}

	if fragment.Directives, err = p.parseDirectives(false); err != nil {
		return nil, err
	}

	if fragment.SelectionSet, err = p.parseSelectionSet(); err != nil {
		return nil, err
	}

	return fragment, nil
}

// FragmentDefinition : fragment FragmentName TypeCondition Directives? SelectionSet
//
// TypeCondition : on NamedType
func (p *parser) parseFragmentDefinition() (*ast.FragmentDefinition, error) {
	start := p.peek()
	if err := p.expectKeyword("fragment"); err != nil {
		return nil, err
	}

	// FragmentName : Name but not `on`
	if tok := p.peek(); tok.Kind == token.KindName && tok.Value == "on" {
		return nil, p.unexpected(tok)
	}

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	if err := p.expectKeyword("on"); err != nil {
		return nil, err
	}

	fragment := &ast.FragmentDefinition{
		Name: name,
		Loc:  start.Location,
	}

	if fragment.TypeCondition, err = p.parseNamedType(); err != nil {
		return nil, err
	}

	if fragment.Directives, err = p.parseDirectives(false); err != nil {
		return nil, err
	}

	if fragment.SelectionSet, err = p.parseSelectionSet(); err != nil {
		return nil, err
	}

	return fragment, nil
}

//===----------------------------------------------------------------------------------------====//
// Values
//===----------------------------------------------------------------------------------------====//

// Value[Const] :
//   - [~Const] Variable
//   - IntValue
//   - FloatValue
//   - StringValue
//   - BooleanValue
//   - NullValue
//   - EnumValue
//   - ListValue[?Const]
//   - ObjectValue[?Const]
func (p *parser) parseValue(isConst bool) (ast.Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.KindLeftBracket:
		values, err := p.parseListValues(isConst)
		if err != nil {
			return nil, err
		}
		return ast.ListValue{Values: values, Loc: tok.Location}, nil

	case token.KindLeftBrace:
		fields, err := p.parseObjectFields(isConst)
		if err != nil {
			return nil, err
		}
		return ast.ObjectValue{Fields: fields, Loc: tok.Location}, nil

	case token.KindInt:
		return ast.IntValue{Value: tok.Value, Loc: tok.Location}, p.advance()

	case token.KindFloat:
		return ast.FloatValue{Value: tok.Value, Loc: tok.Location}, p.advance()

	case token.KindString, token.KindBlockString:
		return ast.StringValue{
			Value: tok.Value,
			Block: tok.Kind == token.KindBlockString,
			Loc:   tok.Location,
		}, p.advance()

	case token.KindName:
		var value ast.Value
		switch tok.Value {
		case "true", "false":
			value = ast.BooleanValue{Value: tok.Value == "true", Loc: tok.Location}
		case "null":
			value = ast.NullValue{Loc: tok.Location}
		default:
			value = ast.EnumValue{Value: tok.Value, Loc: tok.Location}
		}
		return value, p.advance()

	case token.KindDollar:
		if !isConst {
			return p.parseVariable()
		}
	}

	return nil, p.unexpected(tok)
}

// ListValue[Const] :
//   - [ ]
//   - [ Value[?Const]+ ]
func (p *parser) parseListValues(isConst bool) ([]ast.Value, error) {
	if _, err := p.expect(token.KindLeftBracket); err != nil {
		return nil, err
	}

	values := []ast.Value{}
	for {
		if closed, err := p.skip(token.KindRightBracket); err != nil {
			return nil, err
		} else if closed {
			return values, nil
		}

		value, err := p.parseValue(isConst)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
}

// ObjectValue[Const] :
//   - { }
//   - { ObjectField[?Const]+ }
func (p *parser) parseObjectFields(isConst bool) ([]*ast.ObjectField, error) {
	if _, err := p.expect(token.KindLeftBrace); err != nil {
		return nil, err
	}

	fields := []*ast.ObjectField{}
	for {
		if closed, err := p.skip(token.KindRightBrace); err != nil {
			return nil, err
		} else if closed {
			return fields, nil
		}

		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.KindColon); err != nil {
			return nil, err
		}

		value, err := p.parseValue(isConst)
		if err != nil {
			return nil, err
		}

		fields = append(fields, &ast.ObjectField{
			Name:  name,
			Value: value,
		})
	}
}

//===----------------------------------------------------------------------------------------====//
// Directives
//===----------------------------------------------------------------------------------------====//

// Directives[Const] : Directive[?Const]+
//
// Directive[Const] : @ Name Arguments[?Const]?
func (p *parser) parseDirectives(isConst bool) (ast.Directives, error) {
	var directives ast.Directives
	for p.peek().Kind == token.KindAt {
		if err := p.advance(); err != nil {
			return nil, err
		}

		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		args, err := p.parseArguments(isConst)
		if err != nil {
			return nil, err
		}

		directives = append(directives, &ast.Directive{
			Name:      name,
			Arguments: args,
		})
	}
	return directives, nil
}

//===----------------------------------------------------------------------------------------====//
// Types
//===----------------------------------------------------------------------------------------====//

// Type :
//   - NamedType
//   - ListType
//   - NonNullType
func (p *parser) parseType() (ast.Type, error) {
	var t ast.Type

	if start := p.peek(); start.Kind == token.KindLeftBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		itemType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KindRightBracket); err != nil {
			return nil, err
		}
		t = ast.ListType{ItemType: itemType, Loc: start.Location}
	} else {
		named, err := p.parseNamedType()
		if err != nil {
			return nil, err
		}
		t = named
	}

	if nonNull, err := p.skip(token.KindBang); err != nil {
		return nil, err
	} else if nonNull {
		return ast.NonNullType{Type: t}, nil
	}

	return t, nil
}

// NamedType : Name
func (p *parser) parseNamedType() (ast.NamedType, error) {
	name, err := p.parseName()
	if err != nil {
		return ast.NamedType{}, err
	}
	return ast.NamedType{Name: name}, nil
}
