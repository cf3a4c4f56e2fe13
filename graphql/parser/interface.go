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
	"github.com/botobag/graphcache/graphql/ast"
	"github.com/botobag/graphcache/graphql/token"
)

// Parse parses the given GraphQL source into a Document. Only executable definitions are accepted.
func Parse(source *token.Source) (ast.Document, error) {
	p, err := newParser(source)
	if err != nil {
		return ast.Document{}, err
	}
	return p.parseDocument()
}

// ParseString is a shortcut to Parse a document text.
func ParseString(body string) (ast.Document, error) {
	return Parse(token.NewSource(body))
}

// ParseValue parses the AST for string containing a GraphQL value (e.g., `[42]`).
func ParseValue(source *token.Source) (ast.Value, error) {
	p, err := newParser(source)
	if err != nil {
		return nil, err
	}

	value, err := p.parseValue(false /* isConst */)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.KindEOF); err != nil {
		return nil, err
	}

	return value, nil
}
