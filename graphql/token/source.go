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

package token

// SourceLocationInfo describes a source location with source name, line and column number.
type SourceLocationInfo struct {
	Name   string
	Line   uint
	Column uint
}

// Source represent a GraphQL source text.
type Source struct {
	body []byte
	name string
}

// NewSource creates a Source from a document text. The name is used in error messages and defaults
// to "GraphQL request".
func NewSource(body string, name ...string) *Source {
	source := &Source{
		body: []byte(body),
		name: "GraphQL request",
	}
	if len(name) > 0 && len(name[0]) > 0 {
		source.name = name[0]
	}
	return source
}

// Body returns the document text.
func (source *Source) Body() []byte {
	return source.body
}

// Name returns the source name.
func (source *Source) Name() string {
	return source.name
}

// Size returns the body size in bytes.
func (source *Source) Size() uint {
	return uint(len(source.body))
}

// At returns the byte at given position or 0 when pos is out of range.
func (source *Source) At(pos uint) byte {
	if pos >= source.Size() {
		return 0
	}
	return source.body[pos]
}

// LocationFromPos returns a SourceLocation that represent the location for given position in the
// body.
func (source *Source) LocationFromPos(bytePos uint) SourceLocation {
	if bytePos > source.Size() {
		panic("illegal byte position value")
	}
	return SourceLocation(bytePos + 1)
}

// LocationInfoOf computes the line and column for a given SourceLocation. "\r\n" counts as a single
// line terminator.
func (source *Source) LocationInfoOf(loc SourceLocation) SourceLocationInfo {
	if !loc.IsValid() {
		return SourceLocationInfo{
			Name: source.name,
		}
	}

	var (
		line     uint = 1
		column   uint = 1
		body          = source.body
		size          = source.Size()
		position      = uint(loc) - 1
	)
	if position > size {
		position = size
	}

	for i := uint(0); i < position; i++ {
		switch body[i] {
		case '\r':
			if i+1 < size && body[i+1] == '\n' {
				// Let the "\n" advance the line.
				column++
				continue
			}
			line++
			column = 1
		case '\n':
			line++
			column = 1
		default:
			column++
		}
	}

	return SourceLocationInfo{
		Name:   source.name,
		Line:   line,
		Column: column,
	}
}
