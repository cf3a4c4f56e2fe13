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

package lexer

import (
	"bytes"
	"fmt"

	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/token"
)

// Lexer is a stateful stream generator: every time it is advanced, it returns the next significant
// token in the Source. Whitespace, commas and comments are skipped. Once the end is reached, the
// lexer keeps returning the same EOF token.
type Lexer struct {
	source *token.Source

	// The currently focused token
	token *token.Token

	// Current offset into the source body
	bytePos uint
}

// New initializes a Lexer for given Source object. The current token is <SOF>.
func New(source *token.Source) *Lexer {
	return &Lexer{
		source: source,
		token: &token.Token{
			Kind: token.KindSOF,
		},
	}
}

// Source returns the source being lexed.
func (lexer *Lexer) Source() *token.Source {
	return lexer.source
}

// Token returns current token.
func (lexer *Lexer) Token() *token.Token {
	return lexer.token
}

// Advance the token stream to the next significant token.
func (lexer *Lexer) Advance() (*token.Token, error) {
	if lexer.token.Kind == token.KindEOF {
		return lexer.token, nil
	}
	tok, err := lexer.lexToken()
	if err != nil {
		return nil, err
	}
	lexer.token = tok
	return tok, nil
}

func (lexer *Lexer) peek() byte {
	return lexer.source.At(lexer.bytePos)
}

func (lexer *Lexer) consume() byte {
	b := lexer.source.At(lexer.bytePos)
	if lexer.bytePos < lexer.source.Size() {
		lexer.bytePos++
	}
	return b
}

func (lexer *Lexer) eof() bool {
	return lexer.bytePos >= lexer.source.Size()
}

func (lexer *Lexer) syntaxError(bytePos uint, format string, args ...interface{}) error {
	return graphql.NewSyntaxError(lexer.source, lexer.source.LocationFromPos(bytePos), fmt.Sprintf(format, args...))
}

// skipIgnored skips BOM, white spaces, line terminators, commas and comments.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Source-Text.Ignored-Tokens
func (lexer *Lexer) skipIgnored() {
	body := lexer.source.Body()
	if lexer.bytePos == 0 && bytes.HasPrefix(body, []byte("\xEF\xBB\xBF")) {
		lexer.bytePos = 3
	}

	for !lexer.eof() {
		switch lexer.peek() {
		case '\t', ' ', ',', '\n', '\r':
			lexer.bytePos++

		case '#':
			// Comment runs to the end of line.
			for !lexer.eof() {
				char := lexer.peek()
				if char == '\n' || char == '\r' {
					break
				}
				lexer.bytePos++
			}

		default:
			return
		}
	}
}

func (lexer *Lexer) charAtPosToStr(bytePos uint) string {
	if bytePos >= lexer.source.Size() {
		return "<EOF>"
	}

	r := rune(lexer.source.At(bytePos))
	if r >= 0x20 && r < 0x7F {
		return fmt.Sprintf(`"%c"`, r)
	}
	return fmt.Sprintf(`"\u%04X"`, r)
}

func (lexer *Lexer) unexpectedCharacter(bytePos uint) error {
	char := lexer.source.At(bytePos)
	switch {
	case char < 0x0020 && char != '\t' && char != '\n' && char != '\r':
		return lexer.syntaxError(bytePos, "Cannot contain the invalid character %s.", lexer.charAtPosToStr(bytePos))
	case char == '\'':
		return lexer.syntaxError(bytePos, "Unexpected single quote character ('), did you mean to use a double quote (\")?")
	}
	return lexer.syntaxError(bytePos, "Cannot parse the unexpected character %s.", lexer.charAtPosToStr(bytePos))
}

func (lexer *Lexer) makeToken(kind token.Kind, startPos uint, value string) *token.Token {
	return &token.Token{
		Kind:     kind,
		Location: lexer.source.LocationFromPos(startPos),
		Length:   lexer.bytePos - startPos,
		Value:    value,
	}
}

var punctuators = map[byte]token.Kind{
	'!': token.KindBang,
	'$': token.KindDollar,
	'(': token.KindLeftParen,
	')': token.KindRightParen,
	':': token.KindColon,
	'=': token.KindEquals,
	'@': token.KindAt,
	'[': token.KindLeftBracket,
	']': token.KindRightBracket,
	'{': token.KindLeftBrace,
	'}': token.KindRightBrace,
}

// lexToken reads the next token starting at bytePos.
func (lexer *Lexer) lexToken() (*token.Token, error) {
	lexer.skipIgnored()

	startPos := lexer.bytePos
	if lexer.eof() {
		return lexer.makeToken(token.KindEOF, startPos, ""), nil
	}

	char := lexer.peek()
	if kind, ok := punctuators[char]; ok {
		lexer.consume()
		return lexer.makeToken(kind, startPos, ""), nil
	}

	switch {
	case char == '.':
		for i := 0; i < 3; i++ {
			if lexer.peek() != '.' {
				return nil, lexer.unexpectedCharacter(startPos)
			}
			lexer.consume()
		}
		return lexer.makeToken(token.KindSpread, startPos, ""), nil

	case char == '_' || (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z'):
		return lexer.lexName(), nil

	case char == '-' || (char >= '0' && char <= '9'):
		return lexer.lexNumber()

	case char == '"':
		body := lexer.source.Body()
		if bytes.HasPrefix(body[startPos:], []byte(`"""`)) {
			lexer.bytePos += 3
			return lexer.lexBlockString(startPos)
		}
		lexer.consume()
		return lexer.lexString(startPos)
	}

	return nil, lexer.unexpectedCharacter(startPos)
}

// lexName lexes a Name token from source.
//
//	Name ::
//		/[_A-Za-z][_0-9A-Za-z]*/
func (lexer *Lexer) lexName() *token.Token {
	startPos := lexer.bytePos
	lexer.consume()

	for {
		char := lexer.peek()
		if char == '_' ||
			(char >= '0' && char <= '9') ||
			(char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') {
			lexer.consume()
			continue
		}
		break
	}

	return lexer.makeToken(token.KindName, startPos, string(lexer.source.Body()[startPos:lexer.bytePos]))
}

func (lexer *Lexer) consumeDigits() byte {
	for {
		char := lexer.peek()
		if char < '0' || char > '9' {
			return char
		}
		lexer.consume()
	}
}

// expectDigits consumes at least one digit or reports what was found instead.
func (lexer *Lexer) expectDigits(what string) (byte, error) {
	char := lexer.peek()
	if char < '0' || char > '9' {
		return 0, lexer.syntaxError(lexer.bytePos, "Invalid number, expected digit %sbut got: %s.", what, lexer.charAtPosToStr(lexer.bytePos))
	}
	return lexer.consumeDigits(), nil
}

// lexNumber reads a number token from the source file, either a float or an int depending on
// whether a decimal point or an exponent appears.
func (lexer *Lexer) lexNumber() (*token.Token, error) {
	startPos := lexer.bytePos
	kind := token.KindInt

	if lexer.peek() == '-' {
		lexer.consume()
	}

	char := lexer.peek()
	if char == '0' {
		lexer.consume()
		char = lexer.peek()
		if char >= '0' && char <= '9' {
			return nil, lexer.syntaxError(lexer.bytePos, "Invalid number, unexpected digit after 0: %s.", lexer.charAtPosToStr(lexer.bytePos))
		}
	} else {
		var err error
		if char, err = lexer.expectDigits("after '-' "); err != nil {
			return nil, err
		}
	}

	if char == '.' {
		kind = token.KindFloat
		lexer.consume()
		var err error
		if char, err = lexer.expectDigits("after decimal point ('.') "); err != nil {
			return nil, err
		}
	}

	if char == 'E' || char == 'e' {
		kind = token.KindFloat
		lexer.consume()
		if char := lexer.peek(); char == '+' || char == '-' {
			lexer.consume()
		}
		if _, err := lexer.expectDigits(""); err != nil {
			return nil, err
		}
	}

	return lexer.makeToken(kind, startPos, string(lexer.source.Body()[startPos:lexer.bytePos])), nil
}

var escapedCharacters = map[byte]byte{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// lexString reads a string token. The opening quote was already consumed.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-String-Value
func (lexer *Lexer) lexString(startPos uint) (*token.Token, error) {
	var value bytes.Buffer
	for !lexer.eof() {
		char := lexer.peek()
		if char == '\n' || char == '\r' {
			break
		}

		if char == '"' {
			lexer.consume()
			return lexer.makeToken(token.KindString, startPos, value.String()), nil
		}

		if char < 0x0020 && char != '\t' {
			return nil, lexer.syntaxError(lexer.bytePos, "Invalid character within String: %s.", lexer.charAtPosToStr(lexer.bytePos))
		}

		lexer.consume()
		if char != '\\' {
			value.WriteByte(char)
			continue
		}

		escapePos := lexer.bytePos - 1
		char = lexer.consume()
		if escaped, ok := escapedCharacters[char]; ok {
			value.WriteByte(escaped)
			continue
		}

		if char != 'u' {
			return nil, lexer.syntaxError(escapePos, "Invalid character escape sequence: \\%c.", char)
		}

		body := lexer.source.Body()
		end := lexer.bytePos + 4
		if end > lexer.source.Size() {
			end = lexer.source.Size()
		}
		code := rune(-1)
		if end-lexer.bytePos == 4 {
			code = uniCharCode(body[lexer.bytePos], body[lexer.bytePos+1], body[lexer.bytePos+2], body[lexer.bytePos+3])
		}
		if code < 0 {
			return nil, lexer.syntaxError(escapePos, "Invalid character escape sequence: \\u%s.", string(body[lexer.bytePos:end]))
		}
		lexer.bytePos = end
		value.WriteRune(code)
	}

	return nil, lexer.syntaxError(lexer.bytePos, "Unterminated string.")
}

// Converts four hexadecimal chars to the integer that the string represents. Returns a negative
// number if a char was invalid.
func uniCharCode(a byte, b byte, c byte, d byte) rune {
	return (char2hex(a) << 12) | (char2hex(b) << 8) | (char2hex(c) << 4) | char2hex(d)
}

func char2hex(a byte) rune {
	switch {
	case a >= '0' && a <= '9':
		return rune(a - '0')
	case a >= 'A' && a <= 'F':
		return rune(a-'A') + 10
	case a >= 'a' && a <= 'f':
		return rune(a-'a') + 10
	}
	return -1
}

// lexBlockString reads a block string token. The opening triple-quote was already consumed.
func (lexer *Lexer) lexBlockString(startPos uint) (*token.Token, error) {
	var (
		value bytes.Buffer
		body  = lexer.source.Body()
	)
	for !lexer.eof() {
		rest := body[lexer.bytePos:]
		switch {
		case bytes.HasPrefix(rest, []byte(`"""`)):
			lexer.bytePos += 3
			return lexer.makeToken(token.KindBlockString, startPos, BlockStringValue(value.String())), nil

		case bytes.HasPrefix(rest, []byte(`\"""`)):
			lexer.bytePos += 4
			value.WriteString(`"""`)

		default:
			char := lexer.peek()
			if char < 0x0020 && char != '\t' && char != '\r' && char != '\n' {
				return nil, lexer.syntaxError(lexer.bytePos, "Invalid character within String: %s.", lexer.charAtPosToStr(lexer.bytePos))
			}
			lexer.consume()
			value.WriteByte(char)
		}
	}

	return nil, lexer.syntaxError(lexer.bytePos, "Unterminated string.")
}
