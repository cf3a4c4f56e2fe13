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

package lexer_test

import (
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/lexer"
	"github.com/botobag/graphcache/graphql/token"
	"github.com/botobag/graphcache/internal/testutil"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func lexOne(body string) (*token.Token, error) {
	return lexer.New(token.NewSource(body)).Advance()
}

func lexAll(body string) []token.Kind {
	l := lexer.New(token.NewSource(body))
	var kinds []token.Kind
	for {
		tok, err := l.Advance()
		Expect(err).ShouldNot(HaveOccurred())
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.KindEOF {
			return kinds
		}
	}
}

var _ = Describe("Lexer", func() {
	It("skips whitespace, commas, comments and BOM", func() {
		tok, err := lexOne("\xEF\xBB\xBF  ,,\n# comment\r\n\tfoo # trailing")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(tok.Kind).Should(Equal(token.KindName))
		Expect(tok.Value).Should(Equal("foo"))
		Expect(tok.Length).Should(Equal(uint(3)))
	})

	It("lexes punctuators and spreads", func() {
		Expect(lexAll("! $ ( ) ... : = @ [ ] { }")).Should(Equal([]token.Kind{
			token.KindBang,
			token.KindDollar,
			token.KindLeftParen,
			token.KindRightParen,
			token.KindSpread,
			token.KindColon,
			token.KindEquals,
			token.KindAt,
			token.KindLeftBracket,
			token.KindRightBracket,
			token.KindLeftBrace,
			token.KindRightBrace,
			token.KindEOF,
		}))
	})

	It("keeps returning EOF", func() {
		l := lexer.New(token.NewSource(""))
		for i := 0; i < 3; i++ {
			tok, err := l.Advance()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(tok.Kind).Should(Equal(token.KindEOF))
		}
	})

	DescribeTable("numbers",
		func(body string, kind token.Kind) {
			tok, err := lexOne(body)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(tok.Kind).Should(Equal(kind))
			Expect(tok.Value).Should(Equal(body))
		},
		Entry("int", "4", token.KindInt),
		Entry("negative int", "-4", token.KindInt),
		Entry("zero", "0", token.KindInt),
		Entry("float", "4.123", token.KindFloat),
		Entry("negative float", "-0.123", token.KindFloat),
		Entry("exponent", "123e4", token.KindFloat),
		Entry("signed exponent", "1.5E-10", token.KindFloat),
	)

	DescribeTable("invalid numbers",
		func(body string, message string) {
			_, err := lexOne(body)
			Expect(err).Should(testutil.MatchGraphQLError(
				testutil.MessageContainSubstring(message),
				testutil.KindIs(graphql.ErrKindSyntax),
			))
		},
		Entry("leading zero", "00", "unexpected digit after 0"),
		Entry("bare minus", "-A", "expected digit after '-'"),
		Entry("missing fraction", "1.", "expected digit after decimal point"),
		Entry("missing exponent", "1.0e", "expected digit but got: <EOF>"),
	)

	It("lexes strings with escapes", func() {
		tok, err := lexOne(`"quote \" slash \/ \n unicode é"`)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(tok.Kind).Should(Equal(token.KindString))
		Expect(tok.Value).Should(Equal("quote \" slash / \n unicode é"))
	})

	It("lexes block strings", func() {
		tok, err := lexOne("\"\"\"\n    Hello,\n      World!\n    \\\"\"\"\n\"\"\"")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(tok.Kind).Should(Equal(token.KindBlockString))
		Expect(tok.Value).Should(Equal("Hello,\n  World!\n\"\"\""))
	})

	It("reports unterminated strings with location", func() {
		_, err := lexOne(`"no end`)
		Expect(err).Should(testutil.MatchGraphQLError(
			testutil.MessageContainSubstring("Unterminated string."),
			testutil.LocationEqual(graphql.ErrorLocation{Line: 1, Column: 8}),
		))
	})

	It("reports unexpected characters", func() {
		_, err := lexOne("'a'")
		Expect(err).Should(testutil.MatchGraphQLError(
			testutil.MessageContainSubstring("Unexpected single quote character"),
		))

		_, err = lexOne("..")
		Expect(err).Should(testutil.MatchGraphQLError(
			testutil.MessageContainSubstring(`Cannot parse the unexpected character "."`),
			testutil.LocationEqual(graphql.ErrorLocation{Line: 1, Column: 1}),
		))
	})

	It("reports bad escapes", func() {
		_, err := lexOne(`"\x"`)
		Expect(err).Should(testutil.MatchGraphQLError(
			testutil.MessageContainSubstring(`Invalid character escape sequence: \x.`),
		))

		_, err = lexOne(`"\u12G4"`)
		Expect(err).Should(testutil.MatchGraphQLError(
			testutil.MessageContainSubstring(`Invalid character escape sequence: \u12G4.`),
		))
	})
})

var _ = Describe("BlockStringValue", func() {
	It("removes uniform indentation and blank edges", func() {
		raw := "\n\n    Hello,\n      World!\n\n    Yours,\n      GraphQL.\n\n"
		Expect(lexer.BlockStringValue(raw)).Should(Equal("Hello,\n  World!\n\nYours,\n  GraphQL."))
	})

	It("keeps the first line as is", func() {
		Expect(lexer.BlockStringValue("  first\n    second")).Should(Equal("  first\nsecond"))
	})
})
