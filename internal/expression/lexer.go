package expression

import (
	"unicode"

	ierr "github.com/vidinfra/metering/internal/errors"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits the raw expression into tokens. Numbers are decimal literals
// with an optional fractional part; identifiers start with a letter or
// underscore.
func lex(input string) ([]token, error) {
	runes := []rune(input)
	tokens := make([]token, 0, len(runes))

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			tokens = append(tokens, token{tokenPlus, "+", i})
			i++
		case r == '-':
			tokens = append(tokens, token{tokenMinus, "-", i})
			i++
		case r == '*':
			tokens = append(tokens, token{tokenStar, "*", i})
			i++
		case r == '/':
			tokens = append(tokens, token{tokenSlash, "/", i})
			i++
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++
		case unicode.IsDigit(r):
			start := i
			sawDot := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) || (runes[i] == '.' && !sawDot)) {
				if runes[i] == '.' {
					sawDot = true
				}
				i++
			}
			tokens = append(tokens, token{tokenNumber, string(runes[start:i]), start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[start:i]), start})
		default:
			return nil, ierr.NewErrorf("unexpected character %q at position %d", string(r), i).
				WithHint("The formula contains a character outside the supported grammar").
				Mark(ierr.ErrExpressionSyntax)
		}
	}

	tokens = append(tokens, token{tokenEOF, "", len(runes)})
	return tokens, nil
}
