package expression

import (
	"strings"

	"github.com/shopspring/decimal"

	ierr "github.com/vidinfra/metering/internal/errors"
)

// Parse parses an arithmetic formula into an AST.
//
// Grammar:
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := number | identifier | '(' expr ')'
//
// Multiplication and division bind tighter than addition and subtraction;
// parentheses override precedence.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ierr.NewError("expression is empty").
			WithHint("A CUSTOM aggregation requires a non-empty formula").
			Mark(ierr.ErrExpressionSyntax)
	}

	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, ierr.NewErrorf("unexpected token %q at position %d", tok.text, tok.pos).
			WithHint("The formula has trailing input after a complete expression").
			Mark(ierr.ErrExpressionSyntax)
	}

	return node, nil
}

// Evaluate is a convenience wrapper that parses and evaluates in one call.
// Callers evaluating the same formula per event should Parse once and reuse
// the node instead.
func Evaluate(input string, vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	node, err := Parse(input)
	if err != nil {
		return decimal.Zero, err
	}
	return node.Eval(vars)
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().kind {
		case tokenPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{Op: '+', Left: left, Right: right}
		case tokenMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{Op: '-', Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().kind {
		case tokenStar:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{Op: '*', Left: left, Right: right}
		case tokenSlash:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{Op: '/', Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseFactor() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		value, err := decimal.NewFromString(tok.text)
		if err != nil {
			return nil, ierr.NewErrorf("invalid number %q at position %d", tok.text, tok.pos).
				Mark(ierr.ErrExpressionSyntax)
		}
		return &Literal{Value: value}, nil

	case tokenIdent:
		return &Variable{Name: tok.text}, nil

	case tokenLParen:
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, ierr.NewError("missing closing parenthesis").
				WithHint("The formula opens a parenthesis it never closes").
				Mark(ierr.ErrExpressionSyntax)
		}
		return node, nil

	case tokenEOF:
		return nil, ierr.NewError("unexpected end of expression").
			WithHint("The formula ends in the middle of a sub-expression").
			Mark(ierr.ErrExpressionSyntax)

	default:
		return nil, ierr.NewErrorf("unexpected token %q at position %d", tok.text, tok.pos).
			Mark(ierr.ErrExpressionSyntax)
	}
}
