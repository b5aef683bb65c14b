package expression

import (
	"github.com/shopspring/decimal"

	ierr "github.com/vidinfra/metering/internal/errors"
)

// Node is one node of a parsed arithmetic expression. Evaluation binds
// identifiers against the supplied variables; a reference to a variable
// that is absent from the map is an error, never a silent zero.
type Node interface {
	Eval(vars map[string]decimal.Decimal) (decimal.Decimal, error)
}

// Literal is a numeric constant
type Literal struct {
	Value decimal.Decimal
}

func (n *Literal) Eval(_ map[string]decimal.Decimal) (decimal.Decimal, error) {
	return n.Value, nil
}

// Variable resolves an identifier against the bound event properties
type Variable struct {
	Name string
}

func (n *Variable) Eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	val, ok := vars[n.Name]
	if !ok {
		return decimal.Zero, ierr.NewErrorf("unknown variable %q", n.Name).
			WithHint("The formula references a property the event does not carry as a number").
			Mark(ierr.ErrExpressionSemantic)
	}
	return val, nil
}

// BinaryOp applies one of + - * / to its operands
type BinaryOp struct {
	Op    rune
	Left  Node
	Right Node
}

func (n *BinaryOp) Eval(vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	left, err := n.Left.Eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	right, err := n.Right.Eval(vars)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.Op {
	case '+':
		return left.Add(right), nil
	case '-':
		return left.Sub(right), nil
	case '*':
		return left.Mul(right), nil
	case '/':
		if right.IsZero() {
			return decimal.Zero, ierr.NewError("division by zero").
				WithHint("The formula divides by a value that evaluates to zero").
				Mark(ierr.ErrExpressionSemantic)
		}
		return left.Div(right), nil
	default:
		return decimal.Zero, ierr.NewErrorf("unsupported operator %q", string(n.Op)).
			Mark(ierr.ErrExpressionSyntax)
	}
}
