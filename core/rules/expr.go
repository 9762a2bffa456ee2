// Package rules - Quantity expressions
package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"fence-cost/internal/errors"
)

// Expression counter identifiers
const (
	CountGates     = "gates"
	CountPosts     = "posts"
	CountNetLength = "net_length"
	CountLines     = "lines"
)

// Env supplies counter values for expression evaluation
type Env struct {
	// NetLength is the line item's net footage
	NetLength decimal.Decimal

	// Gates is the gate count
	Gates int

	// Lines is the fence line count
	Lines int

	// Posts is the calculated post count
	Posts decimal.Decimal
}

func (e Env) counter(name string) (decimal.Decimal, bool) {
	switch name {
	case CountGates:
		return decimal.NewFromInt(int64(e.Gates)), true
	case CountPosts:
		return e.Posts, true
	case CountNetLength:
		return e.NetLength, true
	case CountLines:
		return decimal.NewFromInt(int64(e.Lines)), true
	default:
		return decimal.Decimal{}, false
	}
}

// Expr is a parsed quantity expression. The grammar is deliberately
// closed: a counter or literal, optionally scaled or offset by a
// literal ("gates * 2", "posts + 1", "3"). The source rule data never
// uses anything richer, and a closed grammar keeps evaluation total.
type Expr struct {
	raw     string
	counter string
	base    decimal.Decimal
	op      byte
	operand decimal.Decimal
}

// String returns the original expression text
func (e Expr) String() string {
	return e.raw
}

// ParseExpr parses a quantity expression
func ParseExpr(s string) (Expr, error) {
	fields := strings.Fields(s)
	if len(fields) != 1 && len(fields) != 3 {
		return Expr{}, errors.Newf(errors.TypeRule, "malformed quantity expression %q", s)
	}

	e := Expr{raw: s}
	if err := e.parseTerm(fields[0]); err != nil {
		return Expr{}, err
	}

	if len(fields) == 3 {
		op := fields[1]
		if op != "*" && op != "+" && op != "-" {
			return Expr{}, errors.Newf(errors.TypeRule, "unknown operator %q in quantity expression %q", op, s)
		}
		operand, err := decimal.NewFromString(fields[2])
		if err != nil {
			return Expr{}, errors.Newf(errors.TypeRule, "non-numeric operand %q in quantity expression %q", fields[2], s)
		}
		e.op = op[0]
		e.operand = operand
	}

	return e, nil
}

func (e *Expr) parseTerm(term string) error {
	switch term {
	case CountGates, CountPosts, CountNetLength, CountLines:
		e.counter = term
		return nil
	}
	d, err := decimal.NewFromString(term)
	if err != nil {
		return errors.Newf(errors.TypeRule, "unknown counter %q in quantity expression %q", term, e.raw)
	}
	e.base = d
	return nil
}

// Eval evaluates the expression against the environment
func (e Expr) Eval(env Env) decimal.Decimal {
	base := e.base
	if e.counter != "" {
		if v, ok := env.counter(e.counter); ok {
			base = v
		}
	}

	switch e.op {
	case '*':
		return base.Mul(e.operand)
	case '+':
		return base.Add(e.operand)
	case '-':
		return base.Sub(e.operand)
	default:
		return base
	}
}
