// Package labor selects the labor line items that apply to a product
// configuration and prices them against business-unit rates.
package labor

import (
	"time"

	"github.com/shopspring/decimal"

	"fence-cost/core/catalog"
	"fence-cost/core/rules"
	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

// Line is one selected labor activity with its computed quantity and
// business-unit rate.
type Line struct {
	// Code is the labor activity
	Code types.LaborCode

	// Basis is the quantity driver the rule specified
	Basis types.QuantityBasis

	// Quantity is the computed labor quantity
	Quantity decimal.Decimal

	// Rate is the effective business-unit rate
	Rate decimal.Decimal
}

type compiledRule struct {
	row  types.ProductLaborRule
	cond rules.Condition
}

// Selector filters labor rules against product attributes
type Selector struct {
	rules []compiledRule
}

// NewSelector compiles the labor rule set, rejecting malformed
// condition payloads at load time.
func NewSelector(rows []types.ProductLaborRule) (*Selector, error) {
	compiled := make([]compiledRule, 0, len(rows))
	for _, row := range rows {
		cond, err := rules.DecodeCondition(row.Condition)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return nil, e.WithContext("labor_rule_id", row.ID)
			}
			return nil, err
		}
		compiled = append(compiled, compiledRule{row: row, cond: cond})
	}
	return &Selector{rules: compiled}, nil
}

// Applicable returns the labor rules that apply to the configuration.
// Rows flagged as base labor are always included; others must match
// their condition.
func (s *Selector) Applicable(productType, style string, a rules.Attributes) []types.ProductLaborRule {
	var matched []types.ProductLaborRule
	for _, r := range s.rules {
		if !r.row.Active {
			continue
		}
		if r.row.ProductType != productType {
			continue
		}
		if r.row.Style != "" && r.row.Style != style {
			continue
		}
		if !r.row.BaseLabor && !r.cond.Matches(a) {
			continue
		}
		matched = append(matched, r.row)
	}
	return matched
}

// Quantity evaluates a labor quantity basis against the counters
func Quantity(basis types.QuantityBasis, env rules.Env) decimal.Decimal {
	switch basis {
	case types.BasisNetLength:
		return env.NetLength
	case types.BasisGates:
		return decimal.NewFromInt(int64(env.Gates))
	case types.BasisPosts:
		return env.Posts
	default:
		return decimal.Zero
	}
}

// Select returns the priced labor lines for a configuration. A missing
// rate is fatal: a labor line cannot be priced at zero by default.
func (s *Selector) Select(snap *catalog.Snapshot, productType, style, businessUnit string, asOf time.Time, a rules.Attributes, env rules.Env) ([]Line, error) {
	var lines []Line
	for _, row := range s.Applicable(productType, style, a) {
		code, ok := snap.LaborCode(row.LaborCodeID)
		if !ok {
			return nil, errors.NotFound("labor code", row.LaborCodeID)
		}

		qty := Quantity(row.Basis, env)
		if qty.Sign() <= 0 {
			continue
		}

		rate, ok := snap.RateFor(row.LaborCodeID, businessUnit, asOf)
		if !ok {
			return nil, errors.RateNotFound(code.SKU, businessUnit)
		}

		lines = append(lines, Line{
			Code:     code,
			Basis:    row.Basis,
			Quantity: qty,
			Rate:     rate.Rate,
		})
	}
	return lines, nil
}
