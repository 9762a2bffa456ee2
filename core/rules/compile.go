// Package rules - Rule compilation
package rules

import (
	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

// Rule is a compiled product rule: the catalog row plus its decoded
// condition and exactly one decoded action variant.
type Rule struct {
	// ID is the rule identifier
	ID string

	// ProductType scopes the rule
	ProductType string

	// Style scopes the rule ("" = any style of the type)
	Style string

	// Type is the rule classification
	Type types.RuleType

	// Priority orders evaluation
	Priority int

	// ErrorMessage is the user-facing constraint message
	ErrorMessage string

	// Active marks whether the rule participates
	Active bool

	// Condition gates the rule
	Condition Condition

	// Constraint is set for constraint rules
	Constraint *ConstraintAction

	// Filter is set for material_match rules
	Filter *MaterialFilter

	// Delta is set for conditional_component rules
	Delta *ComponentDelta

	// Derive is set for derived_value rules
	Derive *DeriveAction
}

// AppliesTo reports whether the rule's scope covers the configuration.
// An empty rule style is a wildcard matching any style.
func (r Rule) AppliesTo(productType, style string) bool {
	if r.ProductType != productType {
		return false
	}
	return r.Style == "" || r.Style == style
}

// Compile decodes a catalog rule row into a typed rule
func Compile(row types.ProductRule) (Rule, error) {
	cond, err := DecodeCondition(row.Condition)
	if err != nil {
		return Rule{}, annotate(err, row.ID)
	}

	r := Rule{
		ID:           row.ID,
		ProductType:  row.ProductType,
		Style:        row.Style,
		Type:         row.Type,
		Priority:     row.Priority,
		ErrorMessage: row.ErrorMessage,
		Active:       row.Active,
		Condition:    cond,
	}

	switch row.Type {
	case types.RuleConstraint:
		r.Constraint, err = decodeConstraintAction(row.Action)
	case types.RuleMaterialMatch:
		r.Filter, err = decodeMaterialFilter(row.Action)
	case types.RuleConditionalComponent:
		r.Delta, err = decodeComponentDelta(row.Action)
	case types.RuleDerivedValue:
		r.Derive, err = decodeDeriveAction(row.Action)
	default:
		err = errors.Newf(errors.TypeRule, "unknown rule type %q", row.Type)
	}
	if err != nil {
		return Rule{}, annotate(err, row.ID)
	}

	return r, nil
}

// CompileAll compiles every rule row, collecting all errors so a
// catalog validation pass can report them at once.
func CompileAll(rows []types.ProductRule) ([]Rule, []error) {
	compiled := make([]Rule, 0, len(rows))
	var errs []error
	for _, row := range rows {
		r, err := Compile(row)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		compiled = append(compiled, r)
	}
	return compiled, errs
}

func annotate(err error, ruleID string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithContext("rule_id", ruleID)
	}
	return err
}
