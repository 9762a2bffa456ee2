// Package rules - Rule evaluation
package rules

import (
	"sort"

	"fence-cost/core/types"
)

// Violation is a failed constraint, carrying the rule's user-facing
// message. Violations are expected, user-recoverable conditions and
// are returned as values, never as Go errors.
type Violation struct {
	// RuleID identifies the failed rule
	RuleID string `json:"rule_id"`

	// Message is the rule's error message
	Message string `json:"message"`
}

// Evaluation is the outcome of evaluating a rule set against a
// configuration.
type Evaluation struct {
	// Violations lists failed constraints. When non-empty the
	// configuration is invalid and no quantities should be computed.
	Violations []Violation

	// Filters maps component code to the material filters narrowing
	// its eligible set; a material must pass every filter.
	Filters map[string][]MaterialFilter

	// Deltas lists component add/remove instructions in application
	// order (descending priority).
	Deltas []ComponentDelta

	// Derived maps derived field name to its resolved value.
	Derived map[string]string
}

// Engine evaluates a compiled rule set
type Engine struct {
	rules []Rule
}

// NewEngine compiles and validates a rule set. Rule sets that could
// double-apply a component adjustment are rejected here, at load time.
func NewEngine(rows []types.ProductRule) (*Engine, error) {
	compiled, errs := CompileAll(rows)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if err := ValidateSet(compiled); err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// NewEngineFromCompiled wraps already-compiled rules without
// revalidating, for callers that validated at catalog load.
func NewEngineFromCompiled(compiled []Rule) *Engine {
	return &Engine{rules: compiled}
}

// Applicable returns the active, in-scope rules whose conditions match
// the attributes, ordered by descending priority. Order is stable so
// equal-priority rules keep catalog order.
func (e *Engine) Applicable(productType, style string, a Attributes) []Rule {
	var matched []Rule
	for _, r := range e.rules {
		if !r.Active || !r.AppliesTo(productType, style) {
			continue
		}
		if !r.Condition.Matches(a) {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})
	return matched
}

// Evaluate applies the matching rules to produce violations, material
// filters, component deltas, and derived values.
func (e *Engine) Evaluate(productType, style string, a Attributes) Evaluation {
	matched := e.Applicable(productType, style, a)

	eval := Evaluation{
		Filters: make(map[string][]MaterialFilter),
	}

	for _, r := range matched {
		switch {
		case r.Constraint != nil:
			if !r.Constraint.Check(a) {
				eval.Violations = append(eval.Violations, Violation{
					RuleID:  r.ID,
					Message: r.ErrorMessage,
				})
			}
		case r.Filter != nil:
			f := *r.Filter
			eval.Filters[f.Component] = append(eval.Filters[f.Component], f)
		case r.Delta != nil:
			eval.Deltas = append(eval.Deltas, *r.Delta)
		}
	}

	eval.Derived = lastHighestPriorityMatch(matched)
	return eval
}
