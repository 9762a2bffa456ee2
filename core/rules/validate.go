// Package rules - Rule set validation
package rules

import (
	"fence-cost/internal/errors"
)

// ValidateSet rejects rule sets where two active conditional_component
// rules targeting the same component could both apply to a single
// configuration. Gate-post adjustments for wood and steel posts are
// written as separate rules; if their conditions are not provably
// mutually exclusive, summing both would silently double-adjust, so
// the set is rejected instead.
func ValidateSet(compiled []Rule) error {
	var conditionals []Rule
	for _, r := range compiled {
		if r.Active && r.Delta != nil {
			conditionals = append(conditionals, r)
		}
	}

	for i := 0; i < len(conditionals); i++ {
		for j := i + 1; j < len(conditionals); j++ {
			a, b := conditionals[i], conditionals[j]
			if a.Delta.Component != b.Delta.Component {
				continue
			}
			if !scopesOverlap(a, b) {
				continue
			}
			if !mutuallyExclusive(a.Condition, b.Condition) {
				return errors.Newf(errors.TypeRule,
					"conditional rules %q and %q both adjust component %q and their conditions are not mutually exclusive",
					a.ID, b.ID, a.Delta.Component)
			}
		}
	}
	return nil
}

func scopesOverlap(a, b Rule) bool {
	if a.ProductType != b.ProductType {
		return false
	}
	return a.Style == "" || b.Style == "" || a.Style == b.Style
}

// mutuallyExclusive reports whether two conditions can be proven never
// to match the same attributes: both carry an equality predicate on
// the same field with different values.
func mutuallyExclusive(a, b Condition) bool {
	for _, pa := range a.All {
		if pa.Op != OpEq {
			continue
		}
		for _, pb := range b.All {
			if pb.Op != OpEq || pb.Field != pa.Field {
				continue
			}
			if !pa.Value.Equal(pb.Value) {
				return true
			}
		}
	}
	return false
}
