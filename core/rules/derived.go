// Package rules - Derived value conflict resolution
package rules

// lastHighestPriorityMatch resolves overlapping derived_value rules.
// For each derived field, the matching rule with the highest priority
// wins; on a priority tie the later rule in catalog order wins. This
// is the explicit conflict policy, rather than relying on row order.
func lastHighestPriorityMatch(matched []Rule) map[string]string {
	type winner struct {
		priority int
		value    string
	}

	winners := make(map[string]winner)
	for _, r := range matched {
		if r.Derive == nil {
			continue
		}
		w, ok := winners[r.Derive.Field]
		if !ok || r.Priority >= w.priority {
			winners[r.Derive.Field] = winner{priority: r.Priority, value: r.Derive.Value}
		}
	}

	derived := make(map[string]string, len(winners))
	for field, w := range winners {
		derived[field] = w.value
	}
	return derived
}
