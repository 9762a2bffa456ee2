// Package rules - Condition predicates
package rules

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"fence-cost/internal/errors"
)

// Op is a predicate operator
type Op string

const (
	OpEq              Op = "eq"
	OpNe              Op = "ne"
	OpIn              Op = "in"
	OpGte             Op = "gte"
	OpLte             Op = "lte"
	OpHasComponent    Op = "has_component"
	OpNotHasComponent Op = "not_has_component"
)

// Predicate is a single attribute test
type Predicate struct {
	// Field is the attribute field name (unused for component ops)
	Field string

	// Op is the operator
	Op Op

	// Value is the comparand for eq/ne/gte/lte
	Value Value

	// Values is the allowed set for in
	Values []Value

	// Component is the component code for has/not_has
	Component string
}

// Matches evaluates the predicate against the attributes. Unknown
// fields never match.
func (p Predicate) Matches(a Attributes) bool {
	switch p.Op {
	case OpHasComponent:
		return a.HasComponent(p.Component)
	case OpNotHasComponent:
		return !a.HasComponent(p.Component)
	}

	v, ok := a.Lookup(p.Field)
	if !ok {
		return false
	}

	switch p.Op {
	case OpEq:
		return v.Equal(p.Value)
	case OpNe:
		return !v.Equal(p.Value)
	case OpIn:
		for _, allowed := range p.Values {
			if v.Equal(allowed) {
				return true
			}
		}
		return false
	case OpGte:
		return v.IsNum() && p.Value.IsNum() && v.Num().GreaterThanOrEqual(p.Value.Num())
	case OpLte:
		return v.IsNum() && p.Value.IsNum() && v.Num().LessThanOrEqual(p.Value.Num())
	default:
		return false
	}
}

// Condition is a conjunction of predicates. An empty condition always
// matches.
type Condition struct {
	All []Predicate
}

// Matches evaluates the condition against the attributes
func (c Condition) Matches(a Attributes) bool {
	for _, p := range c.All {
		if !p.Matches(a) {
			return false
		}
	}
	return true
}

// predicateJSON is the wire form of a predicate
type predicateJSON struct {
	Field     string            `json:"field,omitempty"`
	Op        Op                `json:"op"`
	Value     json.RawMessage   `json:"value,omitempty"`
	Values    []json.RawMessage `json:"values,omitempty"`
	Component string            `json:"component,omitempty"`
}

// conditionJSON is the wire form of a condition
type conditionJSON struct {
	All []predicateJSON `json:"all"`
}

// DecodeCondition decodes a JSON condition payload. A nil or empty
// payload is the always-true condition.
func DecodeCondition(raw json.RawMessage) (Condition, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Condition{}, nil
	}

	var wire conditionJSON
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return Condition{}, errors.Wrap(errors.TypeRule, "malformed condition payload", err)
	}

	cond := Condition{All: make([]Predicate, 0, len(wire.All))}
	for _, pw := range wire.All {
		p, err := decodePredicate(pw)
		if err != nil {
			return Condition{}, err
		}
		cond.All = append(cond.All, p)
	}
	return cond, nil
}

func decodePredicate(pw predicateJSON) (Predicate, error) {
	p := Predicate{Field: pw.Field, Op: pw.Op, Component: pw.Component}

	switch pw.Op {
	case OpHasComponent, OpNotHasComponent:
		if pw.Component == "" {
			return Predicate{}, errors.Rule("component predicate missing component code")
		}
		return p, nil
	case OpIn:
		if pw.Field == "" {
			return Predicate{}, errors.Rule("in predicate missing field")
		}
		if len(pw.Values) == 0 {
			return Predicate{}, errors.Rule("in predicate missing values")
		}
		for _, raw := range pw.Values {
			v, err := decodeValue(raw)
			if err != nil {
				return Predicate{}, err
			}
			p.Values = append(p.Values, v)
		}
		return p, nil
	case OpEq, OpNe, OpGte, OpLte:
		if pw.Field == "" {
			return Predicate{}, errors.Newf(errors.TypeRule, "%s predicate missing field", pw.Op)
		}
		v, err := decodeValue(pw.Value)
		if err != nil {
			return Predicate{}, err
		}
		if (pw.Op == OpGte || pw.Op == OpLte) && !v.IsNum() {
			return Predicate{}, errors.Newf(errors.TypeRule, "%s predicate requires a numeric value", pw.Op)
		}
		p.Value = v
		return p, nil
	default:
		return Predicate{}, errors.Newf(errors.TypeRule, "unknown predicate operator %q", pw.Op)
	}
}

func decodeValue(raw json.RawMessage) (Value, error) {
	if len(raw) == 0 {
		return Value{}, errors.Rule("predicate missing value")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return StrValue(s), nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		d, err := decimal.NewFromString(n.String())
		if err == nil {
			return NumValue(d), nil
		}
	}

	return Value{}, errors.Newf(errors.TypeRule, "predicate value must be a string or number, got %s", string(raw))
}
