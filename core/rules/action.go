// Package rules - Action variants
package rules

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

// ConstraintAction restricts a field to an allowed set of values
type ConstraintAction struct {
	// Field is the constrained attribute field
	Field string

	// Allowed is the permitted value set
	Allowed []Value
}

// Check reports whether the attributes satisfy the constraint
func (c ConstraintAction) Check(a Attributes) bool {
	v, ok := a.Lookup(c.Field)
	if !ok {
		return false
	}
	for _, allowed := range c.Allowed {
		if v.Equal(allowed) {
			return true
		}
	}
	return false
}

// MaterialFilter narrows a component's eligible materials. Zero-value
// fields do not filter.
type MaterialFilter struct {
	// Component is the component the filter applies to
	Component string

	// Category requires an exact category match
	Category string

	// SubCategory requires an exact sub-category match
	SubCategory string

	// MinLengthFt requires LengthFt >= this value
	MinLengthFt *decimal.Decimal

	// MaxLengthFt requires LengthFt <= this value
	MaxLengthFt *decimal.Decimal

	// Attributes requires matching material attribute values
	Attributes map[string]string
}

// Matches reports whether a material passes the filter. Inactive
// materials never match.
func (f MaterialFilter) Matches(m types.Material) bool {
	if !m.Active() {
		return false
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.SubCategory != "" && m.SubCategory != f.SubCategory {
		return false
	}
	if f.MinLengthFt != nil && m.LengthFt.LessThan(*f.MinLengthFt) {
		return false
	}
	if f.MaxLengthFt != nil && m.LengthFt.GreaterThan(*f.MaxLengthFt) {
		return false
	}
	for k, want := range f.Attributes {
		if m.Attributes[k] != want {
			return false
		}
	}
	return true
}

// DeltaOp distinguishes component add from remove
type DeltaOp string

const (
	DeltaAdd    DeltaOp = "add"
	DeltaRemove DeltaOp = "remove"
)

// ComponentDelta is a conditional component add/remove instruction
type ComponentDelta struct {
	// Component is the affected component code
	Component string

	// Op is add or remove
	Op DeltaOp

	// Quantity is the delta expression
	Quantity Expr
}

// Signed evaluates the delta with remove negated
func (d ComponentDelta) Signed(env Env) decimal.Decimal {
	q := d.Quantity.Eval(env)
	if d.Op == DeltaRemove {
		return q.Neg()
	}
	return q
}

// DeriveAction sets a non-primary derived field
type DeriveAction struct {
	// Field is the derived field name
	Field string

	// Value is the derived value
	Value string
}

// Wire forms for action payloads, one per rule type

type constraintActionJSON struct {
	Field   string            `json:"field"`
	Allowed []json.RawMessage `json:"allowed"`
}

type materialFilterJSON struct {
	Component   string            `json:"component"`
	Category    string            `json:"category,omitempty"`
	SubCategory string            `json:"sub_category,omitempty"`
	MinLengthFt *decimal.Decimal  `json:"min_length_ft,omitempty"`
	MaxLengthFt *decimal.Decimal  `json:"max_length_ft,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type componentDeltaJSON struct {
	Component string  `json:"component"`
	Op        DeltaOp `json:"op"`
	Quantity  string  `json:"quantity"`
}

type deriveActionJSON struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func decodeAction(dst interface{}, raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(errors.TypeRule, "malformed action payload", err)
	}
	return nil
}

func decodeConstraintAction(raw json.RawMessage) (*ConstraintAction, error) {
	var wire constraintActionJSON
	if err := decodeAction(&wire, raw); err != nil {
		return nil, err
	}
	if wire.Field == "" {
		return nil, errors.Rule("constraint action missing field")
	}
	if len(wire.Allowed) == 0 {
		return nil, errors.Rule("constraint action missing allowed values")
	}
	action := &ConstraintAction{Field: wire.Field}
	for _, rawVal := range wire.Allowed {
		v, err := decodeValue(rawVal)
		if err != nil {
			return nil, err
		}
		action.Allowed = append(action.Allowed, v)
	}
	return action, nil
}

func decodeMaterialFilter(raw json.RawMessage) (*MaterialFilter, error) {
	var wire materialFilterJSON
	if err := decodeAction(&wire, raw); err != nil {
		return nil, err
	}
	if wire.Component == "" {
		return nil, errors.Rule("material_match action missing component")
	}
	return &MaterialFilter{
		Component:   wire.Component,
		Category:    wire.Category,
		SubCategory: wire.SubCategory,
		MinLengthFt: wire.MinLengthFt,
		MaxLengthFt: wire.MaxLengthFt,
		Attributes:  wire.Attributes,
	}, nil
}

func decodeComponentDelta(raw json.RawMessage) (*ComponentDelta, error) {
	var wire componentDeltaJSON
	if err := decodeAction(&wire, raw); err != nil {
		return nil, err
	}
	if wire.Component == "" {
		return nil, errors.Rule("conditional_component action missing component")
	}
	if wire.Op != DeltaAdd && wire.Op != DeltaRemove {
		return nil, errors.Newf(errors.TypeRule, "conditional_component op must be add or remove, got %q", wire.Op)
	}
	expr, err := ParseExpr(wire.Quantity)
	if err != nil {
		return nil, err
	}
	return &ComponentDelta{Component: wire.Component, Op: wire.Op, Quantity: expr}, nil
}

func decodeDeriveAction(raw json.RawMessage) (*DeriveAction, error) {
	var wire deriveActionJSON
	if err := decodeAction(&wire, raw); err != nil {
		return nil, err
	}
	if wire.Field == "" || wire.Value == "" {
		return nil, errors.Rule("derived_value action missing field or value")
	}
	return &DeriveAction{Field: wire.Field, Value: wire.Value}, nil
}
