// Package rules evaluates declarative product rules against a product
// configuration. Rule condition and action payloads are stored as JSON
// in the catalog; this package decodes them into a closed set of typed
// variants at load time so malformed data is rejected before any
// calculation runs.
package rules

import (
	"github.com/shopspring/decimal"

	"fence-cost/core/types"
)

// Condition fields understood by the interpreter
const (
	FieldHeightFt  = "height_ft"
	FieldPostType  = "post_type"
	FieldRailCount = "rail_count"
	FieldGates     = "gates"
	FieldStyle     = "style"
)

// Attributes is the resolved product configuration a rule condition is
// evaluated against.
type Attributes struct {
	// Style is the product style code
	Style string

	// HeightFt is the fence height in feet
	HeightFt decimal.Decimal

	// PostType is the post material family
	PostType types.PostType

	// RailCount is the number of horizontal rails
	RailCount int

	// Gates is the number of gates on the line item
	Gates int

	// Components is the set of selected component codes
	Components map[string]bool
}

// AttributesFor builds rule attributes from a configuration and gate count
func AttributesFor(cfg types.ProductConfiguration, gates int) Attributes {
	components := make(map[string]bool, len(cfg.Options))
	for _, c := range cfg.Options {
		components[c] = true
	}
	return Attributes{
		Style:      cfg.Style,
		HeightFt:   cfg.HeightFt,
		PostType:   cfg.PostType,
		RailCount:  cfg.RailCount,
		Gates:      gates,
		Components: components,
	}
}

// HasComponent reports whether a component code is selected
func (a Attributes) HasComponent(code string) bool {
	return a.Components[code]
}

// Value is a string-or-number attribute value
type Value struct {
	num   decimal.Decimal
	str   string
	isNum bool
}

// NumValue wraps a numeric value
func NumValue(d decimal.Decimal) Value {
	return Value{num: d, isNum: true}
}

// StrValue wraps a string value
func StrValue(s string) Value {
	return Value{str: s}
}

// IsNum reports whether the value is numeric
func (v Value) IsNum() bool {
	return v.isNum
}

// Num returns the numeric value
func (v Value) Num() decimal.Decimal {
	return v.num
}

// Canonical returns a comparable string form. Numbers are normalized so
// "8", "8.0", and 8 compare equal.
func (v Value) Canonical() string {
	if v.isNum {
		return v.num.String()
	}
	return v.str
}

// Equal compares two values; numbers compare numerically
func (v Value) Equal(o Value) bool {
	if v.isNum && o.isNum {
		return v.num.Equal(o.num)
	}
	return v.Canonical() == o.Canonical()
}

// Lookup resolves a condition field against the attributes
func (a Attributes) Lookup(field string) (Value, bool) {
	switch field {
	case FieldHeightFt:
		return NumValue(a.HeightFt), true
	case FieldPostType:
		return StrValue(string(a.PostType)), true
	case FieldRailCount:
		return NumValue(decimal.NewFromInt(int64(a.RailCount))), true
	case FieldGates:
		return NumValue(decimal.NewFromInt(int64(a.Gates))), true
	case FieldStyle:
		return StrValue(a.Style), true
	default:
		return Value{}, false
	}
}
