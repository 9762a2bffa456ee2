// Package types - Product definition types
package types

import "github.com/shopspring/decimal"

// ProductType is a fence category (e.g., wood-vertical, iron)
type ProductType struct {
	// Code uniquely identifies the type
	Code string `json:"code"`

	// Name is the display name
	Name string `json:"name"`

	// DefaultPostSpacingFt is the on-center post spacing unless a more
	// specific formula parameter overrides it
	DefaultPostSpacingFt decimal.Decimal `json:"default_post_spacing_ft"`

	// Strategy names the calculator strategy for the type
	Strategy string `json:"strategy"`
}

// FormulaAdjustments are per-style tuning values. The catalog loader
// materializes them into style-scoped formula parameters so resolution
// follows a single path.
type FormulaAdjustments struct {
	// PostSpacingFt overrides the type's default post spacing
	PostSpacingFt *decimal.Decimal `json:"post_spacing_ft,omitempty"`

	// PicketMultiplier scales the picket count (good-neighbor 1.10)
	PicketMultiplier *decimal.Decimal `json:"picket_multiplier,omitempty"`

	// BoardMultiplier scales the board count (board-on-board 1.14)
	BoardMultiplier *decimal.Decimal `json:"board_multiplier,omitempty"`
}

// ProductStyle is a variation within a product type
type ProductStyle struct {
	// Code uniquely identifies the style within its type
	Code string `json:"code"`

	// ProductTypeCode references the owning product type
	ProductTypeCode string `json:"product_type_code"`

	// Name is the display name
	Name string `json:"name"`

	// Adjustments holds style-specific formula adjustments
	Adjustments FormulaAdjustments `json:"adjustments,omitempty"`
}

// ComponentDefinition is a named physical role a fence can need
type ComponentDefinition struct {
	// Code uniquely identifies the component (e.g., "POST", "PICKET")
	Code string `json:"code"`

	// Name is the display name
	Name string `json:"name"`

	// Unit is the component's quantity unit
	Unit UnitType `json:"unit"`

	// RequiredFor lists product type codes the component is required for
	RequiredFor []string `json:"required_for,omitempty"`
}

// RequiredForType reports whether the component is required for the
// given product type
func (c ComponentDefinition) RequiredForType(productType string) bool {
	for _, t := range c.RequiredFor {
		if t == productType {
			return true
		}
	}
	return false
}

// FormulaParameter is a scoped numeric tuning value. Empty scope fields
// widen the scope; the most specific match wins at resolution.
type FormulaParameter struct {
	// ProductType scopes the parameter to a type ("" = any)
	ProductType string `json:"product_type,omitempty"`

	// Style scopes the parameter to a style ("" = any)
	Style string `json:"style,omitempty"`

	// Component scopes the parameter to a component ("" = any)
	Component string `json:"component,omitempty"`

	// Key is the parameter name
	Key string `json:"key"`

	// Value is the numeric value
	Value decimal.Decimal `json:"value"`
}

// ScopeKey returns the normalized uniqueness key for the parameter.
// Scope fields are normalized to the ScopeAny sentinel so NULL-safe
// uniqueness holds under plain string comparison.
func (p FormulaParameter) ScopeKey() string {
	return NormalizeScope(p.ProductType) + "/" + NormalizeScope(p.Style) + "/" +
		NormalizeScope(p.Component) + "/" + p.Key
}
