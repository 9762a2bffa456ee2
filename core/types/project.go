// Package types - Project and output types
package types

import "github.com/shopspring/decimal"

// ProductConfiguration is a concrete, fully-specified product: the
// attribute set the rule engine evaluates against.
type ProductConfiguration struct {
	// ProductType is the fence category code
	ProductType string `json:"product_type"`

	// Style is the style code within the type
	Style string `json:"style"`

	// HeightFt is the fence height in feet
	HeightFt decimal.Decimal `json:"height_ft"`

	// PostType is the post material family
	PostType PostType `json:"post_type"`

	// RailCount is the number of horizontal rails
	RailCount int `json:"rail_count"`

	// Options lists selected optional component codes (e.g., CAP, TRIM)
	Options []string `json:"options,omitempty"`

	// ComponentMaterials maps component code to a chosen material ID.
	// Components without an entry take the first eligible material.
	ComponentMaterials map[string]string `json:"component_materials,omitempty"`
}

// HasOption reports whether an optional component is selected
func (c ProductConfiguration) HasOption(component string) bool {
	for _, o := range c.Options {
		if o == component {
			return true
		}
	}
	return false
}

// LineItemInput is one fence run within a project
type LineItemInput struct {
	// ID uniquely identifies the line item
	ID string `json:"id"`

	// Config is the product configuration for the run
	Config ProductConfiguration `json:"config"`

	// TotalFt is the total footage of the run
	TotalFt decimal.Decimal `json:"total_ft"`

	// BufferFt is the waste/buffer allowance subtracted from TotalFt
	BufferFt decimal.Decimal `json:"buffer_ft"`

	// Lines is the number of fence lines in the run
	Lines int `json:"lines"`

	// Gates is the number of gates in the run
	Gates int `json:"gates"`
}

// NetLengthFt is the footage quantities are computed from
func (l LineItemInput) NetLengthFt() decimal.Decimal {
	net := l.TotalFt.Sub(l.BufferFt)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// BOMLine is one aggregated material row for a project. FinalQuantity
// and ExtendedCost are derived, never stored independently of their
// inputs.
type BOMLine struct {
	// MaterialID references the material
	MaterialID string `json:"material_id"`

	// MaterialSKU is carried for display and stable ordering
	MaterialSKU string `json:"material_sku"`

	// Calculated is the unrounded summed quantity
	Calculated decimal.Decimal `json:"calculated_quantity"`

	// Rounded is Calculated rounded up to purchasable units
	Rounded decimal.Decimal `json:"rounded_quantity"`

	// Manual is an optional user override
	Manual *decimal.Decimal `json:"manual_quantity,omitempty"`

	// UnitCost is the material's current unit cost
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// FinalQuantity is the manual override when present, else the rounded
// quantity
func (l BOMLine) FinalQuantity() decimal.Decimal {
	if l.Manual != nil {
		return *l.Manual
	}
	return l.Rounded
}

// ExtendedCost is FinalQuantity x UnitCost, recomputed on every read
func (l BOMLine) ExtendedCost() decimal.Decimal {
	return l.FinalQuantity().Mul(l.UnitCost)
}

// BOLLine is one aggregated labor row for a project. Labor is billed
// fractionally, so Calculated is not rounded.
type BOLLine struct {
	// LaborCodeID references the labor code
	LaborCodeID string `json:"labor_code_id"`

	// LaborSKU is carried for display and stable ordering
	LaborSKU string `json:"labor_sku"`

	// Calculated is the summed quantity
	Calculated decimal.Decimal `json:"calculated_quantity"`

	// Manual is an optional user override
	Manual *decimal.Decimal `json:"manual_quantity,omitempty"`

	// Rate is the business-unit labor rate
	Rate decimal.Decimal `json:"rate"`
}

// FinalQuantity is the manual override when present, else the
// calculated quantity
func (l BOLLine) FinalQuantity() decimal.Decimal {
	if l.Manual != nil {
		return *l.Manual
	}
	return l.Calculated
}

// ExtendedCost is FinalQuantity x Rate, recomputed on every read
func (l BOLLine) ExtendedCost() decimal.Decimal {
	return l.FinalQuantity().Mul(l.Rate)
}
