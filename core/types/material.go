// Package types - Material catalog types
package types

import "github.com/shopspring/decimal"

// MaterialStatus is the lifecycle state of a material
type MaterialStatus string

const (
	MaterialActive   MaterialStatus = "active"
	MaterialInactive MaterialStatus = "inactive"
)

// Material is a purchasable item in the catalog. Read-only from the
// calculator's perspective; prices can change over time but the
// calculator always reads the current cost.
type Material struct {
	// ID uniquely identifies the material
	ID string `json:"id"`

	// SKU is the unique stock keeping unit code
	SKU string `json:"sku"`

	// Category is the top-level classification (e.g., "Picket", "Post")
	Category string `json:"category"`

	// SubCategory refines the category (e.g., "Cedar", "Dome")
	SubCategory string `json:"sub_category,omitempty"`

	// UnitCost is the current price per unit
	UnitCost decimal.Decimal `json:"unit_cost"`

	// Unit is the purchasable unit
	Unit UnitType `json:"unit"`

	// LengthFt is the physical length in feet, if applicable
	LengthFt decimal.Decimal `json:"length_ft,omitempty"`

	// ActualWidthIn is the true face width in inches (e.g., 5.5 for a
	// nominal 6" picket)
	ActualWidthIn decimal.Decimal `json:"actual_width_in,omitempty"`

	// ThicknessIn is the thickness in inches
	ThicknessIn decimal.Decimal `json:"thickness_in,omitempty"`

	// Status marks whether the material can be selected
	Status MaterialStatus `json:"status"`

	// StockingArea is the default yard staging area
	StockingArea string `json:"stocking_area,omitempty"`

	// Attributes holds free-form matching attributes (grade, finish)
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Active reports whether the material is selectable
func (m Material) Active() bool {
	return m.Status == MaterialActive
}
