// Package types - Labor catalog types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// LaborCode is an activity definition independent of price
type LaborCode struct {
	// ID uniquely identifies the labor code
	ID string `json:"id"`

	// SKU is the unique activity code
	SKU string `json:"sku"`

	// Description is the human-readable activity description
	Description string `json:"description"`

	// Categories lists the fence categories the activity applies to
	Categories []string `json:"categories,omitempty"`

	// Unit is the billing unit
	Unit UnitType `json:"unit"`
}

// LaborRate is a (LaborCode x BusinessUnit) price, effective-dated.
// At most one rate exists per (code, unit, effective date).
type LaborRate struct {
	// LaborCodeID references the labor code
	LaborCodeID string `json:"labor_code_id"`

	// BusinessUnitID is the (location x client-type) rate scope
	BusinessUnitID string `json:"business_unit_id"`

	// Rate is the price per unit
	Rate decimal.Decimal `json:"rate"`

	// EffectiveDate is when the rate takes effect
	EffectiveDate time.Time `json:"effective_date"`
}
