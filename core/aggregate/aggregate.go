// Package aggregate merges per-line-item quantities into project-level
// BOM and BOL rows, rounds to purchasable units, and applies manual
// overrides. Extended costs are derived getters on the row types and
// are never stored independently of their inputs.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"fence-cost/core/types"
)

// MaterialQuantity is one line item's contribution for a material
type MaterialQuantity struct {
	// Material is the selected material
	Material types.Material

	// Quantity is the unrounded decimal quantity
	Quantity decimal.Decimal
}

// LaborQuantity is one line item's contribution for a labor code
type LaborQuantity struct {
	// Code is the labor activity
	Code types.LaborCode

	// Quantity is the labor quantity
	Quantity decimal.Decimal

	// Rate is the business-unit rate
	Rate decimal.Decimal
}

// BuildBOM sums material quantities across line items, grouped by
// material, and rounds each sum up to purchasable units. Ceiling
// rounding never under-purchases: sum(rounded) >= sum(raw).
func BuildBOM(contributions []MaterialQuantity) []types.BOMLine {
	byID := make(map[string]*types.BOMLine)
	for _, c := range contributions {
		line, ok := byID[c.Material.ID]
		if !ok {
			line = &types.BOMLine{
				MaterialID:  c.Material.ID,
				MaterialSKU: c.Material.SKU,
				UnitCost:    c.Material.UnitCost,
			}
			byID[c.Material.ID] = line
		}
		line.Calculated = line.Calculated.Add(c.Quantity)
	}

	lines := make([]types.BOMLine, 0, len(byID))
	for _, line := range byID {
		line.Rounded = line.Calculated.Ceil()
		lines = append(lines, *line)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].MaterialSKU < lines[j].MaterialSKU
	})
	return lines
}

// BuildBOL sums labor quantities across line items, grouped by labor
// code. Labor is billed fractionally, so quantities are not rounded.
func BuildBOL(contributions []LaborQuantity) []types.BOLLine {
	byID := make(map[string]*types.BOLLine)
	for _, c := range contributions {
		line, ok := byID[c.Code.ID]
		if !ok {
			line = &types.BOLLine{
				LaborCodeID: c.Code.ID,
				LaborSKU:    c.Code.SKU,
				Rate:        c.Rate,
			}
			byID[c.Code.ID] = line
		}
		line.Calculated = line.Calculated.Add(c.Quantity)
	}

	lines := make([]types.BOLLine, 0, len(byID))
	for _, line := range byID {
		lines = append(lines, *line)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].LaborSKU < lines[j].LaborSKU
	})
	return lines
}

// OverrideMaterial sets or clears the manual quantity on the matching
// BOM line. Final quantity and extended cost follow the override
// through the derived getters, so no recompute step can be missed.
func OverrideMaterial(lines []types.BOMLine, materialID string, manual *decimal.Decimal) bool {
	for i := range lines {
		if lines[i].MaterialID == materialID {
			lines[i].Manual = manual
			return true
		}
	}
	return false
}

// OverrideLabor sets or clears the manual quantity on the matching BOL
// line
func OverrideLabor(lines []types.BOLLine, laborCodeID string, manual *decimal.Decimal) bool {
	for i := range lines {
		if lines[i].LaborCodeID == laborCodeID {
			lines[i].Manual = manual
			return true
		}
	}
	return false
}

// MaterialTotal is the summed extended cost of the BOM
func MaterialTotal(lines []types.BOMLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.ExtendedCost())
	}
	return total
}

// LaborTotal is the summed extended cost of the BOL
func LaborTotal(lines []types.BOLLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.ExtendedCost())
	}
	return total
}
