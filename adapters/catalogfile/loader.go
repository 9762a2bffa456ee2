// Package catalogfile loads catalog and project definitions from HCL
// files. Rule condition and action payloads stay JSON strings inside
// the HCL; the rules package decodes them, so file loading and rule
// validation report through the same load-time path.
package catalogfile

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"fence-cost/core/catalog"
	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

const effectiveDateLayout = "2006-01-02"

type catalogHCL struct {
	Materials     []materialHCL     `hcl:"material,block"`
	LaborCodes    []laborCodeHCL    `hcl:"labor_code,block"`
	LaborRates    []laborRateHCL    `hcl:"labor_rate,block"`
	ProductTypes  []productTypeHCL  `hcl:"product_type,block"`
	ProductStyles []productStyleHCL `hcl:"product_style,block"`
	Components    []componentHCL    `hcl:"component,block"`
	Parameters    []parameterHCL    `hcl:"parameter,block"`
	Rules         []ruleHCL         `hcl:"rule,block"`
	LaborRules    []laborRuleHCL    `hcl:"labor_rule,block"`
}

type materialHCL struct {
	SKU           string            `hcl:"sku,label"`
	Category      string            `hcl:"category"`
	SubCategory   string            `hcl:"sub_category,optional"`
	UnitCost      float64           `hcl:"unit_cost"`
	Unit          string            `hcl:"unit"`
	LengthFt      float64           `hcl:"length_ft,optional"`
	ActualWidthIn float64           `hcl:"actual_width_in,optional"`
	ThicknessIn   float64           `hcl:"thickness_in,optional"`
	Inactive      bool              `hcl:"inactive,optional"`
	StockingArea  string            `hcl:"stocking_area,optional"`
	Attributes    map[string]string `hcl:"attributes,optional"`
}

type laborCodeHCL struct {
	SKU         string   `hcl:"sku,label"`
	Description string   `hcl:"description"`
	Categories  []string `hcl:"categories,optional"`
	Unit        string   `hcl:"unit"`
}

type laborRateHCL struct {
	Code         string  `hcl:"code"`
	BusinessUnit string  `hcl:"business_unit"`
	Rate         float64 `hcl:"rate"`
	Effective    string  `hcl:"effective"`
}

type productTypeHCL struct {
	Code               string  `hcl:"code,label"`
	Name               string  `hcl:"name"`
	DefaultPostSpacing float64 `hcl:"default_post_spacing,optional"`
	Strategy           string  `hcl:"strategy,optional"`
}

type adjustmentsHCL struct {
	PostSpacing      *float64 `hcl:"post_spacing,optional"`
	PicketMultiplier *float64 `hcl:"picket_multiplier,optional"`
	BoardMultiplier  *float64 `hcl:"board_multiplier,optional"`
}

type productStyleHCL struct {
	Code        string          `hcl:"code,label"`
	ProductType string          `hcl:"product_type"`
	Name        string          `hcl:"name"`
	Adjustments *adjustmentsHCL `hcl:"adjustments,block"`
}

type componentHCL struct {
	Code        string   `hcl:"code,label"`
	Name        string   `hcl:"name"`
	Unit        string   `hcl:"unit"`
	RequiredFor []string `hcl:"required_for,optional"`
}

type parameterHCL struct {
	Key         string  `hcl:"key"`
	Value       float64 `hcl:"value"`
	ProductType string  `hcl:"product_type,optional"`
	Style       string  `hcl:"style,optional"`
	Component   string  `hcl:"component,optional"`
}

type ruleHCL struct {
	ID           string `hcl:"id,label"`
	ProductType  string `hcl:"product_type"`
	Style        string `hcl:"style,optional"`
	Type         string `hcl:"type"`
	Condition    string `hcl:"condition,optional"`
	Action       string `hcl:"action"`
	Priority     int    `hcl:"priority,optional"`
	ErrorMessage string `hcl:"error_message,optional"`
	Disabled     bool   `hcl:"disabled,optional"`
}

type laborRuleHCL struct {
	ID          string `hcl:"id,label"`
	ProductType string `hcl:"product_type"`
	Style       string `hcl:"style,optional"`
	Code        string `hcl:"code"`
	Condition   string `hcl:"condition,optional"`
	Basis       string `hcl:"basis"`
	BaseLabor   bool   `hcl:"base_labor,optional"`
	Disabled    bool   `hcl:"disabled,optional"`
}

// LoadCatalog parses a catalog HCL file into a built snapshot
func LoadCatalog(path string) (*catalog.Snapshot, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Parsing("read catalog file", err)
	}
	return ParseCatalog(src, path)
}

// ParseCatalog parses catalog HCL source into a built snapshot
func ParseCatalog(src []byte, filename string) (*catalog.Snapshot, error) {
	var wire catalogHCL
	if err := decodeHCL(src, filename, &wire); err != nil {
		return nil, err
	}

	snap := &catalog.Snapshot{}

	for _, m := range wire.Materials {
		status := types.MaterialActive
		if m.Inactive {
			status = types.MaterialInactive
		}
		snap.Materials = append(snap.Materials, types.Material{
			ID:            m.SKU,
			SKU:           m.SKU,
			Category:      m.Category,
			SubCategory:   m.SubCategory,
			UnitCost:      decimal.NewFromFloat(m.UnitCost),
			Unit:          types.UnitType(m.Unit),
			LengthFt:      decimal.NewFromFloat(m.LengthFt),
			ActualWidthIn: decimal.NewFromFloat(m.ActualWidthIn),
			ThicknessIn:   decimal.NewFromFloat(m.ThicknessIn),
			Status:        status,
			StockingArea:  m.StockingArea,
			Attributes:    m.Attributes,
		})
	}

	for _, c := range wire.LaborCodes {
		snap.LaborCodes = append(snap.LaborCodes, types.LaborCode{
			ID:          c.SKU,
			SKU:         c.SKU,
			Description: c.Description,
			Categories:  c.Categories,
			Unit:        types.UnitType(c.Unit),
		})
	}

	for _, r := range wire.LaborRates {
		effective, err := time.Parse(effectiveDateLayout, r.Effective)
		if err != nil {
			return nil, errors.Parsing("labor rate effective date", err)
		}
		snap.LaborRates = append(snap.LaborRates, types.LaborRate{
			LaborCodeID:    r.Code,
			BusinessUnitID: r.BusinessUnit,
			Rate:           decimal.NewFromFloat(r.Rate),
			EffectiveDate:  effective,
		})
	}

	for _, t := range wire.ProductTypes {
		snap.ProductTypes = append(snap.ProductTypes, types.ProductType{
			Code:                 t.Code,
			Name:                 t.Name,
			DefaultPostSpacingFt: decimal.NewFromFloat(t.DefaultPostSpacing),
			Strategy:             t.Strategy,
		})
	}

	for _, s := range wire.ProductStyles {
		style := types.ProductStyle{
			Code:            s.Code,
			ProductTypeCode: s.ProductType,
			Name:            s.Name,
		}
		if s.Adjustments != nil {
			style.Adjustments = types.FormulaAdjustments{
				PostSpacingFt:    decimalPtr(s.Adjustments.PostSpacing),
				PicketMultiplier: decimalPtr(s.Adjustments.PicketMultiplier),
				BoardMultiplier:  decimalPtr(s.Adjustments.BoardMultiplier),
			}
		}
		snap.ProductStyles = append(snap.ProductStyles, style)
	}

	for _, c := range wire.Components {
		snap.Components = append(snap.Components, types.ComponentDefinition{
			Code:        c.Code,
			Name:        c.Name,
			Unit:        types.UnitType(c.Unit),
			RequiredFor: c.RequiredFor,
		})
	}

	for _, p := range wire.Parameters {
		snap.Parameters = append(snap.Parameters, types.FormulaParameter{
			ProductType: p.ProductType,
			Style:       p.Style,
			Component:   p.Component,
			Key:         p.Key,
			Value:       decimal.NewFromFloat(p.Value),
		})
	}

	for _, r := range wire.Rules {
		snap.Rules = append(snap.Rules, types.ProductRule{
			ID:           r.ID,
			ProductType:  r.ProductType,
			Style:        r.Style,
			Type:         types.RuleType(r.Type),
			Condition:    rawJSON(r.Condition),
			Action:       rawJSON(r.Action),
			Priority:     r.Priority,
			ErrorMessage: r.ErrorMessage,
			Active:       !r.Disabled,
		})
	}

	for _, r := range wire.LaborRules {
		snap.LaborRules = append(snap.LaborRules, types.ProductLaborRule{
			ID:          r.ID,
			ProductType: r.ProductType,
			Style:       r.Style,
			LaborCodeID: r.Code,
			Condition:   rawJSON(r.Condition),
			Basis:       types.QuantityBasis(r.Basis),
			BaseLabor:   r.BaseLabor,
			Active:      !r.Disabled,
		})
	}

	return snap.Build(), nil
}

func decodeHCL(src []byte, filename string, dst interface{}) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return errors.Parsing("parse "+filename, diags)
	}
	if diags := gohcl.DecodeBody(file.Body, nil, dst); diags.HasErrors() {
		return errors.Parsing("decode "+filename, diags)
	}
	return nil
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func rawJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
