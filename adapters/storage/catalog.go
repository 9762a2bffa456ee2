// Package storage - Catalog persistence
package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"fence-cost/core/catalog"
	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

const dateLayout = "2006-01-02"

// SaveCatalog replaces the stored catalog with the snapshot's contents
// in one transaction.
func (s *Store) SaveCatalog(snap *catalog.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Storage("begin catalog save", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"product_labor_rules", "product_rules", "formula_parameters",
		"components", "product_styles", "product_types",
		"labor_rates", "labor_codes", "materials",
	} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return errors.Storage("clear "+table, err)
		}
	}

	for _, m := range snap.Materials {
		attrs, err := json.Marshal(m.Attributes)
		if err != nil {
			return errors.Storage("encode material attributes", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO materials (id, sku, category, sub_category, unit_cost, unit,
				length_ft, actual_width_in, thickness_in, status, stocking_area, attributes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.SKU, m.Category, m.SubCategory, m.UnitCost.String(), string(m.Unit),
			m.LengthFt.String(), m.ActualWidthIn.String(), m.ThicknessIn.String(),
			string(m.Status), m.StockingArea, string(attrs),
		); err != nil {
			return errors.Storage("insert material "+m.SKU, err)
		}
	}

	for _, c := range snap.LaborCodes {
		categories, err := json.Marshal(c.Categories)
		if err != nil {
			return errors.Storage("encode labor categories", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO labor_codes (id, sku, description, categories, unit)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.SKU, c.Description, string(categories), string(c.Unit),
		); err != nil {
			return errors.Storage("insert labor code "+c.SKU, err)
		}
	}

	for _, r := range snap.LaborRates {
		if _, err := tx.Exec(`
			INSERT INTO labor_rates (labor_code_id, business_unit_id, rate, effective_date)
			VALUES (?, ?, ?, ?)`,
			r.LaborCodeID, r.BusinessUnitID, r.Rate.String(), r.EffectiveDate.Format(dateLayout),
		); err != nil {
			return errors.Storage("insert labor rate", err)
		}
	}

	for _, t := range snap.ProductTypes {
		if _, err := tx.Exec(`
			INSERT INTO product_types (code, name, default_post_spacing_ft, strategy)
			VALUES (?, ?, ?, ?)`,
			t.Code, t.Name, t.DefaultPostSpacingFt.String(), t.Strategy,
		); err != nil {
			return errors.Storage("insert product type "+t.Code, err)
		}
	}

	for _, st := range snap.ProductStyles {
		adjustments, err := json.Marshal(st.Adjustments)
		if err != nil {
			return errors.Storage("encode style adjustments", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO product_styles (code, product_type_code, name, adjustments)
			VALUES (?, ?, ?, ?)`,
			st.Code, st.ProductTypeCode, st.Name, string(adjustments),
		); err != nil {
			return errors.Storage("insert style "+st.Code, err)
		}
	}

	for _, c := range snap.Components {
		requiredFor, err := json.Marshal(c.RequiredFor)
		if err != nil {
			return errors.Storage("encode component required_for", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO components (code, name, unit, required_for)
			VALUES (?, ?, ?, ?)`,
			c.Code, c.Name, string(c.Unit), string(requiredFor),
		); err != nil {
			return errors.Storage("insert component "+c.Code, err)
		}
	}

	for _, p := range snap.Parameters {
		if _, err := tx.Exec(`
			INSERT INTO formula_parameters (product_type, style, component, key, value)
			VALUES (?, ?, ?, ?, ?)`,
			types.NormalizeScope(p.ProductType), types.NormalizeScope(p.Style),
			types.NormalizeScope(p.Component), p.Key, p.Value.String(),
		); err != nil {
			return errors.Storage("insert parameter "+p.Key, err)
		}
	}

	for _, r := range snap.Rules {
		if _, err := tx.Exec(`
			INSERT INTO product_rules (id, product_type, style, rule_type, condition, action, priority, error_message, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.ProductType, r.Style, string(r.Type),
			nullableText(r.Condition), string(r.Action),
			r.Priority, r.ErrorMessage, boolInt(r.Active),
		); err != nil {
			return errors.Storage("insert rule "+r.ID, err)
		}
	}

	for _, r := range snap.LaborRules {
		if _, err := tx.Exec(`
			INSERT INTO product_labor_rules (id, product_type, style, labor_code_id, condition, basis, base_labor, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.ProductType, r.Style, r.LaborCodeID,
			nullableText(r.Condition), string(r.Basis),
			boolInt(r.BaseLabor), boolInt(r.Active),
		); err != nil {
			return errors.Storage("insert labor rule "+r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("commit catalog save", err)
	}
	return nil
}

// LoadCatalog reads the stored catalog into a built snapshot. The read
// happens in one transaction so the snapshot is consistent.
func (s *Store) LoadCatalog() (*catalog.Snapshot, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Storage("begin catalog load", err)
	}
	defer tx.Rollback()

	snap := &catalog.Snapshot{}

	rows, err := tx.Query(`
		SELECT id, sku, category, sub_category, unit_cost, unit,
			length_ft, actual_width_in, thickness_in, status, stocking_area, attributes
		FROM materials ORDER BY sku`)
	if err != nil {
		return nil, errors.Storage("query materials", err)
	}
	for rows.Next() {
		var m types.Material
		var unitCost, lengthFt, widthIn, thicknessIn, unit, status, attrs string
		if err := rows.Scan(&m.ID, &m.SKU, &m.Category, &m.SubCategory, &unitCost, &unit,
			&lengthFt, &widthIn, &thicknessIn, &status, &m.StockingArea, &attrs); err != nil {
			rows.Close()
			return nil, errors.Storage("scan material", err)
		}
		m.Unit = types.UnitType(unit)
		m.Status = types.MaterialStatus(status)
		if m.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
			rows.Close()
			return nil, errors.Storage("decode material unit cost", err)
		}
		m.LengthFt, _ = decimal.NewFromString(lengthFt)
		m.ActualWidthIn, _ = decimal.NewFromString(widthIn)
		m.ThicknessIn, _ = decimal.NewFromString(thicknessIn)
		if err := json.Unmarshal([]byte(attrs), &m.Attributes); err != nil {
			rows.Close()
			return nil, errors.Storage("decode material attributes", err)
		}
		snap.Materials = append(snap.Materials, m)
	}
	rows.Close()

	rows, err = tx.Query(`SELECT id, sku, description, categories, unit FROM labor_codes ORDER BY sku`)
	if err != nil {
		return nil, errors.Storage("query labor codes", err)
	}
	for rows.Next() {
		var c types.LaborCode
		var categories, unit string
		if err := rows.Scan(&c.ID, &c.SKU, &c.Description, &categories, &unit); err != nil {
			rows.Close()
			return nil, errors.Storage("scan labor code", err)
		}
		c.Unit = types.UnitType(unit)
		if err := json.Unmarshal([]byte(categories), &c.Categories); err != nil {
			rows.Close()
			return nil, errors.Storage("decode labor categories", err)
		}
		snap.LaborCodes = append(snap.LaborCodes, c)
	}
	rows.Close()

	rows, err = tx.Query(`SELECT labor_code_id, business_unit_id, rate, effective_date FROM labor_rates`)
	if err != nil {
		return nil, errors.Storage("query labor rates", err)
	}
	for rows.Next() {
		var r types.LaborRate
		var rate, effective string
		if err := rows.Scan(&r.LaborCodeID, &r.BusinessUnitID, &rate, &effective); err != nil {
			rows.Close()
			return nil, errors.Storage("scan labor rate", err)
		}
		if r.Rate, err = decimal.NewFromString(rate); err != nil {
			rows.Close()
			return nil, errors.Storage("decode labor rate", err)
		}
		if r.EffectiveDate, err = time.Parse(dateLayout, effective); err != nil {
			rows.Close()
			return nil, errors.Storage("decode labor rate date", err)
		}
		snap.LaborRates = append(snap.LaborRates, r)
	}
	rows.Close()

	rows, err = tx.Query(`SELECT code, name, default_post_spacing_ft, strategy FROM product_types ORDER BY code`)
	if err != nil {
		return nil, errors.Storage("query product types", err)
	}
	for rows.Next() {
		var t types.ProductType
		var spacing string
		if err := rows.Scan(&t.Code, &t.Name, &spacing, &t.Strategy); err != nil {
			rows.Close()
			return nil, errors.Storage("scan product type", err)
		}
		t.DefaultPostSpacingFt, _ = decimal.NewFromString(spacing)
		snap.ProductTypes = append(snap.ProductTypes, t)
	}
	rows.Close()

	rows, err = tx.Query(`SELECT code, product_type_code, name, adjustments FROM product_styles ORDER BY code`)
	if err != nil {
		return nil, errors.Storage("query product styles", err)
	}
	for rows.Next() {
		var st types.ProductStyle
		var adjustments string
		if err := rows.Scan(&st.Code, &st.ProductTypeCode, &st.Name, &adjustments); err != nil {
			rows.Close()
			return nil, errors.Storage("scan product style", err)
		}
		if err := json.Unmarshal([]byte(adjustments), &st.Adjustments); err != nil {
			rows.Close()
			return nil, errors.Storage("decode style adjustments", err)
		}
		snap.ProductStyles = append(snap.ProductStyles, st)
	}
	rows.Close()

	rows, err = tx.Query(`SELECT code, name, unit, required_for FROM components ORDER BY code`)
	if err != nil {
		return nil, errors.Storage("query components", err)
	}
	for rows.Next() {
		var c types.ComponentDefinition
		var unit, requiredFor string
		if err := rows.Scan(&c.Code, &c.Name, &unit, &requiredFor); err != nil {
			rows.Close()
			return nil, errors.Storage("scan component", err)
		}
		c.Unit = types.UnitType(unit)
		if err := json.Unmarshal([]byte(requiredFor), &c.RequiredFor); err != nil {
			rows.Close()
			return nil, errors.Storage("decode component required_for", err)
		}
		snap.Components = append(snap.Components, c)
	}
	rows.Close()

	rows, err = tx.Query(`SELECT product_type, style, component, key, value FROM formula_parameters`)
	if err != nil {
		return nil, errors.Storage("query formula parameters", err)
	}
	for rows.Next() {
		var p types.FormulaParameter
		var value string
		if err := rows.Scan(&p.ProductType, &p.Style, &p.Component, &p.Key, &value); err != nil {
			rows.Close()
			return nil, errors.Storage("scan formula parameter", err)
		}
		p.ProductType = denormalizeScope(p.ProductType)
		p.Style = denormalizeScope(p.Style)
		p.Component = denormalizeScope(p.Component)
		if p.Value, err = decimal.NewFromString(value); err != nil {
			rows.Close()
			return nil, errors.Storage("decode parameter value", err)
		}
		snap.Parameters = append(snap.Parameters, p)
	}
	rows.Close()

	rows, err = tx.Query(`
		SELECT id, product_type, style, rule_type, condition, action, priority, error_message, active
		FROM product_rules ORDER BY id`)
	if err != nil {
		return nil, errors.Storage("query product rules", err)
	}
	for rows.Next() {
		var r types.ProductRule
		var ruleType, action string
		var condition sql.NullString
		var active int
		if err := rows.Scan(&r.ID, &r.ProductType, &r.Style, &ruleType, &condition, &action,
			&r.Priority, &r.ErrorMessage, &active); err != nil {
			rows.Close()
			return nil, errors.Storage("scan product rule", err)
		}
		r.Type = types.RuleType(ruleType)
		if condition.Valid {
			r.Condition = json.RawMessage(condition.String)
		}
		r.Action = json.RawMessage(action)
		r.Active = active != 0
		snap.Rules = append(snap.Rules, r)
	}
	rows.Close()

	rows, err = tx.Query(`
		SELECT id, product_type, style, labor_code_id, condition, basis, base_labor, active
		FROM product_labor_rules ORDER BY id`)
	if err != nil {
		return nil, errors.Storage("query labor rules", err)
	}
	for rows.Next() {
		var r types.ProductLaborRule
		var basis string
		var condition sql.NullString
		var baseLabor, active int
		if err := rows.Scan(&r.ID, &r.ProductType, &r.Style, &r.LaborCodeID, &condition,
			&basis, &baseLabor, &active); err != nil {
			rows.Close()
			return nil, errors.Storage("scan labor rule", err)
		}
		r.Basis = types.QuantityBasis(basis)
		if condition.Valid {
			r.Condition = json.RawMessage(condition.String)
		}
		r.BaseLabor = baseLabor != 0
		r.Active = active != 0
		snap.LaborRules = append(snap.LaborRules, r)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, errors.Storage("commit catalog load", err)
	}
	return snap.Build(), nil
}

func nullableText(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func denormalizeScope(v string) string {
	if v == types.ScopeAny {
		return ""
	}
	return v
}
