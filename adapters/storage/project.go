// Package storage - Project estimate persistence
package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/shopspring/decimal"

	"fence-cost/core/engine"
	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

// SaveEstimate stores a project and its aggregate rows in one
// transaction. Aggregate rows are written with an atomic upsert keyed
// on (project, material|labor) so concurrent recalculations cannot
// interleave into a lost update; a recalculation wins wholesale.
// Manual overrides survive recalculation.
func (s *Store) SaveEstimate(name string, estimate *engine.ProjectEstimate, businessUnit string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Storage("begin estimate save", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO projects (id, name, business_unit) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, business_unit = excluded.business_unit`,
		estimate.ProjectID, name, businessUnit,
	); err != nil {
		return errors.Storage("upsert project", err)
	}

	if _, err := tx.Exec(`DELETE FROM project_line_items WHERE project_id = ?`, estimate.ProjectID); err != nil {
		return errors.Storage("clear line items", err)
	}
	for _, item := range estimate.LineItems {
		input, err := json.Marshal(item.Input)
		if err != nil {
			return errors.Storage("encode line item input", err)
		}
		quantities, err := json.Marshal(item.Components)
		if err != nil {
			return errors.Storage("encode line item quantities", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO project_line_items (id, project_id, input, quantities)
			VALUES (?, ?, ?, ?)`,
			item.Input.ID, estimate.ProjectID, string(input), string(quantities),
		); err != nil {
			return errors.Storage("insert line item", err)
		}
	}

	// Drop aggregate rows for materials/labor no longer in the estimate,
	// then upsert the rest, preserving manual overrides.
	if err := s.pruneAggregates(tx, estimate); err != nil {
		return err
	}

	for _, l := range estimate.BOM {
		if _, err := tx.Exec(`
			INSERT INTO project_materials (project_id, material_id, material_sku, calculated_quantity, rounded_quantity, unit_cost)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (project_id, material_id) DO UPDATE SET
				material_sku = excluded.material_sku,
				calculated_quantity = excluded.calculated_quantity,
				rounded_quantity = excluded.rounded_quantity,
				unit_cost = excluded.unit_cost`,
			estimate.ProjectID, l.MaterialID, l.MaterialSKU,
			l.Calculated.String(), l.Rounded.String(), l.UnitCost.String(),
		); err != nil {
			return errors.Storage("upsert project material "+l.MaterialSKU, err)
		}
	}

	for _, l := range estimate.BOL {
		if _, err := tx.Exec(`
			INSERT INTO project_labor (project_id, labor_code_id, labor_sku, calculated_quantity, rate)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (project_id, labor_code_id) DO UPDATE SET
				labor_sku = excluded.labor_sku,
				calculated_quantity = excluded.calculated_quantity,
				rate = excluded.rate`,
			estimate.ProjectID, l.LaborCodeID, l.LaborSKU,
			l.Calculated.String(), l.Rate.String(),
		); err != nil {
			return errors.Storage("upsert project labor "+l.LaborSKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("commit estimate save", err)
	}
	return nil
}

func (s *Store) pruneAggregates(tx *sql.Tx, estimate *engine.ProjectEstimate) error {
	keepMaterials := make(map[string]bool, len(estimate.BOM))
	for _, l := range estimate.BOM {
		keepMaterials[l.MaterialID] = true
	}
	rows, err := tx.Query(`SELECT material_id FROM project_materials WHERE project_id = ?`, estimate.ProjectID)
	if err != nil {
		return errors.Storage("query project materials", err)
	}
	var staleMaterials []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return errors.Storage("scan project material", err)
		}
		if !keepMaterials[id] {
			staleMaterials = append(staleMaterials, id)
		}
	}
	rows.Close()
	for _, id := range staleMaterials {
		if _, err := tx.Exec(`DELETE FROM project_materials WHERE project_id = ? AND material_id = ?`, estimate.ProjectID, id); err != nil {
			return errors.Storage("delete stale project material", err)
		}
	}

	keepLabor := make(map[string]bool, len(estimate.BOL))
	for _, l := range estimate.BOL {
		keepLabor[l.LaborCodeID] = true
	}
	rows, err = tx.Query(`SELECT labor_code_id FROM project_labor WHERE project_id = ?`, estimate.ProjectID)
	if err != nil {
		return errors.Storage("query project labor", err)
	}
	var staleLabor []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return errors.Storage("scan project labor", err)
		}
		if !keepLabor[id] {
			staleLabor = append(staleLabor, id)
		}
	}
	rows.Close()
	for _, id := range staleLabor {
		if _, err := tx.Exec(`DELETE FROM project_labor WHERE project_id = ? AND labor_code_id = ?`, estimate.ProjectID, id); err != nil {
			return errors.Storage("delete stale project labor", err)
		}
	}

	return nil
}

// LoadBOM reads a project's aggregated material rows
func (s *Store) LoadBOM(projectID string) ([]types.BOMLine, error) {
	rows, err := s.db.Query(`
		SELECT material_id, material_sku, calculated_quantity, rounded_quantity, manual_quantity, unit_cost
		FROM project_materials WHERE project_id = ? ORDER BY material_sku`, projectID)
	if err != nil {
		return nil, errors.Storage("query project materials", err)
	}
	defer rows.Close()

	var lines []types.BOMLine
	for rows.Next() {
		var l types.BOMLine
		var calculated, rounded, unitCost string
		var manual sql.NullString
		if err := rows.Scan(&l.MaterialID, &l.MaterialSKU, &calculated, &rounded, &manual, &unitCost); err != nil {
			return nil, errors.Storage("scan project material", err)
		}
		if l.Calculated, err = decimal.NewFromString(calculated); err != nil {
			return nil, errors.Storage("decode calculated quantity", err)
		}
		if l.Rounded, err = decimal.NewFromString(rounded); err != nil {
			return nil, errors.Storage("decode rounded quantity", err)
		}
		if l.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
			return nil, errors.Storage("decode unit cost", err)
		}
		if manual.Valid {
			m, err := decimal.NewFromString(manual.String)
			if err != nil {
				return nil, errors.Storage("decode manual quantity", err)
			}
			l.Manual = &m
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// LoadBOL reads a project's aggregated labor rows
func (s *Store) LoadBOL(projectID string) ([]types.BOLLine, error) {
	rows, err := s.db.Query(`
		SELECT labor_code_id, labor_sku, calculated_quantity, manual_quantity, rate
		FROM project_labor WHERE project_id = ? ORDER BY labor_sku`, projectID)
	if err != nil {
		return nil, errors.Storage("query project labor", err)
	}
	defer rows.Close()

	var lines []types.BOLLine
	for rows.Next() {
		var l types.BOLLine
		var calculated, rate string
		var manual sql.NullString
		if err := rows.Scan(&l.LaborCodeID, &l.LaborSKU, &calculated, &manual, &rate); err != nil {
			return nil, errors.Storage("scan project labor", err)
		}
		if l.Calculated, err = decimal.NewFromString(calculated); err != nil {
			return nil, errors.Storage("decode calculated quantity", err)
		}
		if l.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, errors.Storage("decode rate", err)
		}
		if manual.Valid {
			m, err := decimal.NewFromString(manual.String)
			if err != nil {
				return nil, errors.Storage("decode manual quantity", err)
			}
			l.Manual = &m
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// SetMaterialOverride sets or clears the manual quantity on a stored
// material row. Extended cost is derived on read, so no other column
// needs touching.
func (s *Store) SetMaterialOverride(projectID, materialID string, manual *decimal.Decimal) error {
	res, err := s.db.Exec(`
		UPDATE project_materials SET manual_quantity = ?
		WHERE project_id = ? AND material_id = ?`,
		manualText(manual), projectID, materialID)
	if err != nil {
		return errors.Storage("set material override", err)
	}
	return requireRow(res, "project material", projectID+"/"+materialID)
}

// SetLaborOverride sets or clears the manual quantity on a stored
// labor row
func (s *Store) SetLaborOverride(projectID, laborCodeID string, manual *decimal.Decimal) error {
	res, err := s.db.Exec(`
		UPDATE project_labor SET manual_quantity = ?
		WHERE project_id = ? AND labor_code_id = ?`,
		manualText(manual), projectID, laborCodeID)
	if err != nil {
		return errors.Storage("set labor override", err)
	}
	return requireRow(res, "project labor", projectID+"/"+laborCodeID)
}

func manualText(manual *decimal.Decimal) interface{} {
	if manual == nil {
		return nil
	}
	return manual.String()
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Storage("rows affected", err)
	}
	if n == 0 {
		return errors.NotFound(entity, id)
	}
	return nil
}
