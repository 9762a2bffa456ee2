// Package catalog holds the reference data the calculator reads:
// materials, labor codes and rates, product definitions, formula
// parameters, and rules. A Snapshot is an immutable value handed to
// the engine, so each calculation sees consistent catalog state.
package catalog

import (
	"sort"
	"time"

	"fence-cost/core/params"
	"fence-cost/core/rules"
	"fence-cost/core/types"
)

// Snapshot is one consistent view of the catalog
type Snapshot struct {
	Materials    []types.Material
	LaborCodes   []types.LaborCode
	LaborRates   []types.LaborRate
	ProductTypes []types.ProductType
	ProductStyles []types.ProductStyle
	Components   []types.ComponentDefinition
	Parameters   []types.FormulaParameter
	Rules        []types.ProductRule
	LaborRules   []types.ProductLaborRule

	materialByID   map[string]types.Material
	materialBySKU  map[string]types.Material
	laborByID      map[string]types.LaborCode
	laborBySKU     map[string]types.LaborCode
	typeByCode     map[string]types.ProductType
	styleByKey     map[string]types.ProductStyle
	componentByCode map[string]types.ComponentDefinition
}

// Build materializes derived parameter rows and indexes the snapshot.
// Product type default post spacing becomes a type-scoped parameter
// and style formula adjustments become style-scoped parameters, so
// resolution follows a single path through the params resolver.
func (s *Snapshot) Build() *Snapshot {
	s.materializeParameters()

	s.materialByID = make(map[string]types.Material, len(s.Materials))
	s.materialBySKU = make(map[string]types.Material, len(s.Materials))
	for _, m := range s.Materials {
		s.materialByID[m.ID] = m
		s.materialBySKU[m.SKU] = m
	}

	s.laborByID = make(map[string]types.LaborCode, len(s.LaborCodes))
	s.laborBySKU = make(map[string]types.LaborCode, len(s.LaborCodes))
	for _, c := range s.LaborCodes {
		s.laborByID[c.ID] = c
		s.laborBySKU[c.SKU] = c
	}

	s.typeByCode = make(map[string]types.ProductType, len(s.ProductTypes))
	for _, t := range s.ProductTypes {
		s.typeByCode[t.Code] = t
	}

	s.styleByKey = make(map[string]types.ProductStyle, len(s.ProductStyles))
	for _, st := range s.ProductStyles {
		s.styleByKey[st.ProductTypeCode+"/"+st.Code] = st
	}

	s.componentByCode = make(map[string]types.ComponentDefinition, len(s.Components))
	for _, c := range s.Components {
		s.componentByCode[c.Code] = c
	}

	return s
}

func (s *Snapshot) materializeParameters() {
	present := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		present[p.ScopeKey()] = true
	}

	add := func(p types.FormulaParameter) {
		if present[p.ScopeKey()] {
			return
		}
		present[p.ScopeKey()] = true
		s.Parameters = append(s.Parameters, p)
	}

	for _, t := range s.ProductTypes {
		if !t.DefaultPostSpacingFt.IsZero() {
			add(types.FormulaParameter{
				ProductType: t.Code,
				Key:         params.KeyPostSpacingFt,
				Value:       t.DefaultPostSpacingFt,
			})
		}
	}

	for _, st := range s.ProductStyles {
		if v := st.Adjustments.PostSpacingFt; v != nil {
			add(types.FormulaParameter{
				ProductType: st.ProductTypeCode,
				Style:       st.Code,
				Key:         params.KeyPostSpacingFt,
				Value:       *v,
			})
		}
		if v := st.Adjustments.PicketMultiplier; v != nil {
			add(types.FormulaParameter{
				ProductType: st.ProductTypeCode,
				Style:       st.Code,
				Key:         params.KeyPicketMultiplier,
				Value:       *v,
			})
		}
		if v := st.Adjustments.BoardMultiplier; v != nil {
			add(types.FormulaParameter{
				ProductType: st.ProductTypeCode,
				Style:       st.Code,
				Key:         params.KeyBoardMultiplier,
				Value:       *v,
			})
		}
	}
}

// Material returns a material by ID
func (s *Snapshot) Material(id string) (types.Material, bool) {
	m, ok := s.materialByID[id]
	return m, ok
}

// MaterialBySKU returns a material by SKU
func (s *Snapshot) MaterialBySKU(sku string) (types.Material, bool) {
	m, ok := s.materialBySKU[sku]
	return m, ok
}

// LaborCode returns a labor code by ID
func (s *Snapshot) LaborCode(id string) (types.LaborCode, bool) {
	c, ok := s.laborByID[id]
	return c, ok
}

// LaborCodeBySKU returns a labor code by SKU
func (s *Snapshot) LaborCodeBySKU(sku string) (types.LaborCode, bool) {
	c, ok := s.laborBySKU[sku]
	return c, ok
}

// ProductType returns a product type by code
func (s *Snapshot) ProductType(code string) (types.ProductType, bool) {
	t, ok := s.typeByCode[code]
	return t, ok
}

// ProductStyle returns a style by type and code
func (s *Snapshot) ProductStyle(productType, code string) (types.ProductStyle, bool) {
	st, ok := s.styleByKey[productType+"/"+code]
	return st, ok
}

// Component returns a component definition by code
func (s *Snapshot) Component(code string) (types.ComponentDefinition, bool) {
	c, ok := s.componentByCode[code]
	return c, ok
}

// RequiredComponents returns the components required for a product type
func (s *Snapshot) RequiredComponents(productType string) []types.ComponentDefinition {
	var required []types.ComponentDefinition
	for _, c := range s.Components {
		if c.RequiredForType(productType) {
			required = append(required, c)
		}
	}
	return required
}

// RateFor returns the labor rate effective at asOf for a (code,
// business unit) pair: the latest rate whose effective date is at or
// before asOf.
func (s *Snapshot) RateFor(laborCodeID, businessUnitID string, asOf time.Time) (types.LaborRate, bool) {
	var best types.LaborRate
	found := false
	for _, r := range s.LaborRates {
		if r.LaborCodeID != laborCodeID || r.BusinessUnitID != businessUnitID {
			continue
		}
		if r.EffectiveDate.After(asOf) {
			continue
		}
		if !found || r.EffectiveDate.After(best.EffectiveDate) {
			best = r
			found = true
		}
	}
	return best, found
}

// EligibleMaterials returns the active materials passing every filter,
// ordered by SKU for deterministic selection.
func (s *Snapshot) EligibleMaterials(filters []rules.MaterialFilter) []types.Material {
	var eligible []types.Material
	for _, m := range s.Materials {
		if !m.Active() {
			continue
		}
		pass := true
		for _, f := range filters {
			if !f.Matches(m) {
				pass = false
				break
			}
		}
		if pass {
			eligible = append(eligible, m)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].SKU < eligible[j].SKU
	})
	return eligible
}
