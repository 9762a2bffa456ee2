// Package catalog - Load-time validation
package catalog

import (
	"fence-cost/core/rules"
	"fence-cost/internal/errors"
)

// Validate checks referential integrity and rule well-formedness,
// collecting every problem rather than stopping at the first, so a
// catalog author can fix a data set in one pass.
func (s *Snapshot) Validate() []error {
	var errs []error

	seenMaterial := make(map[string]bool)
	for _, m := range s.Materials {
		if m.SKU == "" {
			errs = append(errs, errors.Catalog("material with empty SKU"))
			continue
		}
		if seenMaterial[m.SKU] {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "duplicate material SKU %q", m.SKU))
		}
		seenMaterial[m.SKU] = true
	}

	seenLabor := make(map[string]bool)
	for _, c := range s.LaborCodes {
		if seenLabor[c.SKU] {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "duplicate labor SKU %q", c.SKU))
		}
		seenLabor[c.SKU] = true
	}

	for _, r := range s.LaborRates {
		if _, ok := s.laborByID[r.LaborCodeID]; !ok {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "labor rate references unknown labor code %q", r.LaborCodeID))
		}
	}

	for _, st := range s.ProductStyles {
		if _, ok := s.typeByCode[st.ProductTypeCode]; !ok {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "style %q references unknown product type %q", st.Code, st.ProductTypeCode))
		}
	}

	for _, c := range s.Components {
		for _, t := range c.RequiredFor {
			if _, ok := s.typeByCode[t]; !ok {
				errs = append(errs, errors.Newf(errors.TypeCatalog, "component %q required for unknown product type %q", c.Code, t))
			}
		}
	}

	// Null-safe scope uniqueness: the ScopeKey normalizes empty scope
	// fields to the "*" sentinel before comparison.
	seenParam := make(map[string]bool)
	for _, p := range s.Parameters {
		key := p.ScopeKey()
		if seenParam[key] {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "duplicate formula parameter scope %q", key))
		}
		seenParam[key] = true
	}

	for _, r := range s.Rules {
		if _, ok := s.typeByCode[r.ProductType]; !ok {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "rule %q references unknown product type %q", r.ID, r.ProductType))
		}
		if r.Style != "" {
			if _, ok := s.styleByKey[r.ProductType+"/"+r.Style]; !ok {
				errs = append(errs, errors.Newf(errors.TypeCatalog, "rule %q references unknown style %q", r.ID, r.Style))
			}
		}
	}

	compiled, ruleErrs := rules.CompileAll(s.Rules)
	errs = append(errs, ruleErrs...)
	if len(ruleErrs) == 0 {
		if err := rules.ValidateSet(compiled); err != nil {
			errs = append(errs, err)
		}
	}

	for _, lr := range s.LaborRules {
		if _, ok := s.laborByID[lr.LaborCodeID]; !ok {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "labor rule %q references unknown labor code %q", lr.ID, lr.LaborCodeID))
		}
		if _, ok := s.typeByCode[lr.ProductType]; !ok {
			errs = append(errs, errors.Newf(errors.TypeCatalog, "labor rule %q references unknown product type %q", lr.ID, lr.ProductType))
		}
		if _, err := rules.DecodeCondition(lr.Condition); err != nil {
			errs = append(errs, err)
		}
		switch lr.Basis {
		case "":
			errs = append(errs, errors.Newf(errors.TypeCatalog, "labor rule %q missing quantity basis", lr.ID))
		case "net_length", "gates", "posts":
		default:
			errs = append(errs, errors.Newf(errors.TypeCatalog, "labor rule %q has unknown quantity basis %q", lr.ID, lr.Basis))
		}
	}

	return errs
}
