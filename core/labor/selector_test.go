// Package labor - Labor selection and rate resolution tests
package labor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fence-cost/core/catalog"
	"fence-cost/core/rules"
	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func laborSnapshot() *catalog.Snapshot {
	snap := &catalog.Snapshot{
		LaborCodes: []types.LaborCode{
			{ID: "LAB-INST", SKU: "LAB-INST", Description: "Fence installation", Unit: types.UnitLinearFoot},
			{ID: "LAB-GATE", SKU: "LAB-GATE", Description: "Gate hanging", Unit: types.UnitEach},
			{ID: "LAB-TEAR", SKU: "LAB-TEAR", Description: "Tear-out", Unit: types.UnitLinearFoot},
		},
		LaborRates: []types.LaborRate{
			{LaborCodeID: "LAB-INST", BusinessUnitID: "dfw-residential", Rate: dec("12.75"), EffectiveDate: date("2025-01-01")},
			{LaborCodeID: "LAB-INST", BusinessUnitID: "dfw-residential", Rate: dec("13.50"), EffectiveDate: date("2025-07-01")},
			{LaborCodeID: "LAB-INST", BusinessUnitID: "dfw-commercial", Rate: dec("15.00"), EffectiveDate: date("2025-01-01")},
			{LaborCodeID: "LAB-GATE", BusinessUnitID: "dfw-residential", Rate: dec("85.00"), EffectiveDate: date("2025-01-01")},
		},
	}
	return snap.Build()
}

func laborRules() []types.ProductLaborRule {
	return []types.ProductLaborRule{
		{
			ID: "base-install", ProductType: "wood-vertical", LaborCodeID: "LAB-INST",
			Basis: types.BasisNetLength, BaseLabor: true, Active: true,
		},
		{
			ID: "gate-hang", ProductType: "wood-vertical", LaborCodeID: "LAB-GATE",
			Condition: json.RawMessage(`{"all":[{"field":"gates","op":"gte","value":1}]}`),
			Basis:     types.BasisGates, Active: true,
		},
		{
			ID: "tear-out", ProductType: "wood-vertical", LaborCodeID: "LAB-TEAR",
			Condition: json.RawMessage(`{"all":[{"op":"has_component","component":"TEAR_OUT"}]}`),
			Basis:     types.BasisNetLength, Active: true,
		},
	}
}

func laborAttrs(gates int) rules.Attributes {
	return rules.Attributes{
		Style:      "standard",
		HeightFt:   dec("6"),
		PostType:   types.PostWood,
		RailCount:  2,
		Gates:      gates,
		Components: map[string]bool{},
	}
}

func laborEnv(gates int) rules.Env {
	return rules.Env{
		NetLength: dec("100"),
		Gates:     gates,
		Lines:     1,
		Posts:     dec("14"),
	}
}

// TestSelectBaseLaborAlwaysApplies proves base labor needs no condition
func TestSelectBaseLaborAlwaysApplies(t *testing.T) {
	selector, err := NewSelector(laborRules())
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}

	lines, err := selector.Select(laborSnapshot(), "wood-vertical", "standard", "dfw-residential", date("2025-03-15"), laborAttrs(0), laborEnv(0))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected only base install, got %d lines", len(lines))
	}
	l := lines[0]
	if l.Code.SKU != "LAB-INST" {
		t.Errorf("Expected LAB-INST, got %s", l.Code.SKU)
	}
	if !l.Quantity.Equal(dec("100")) {
		t.Errorf("Expected 100 LF, got %s", l.Quantity)
	}
	if !l.Rate.Equal(dec("12.75")) {
		t.Errorf("Expected the January rate 12.75, got %s", l.Rate)
	}
}

// TestSelectConditionalGateLabor proves condition-gated rules fire only
// when matched, with the gate count as quantity
func TestSelectConditionalGateLabor(t *testing.T) {
	selector, err := NewSelector(laborRules())
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}

	lines, err := selector.Select(laborSnapshot(), "wood-vertical", "standard", "dfw-residential", date("2025-03-15"), laborAttrs(2), laborEnv(2))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected install + gate hang, got %d lines", len(lines))
	}

	var gate *Line
	for i := range lines {
		if lines[i].Code.SKU == "LAB-GATE" {
			gate = &lines[i]
		}
	}
	if gate == nil {
		t.Fatal("Expected a LAB-GATE line")
	}
	if !gate.Quantity.Equal(dec("2")) {
		t.Errorf("Expected 2 gates, got %s", gate.Quantity)
	}
	if !gate.Rate.Equal(dec("85.00")) {
		t.Errorf("Expected 85.00, got %s", gate.Rate)
	}
}

// TestSelectLatestEffectiveRateWins proves rate resolution picks the
// latest rate at or before the as-of date, per business unit
func TestSelectLatestEffectiveRateWins(t *testing.T) {
	selector, err := NewSelector(laborRules())
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	snap := laborSnapshot()

	lines, err := selector.Select(snap, "wood-vertical", "standard", "dfw-residential", date("2025-08-01"), laborAttrs(0), laborEnv(0))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !lines[0].Rate.Equal(dec("13.50")) {
		t.Errorf("Expected the July rate 13.50 after July, got %s", lines[0].Rate)
	}

	lines, err = selector.Select(snap, "wood-vertical", "standard", "dfw-commercial", date("2025-08-01"), laborAttrs(0), laborEnv(0))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !lines[0].Rate.Equal(dec("15.00")) {
		t.Errorf("Expected the commercial rate 15.00, got %s", lines[0].Rate)
	}
}

// TestSelectMissingRateIsFatal proves an unpriceable labor line aborts
// rather than pricing at zero
func TestSelectMissingRateIsFatal(t *testing.T) {
	selector, err := NewSelector(laborRules())
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}

	_, err = selector.Select(laborSnapshot(), "wood-vertical", "standard", "okc-residential", date("2025-03-15"), laborAttrs(0), laborEnv(0))
	if err == nil {
		t.Fatal("Expected RateNotFound for an unknown business unit")
	}
	if !errors.IsType(err, errors.TypeRateNotFound) {
		t.Errorf("Expected TypeRateNotFound, got %v", err)
	}
}

// TestSelectSkipsZeroQuantity proves a zero-quantity line is dropped
// before any rate lookup
func TestSelectSkipsZeroQuantity(t *testing.T) {
	selector, err := NewSelector(laborRules())
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}

	env := laborEnv(0)
	env.NetLength = decimal.Zero
	lines, err := selector.Select(laborSnapshot(), "wood-vertical", "standard", "dfw-residential", date("2025-03-15"), laborAttrs(0), env)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Expected no lines for a zero-length run, got %d", len(lines))
	}
}

// TestSelectComponentCondition proves has_component conditions drive
// optional work like tear-out
func TestSelectComponentCondition(t *testing.T) {
	selector, err := NewSelector(laborRules())
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	snap := laborSnapshot()
	snap.LaborRates = append(snap.LaborRates, types.LaborRate{
		LaborCodeID: "LAB-TEAR", BusinessUnitID: "dfw-residential",
		Rate: dec("4.25"), EffectiveDate: date("2025-01-01"),
	})

	attrs := laborAttrs(0)
	attrs.Components["TEAR_OUT"] = true
	lines, err := selector.Select(snap, "wood-vertical", "standard", "dfw-residential", date("2025-03-15"), attrs, laborEnv(0))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected install + tear-out, got %d lines", len(lines))
	}
}

// TestApplicableScoping proves inactive and foreign-type rules never
// select
func TestApplicableScoping(t *testing.T) {
	rows := laborRules()
	rows[0].Active = false
	foreign := types.ProductLaborRule{
		ID: "iron-install", ProductType: "iron", LaborCodeID: "LAB-INST",
		Basis: types.BasisNetLength, BaseLabor: true, Active: true,
	}
	rows = append(rows, foreign)

	selector, err := NewSelector(rows)
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	matched := selector.Applicable("wood-vertical", "standard", laborAttrs(0))
	if len(matched) != 0 {
		t.Errorf("Expected no applicable rules, got %d", len(matched))
	}
}
