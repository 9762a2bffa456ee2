// Package engine - End-to-end calculation tests against a seeded catalog
package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fence-cost/core/catalog"
	"fence-cost/core/params"
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

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fixtureRule(id string, ruleType types.RuleType, condition, action string, priority int) types.ProductRule {
	return types.ProductRule{
		ID:          id,
		ProductType: "wood-vertical",
		Type:        ruleType,
		Condition:   json.RawMessage(condition),
		Action:      json.RawMessage(action),
		Priority:    priority,
		Active:      true,
	}
}

// fixtureSnapshot seeds a small but complete wood fence catalog
func fixtureSnapshot() *catalog.Snapshot {
	railConstraint := fixtureRule("rail-count-8ft", types.RuleConstraint,
		`{"all":[{"field":"height_ft","op":"eq","value":8}]}`,
		`{"field":"rail_count","allowed":[3,4]}`, 100)
	railConstraint.ErrorMessage = "8-foot fences require 3 or 4 rails"

	snap := &catalog.Snapshot{
		Materials: []types.Material{
			{ID: "PST-ST-8", SKU: "PST-ST-8", Category: "Post", SubCategory: "Steel", UnitCost: dec("24.00"), Unit: types.UnitEach, Status: types.MaterialActive},
			{ID: "PST-WD-8", SKU: "PST-WD-8", Category: "Post", SubCategory: "Wood", UnitCost: dec("12.00"), Unit: types.UnitEach, Status: types.MaterialActive},
			{ID: "GPST-WD-8", SKU: "GPST-WD-8", Category: "Gate Post", SubCategory: "Wood", UnitCost: dec("18.00"), Unit: types.UnitEach, Status: types.MaterialActive},
			{ID: "PKT-CED-6", SKU: "PKT-CED-6", Category: "Picket", SubCategory: "Cedar", UnitCost: dec("3.98"), Unit: types.UnitEach, ActualWidthIn: dec("5.5"), Status: types.MaterialActive},
			{ID: "RL-8", SKU: "RL-8", Category: "Rail", UnitCost: dec("7.50"), Unit: types.UnitEach, LengthFt: dec("8"), Status: types.MaterialActive},
			{ID: "BRK-STD", SKU: "BRK-STD", Category: "Bracket", UnitCost: dec("1.85"), Unit: types.UnitEach, Status: types.MaterialActive},
			{ID: "CAP-DOME", SKU: "CAP-DOME", Category: "Cap", SubCategory: "Dome", UnitCost: dec("4.25"), Unit: types.UnitEach, Status: types.MaterialActive},
			{ID: "CAP-PLUG", SKU: "CAP-PLUG", Category: "Cap", SubCategory: "Plug", UnitCost: dec("2.10"), Unit: types.UnitEach, Status: types.MaterialActive},
			{ID: "CON-50", SKU: "CON-50", Category: "Concrete", UnitCost: dec("6.50"), Unit: types.UnitBag, Status: types.MaterialActive},
		},
		LaborCodes: []types.LaborCode{
			{ID: "LAB-INST", SKU: "LAB-INST", Description: "Fence installation", Unit: types.UnitLinearFoot},
			{ID: "LAB-SET", SKU: "LAB-SET", Description: "Post setting", Unit: types.UnitEach},
			{ID: "LAB-GATE", SKU: "LAB-GATE", Description: "Gate hanging", Unit: types.UnitEach},
		},
		LaborRates: []types.LaborRate{
			{LaborCodeID: "LAB-INST", BusinessUnitID: "dfw-residential", Rate: dec("12.75"), EffectiveDate: date("2025-01-01")},
			{LaborCodeID: "LAB-SET", BusinessUnitID: "dfw-residential", Rate: dec("9.00"), EffectiveDate: date("2025-01-01")},
			{LaborCodeID: "LAB-GATE", BusinessUnitID: "dfw-residential", Rate: dec("85.00"), EffectiveDate: date("2025-01-01")},
		},
		ProductTypes: []types.ProductType{
			{Code: "wood-vertical", Name: "Wood Vertical", DefaultPostSpacingFt: dec("8")},
		},
		ProductStyles: []types.ProductStyle{
			{Code: "standard", ProductTypeCode: "wood-vertical", Name: "Standard"},
			{Code: "good-neighbor", ProductTypeCode: "wood-vertical", Name: "Good Neighbor",
				Adjustments: types.FormulaAdjustments{
					PostSpacingFt:    decPtr("7.71"),
					PicketMultiplier: decPtr("1.10"),
				}},
			{Code: "board-on-board", ProductTypeCode: "wood-vertical", Name: "Board on Board",
				Adjustments: types.FormulaAdjustments{
					BoardMultiplier: decPtr("1.14"),
				}},
		},
		Components: []types.ComponentDefinition{
			{Code: types.ComponentPost, Name: "Post", Unit: types.UnitEach, RequiredFor: []string{"wood-vertical"}},
			{Code: types.ComponentGatePost, Name: "Gate Post", Unit: types.UnitEach},
			{Code: types.ComponentPicket, Name: "Picket", Unit: types.UnitEach, RequiredFor: []string{"wood-vertical"}},
			{Code: types.ComponentRail, Name: "Rail", Unit: types.UnitEach, RequiredFor: []string{"wood-vertical"}},
			{Code: types.ComponentBracket, Name: "Bracket", Unit: types.UnitEach, RequiredFor: []string{"wood-vertical"}},
			{Code: types.ComponentCap, Name: "Cap", Unit: types.UnitEach},
			{Code: types.ComponentTrim, Name: "Trim", Unit: types.UnitLinearFoot},
			{Code: types.ComponentConcrete, Name: "Concrete", Unit: types.UnitBag, RequiredFor: []string{"wood-vertical"}},
		},
		Parameters: []types.FormulaParameter{
			{Key: params.KeyWasteFactor, Value: dec("1.025")},
			{ProductType: "wood-vertical", Component: types.ComponentConcrete, Key: params.KeyConcreteBagsPerPost, Value: dec("1.5")},
		},
		Rules: []types.ProductRule{
			railConstraint,
			fixtureRule("post-material-wood", types.RuleMaterialMatch,
				`{"all":[{"field":"post_type","op":"eq","value":"WOOD"}]}`,
				`{"component":"POST","sub_category":"Wood"}`, 50),
			fixtureRule("post-material-steel", types.RuleMaterialMatch,
				`{"all":[{"field":"post_type","op":"eq","value":"STEEL"}]}`,
				`{"component":"POST","sub_category":"Steel"}`, 50),
			fixtureRule("rail-length-8ft", types.RuleMaterialMatch,
				`{"all":[{"field":"height_ft","op":"gte","value":8}]}`,
				`{"component":"RAIL","min_length_ft":8}`, 50),
			fixtureRule("gate-posts-wood", types.RuleConditionalComponent,
				`{"all":[{"field":"post_type","op":"eq","value":"WOOD"},{"field":"gates","op":"gte","value":1}]}`,
				`{"component":"GATE_POST","op":"add","quantity":"gates * 2"}`, 50),
			fixtureRule("gate-posts-wood-remove", types.RuleConditionalComponent,
				`{"all":[{"field":"post_type","op":"eq","value":"WOOD"},{"field":"gates","op":"gte","value":1}]}`,
				`{"component":"POST","op":"remove","quantity":"gates"}`, 50),
			fixtureRule("gate-posts-steel", types.RuleConditionalComponent,
				`{"all":[{"field":"post_type","op":"eq","value":"STEEL"},{"field":"gates","op":"gte","value":1}]}`,
				`{"component":"POST","op":"add","quantity":"gates"}`, 50),
			fixtureRule("cap-default", types.RuleDerivedValue,
				`{"all":[{"op":"has_component","component":"CAP"}]}`,
				`{"field":"CAP.sub_category","value":"Plug"}`, 10),
			fixtureRule("cap-dome-tall", types.RuleDerivedValue,
				`{"all":[{"op":"has_component","component":"CAP"},{"field":"height_ft","op":"gte","value":8}]}`,
				`{"field":"CAP.sub_category","value":"Dome"}`, 20),
		},
		LaborRules: []types.ProductLaborRule{
			{ID: "base-install", ProductType: "wood-vertical", LaborCodeID: "LAB-INST",
				Basis: types.BasisNetLength, BaseLabor: true, Active: true},
			{ID: "post-set", ProductType: "wood-vertical", LaborCodeID: "LAB-SET",
				Basis: types.BasisPosts, BaseLabor: true, Active: true},
			{ID: "gate-hang", ProductType: "wood-vertical", LaborCodeID: "LAB-GATE",
				Condition: json.RawMessage(`{"all":[{"field":"gates","op":"gte","value":1}]}`),
				Basis:     types.BasisGates, Active: true},
		},
	}
	return snap.Build()
}

func fixtureEngine(t *testing.T) *Engine {
	t.Helper()
	snap := fixtureSnapshot()
	if errs := snap.Validate(); len(errs) > 0 {
		t.Fatalf("Fixture catalog invalid: %v", errs)
	}
	eng, err := New(snap)
	if err != nil {
		t.Fatalf("New engine failed: %v", err)
	}
	return eng
}

func standardItem() types.LineItemInput {
	return types.LineItemInput{
		ID: "li-1",
		Config: types.ProductConfiguration{
			ProductType: "wood-vertical",
			Style:       "standard",
			HeightFt:    dec("6"),
			PostType:    types.PostWood,
			RailCount:   2,
			Options:     []string{types.ComponentCap},
		},
		TotalFt:  dec("102"),
		BufferFt: dec("2"),
		Lines:    1,
		Gates:    0,
	}
}

func componentQty(t *testing.T, result *LineItemResult, component string) (types.Material, decimal.Decimal) {
	t.Helper()
	for _, c := range result.Components {
		if c.Component == component {
			return c.Material, c.Quantity
		}
	}
	t.Fatalf("Component %s not in result", component)
	return types.Material{}, decimal.Decimal{}
}

func hasComponent(result *LineItemResult, component string) bool {
	for _, c := range result.Components {
		if c.Component == component {
			return true
		}
	}
	return false
}

// TestStandardWoodRun walks the reference scenario: 100 ft net of
// standard 6 ft wood privacy fence
func TestStandardWoodRun(t *testing.T) {
	eng := fixtureEngine(t)

	result, err := eng.CalculateLineItem(standardItem(), "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("Unexpected violations: %v", result.Violations)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("Unexpected issues: %v", result.Issues)
	}

	m, qty := componentQty(t, result, types.ComponentPost)
	if !qty.Equal(dec("14")) {
		t.Errorf("Expected 14 posts, got %s", qty)
	}
	if m.SKU != "PST-WD-8" {
		t.Errorf("Expected the wood post, got %s", m.SKU)
	}

	_, qty = componentQty(t, result, types.ComponentPicket)
	if !qty.Equal(dec("224")) {
		t.Errorf("Expected 224 pickets, got %s", qty)
	}

	_, qty = componentQty(t, result, types.ComponentRail)
	if !qty.Equal(dec("26")) {
		t.Errorf("Expected 26 rails, got %s", qty)
	}

	_, qty = componentQty(t, result, types.ComponentConcrete)
	if !qty.Equal(dec("21")) {
		t.Errorf("Expected 21 bags, got %s", qty)
	}

	m, qty = componentQty(t, result, types.ComponentCap)
	if !qty.Equal(dec("14")) {
		t.Errorf("Expected 14 caps, got %s", qty)
	}
	if m.SKU != "CAP-PLUG" {
		t.Errorf("Expected the plug cap at 6 ft, got %s", m.SKU)
	}

	if hasComponent(result, types.ComponentBracket) {
		t.Error("Wood posts must not produce brackets")
	}
	if hasComponent(result, types.ComponentGatePost) {
		t.Error("No gates, no gate posts")
	}

	if len(result.Labor) != 2 {
		t.Fatalf("Expected install + post set, got %d labor lines", len(result.Labor))
	}
	for _, l := range result.Labor {
		switch l.Code.SKU {
		case "LAB-INST":
			if !l.Quantity.Equal(dec("100")) {
				t.Errorf("Expected 100 LF install, got %s", l.Quantity)
			}
		case "LAB-SET":
			if !l.Quantity.Equal(dec("14")) {
				t.Errorf("Expected 14 posts set, got %s", l.Quantity)
			}
		default:
			t.Errorf("Unexpected labor line %s", l.Code.SKU)
		}
	}
}

// TestWoodGatesSwapPosts proves each wood gate trades one line post for
// two gate posts, and caps and concrete follow the total
func TestWoodGatesSwapPosts(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Gates = 2

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("Unexpected violations: %v", result.Violations)
	}

	_, qty := componentQty(t, result, types.ComponentPost)
	if !qty.Equal(dec("12")) {
		t.Errorf("Expected 12 line posts, got %s", qty)
	}

	m, qty := componentQty(t, result, types.ComponentGatePost)
	if !qty.Equal(dec("4")) {
		t.Errorf("Expected 4 gate posts, got %s", qty)
	}
	if m.SKU != "GPST-WD-8" {
		t.Errorf("Expected the gate post material, got %s", m.SKU)
	}

	if !result.TotalPosts.Equal(dec("16")) {
		t.Errorf("Expected 16 total posts, got %s", result.TotalPosts)
	}

	// rails span line posts only
	_, qty = componentQty(t, result, types.ComponentRail)
	if !qty.Equal(dec("22")) {
		t.Errorf("Expected 22 rails, got %s", qty)
	}

	// caps and concrete follow total posts
	_, qty = componentQty(t, result, types.ComponentCap)
	if !qty.Equal(dec("16")) {
		t.Errorf("Expected 16 caps, got %s", qty)
	}
	_, qty = componentQty(t, result, types.ComponentConcrete)
	if !qty.Equal(dec("24")) {
		t.Errorf("Expected 24 bags, got %s", qty)
	}

	for _, l := range result.Labor {
		switch l.Code.SKU {
		case "LAB-SET":
			if !l.Quantity.Equal(dec("16")) {
				t.Errorf("Post setting follows total posts, got %s", l.Quantity)
			}
		case "LAB-GATE":
			if !l.Quantity.Equal(dec("2")) {
				t.Errorf("Expected 2 gates hung, got %s", l.Quantity)
			}
		}
	}
}

// TestSteelGatesAddPosts proves steel gates add plain posts, select the
// steel post material, and produce brackets
func TestSteelGatesAddPosts(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Gates = 2
	item.Config.PostType = types.PostSteel

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("Unexpected violations: %v", result.Violations)
	}

	m, qty := componentQty(t, result, types.ComponentPost)
	if !qty.Equal(dec("16")) {
		t.Errorf("Expected 16 posts (14 + 2 gate), got %s", qty)
	}
	if m.SKU != "PST-ST-8" {
		t.Errorf("Expected the steel post, got %s", m.SKU)
	}

	if hasComponent(result, types.ComponentGatePost) {
		t.Error("Steel fences take plain posts at gates")
	}

	_, qty = componentQty(t, result, types.ComponentBracket)
	if !qty.Equal(dec("32")) {
		t.Errorf("Expected 32 brackets (16 posts x 2 rails), got %s", qty)
	}
}

// TestConstraintViolationStopsQuantities proves an invalid
// configuration reports the violation and computes nothing
func TestConstraintViolationStopsQuantities(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Config.HeightFt = dec("8")
	item.Config.RailCount = 2

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}
	if result.Valid() {
		t.Fatal("Expected a constraint violation")
	}
	if result.Violations[0].Message != "8-foot fences require 3 or 4 rails" {
		t.Errorf("Unexpected message: %s", result.Violations[0].Message)
	}
	if len(result.Components) != 0 || len(result.Labor) != 0 {
		t.Error("No quantities may be computed for an invalid configuration")
	}
}

// TestTallFenceSelectsDomeCapAndLongRails proves a valid 8 ft
// configuration picks up the height-gated derived cap and rail filter
func TestTallFenceSelectsDomeCapAndLongRails(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Config.HeightFt = dec("8")
	item.Config.RailCount = 3

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("Unexpected violations: %v", result.Violations)
	}

	m, _ := componentQty(t, result, types.ComponentCap)
	if m.SKU != "CAP-DOME" {
		t.Errorf("Expected the dome cap at 8 ft, got %s", m.SKU)
	}

	m, qty := componentQty(t, result, types.ComponentRail)
	if m.SKU != "RL-8" {
		t.Errorf("Expected the 8 ft rail, got %s", m.SKU)
	}
	if !qty.Equal(dec("39")) {
		t.Errorf("Expected 39 rails at 3 per gap, got %s", qty)
	}
}

// TestGoodNeighborStyle proves style adjustments flow through the
// materialized parameters: tighter spacing and a 10% picket bump
func TestGoodNeighborStyle(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Config.Style = "good-neighbor"

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}

	_, qty := componentQty(t, result, types.ComponentPost)
	if !qty.Equal(dec("14")) {
		t.Errorf("Expected 14 posts at 7.71 spacing, got %s", qty)
	}
	_, qty = componentQty(t, result, types.ComponentPicket)
	if !qty.Equal(dec("246")) {
		t.Errorf("Expected 246 pickets with the 1.10 multiplier, got %s", qty)
	}
}

// TestBoardOnBoardStyle proves the board multiplier composes the same way
func TestBoardOnBoardStyle(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Config.Style = "board-on-board"

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}

	_, qty := componentQty(t, result, types.ComponentPicket)
	if !qty.Equal(dec("255")) {
		t.Errorf("Expected 255 board-on-board pickets, got %s", qty)
	}
}

// TestNoEligibleMaterialIsPartialFailure proves a component with no
// material becomes an issue while the rest of the run calculates
func TestNoEligibleMaterialIsPartialFailure(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Config.Options = append(item.Config.Options, types.ComponentTrim)

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("Unexpected violations: %v", result.Violations)
	}

	if len(result.Issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d: %v", len(result.Issues), result.Issues)
	}
	if result.Issues[0].Component != types.ComponentTrim {
		t.Errorf("Expected the trim issue, got %+v", result.Issues[0])
	}
	if hasComponent(result, types.ComponentTrim) {
		t.Error("A component without material must be skipped")
	}
	if !hasComponent(result, types.ComponentPost) || !hasComponent(result, types.ComponentPicket) {
		t.Error("Other components must still calculate")
	}
}

// TestExplicitMaterialMustBeEligible proves a user's material choice is
// honored only when it passes the filters
func TestExplicitMaterialMustBeEligible(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Config.ComponentMaterials = map[string]string{
		types.ComponentPost: "PST-ST-8",
	}

	result, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateLineItem failed: %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("Expected an eligibility issue, got %v", result.Issues)
	}
	if hasComponent(result, types.ComponentPost) {
		t.Error("An ineligible explicit choice must not be silently replaced")
	}
}

// TestUnknownProductTypeIsFatal proves bad references abort instead of
// guessing
func TestUnknownProductTypeIsFatal(t *testing.T) {
	eng := fixtureEngine(t)
	item := standardItem()
	item.Config.ProductType = "chain-link"

	_, err := eng.CalculateLineItem(item, "dfw-residential", date("2025-06-01"))
	if err == nil {
		t.Fatal("Expected an error for an unknown product type")
	}
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("Expected TypeNotFound, got %v", err)
	}
}

// TestProjectAggregatesAcrossLineItems proves fractional quantities sum
// before the single project-level ceiling
func TestProjectAggregatesAcrossLineItems(t *testing.T) {
	eng := fixtureEngine(t)

	// two 96 ft runs: 13 posts and 19.5 bags of concrete each
	a := standardItem()
	a.ID = "li-a"
	a.TotalFt = dec("98")
	b := standardItem()
	b.ID = "li-b"
	b.TotalFt = dec("98")

	estimate, err := eng.CalculateProject("proj-1", []types.LineItemInput{a, b}, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateProject failed: %v", err)
	}

	var concrete *types.BOMLine
	for i := range estimate.BOM {
		if estimate.BOM[i].MaterialSKU == "CON-50" {
			concrete = &estimate.BOM[i]
		}
	}
	if concrete == nil {
		t.Fatal("Expected a concrete BOM line")
	}
	if !concrete.Calculated.Equal(dec("39")) {
		t.Errorf("Expected 39 calculated bags, got %s", concrete.Calculated)
	}
	// 19.5 + 19.5 rounds once to 39; rounding per line item would buy 40
	if !concrete.Rounded.Equal(dec("39")) {
		t.Errorf("Expected 39 rounded bags, got %s", concrete.Rounded)
	}

	if !estimate.Total.Equal(estimate.MaterialTotal.Add(estimate.LaborTotal)) {
		t.Error("Total must equal material plus labor")
	}
	if estimate.MaterialTotal.Sign() <= 0 || estimate.LaborTotal.Sign() <= 0 {
		t.Error("Expected positive totals")
	}
}

// TestProjectSkipsInvalidLineItems proves a violated line item
// contributes nothing but is still reported
func TestProjectSkipsInvalidLineItems(t *testing.T) {
	eng := fixtureEngine(t)

	good := standardItem()
	good.ID = "li-good"
	bad := standardItem()
	bad.ID = "li-bad"
	bad.Config.HeightFt = dec("8")
	bad.Config.RailCount = 2

	estimate, err := eng.CalculateProject("proj-2", []types.LineItemInput{good, bad}, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateProject failed: %v", err)
	}
	if len(estimate.LineItems) != 2 {
		t.Fatalf("Expected both line items reported, got %d", len(estimate.LineItems))
	}
	if estimate.LineItems[1].Valid() {
		t.Error("Expected the second line item to carry its violation")
	}

	solo, err := eng.CalculateProject("proj-3", []types.LineItemInput{good}, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateProject failed: %v", err)
	}
	if !estimate.MaterialTotal.Equal(solo.MaterialTotal) {
		t.Errorf("Invalid line item changed the total: %s vs %s", estimate.MaterialTotal, solo.MaterialTotal)
	}
}

// TestRecalculateFollowsOverride proves an override moves the totals
// through Recalculate
func TestRecalculateFollowsOverride(t *testing.T) {
	eng := fixtureEngine(t)

	estimate, err := eng.CalculateProject("proj-4", []types.LineItemInput{standardItem()}, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateProject failed: %v", err)
	}
	before := estimate.Total

	manual := estimate.BOM[0].Rounded.Add(dec("5"))
	estimate.BOM[0].Manual = &manual
	estimate.Recalculate()

	want := estimate.BOM[0].UnitCost.Mul(dec("5"))
	if !estimate.Total.Sub(before).Equal(want) {
		t.Errorf("Total moved by %s, expected %s", estimate.Total.Sub(before), want)
	}
}

// TestDeterministicAcrossRuns proves the same input yields the same
// estimate
func TestDeterministicAcrossRuns(t *testing.T) {
	eng := fixtureEngine(t)
	items := []types.LineItemInput{standardItem()}

	first, err := eng.CalculateProject("proj-5", items, "dfw-residential", date("2025-06-01"))
	if err != nil {
		t.Fatalf("CalculateProject failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := eng.CalculateProject("proj-5", items, "dfw-residential", date("2025-06-01"))
		if err != nil {
			t.Fatalf("CalculateProject failed: %v", err)
		}
		if len(next.BOM) != len(first.BOM) {
			t.Fatal("BOM length changed between runs")
		}
		for j := range next.BOM {
			if next.BOM[j].MaterialSKU != first.BOM[j].MaterialSKU ||
				!next.BOM[j].Calculated.Equal(first.BOM[j].Calculated) {
				t.Fatalf("BOM row %d changed between runs", j)
			}
		}
		if !next.Total.Equal(first.Total) {
			t.Fatal("Total changed between runs")
		}
	}
}
