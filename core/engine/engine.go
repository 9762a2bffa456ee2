// Package engine orchestrates a fence estimate: rule evaluation,
// parameter resolution, quantity calculation, labor selection, and
// aggregation, against one consistent catalog snapshot.
package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fence-cost/core/aggregate"
	"fence-cost/core/catalog"
	"fence-cost/core/labor"
	"fence-cost/core/params"
	"fence-cost/core/quantity"
	"fence-cost/core/rules"
	"fence-cost/core/types"
	"fence-cost/internal/errors"
	"fence-cost/internal/logging"
)

// Issue is a per-component, user-facing selection problem. Issues do
// not abort the calculation; they are collected so every problem is
// reported at once.
type Issue struct {
	// LineItemID identifies the affected line item
	LineItemID string `json:"line_item_id"`

	// Component is the affected component code
	Component string `json:"component"`

	// Message describes the problem
	Message string `json:"message"`
}

// ComponentLine is one computed component for a line item
type ComponentLine struct {
	// Component is the component code
	Component string `json:"component"`

	// Material is the selected material
	Material types.Material `json:"material"`

	// Quantity is the unrounded decimal quantity
	Quantity decimal.Decimal `json:"quantity"`
}

// LineItemResult is the calculation outcome for one fence run
type LineItemResult struct {
	// Input echoes the calculation input
	Input types.LineItemInput `json:"input"`

	// Violations lists failed constraints; when non-empty no
	// quantities were computed
	Violations []rules.Violation `json:"violations,omitempty"`

	// Issues lists per-component selection problems
	Issues []Issue `json:"issues,omitempty"`

	// Components holds the computed component quantities
	Components []ComponentLine `json:"components,omitempty"`

	// Labor holds the selected labor lines
	Labor []labor.Line `json:"labor,omitempty"`

	// TotalPosts is the post count including gate posts, the counter
	// labor per-post formulas are driven by
	TotalPosts decimal.Decimal `json:"total_posts"`
}

// Valid reports whether the configuration passed all constraints
func (r *LineItemResult) Valid() bool {
	return len(r.Violations) == 0
}

// ProjectEstimate is the aggregated result across a project's line items
type ProjectEstimate struct {
	// ProjectID identifies the project
	ProjectID string `json:"project_id"`

	// LineItems holds each run's result
	LineItems []LineItemResult `json:"line_items"`

	// BOM is the aggregated bill of materials
	BOM []types.BOMLine `json:"bom"`

	// BOL is the aggregated bill of labor
	BOL []types.BOLLine `json:"bol"`

	// Issues collects every line item's issues
	Issues []Issue `json:"issues,omitempty"`

	// MaterialTotal is the summed BOM extended cost
	MaterialTotal decimal.Decimal `json:"material_total"`

	// LaborTotal is the summed BOL extended cost
	LaborTotal decimal.Decimal `json:"labor_total"`

	// Total is MaterialTotal + LaborTotal
	Total decimal.Decimal `json:"total"`
}

// Engine runs calculations against one catalog snapshot
type Engine struct {
	snap     *catalog.Snapshot
	rules    *rules.Engine
	labor    *labor.Selector
	resolver *params.Resolver
	log      *zap.Logger
}

// New builds an engine from a snapshot, compiling the rule sets. Rule
// data problems surface here, at load time.
func New(snap *catalog.Snapshot) (*Engine, error) {
	ruleEngine, err := rules.NewEngine(snap.Rules)
	if err != nil {
		return nil, err
	}
	selector, err := labor.NewSelector(snap.LaborRules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		snap:     snap,
		rules:    ruleEngine,
		labor:    selector,
		resolver: params.NewResolver(snap.Parameters),
		log:      logging.Logger.Named("engine"),
	}, nil
}

// CalculateLineItem computes component and labor quantities for one
// fence run. Constraint violations are returned in the result, not as
// errors; missing parameters or rates abort the calculation.
func (e *Engine) CalculateLineItem(item types.LineItemInput, businessUnit string, asOf time.Time) (*LineItemResult, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	cfg := item.Config

	if _, ok := e.snap.ProductType(cfg.ProductType); !ok {
		return nil, errors.NotFound("product type", cfg.ProductType)
	}
	if cfg.Style != "" {
		if _, ok := e.snap.ProductStyle(cfg.ProductType, cfg.Style); !ok {
			return nil, errors.NotFound("product style", cfg.ProductType+"/"+cfg.Style)
		}
	}

	result := &LineItemResult{Input: item}
	attrs := rules.AttributesFor(cfg, item.Gates)
	eval := e.rules.Evaluate(cfg.ProductType, cfg.Style, attrs)

	if len(eval.Violations) > 0 {
		result.Violations = eval.Violations
		e.log.Debug("configuration rejected by constraints",
			zap.String("line_item", item.ID),
			zap.Int("violations", len(eval.Violations)))
		return result, nil
	}

	spacing, err := e.resolver.Resolve(params.KeyPostSpacingFt, cfg.ProductType, cfg.Style, types.ComponentPost)
	if err != nil {
		return nil, err
	}
	waste, err := e.resolver.Resolve(params.KeyWasteFactor, cfg.ProductType, cfg.Style, types.ComponentPicket)
	if err != nil {
		return nil, err
	}
	picketMult := e.resolveOrOne(params.KeyPicketMultiplier, cfg.ProductType, cfg.Style)
	boardMult := e.resolveOrOne(params.KeyBoardMultiplier, cfg.ProductType, cfg.Style)

	components := e.applicableComponents(cfg, eval)
	selected := e.selectMaterials(item.ID, cfg, components, eval, result)

	in := quantity.Inputs{
		NetLengthFt:      item.NetLengthFt(),
		Lines:            item.Lines,
		PostSpacingFt:    spacing,
		RailCount:        cfg.RailCount,
		PostType:         cfg.PostType,
		WasteFactor:      waste,
		PicketMultiplier: picketMult.Mul(boardMult),
	}
	if picket, ok := selected[types.ComponentPicket]; ok {
		in.PicketWidthIn = picket.ActualWidthIn
	}

	basePosts := quantity.Posts(in)
	env := rules.Env{
		NetLength: in.NetLengthFt,
		Gates:     item.Gates,
		Lines:     item.Lines,
		Posts:     basePosts,
	}

	deltas := make(map[string]decimal.Decimal)
	for _, d := range eval.Deltas {
		deltas[d.Component] = deltas[d.Component].Add(d.Signed(env))
	}

	linePosts := basePosts.Add(deltas[types.ComponentPost])
	if linePosts.IsNegative() {
		linePosts = decimal.Zero
	}
	totalPosts := linePosts.Add(deltas[types.ComponentGatePost])
	result.TotalPosts = totalPosts

	for _, comp := range components {
		qty, err := e.componentQuantity(comp, cfg, in, linePosts, totalPosts, deltas)
		if err != nil {
			return nil, err
		}
		if qty.Sign() <= 0 {
			continue
		}

		material, ok := selected[comp]
		if !ok {
			// selection issue already recorded
			continue
		}
		result.Components = append(result.Components, ComponentLine{
			Component: comp,
			Material:  material,
			Quantity:  qty,
		})
	}

	env.Posts = totalPosts
	lines, err := e.labor.Select(e.snap, cfg.ProductType, cfg.Style, businessUnit, asOf, attrs, env)
	if err != nil {
		return nil, err
	}
	result.Labor = lines

	return result, nil
}

// CalculateProject runs every line item and aggregates the results.
// Catalog-data errors abort the project calculation; constraint
// violations and selection issues are collected per line item.
func (e *Engine) CalculateProject(projectID string, items []types.LineItemInput, businessUnit string, asOf time.Time) (*ProjectEstimate, error) {
	if projectID == "" {
		projectID = uuid.NewString()
	}

	estimate := &ProjectEstimate{ProjectID: projectID}
	var materials []aggregate.MaterialQuantity
	var laborContribs []aggregate.LaborQuantity

	for _, item := range items {
		result, err := e.CalculateLineItem(item, businessUnit, asOf)
		if err != nil {
			return nil, err
		}
		estimate.LineItems = append(estimate.LineItems, *result)
		estimate.Issues = append(estimate.Issues, result.Issues...)

		if !result.Valid() {
			continue
		}
		for _, c := range result.Components {
			materials = append(materials, aggregate.MaterialQuantity{
				Material: c.Material,
				Quantity: c.Quantity,
			})
		}
		for _, l := range result.Labor {
			laborContribs = append(laborContribs, aggregate.LaborQuantity{
				Code:     l.Code,
				Quantity: l.Quantity,
				Rate:     l.Rate,
			})
		}
	}

	estimate.BOM = aggregate.BuildBOM(materials)
	estimate.BOL = aggregate.BuildBOL(laborContribs)
	estimate.Recalculate()

	e.log.Info("project calculated",
		zap.String("project", projectID),
		zap.Int("line_items", len(items)),
		zap.Int("bom_lines", len(estimate.BOM)),
		zap.Int("bol_lines", len(estimate.BOL)))

	return estimate, nil
}

// Recalculate refreshes the totals from the current BOM/BOL rows.
// Called after any override so extended costs stay consistent with
// final quantities.
func (p *ProjectEstimate) Recalculate() {
	p.MaterialTotal = aggregate.MaterialTotal(p.BOM)
	p.LaborTotal = aggregate.LaborTotal(p.BOL)
	p.Total = p.MaterialTotal.Add(p.LaborTotal)
}

// resolveOrOne resolves a multiplier key, defaulting to 1 when no row
// exists at any scope. Multipliers are the only keys with a safe
// hard-coded default: 1 is the identity, not a guess.
func (e *Engine) resolveOrOne(key, productType, style string) decimal.Decimal {
	v, err := e.resolver.Resolve(key, productType, style, "")
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return v
}

// applicableComponents is the union of components required for the
// product type, selected options, and components introduced by
// conditional rules, in a stable order.
func (e *Engine) applicableComponents(cfg types.ProductConfiguration, eval rules.Evaluation) []string {
	var order []string
	seen := make(map[string]bool)
	add := func(code string) {
		if code == "" || seen[code] {
			return
		}
		seen[code] = true
		order = append(order, code)
	}

	for _, c := range e.snap.RequiredComponents(cfg.ProductType) {
		add(c.Code)
	}
	for _, o := range cfg.Options {
		add(o)
	}
	for _, d := range eval.Deltas {
		add(d.Component)
	}
	return order
}

// selectMaterials picks a material per component from the filtered
// eligible set. An empty eligible set is recorded as an issue and the
// component is skipped; the rest of the calculation proceeds.
func (e *Engine) selectMaterials(lineItemID string, cfg types.ProductConfiguration, components []string, eval rules.Evaluation, result *LineItemResult) map[string]types.Material {
	selected := make(map[string]types.Material, len(components))

	for _, comp := range components {
		filters := e.filtersFor(comp, eval)
		eligible := e.snap.EligibleMaterials(filters)

		if chosen := cfg.ComponentMaterials[comp]; chosen != "" {
			m, ok := e.snap.Material(chosen)
			if !ok {
				result.Issues = append(result.Issues, Issue{
					LineItemID: lineItemID,
					Component:  comp,
					Message:    "selected material " + chosen + " not in catalog",
				})
				continue
			}
			if !materialIn(eligible, m.ID) {
				result.Issues = append(result.Issues, Issue{
					LineItemID: lineItemID,
					Component:  comp,
					Message:    "selected material " + m.SKU + " is not eligible for " + comp,
				})
				continue
			}
			selected[comp] = m
			continue
		}

		if len(eligible) == 0 {
			result.Issues = append(result.Issues, Issue{
				LineItemID: lineItemID,
				Component:  comp,
				Message:    errors.NoEligibleMaterial(comp).Message,
			})
			continue
		}
		selected[comp] = eligible[0]
	}

	return selected
}

// filtersFor combines the implicit category filter for a component
// with the rule-derived narrowing filters. Derived values of the form
// "COMPONENT.sub_category" become sub-category filters.
func (e *Engine) filtersFor(comp string, eval rules.Evaluation) []rules.MaterialFilter {
	filters := []rules.MaterialFilter{}
	if def, ok := e.snap.Component(comp); ok {
		filters = append(filters, rules.MaterialFilter{Component: comp, Category: def.Name})
	}
	filters = append(filters, eval.Filters[comp]...)

	for field, value := range eval.Derived {
		component, attr, ok := strings.Cut(field, ".")
		if !ok || component != comp {
			continue
		}
		if attr == "sub_category" {
			filters = append(filters, rules.MaterialFilter{Component: comp, SubCategory: value})
		}
	}
	return filters
}

// componentQuantity dispatches to the canonical formula for a
// component and folds in conditional add/remove deltas. Components
// with no formula and no delta contribute nothing.
func (e *Engine) componentQuantity(comp string, cfg types.ProductConfiguration, in quantity.Inputs, linePosts, totalPosts decimal.Decimal, deltas map[string]decimal.Decimal) (decimal.Decimal, error) {
	var base decimal.Decimal

	switch comp {
	case types.ComponentPost:
		// gate adjustments already folded into linePosts
		return linePosts, nil
	case types.ComponentGatePost:
		return deltas[types.ComponentGatePost], nil
	case types.ComponentPicket:
		base = quantity.Pickets(in)
	case types.ComponentRail:
		base = quantity.Rails(linePosts, cfg.RailCount)
	case types.ComponentBracket:
		base = quantity.Brackets(linePosts, cfg.RailCount, cfg.PostType)
	case types.ComponentCap:
		base = quantity.Caps(totalPosts)
	case types.ComponentConcrete:
		bags, err := e.resolver.Resolve(params.KeyConcreteBagsPerPost, cfg.ProductType, cfg.Style, types.ComponentConcrete)
		if err != nil {
			return decimal.Decimal{}, err
		}
		base = quantity.ConcreteBags(totalPosts, bags)
	case types.ComponentTrim:
		base = in.NetLengthFt
	default:
		if def, ok := e.snap.Component(comp); ok && def.Unit == types.UnitLinearFoot {
			base = in.NetLengthFt
		}
	}

	return base.Add(deltas[comp]), nil
}

func materialIn(materials []types.Material, id string) bool {
	for _, m := range materials {
		if m.ID == id {
			return true
		}
	}
	return false
}
