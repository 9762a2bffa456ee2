// Package params resolves scoped formula parameters. A parameter is
// looked up from the most specific (type, style, component) scope down
// to the global default; a missing key is a fatal catalog error, never
// a silent default, because every parameter is pricing-relevant.
package params

import (
	"github.com/shopspring/decimal"

	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

// Well-known parameter keys
const (
	KeyPostSpacingFt      = "post_spacing_ft"
	KeyWasteFactor        = "waste_factor"
	KeyPicketMultiplier   = "picket_multiplier"
	KeyBoardMultiplier    = "board_multiplier"
	KeyConcreteBagsPerPost = "concrete_bags_per_post"
)

// Resolver resolves parameter keys against a parameter set. Pure read;
// no side effects.
type Resolver struct {
	values map[string]decimal.Decimal
}

// NewResolver indexes a parameter set for resolution
func NewResolver(parameters []types.FormulaParameter) *Resolver {
	values := make(map[string]decimal.Decimal, len(parameters))
	for _, p := range parameters {
		values[p.ScopeKey()] = p.Value
	}
	return &Resolver{values: values}
}

// Resolve looks up a key through the scope fallback chain:
// (type, style, component) -> (type, style, *) -> (type, *, component)
// -> (type, *, *) -> (*, *, *). Empty scope arguments skip the scopes
// they would duplicate. Returns ParameterNotFound when no scope holds
// the key.
func (r *Resolver) Resolve(key, productType, style, component string) (decimal.Decimal, error) {
	for _, scope := range fallbackScopes(productType, style, component) {
		k := scope[0] + "/" + scope[1] + "/" + scope[2] + "/" + key
		if v, ok := r.values[k]; ok {
			return v, nil
		}
	}
	return decimal.Decimal{}, errors.ParameterNotFound(key, productType, style, component)
}

// MustResolve is Resolve for keys validated to exist at load time
func (r *Resolver) MustResolve(key, productType, style, component string) decimal.Decimal {
	v, err := r.Resolve(key, productType, style, component)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether any scope in the fallback chain holds the key
func (r *Resolver) Has(key, productType, style, component string) bool {
	_, err := r.Resolve(key, productType, style, component)
	return err == nil
}

func fallbackScopes(productType, style, component string) [][3]string {
	t := types.NormalizeScope(productType)
	s := types.NormalizeScope(style)
	c := types.NormalizeScope(component)

	candidates := [][3]string{
		{t, s, c},
		{t, s, types.ScopeAny},
		{t, types.ScopeAny, c},
		{t, types.ScopeAny, types.ScopeAny},
		{types.ScopeAny, types.ScopeAny, types.ScopeAny},
	}

	scopes := candidates[:0]
	seen := make(map[[3]string]bool, len(candidates))
	for _, cand := range candidates {
		if seen[cand] {
			continue
		}
		seen[cand] = true
		scopes = append(scopes, cand)
	}
	return scopes
}
