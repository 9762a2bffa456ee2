// Package types defines the domain model for fence estimation.
package types

// UnitType is the unit a quantity is purchased or billed in
type UnitType string

const (
	UnitEach       UnitType = "EA"
	UnitLinearFoot UnitType = "LF"
	UnitBag        UnitType = "BAG"
	UnitHour       UnitType = "HR"
	UnitPair       UnitType = "PR"
)

// String returns the string representation
func (u UnitType) String() string {
	return string(u)
}

// PostType identifies the post material family
type PostType string

const (
	PostWood  PostType = "WOOD"
	PostSteel PostType = "STEEL"
)

// String returns the string representation
func (p PostType) String() string {
	return string(p)
}

// Well-known component codes. Catalogs may define additional components;
// these are the ones the quantity calculator has canonical formulas for.
const (
	ComponentPost     = "POST"
	ComponentGatePost = "GATE_POST"
	ComponentPicket   = "PICKET"
	ComponentRail     = "RAIL"
	ComponentBracket  = "BRACKET"
	ComponentCap      = "CAP"
	ComponentTrim     = "TRIM"
	ComponentConcrete = "CONCRETE"
)

// ScopeAny is the sentinel for a wildcard scope component. NULL scope
// values from the source data are normalized to this marker so scope
// tuples compare with plain equality.
const ScopeAny = "*"

// NormalizeScope maps an empty scope value to the ScopeAny sentinel
func NormalizeScope(v string) string {
	if v == "" {
		return ScopeAny
	}
	return v
}
