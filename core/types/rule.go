// Package types - Declarative rule rows
package types

import "encoding/json"

// RuleType classifies a product rule
type RuleType string

const (
	// RuleConstraint rejects configurations outside an allowed set
	RuleConstraint RuleType = "constraint"

	// RuleMaterialMatch narrows a component's eligible materials
	RuleMaterialMatch RuleType = "material_match"

	// RuleConditionalComponent adds or removes component quantity
	RuleConditionalComponent RuleType = "conditional_component"

	// RuleDerivedValue computes a non-primary field
	RuleDerivedValue RuleType = "derived_value"
)

// ProductRule is a declarative rule row as stored in the catalog. The
// Condition and Action payloads are decoded into typed variants by the
// rules package at load time, so malformed data is rejected before any
// calculation runs.
type ProductRule struct {
	// ID uniquely identifies the rule
	ID string `json:"id"`

	// ProductType scopes the rule to a type
	ProductType string `json:"product_type"`

	// Style scopes the rule to a style ("" = any style of the type)
	Style string `json:"style,omitempty"`

	// Type is the rule classification
	Type RuleType `json:"type"`

	// Condition is the JSON condition payload
	Condition json.RawMessage `json:"condition,omitempty"`

	// Action is the JSON action payload
	Action json.RawMessage `json:"action"`

	// Priority orders evaluation; higher priority applies later-wins
	Priority int `json:"priority"`

	// ErrorMessage is the user-facing message for constraint rules
	ErrorMessage string `json:"error_message,omitempty"`

	// Active marks whether the rule participates in evaluation
	Active bool `json:"active"`
}

// QuantityBasis is the count a labor quantity formula is driven by
type QuantityBasis string

const (
	BasisNetLength QuantityBasis = "net_length"
	BasisGates     QuantityBasis = "gates"
	BasisPosts     QuantityBasis = "posts"
)

// ProductLaborRule maps a labor code to a product scope under a condition
type ProductLaborRule struct {
	// ID uniquely identifies the rule
	ID string `json:"id"`

	// ProductType scopes the rule to a type
	ProductType string `json:"product_type"`

	// Style scopes the rule to a style ("" = any style of the type)
	Style string `json:"style,omitempty"`

	// LaborCodeID references the labor code
	LaborCodeID string `json:"labor_code_id"`

	// Condition is the JSON condition payload ("" = always)
	Condition json.RawMessage `json:"condition,omitempty"`

	// Basis drives the labor quantity
	Basis QuantityBasis `json:"basis"`

	// BaseLabor marks rows that are always included
	BaseLabor bool `json:"base_labor"`

	// Active marks whether the rule participates in selection
	Active bool `json:"active"`
}
