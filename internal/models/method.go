package models

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Domain query types handled by the decision engine
const (
	DomainConstructionMethod = "construction_method"
	DomainMaterialList       = "material_list"
	DomainPriceGuidance      = "price_guidance"
)

// Skill level bounds for MethodResult validation
const (
	MinSkillLevel = 1
	MaxSkillLevel = 5
)

// Location identifies where the project is built. Only the region is
// semantically relevant to a generic answer.
type Location struct {
	Region  string `json:"region,omitzero" yaml:"region,omitempty"`
	City    string `json:"city,omitzero" yaml:"city,omitempty"`
	Address string `json:"address,omitzero" yaml:"address,omitempty"`
}

// Dimensions carries the numeric parameters of a specific project.
// These never enter the request key; cached generic results are rescaled
// to them by the parameter adapter.
type Dimensions struct {
	SizeMeasure float64 `json:"size_measure,omitzero" yaml:"size_measure,omitempty"` // area or length in the domain's unit
	HeightM     float64 `json:"height_m,omitzero" yaml:"height_m,omitempty"`
}

// ComplexityFlags marks a project as harder than the generic case.
type ComplexityFlags struct {
	HighComplexity bool     `json:"high_complexity,omitzero" yaml:"high_complexity,omitempty"`
	CustomFeatures []string `json:"custom_features,omitzero" yaml:"custom_features,omitempty"`
}

// Elevated reports whether the flags call for a skill-level bump.
func (cf ComplexityFlags) Elevated() bool {
	return cf.HighComplexity || len(cf.CustomFeatures) > 0
}

// MethodRequest is the typed request the decision engine receives from
// the estimate pipeline.
type MethodRequest struct {
	DomainType    string            `json:"domain_type" yaml:"domain_type"`
	DomainSubtype string            `json:"domain_subtype" yaml:"domain_subtype"`
	Location      Location          `json:"location,omitzero" yaml:"location,omitempty"`
	Dimensions    Dimensions        `json:"dimensions,omitzero" yaml:"dimensions,omitempty"`
	Options       map[string]string `json:"options,omitzero" yaml:"options,omitempty"`
	Complexity    ComplexityFlags   `json:"complexity,omitzero" yaml:"complexity,omitempty"`

	// ClientName is carried for the caller's bookkeeping only. It never
	// affects the answer and is excluded from the request key.
	ClientName string `json:"client_name,omitzero" yaml:"client_name,omitempty"`
}

// Key derives the deterministic request key. Two requests that would
// legitimately produce the same generic answer map to the same key:
// only domain type, subtype, region and the option set enter the hash.
func (r MethodRequest) Key() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", r.DomainType, r.DomainSubtype, strings.ToLower(r.Location.Region))

	keys := make([]string, 0, len(r.Options))
	for k := range r.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, r.Options[k])
	}

	return fmt.Sprintf("method:%s:%s:%x", r.DomainType, r.DomainSubtype, h.Sum(nil)[:16])
}

// Validate checks the request preconditions.
func (r MethodRequest) Validate() error {
	if r.DomainType == "" {
		return NewValidationError("domain_type is required", nil)
	}
	if r.DomainSubtype == "" {
		return NewValidationError("domain_subtype is required", nil)
	}
	return nil
}

// MethodResult is the structured answer produced by parsing a provider
// response, the unit stored in the cache, and the value returned to the
// caller after adaptation.
type MethodResult struct {
	Description           string   `json:"description"`
	Steps                 []string `json:"steps"`
	Warnings              []string `json:"warnings"`
	RequiredSkillLevel    int      `json:"requiredSkillLevel"`
	EstimatedTime         float64  `json:"estimatedTime"` // hours
	SpecialConsiderations []string `json:"specialConsiderations"`
}

// Validate enforces the MethodResult invariants: non-empty steps, skill
// level within bounds, positive estimated time.
func (m MethodResult) Validate() error {
	if len(m.Steps) == 0 {
		return NewValidationError("method result has no steps", nil)
	}
	if m.RequiredSkillLevel < MinSkillLevel || m.RequiredSkillLevel > MaxSkillLevel {
		return NewValidationError(
			fmt.Sprintf("requiredSkillLevel %d out of range [%d,%d]", m.RequiredSkillLevel, MinSkillLevel, MaxSkillLevel), nil)
	}
	if m.EstimatedTime <= 0 {
		return NewValidationError(fmt.Sprintf("estimatedTime %.2f must be positive", m.EstimatedTime), nil)
	}
	return nil
}
