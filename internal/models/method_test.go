package models

import (
	"strings"
	"testing"
)

func TestMethodRequestKeyDeterministic(t *testing.T) {
	req := MethodRequest{
		DomainType:    DomainConstructionMethod,
		DomainSubtype: "wooden_fence",
		Location:      Location{Region: "Bavaria"},
		Options:       map[string]string{"material": "pine", "style": "lattice"},
	}

	first := req.Key()
	for i := 0; i < 20; i++ {
		if got := req.Key(); got != first {
			t.Fatalf("key changed between calls: %q vs %q", got, first)
		}
	}

	if !strings.HasPrefix(first, "method:construction_method:wooden_fence:") {
		t.Errorf("key = %q, want method:<type>:<subtype>: prefix", first)
	}
}

func TestMethodRequestKeyIgnoresIrrelevantFields(t *testing.T) {
	base := MethodRequest{
		DomainType:    DomainConstructionMethod,
		DomainSubtype: "wooden_fence",
		Location:      Location{Region: "Bavaria"},
	}

	variant := base
	variant.ClientName = "Example GmbH"
	variant.Location.City = "Munich"
	variant.Location.Address = "Musterstr. 1"
	variant.Dimensions = Dimensions{SizeMeasure: 500, HeightM: 2}
	variant.Complexity = ComplexityFlags{HighComplexity: true}

	if base.Key() != variant.Key() {
		t.Error("client identity, city, dimensions and complexity must not affect the key")
	}
}

func TestMethodRequestKeyRegionCaseInsensitive(t *testing.T) {
	a := MethodRequest{DomainType: DomainConstructionMethod, DomainSubtype: "wooden_fence", Location: Location{Region: "Bavaria"}}
	b := MethodRequest{DomainType: DomainConstructionMethod, DomainSubtype: "wooden_fence", Location: Location{Region: "BAVARIA"}}

	if a.Key() != b.Key() {
		t.Error("region comparison must be case-insensitive")
	}
}

func TestMethodRequestKeyDistinguishesRelevantFields(t *testing.T) {
	base := MethodRequest{DomainType: DomainConstructionMethod, DomainSubtype: "wooden_fence", Location: Location{Region: "Bavaria"}}

	tests := []struct {
		name string
		req  MethodRequest
	}{
		{"different subtype", MethodRequest{DomainType: DomainConstructionMethod, DomainSubtype: "metal_fence", Location: Location{Region: "Bavaria"}}},
		{"different type", MethodRequest{DomainType: DomainMaterialList, DomainSubtype: "wooden_fence", Location: Location{Region: "Bavaria"}}},
		{"different region", MethodRequest{DomainType: DomainConstructionMethod, DomainSubtype: "wooden_fence", Location: Location{Region: "Saxony"}}},
		{"extra option", MethodRequest{DomainType: DomainConstructionMethod, DomainSubtype: "wooden_fence", Location: Location{Region: "Bavaria"}, Options: map[string]string{"material": "oak"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.req.Key() == base.Key() {
				t.Error("keys should differ")
			}
		})
	}
}

func TestMethodRequestKeyOptionOrderIndependent(t *testing.T) {
	// Map iteration order varies run to run; the key must not.
	a := MethodRequest{
		DomainType:    DomainConstructionMethod,
		DomainSubtype: "wooden_fence",
		Options:       map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"},
	}
	first := a.Key()
	for i := 0; i < 50; i++ {
		if a.Key() != first {
			t.Fatal("option ordering leaked into the key")
		}
	}
}

func TestMethodResultValidate(t *testing.T) {
	valid := MethodResult{
		Description:        "d",
		Steps:              []string{"a"},
		RequiredSkillLevel: 3,
		EstimatedTime:      8,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*MethodResult)
	}{
		{"no steps", func(m *MethodResult) { m.Steps = nil }},
		{"skill too low", func(m *MethodResult) { m.RequiredSkillLevel = 0 }},
		{"skill too high", func(m *MethodResult) { m.RequiredSkillLevel = 6 }},
		{"zero time", func(m *MethodResult) { m.EstimatedTime = 0 }},
		{"negative time", func(m *MethodResult) { m.EstimatedTime = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			m.Steps = append([]string{}, valid.Steps...)
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestIsErrorType(t *testing.T) {
	err := NewNoCapableProviderError(CapabilityTextCompletion)
	if !IsErrorType(err, ErrorTypeNoCapableProvider) {
		t.Error("IsErrorType should match the error's own type")
	}
	if IsErrorType(err, ErrorTypeExhausted) {
		t.Error("IsErrorType should not match a different type")
	}

	wrapped := NewCacheError("store failed", err)
	if !IsErrorType(wrapped, ErrorTypeCache) {
		t.Error("IsErrorType should match the outermost AppError")
	}
}
