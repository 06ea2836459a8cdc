package adapter

import (
	"testing"

	"github.com/buildwise-ai/buildwise/internal/models"
)

func baseResult() models.MethodResult {
	return models.MethodResult{
		Description:           "generic answer",
		Steps:                 []string{"one", "two"},
		Warnings:              []string{"careful"},
		RequiredSkillLevel:    3,
		EstimatedTime:         20,
		SpecialConsiderations: []string{"weather"},
	}
}

func TestAdaptToParametersSizeMultipliers(t *testing.T) {
	tests := []struct {
		name     string
		size     float64
		baseTime float64
		want     float64
	}{
		{"small project scales down", 50, 20, 14},    // 20 * 0.7
		{"lower small boundary", 99.9, 20, 14},       // still * 0.7
		{"medium is unchanged", 100, 20, 20},         // * 1.0
		{"upper medium boundary", 499, 20, 20},       // * 1.0
		{"large scales up", 750, 20, 26},             // 20 * 1.3
		{"extra large scales up more", 1000, 20, 30}, // 20 * 1.5
		{"fractional hours round up", 150, 10.2, 11}, // ceil(10.2)
		{"small with fraction", 10, 3, 3},            // ceil(2.1)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generic := baseResult()
			generic.EstimatedTime = tt.baseTime

			adapted := AdaptToParameters(generic, tt.size, models.ComplexityFlags{})
			if adapted.EstimatedTime != tt.want {
				t.Errorf("EstimatedTime = %v, want %v", adapted.EstimatedTime, tt.want)
			}
		})
	}
}

func TestAdaptToParametersSkillBump(t *testing.T) {
	tests := []struct {
		name      string
		baseSkill int
		flags     models.ComplexityFlags
		want      int
	}{
		{"no flags keeps skill", 3, models.ComplexityFlags{}, 3},
		{"high complexity bumps", 3, models.ComplexityFlags{HighComplexity: true}, 4},
		{"custom features bump", 2, models.ComplexityFlags{CustomFeatures: []string{"gate"}}, 3},
		{"both flags bump once", 3, models.ComplexityFlags{HighComplexity: true, CustomFeatures: []string{"gate"}}, 4},
		{"capped at maximum", 5, models.ComplexityFlags{HighComplexity: true}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generic := baseResult()
			generic.RequiredSkillLevel = tt.baseSkill

			adapted := AdaptToParameters(generic, 200, tt.flags)
			if adapted.RequiredSkillLevel != tt.want {
				t.Errorf("RequiredSkillLevel = %d, want %d", adapted.RequiredSkillLevel, tt.want)
			}
		})
	}
}

func TestAdaptToParametersPure(t *testing.T) {
	generic := baseResult()

	first := AdaptToParameters(generic, 750, models.ComplexityFlags{HighComplexity: true})
	second := AdaptToParameters(generic, 750, models.ComplexityFlags{HighComplexity: true})

	if first.EstimatedTime != second.EstimatedTime || first.RequiredSkillLevel != second.RequiredSkillLevel {
		t.Errorf("identical inputs produced different outputs: %+v vs %+v", first, second)
	}

	// The input is never mutated
	if generic.EstimatedTime != 20 || generic.RequiredSkillLevel != 3 {
		t.Errorf("input was mutated: %+v", generic)
	}

	// Slices are independent copies
	first.Steps[0] = "changed"
	if generic.Steps[0] != "one" {
		t.Error("adapted result shares step storage with the input")
	}
}

func TestAdaptToParametersRescalesPerProject(t *testing.T) {
	generic := baseResult()

	small := AdaptToParameters(generic, 50, models.ComplexityFlags{})
	large := AdaptToParameters(generic, 2000, models.ComplexityFlags{})

	if small.EstimatedTime == large.EstimatedTime {
		t.Errorf("different sizes produced the same time: %v", small.EstimatedTime)
	}
	if small.Description != large.Description {
		t.Error("descriptions should be unchanged by adaptation")
	}
}
