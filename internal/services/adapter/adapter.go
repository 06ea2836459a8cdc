// Package adapter rescales a cached generic MethodResult to the numeric
// parameters of a specific project without re-querying any provider.
package adapter

import (
	"math"

	"github.com/buildwise-ai/buildwise/internal/models"
)

// Size-bucket multipliers for estimated time. Thresholds are policy
// constants in the domain's area/length measure.
const (
	smallSizeLimit  = 100
	mediumSizeLimit = 500
	largeSizeLimit  = 1000

	smallMultiplier  = 0.7
	mediumMultiplier = 1.0
	largeMultiplier  = 1.3
	xlMultiplier     = 1.5
)

// AdaptToParameters rescales a generic result to the project's size and
// complexity. Pure: identical inputs always yield identical output, and
// the input result is never mutated. Re-adapting with a different size
// is expected to produce a different result.
func AdaptToParameters(generic models.MethodResult, sizeMeasure float64, flags models.ComplexityFlags) models.MethodResult {
	adapted := generic
	adapted.Steps = cloneSlice(generic.Steps)
	adapted.Warnings = cloneSlice(generic.Warnings)
	adapted.SpecialConsiderations = cloneSlice(generic.SpecialConsiderations)

	adapted.EstimatedTime = math.Ceil(generic.EstimatedTime * sizeMultiplier(sizeMeasure))

	if flags.Elevated() && adapted.RequiredSkillLevel < models.MaxSkillLevel {
		adapted.RequiredSkillLevel++
	}

	return adapted
}

func sizeMultiplier(sizeMeasure float64) float64 {
	switch {
	case sizeMeasure < smallSizeLimit:
		return smallMultiplier
	case sizeMeasure < mediumSizeLimit:
		return mediumMultiplier
	case sizeMeasure < largeSizeLimit:
		return largeMultiplier
	default:
		return xlMultiplier
	}
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
