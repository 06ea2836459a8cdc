package engine

import (
	"fmt"

	"github.com/buildwise-ai/buildwise/internal/models"
)

// Static defaults returned when every provider failed or no response
// could be parsed. Deliberately conservative: generic steps, mid-range
// skill, generous time so downstream estimates are not understated.
const (
	fallbackSkillLevel     = 3
	fallbackEstimatedHours = 40
)

// StaticFallback builds the terminal default result for a request. It
// never fails and always satisfies the result invariants, so the
// pipeline degrades to a usable answer instead of an error.
func StaticFallback(req models.MethodRequest) models.MethodResult {
	subj := subject(req)

	result := models.MethodResult{
		RequiredSkillLevel: fallbackSkillLevel,
		EstimatedTime:      fallbackEstimatedHours,
		Warnings: []string{
			"Automatically generated default guidance; verify against local building codes before use.",
		},
		SpecialConsiderations: []string{
			"Consult a licensed professional for site-specific requirements.",
		},
	}

	switch req.DomainType {
	case models.DomainMaterialList:
		result.Description = fmt.Sprintf("Baseline material checklist for a %s. Quantities must be confirmed against drawings.", subj)
		result.Steps = []string{
			"Structural materials sized per the engineering drawings",
			"Fasteners and connectors rated for the structural loads",
			"Weatherproofing and insulation appropriate to the climate",
			"Finishing materials per the project specification",
		}
	case models.DomainPriceGuidance:
		result.Description = fmt.Sprintf("Baseline cost guidance for a %s. Regional rates vary widely; treat these drivers as a checklist, not a quote.", subj)
		result.Steps = []string{
			"Obtain at least three local quotes for labor and materials",
			"Price groundwork and foundations separately from the superstructure",
			"Budget finishing and fixtures as a distinct line item",
			"Hold a contingency of 10 to 15 percent of the subtotal",
		}
	default:
		result.Description = fmt.Sprintf("General construction procedure for a %s, covering preparation through finishing.", subj)
		result.Steps = []string{
			"Survey the site and confirm dimensions against the plan",
			"Prepare the base: excavate, level and compact as required",
			"Set out and build the primary structure per the drawings",
			"Install services and weatherproofing",
			"Complete finishing work and inspect against the specification",
		}
	}

	return result
}
