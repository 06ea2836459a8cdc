package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/utils"

	"github.com/valyala/bytebufferpool"
)

// Generation parameters for method queries. Low temperature keeps the
// structured output stable across providers.
const (
	promptMaxTokens   = 2048
	promptTemperature = 0.2
)

// jsonContract is appended to every domain prompt so each provider
// returns the same parseable shape.
const jsonContract = `Respond with a single JSON object and nothing else. Use exactly these keys:
{
  "description": string,
  "steps": [string, ...],
  "warnings": [string, ...],
  "requiredSkillLevel": integer from 1 to 5,
  "estimatedTime": number of labor hours for a typical baseline project,
  "specialConsiderations": [string, ...]
}`

// BuildPrompt renders the generic domain prompt for a request. Only the
// key-relevant fields enter the prompt: project dimensions and client
// identity are intentionally absent so the answer stays reusable across
// projects that share a key.
func BuildPrompt(req models.MethodRequest) string {
	buf := utils.Get()
	defer utils.Put(buf)

	switch req.DomainType {
	case models.DomainMaterialList:
		fmt.Fprintf(buf, "You are an experienced construction estimator. List the materials required to build a typical %s", subject(req))
		writeRegion(buf, req)
		buf.WriteString(".\nEnumerate materials as steps in purchase order, with quantity guidance per baseline unit.\n")
	case models.DomainPriceGuidance:
		fmt.Fprintf(buf, "You are an experienced construction estimator. Give price guidance for building a typical %s", subject(req))
		writeRegion(buf, req)
		buf.WriteString(".\nDescribe the cost drivers as steps, from groundwork to finishing, with indicative regional price ranges.\n")
	default:
		fmt.Fprintf(buf, "You are an experienced construction professional. Describe the standard method for building a %s", subject(req))
		writeRegion(buf, req)
		buf.WriteString(".\nCover preparation, execution and finishing in order.\n")
	}

	if len(req.Options) > 0 {
		buf.WriteString("Constraints: ")
		buf.WriteString(formatOptions(req.Options))
		buf.WriteString(".\n")
	}

	buf.WriteString("\n")
	buf.WriteString(jsonContract)
	return buf.String()
}

func subject(req models.MethodRequest) string {
	return strings.ReplaceAll(req.DomainSubtype, "_", " ")
}

func writeRegion(buf *bytebufferpool.ByteBuffer, req models.MethodRequest) {
	if req.Location.Region != "" {
		buf.WriteString(" in the ")
		buf.WriteString(req.Location.Region)
		buf.WriteString(" region")
	}
}

// formatOptions renders the option set in sorted key order so the same
// request always produces the same prompt text.
func formatOptions(options map[string]string) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, options[k]))
	}
	return strings.Join(parts, ", ")
}
