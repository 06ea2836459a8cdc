package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

var leadingNumberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// knownFields is the normalized key set of the MethodResult schema.
// Normalization strips case and separators so camelCase, snake_case and
// kebab-case provider output all reconcile to the same field.
var knownFields = map[string]struct{}{
	"description":           {},
	"steps":                 {},
	"warnings":              {},
	"requiredskilllevel":    {},
	"estimatedtime":         {},
	"specialconsiderations": {},
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, " ", "")
	return key
}

// reconcile maps a decoded JSON object onto a MethodResult with
// field-level recovery: singular values become single-element slices,
// numeric strings become numbers, unknown fields are dropped and logged.
// Absent skill level and time fall back to the domain defaults.
func reconcile(decoded map[string]any, requestID string) models.MethodResult {
	fields := make(map[string]any, len(decoded))
	var dropped []string
	for key, value := range decoded {
		norm := normalizeKey(key)
		if _, ok := knownFields[norm]; ok {
			fields[norm] = value
		} else {
			dropped = append(dropped, key)
		}
	}
	if len(dropped) > 0 {
		sort.Strings(dropped)
		fiberlog.Debugf("[%s] Parser: dropped unknown fields %v", requestID, dropped)
	}

	result := models.MethodResult{
		Description:           coerceString(fields["description"]),
		Steps:                 coerceStringSlice(fields["steps"]),
		Warnings:              coerceStringSlice(fields["warnings"]),
		SpecialConsiderations: coerceStringSlice(fields["specialconsiderations"]),
		RequiredSkillLevel:    defaultSkillLevel,
		EstimatedTime:         defaultEstimatedHours,
	}

	if v, ok := coerceInt(fields["requiredskilllevel"]); ok {
		result.RequiredSkillLevel = v
	}
	if v, ok := coerceFloat(fields["estimatedtime"]); ok {
		result.EstimatedTime = v
	}

	return result
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// coerceStringSlice accepts a sequence or coerces a singular value into a
// single-element sequence. Nil and empty values yield an empty slice.
func coerceStringSlice(v any) []string {
	switch s := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str := coerceString(item); str != "" {
				out = append(out, str)
			}
		}
		return out
	case []string:
		return s
	default:
		if str := coerceString(v); str != "" {
			return []string{str}
		}
		return []string{}
	}
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed, true
		}
		if f, ok := firstNumber(n); ok {
			return int(f), true
		}
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed, true
		}
		// Ranges like "20-30 hours" keep the first number
		if f, ok := firstNumber(n); ok {
			return f, true
		}
	}
	return 0, false
}

// firstNumber extracts the first decimal number from a string.
func firstNumber(s string) (float64, bool) {
	match := leadingNumberRe.FindString(s)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
