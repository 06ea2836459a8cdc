// Package parser extracts a validated MethodResult from free-form
// provider text. JSON embedded anywhere in the response is preferred;
// heuristic prose extraction is the fallback. Identical input always
// yields identical output.
package parser

import (
	"github.com/buildwise-ai/buildwise/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Defaults applied when a field cannot be recovered from the response.
const (
	defaultSkillLevel     = 3
	defaultEstimatedHours = 24
)

// Parser converts raw provider text into validated MethodResults.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// ParseMethodResponse parses and validates raw provider text. It returns
// a typed parse or validation failure rather than fabricating data;
// callers decide whether to substitute a static fallback.
func (p *Parser) ParseMethodResponse(raw string, requestID string) (*models.MethodResult, error) {
	if raw == "" {
		return nil, models.NewParseError("empty provider response", nil)
	}

	// Strategy 1: embedded JSON with field-level recovery
	if decoded := bestJSONObject(raw); decoded != nil {
		result := reconcile(decoded, requestID)
		if err := result.Validate(); err == nil {
			fiberlog.Debugf("[%s] Parser: recovered result from embedded JSON", requestID)
			return &result, nil
		} else {
			fiberlog.Debugf("[%s] Parser: JSON span failed validation (%v), trying heuristic extraction", requestID, err)
		}
	} else {
		fiberlog.Debugf("[%s] Parser: no well-formed JSON span found, trying heuristic extraction", requestID)
	}

	// Strategy 2: heuristic prose extraction
	result := extractHeuristic(raw, requestID)
	if err := result.Validate(); err != nil {
		fiberlog.Warnf("[%s] Parser: heuristic extraction failed validation: %v", requestID, err)
		return nil, models.NewParseError("response not recoverable as a method result", err)
	}

	fiberlog.Debugf("[%s] Parser: recovered result heuristically (%d steps)", requestID, len(result.Steps))
	return &result, nil
}
