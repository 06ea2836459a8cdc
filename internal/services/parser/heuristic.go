package parser

import (
	"regexp"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/utils"
)

var (
	numberedItemRe = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+(.+)$`)
	skillLevelRe   = regexp.MustCompile(`(?i)skill[\s-]*level[^0-9]{0,20}([1-5])`)
	hoursRe        = regexp.MustCompile(`(?i)(?:estimated[\s-]*time|time[\s-]*estimate|duration|takes?[^.]{0,20}?|hours?:?)[^0-9]{0,20}(\d+(?:\.\d+)?)`)
)

// Section header synonym sets. A line is a header when it starts with one
// of the synonyms (after list markup is stripped).
var (
	stepSynonyms          = []string{"steps", "procedure", "instructions", "process"}
	warningSynonyms       = []string{"warnings", "precautions", "cautions", "safety"}
	considerationSynonyms = []string{"considerations", "special considerations", "notes"}
	descriptionKeywords   = []string{"description", "method", "approach", "technique", "overview", "construct", "build", "install"}
)

// extractHeuristic recovers a MethodResult from prose when no usable JSON
// span exists: paragraph keyword matching for the description, numbered
// lists under section-header synonyms for the sequences, bounded numeric
// patterns for skill level and hours.
func extractHeuristic(raw string, requestID string) models.MethodResult {
	buf := utils.Get()
	defer utils.Put(buf)
	buf.SetString(strings.ReplaceAll(raw, "\r\n", "\n"))
	text := buf.String()

	paragraphs := splitParagraphs(text)

	result := models.MethodResult{
		Description:           findDescription(paragraphs),
		Steps:                 []string{},
		Warnings:              []string{},
		SpecialConsiderations: []string{},
		RequiredSkillLevel:    defaultSkillLevel,
		EstimatedTime:         defaultEstimatedHours,
	}

	lines := strings.Split(text, "\n")
	result.Steps = collectSection(lines, stepSynonyms)
	result.Warnings = collectSection(lines, warningSynonyms)
	result.SpecialConsiderations = collectSection(lines, considerationSynonyms)

	if m := skillLevelRe.FindStringSubmatch(text); m != nil {
		if v, ok := firstNumber(m[1]); ok {
			result.RequiredSkillLevel = int(v)
		}
	}
	if m := hoursRe.FindStringSubmatch(text); m != nil {
		// First number wins when the text gives a range
		if v, ok := firstNumber(m[1]); ok && v > 0 {
			result.EstimatedTime = v
		}
	}

	return result
}

func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// findDescription returns the first paragraph matching a description
// keyword, or the first paragraph when nothing matches.
func findDescription(paragraphs []string) string {
	for _, p := range paragraphs {
		lower := strings.ToLower(p)
		for _, kw := range descriptionKeywords {
			if strings.Contains(lower, kw) {
				return firstSentenceBlock(p)
			}
		}
	}
	if len(paragraphs) > 0 {
		return firstSentenceBlock(paragraphs[0])
	}
	return ""
}

// firstSentenceBlock strips list markup so a header-plus-list paragraph
// does not swallow its items into the description.
func firstSentenceBlock(paragraph string) string {
	lines := strings.Split(paragraph, "\n")
	var kept []string
	for _, line := range lines {
		if numberedItemRe.MatchString(line) {
			break
		}
		kept = append(kept, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// collectSection finds the first header line matching the synonym set and
// gathers the numbered or bulleted items that follow it.
func collectSection(lines []string, synonyms []string) []string {
	items := []string{}
	inSection := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !inSection {
			if isSectionHeader(trimmed, synonyms) {
				inSection = true
			}
			continue
		}

		if m := numberedItemRe.FindStringSubmatch(trimmed); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
			continue
		}

		// A new header or plain prose after collected items ends the section
		if len(items) > 0 && trimmed != "" {
			break
		}
	}

	return items
}

func isSectionHeader(line string, synonyms []string) bool {
	if line == "" {
		return false
	}
	lower := strings.ToLower(strings.TrimRight(line, ":"))
	lower = strings.TrimLeft(lower, "#*- ")
	for _, syn := range synonyms {
		if strings.HasPrefix(lower, syn) {
			return true
		}
	}
	return false
}
