package schema

import (
	"fmt"
	"regexp"
	"strings"
)

var keywordPatterns = map[RequirementLevel]*regexp.Regexp{
	LevelMay:    regexp.MustCompile(`\bmay\b`),
	LevelShould: regexp.MustCompile(`\bshould\b`),
	LevelShall:  regexp.MustCompile(`\bshall\b`),
}

// CountKeyword counts whole-word, case-sensitive occurrences of the level's
// modal keyword in the text of content.
func CountKeyword(level RequirementLevel, content ContentList) int {
	re := keywordPatterns[level]
	if re == nil {
		return 0
	}
	n := 0
	for _, line := range content.TextLines() {
		n += len(re.FindAllStringIndex(line, -1))
	}
	return n
}

// ValidateNormativeLevel checks that the normative statement uses the modal
// keyword of level exactly once and none of the other keywords.
func ValidateNormativeLevel(level RequirementLevel, normative ContentList) error {
	if _, ok := keywordPatterns[level]; !ok {
		return fmt.Errorf("invalid requirement level %q", level)
	}
	if len(normative) == 0 {
		return fmt.Errorf("missing the required normative statement")
	}

	counts := make(map[RequirementLevel]int, len(Levels))
	for _, l := range Levels {
		counts[l] = CountKeyword(l, normative)
	}

	if counts[level] != 1 {
		return fmt.Errorf("should have exactly one %s keyword, not %d", level.Keyword(), counts[level])
	}

	var others []string
	for _, l := range Levels {
		if l != level && counts[l] != 0 {
			others = append(others, fmt.Sprintf("%s (%d)", l.Keyword(), counts[l]))
		}
	}
	if len(others) > 0 {
		return fmt.Errorf("should not have any %s", strings.Join(others, " or "))
	}
	return nil
}

// ValidateRequirement checks the structural invariants of a requirement value,
// e.g. one read back from an exported artifact.
func ValidateRequirement(r *Requirement) error {
	if r.Number <= 0 {
		return fmt.Errorf("requirement number must be positive, got %d", r.Number)
	}
	if r.LocalID != LocalID(r.Number) {
		return fmt.Errorf("local id %q does not match number %d", r.LocalID, r.Number)
	}
	if _, ok := ParseRequirementLevel(string(r.Level)); !ok {
		return fmt.Errorf("invalid requirement level: %s", r.Level)
	}

	switch r.Type {
	case TypeTechFeature:
		// No details
	case TypeUseCase:
		if r.UseCaseID == "" {
			return fmt.Errorf("use case requirement #%d missing use case id", r.Number)
		}
	case TypeRefIcs:
		if r.RefIcs == nil || r.RefIcs.StandardID == "" {
			return fmt.Errorf("ref ics requirement #%d missing standard id", r.Number)
		}
		if r.RefIcs.Section == "" && r.RefIcs.Requirement == "" {
			return fmt.Errorf("ref ics requirement #%d needs a section or requirement", r.Number)
		}
	case TypeRiskMitigation:
		if r.RiskMitigation == nil {
			return fmt.Errorf("risk mitigation requirement #%d missing details", r.Number)
		}
		if _, ok := ParseRiskMitigationType(string(r.RiskMitigation.SesType)); !ok {
			return fmt.Errorf("invalid ses type: %s", r.RiskMitigation.SesType)
		}
		if _, ok := ParseRiskMitigationTestability(string(r.RiskMitigation.Testability)); !ok {
			return fmt.Errorf("invalid testability: %s", r.RiskMitigation.Testability)
		}
	default:
		return fmt.Errorf("invalid requirement type: %s", r.Type)
	}

	return ValidateNormativeLevel(r.Level, r.Specification.Normative)
}
