package schema

import "strings"

// RequirementLevel is the strictness of a requirement, expressed by its modal keyword.
type RequirementLevel string

const (
	LevelMay    RequirementLevel = "may"
	LevelShould RequirementLevel = "should"
	LevelShall  RequirementLevel = "shall"
)

// Levels lists every requirement level in ascending strictness.
var Levels = []RequirementLevel{LevelMay, LevelShould, LevelShall}

// Keyword returns the modal keyword that must appear in the normative text.
func (l RequirementLevel) Keyword() string { return string(l) }

// ParseRequirementLevel resolves a level attribute value. Matching ignores case and
// surrounding whitespace.
func ParseRequirementLevel(s string) (RequirementLevel, bool) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, l := range Levels {
		if string(l) == want {
			return l, true
		}
	}
	return "", false
}

// RequirementType selects the requirement variant.
type RequirementType string

const (
	TypeTechFeature    RequirementType = "tech_feature"
	TypeUseCase        RequirementType = "use_case_feature"
	TypeRefIcs         RequirementType = "ref_ics"
	TypeRiskMitigation RequirementType = "risk_mitigation"
	TypeIheProfile     RequirementType = "ihe_profile"
)

// RequirementTypes lists the keywords of the requirement type grammar.
var RequirementTypes = []RequirementType{
	TypeTechFeature,
	TypeUseCase,
	TypeRefIcs,
	TypeRiskMitigation,
	TypeIheProfile,
}

// ParseRequirementType resolves a type keyword exactly.
func ParseRequirementType(s string) (RequirementType, bool) {
	for _, t := range RequirementTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// RiskMitigationType is the kind of safety, effectiveness or security mitigation.
type RiskMitigationType string

const (
	MitigationGeneral RiskMitigationType = "general" // applies to the whole system
	MitigationAspect  RiskMitigationType = "aspect"  // applies to a specific aspect
)

// ParseRiskMitigationType resolves a ses type keyword exactly.
func ParseRiskMitigationType(s string) (RiskMitigationType, bool) {
	switch RiskMitigationType(s) {
	case MitigationGeneral, MitigationAspect:
		return RiskMitigationType(s), true
	}
	return "", false
}

// RiskMitigationTestability describes how a mitigation is verified.
type RiskMitigationTestability string

const (
	TestabilityInspect RiskMitigationTestability = "inspect" // verified by inspection
	TestabilityWire    RiskMitigationTestability = "wire"    // verified on the wire
)

// ParseRiskMitigationTestability resolves a testability keyword exactly.
func ParseRiskMitigationTestability(s string) (RiskMitigationTestability, bool) {
	switch RiskMitigationTestability(s) {
	case TestabilityInspect, TestabilityWire:
		return RiskMitigationTestability(s), true
	}
	return "", false
}

// StepType is the Gherkin keyword of a use-case step.
type StepType string

const (
	StepGiven StepType = "given"
	StepWhen  StepType = "when"
	StepThen  StepType = "then"
	StepAnd   StepType = "and"
	StepBut   StepType = "but"
)

var stepKeywords = map[string]StepType{
	"given":        StepGiven,
	"precondition": StepGiven,
	"when":         StepWhen,
	"action":       StepWhen,
	"trigger":      StepWhen,
	"then":         StepThen,
	"outcome":      StepThen,
	"result":       StepThen,
	"and":          StepAnd,
	"but":          StepBut,
}

// ParseStepType resolves a step keyword (or one of its aliases), ignoring case.
func ParseStepType(s string) (StepType, bool) {
	t, ok := stepKeywords[strings.ToLower(s)]
	return t, ok
}

// Attribute keys read from requirement and use-case blocks.
const (
	AttrRequirementNumber = "requirement-number"
	AttrID                = "id"
	AttrStyle             = "style"
	AttrLevel             = "sdpi_req_level"
	AttrType              = "sdpi_req_type"
	AttrGroups            = "sdpi_req_group"
	AttrRefID             = "sdpi_ref_id"
	AttrRefSection        = "sdpi_ref_section"
	AttrRefRequirement    = "sdpi_ref_req"
	AttrSesType           = "sdpi_ses_type"
	AttrSesTestability    = "sdpi_ses_test"
	AttrUseCaseID         = "sdpi_use_case_id"
	AttrScenario          = "sdpi_scenario"
)

// Block roles recognized by the collector.
const (
	RoleRequirement        = "requirement"
	RoleUseCase            = "use-case"
	RoleUseCaseBackground  = "use-case-background"
	RoleUseCaseScenario    = "use-case-scenario"
	RoleUseCaseSteps       = "use-case-steps"
	StyleNormative         = "NORMATIVE"
	StyleNote              = "NOTE"
	StyleExample           = "EXAMPLE"
	StyleRelated           = "RELATED"
	StyleLegacyExampleNote = "example"
)
