package schema

// RequirementSpecification holds the content buckets of a requirement.
type RequirementSpecification struct {
	Normative ContentList `json:"normative" yaml:"normative"`
	Note      ContentList `json:"note" yaml:"note"`
	Example   ContentList `json:"example" yaml:"example"`
	Related   ContentList `json:"related" yaml:"related"`
}

// NewRequirementSpecification returns a specification with empty, non-nil buckets.
func NewRequirementSpecification() RequirementSpecification {
	return RequirementSpecification{
		Normative: ContentList{},
		Note:      ContentList{},
		Example:   ContentList{},
		Related:   ContentList{},
	}
}

// RefIcsDetails are the fields of a referenced implementation conformance statement.
type RefIcsDetails struct {
	StandardID  string `json:"standard_id" yaml:"standard_id"`
	Source      string `json:"source" yaml:"source"`
	Section     string `json:"section" yaml:"section"`
	Requirement string `json:"requirement" yaml:"requirement"`
}

// RiskMitigationDetails are the fields of a risk mitigation requirement.
type RiskMitigationDetails struct {
	SesType     RiskMitigationType        `json:"ses_type" yaml:"ses_type"`
	Testability RiskMitigationTestability `json:"testability" yaml:"testability"`
}

// Requirement is a numbered normative statement. Type selects the variant;
// exactly the detail field matching Type is set:
//
//	tech_feature     no details
//	use_case_feature UseCaseID
//	ref_ics          RefIcs
//	risk_mitigation  RiskMitigation
type Requirement struct {
	Number         int                      `json:"number" yaml:"number"`
	LocalID        string                   `json:"local_id" yaml:"local_id"`
	GlobalID       string                   `json:"global_id" yaml:"global_id"`
	Level          RequirementLevel         `json:"level" yaml:"level"`
	Type           RequirementType          `json:"type" yaml:"type"`
	Groups         []string                 `json:"groups" yaml:"groups"`
	Specification  RequirementSpecification `json:"specification" yaml:"specification"`
	UseCaseID      string                   `json:"use_case_id,omitempty" yaml:"use_case_id,omitempty"`
	RefIcs         *RefIcsDetails           `json:"ref_ics,omitempty" yaml:"ref_ics,omitempty"`
	RiskMitigation *RiskMitigationDetails   `json:"risk_mitigation,omitempty" yaml:"risk_mitigation,omitempty"`
}

// InGroup reports whether the requirement is a member of group.
func (r *Requirement) InGroup(group string) bool {
	for _, g := range r.Groups {
		if g == group {
			return true
		}
	}
	return false
}
