package schema

// GherkinStep is one typed line of a use-case scenario.
type GherkinStep struct {
	Type        StepType `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
}

// UseCaseScenario is a titled sequence of steps.
type UseCaseScenario struct {
	Title string        `json:"title" yaml:"title"`
	Steps []GherkinStep `json:"steps" yaml:"steps"`
}

// UseCaseSpecification is the background shared by all scenarios plus the scenarios themselves.
type UseCaseSpecification struct {
	Background []GherkinStep     `json:"background" yaml:"background"`
	Scenarios  []UseCaseScenario `json:"scenarios" yaml:"scenarios"`
}

// UseCase is a named grouping of scenarios describing system behavior.
type UseCase struct {
	ID            string               `json:"id" yaml:"id"`
	Title         string               `json:"title" yaml:"title"`
	Anchor        string               `json:"anchor" yaml:"anchor"`
	Specification UseCaseSpecification `json:"specification" yaml:"specification"`
}
