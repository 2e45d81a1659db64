package schema

import "sort"

// Model is the information extracted from one document: requirements keyed by
// number and use cases keyed by id.
type Model struct {
	Requirements map[int]Requirement `json:"requirements" yaml:"requirements"`
	UseCases     map[string]UseCase  `json:"use_cases" yaml:"use_cases"`
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Requirements: make(map[int]Requirement),
		UseCases:     make(map[string]UseCase),
	}
}

// RequirementNumbers returns the requirement numbers in ascending order.
func (m *Model) RequirementNumbers() []int {
	numbers := make([]int, 0, len(m.Requirements))
	for n := range m.Requirements {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// UseCaseIDs returns the use-case ids in ascending order.
func (m *Model) UseCaseIDs() []string {
	ids := make([]string, 0, len(m.UseCases))
	for id := range m.UseCases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
