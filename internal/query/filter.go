package query

import (
	"fmt"
	"strings"

	"sdpix/pkg/schema"
)

// Filter selects requirements. Empty fields match everything; a requirement
// matches Groups when it is a member of any listed group.
type Filter struct {
	Groups []string
	Types  []schema.RequirementType
	Levels []schema.RequirementLevel
}

// ParseFilter builds a filter from comma-separated flag values.
func ParseFilter(groups, types, levels []string) (Filter, error) {
	f := Filter{Groups: splitValues(groups)}
	for _, s := range splitValues(types) {
		t, ok := schema.ParseRequirementType(s)
		if !ok {
			return Filter{}, fmt.Errorf("invalid requirement type %q", s)
		}
		f.Types = append(f.Types, t)
	}
	for _, s := range splitValues(levels) {
		l, ok := schema.ParseRequirementLevel(s)
		if !ok {
			return Filter{}, fmt.Errorf("invalid requirement level %q", s)
		}
		f.Levels = append(f.Levels, l)
	}
	return f, nil
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Match reports whether r passes the filter.
func (f Filter) Match(r *schema.Requirement) bool {
	if len(f.Groups) > 0 {
		member := false
		for _, g := range f.Groups {
			if r.InGroup(g) {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}
	if len(f.Types) > 0 && !contains(f.Types, r.Type) {
		return false
	}
	if len(f.Levels) > 0 && !contains(f.Levels, r.Level) {
		return false
	}
	return true
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Select returns the requirements of model matching f, ordered by number.
func Select(model *schema.Model, f Filter) []schema.Requirement {
	out := []schema.Requirement{}
	for _, n := range model.RequirementNumbers() {
		r := model.Requirements[n]
		if f.Match(&r) {
			out = append(out, r)
		}
	}
	return out
}
