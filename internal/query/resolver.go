// Package query answers questions about an extracted model: reference
// resolution for cross links, requirement selection for tables, and jq
// filters over the serialized form.
package query

import (
	"fmt"
	"strings"

	"sdpix/pkg/schema"
)

// Link is the target and label of a cross reference.
type Link struct {
	Anchor string `json:"anchor" yaml:"anchor"`
	Text   string `json:"text" yaml:"text"`
}

// Resolver resolves reference tokens against a model.
type Resolver struct {
	model *schema.Model
}

// NewResolver creates a resolver over model.
func NewResolver(model *schema.Model) *Resolver {
	return &Resolver{model: model}
}

// Requirement resolves a requirement token such as "R1001", "r1001" or
// "1001". The link points at the global id and reads as the local id.
func (r *Resolver) Requirement(token string) (schema.Requirement, Link, error) {
	number, err := schema.ParseLocalID(strings.TrimSpace(token))
	if err != nil {
		return schema.Requirement{}, Link{}, err
	}

	req, ok := r.model.Requirements[number]
	if !ok {
		return schema.Requirement{}, Link{}, fmt.Errorf("unknown requirement %s", schema.LocalID(number))
	}
	return req, Link{Anchor: req.GlobalID, Text: req.LocalID}, nil
}

// UseCase resolves a use-case id. The link points at the use-case anchor and
// reads as its title.
func (r *Resolver) UseCase(token string) (schema.UseCase, Link, error) {
	id := strings.TrimSpace(token)
	uc, ok := r.model.UseCases[id]
	if !ok {
		return schema.UseCase{}, Link{}, fmt.Errorf("unknown use case %q", id)
	}
	return uc, Link{Anchor: uc.Anchor, Text: uc.Title}, nil
}
