package sdpi

import (
	"strconv"
	"strings"

	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

// requirementAttributes are the attributes of a requirement block, read once.
type requirementAttributes struct {
	number   int
	globalID string
	groups   []string

	level    string
	hasLevel bool
	reqType  string
	hasType  bool

	refID          string
	hasRefID       bool
	refSection     string
	refRequirement string

	sesType     string
	hasSesType  bool
	testability string
	hasTest     bool
}

func parseRequirementAttributes(node *document.Node) (requirementAttributes, error) {
	attrs := node.Attributes

	raw, ok := attrs.Lookup(schema.AttrRequirementNumber)
	if !ok {
		return requirementAttributes{}, core.Fatalf(node.Location, "requirement is missing the %s attribute", schema.AttrRequirementNumber)
	}
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number <= 0 {
		return requirementAttributes{}, core.Fatalf(node.Location, "invalid requirement number %q", raw)
	}

	a := requirementAttributes{
		number:   number,
		globalID: attrs.Get(schema.AttrID),
		groups:   splitGroups(attrs.Get(schema.AttrGroups)),
	}
	if a.globalID == "" {
		a.globalID = node.ID
	}
	a.level, a.hasLevel = attrs.Lookup(schema.AttrLevel)
	a.reqType, a.hasType = attrs.Lookup(schema.AttrType)
	a.refID, a.hasRefID = attrs.Lookup(schema.AttrRefID)
	a.refSection = strings.TrimSpace(attrs.Get(schema.AttrRefSection))
	a.refRequirement = strings.TrimSpace(attrs.Get(schema.AttrRefRequirement))
	a.sesType, a.hasSesType = attrs.Lookup(schema.AttrSesType)
	a.testability, a.hasTest = attrs.Lookup(schema.AttrSesTestability)
	return a, nil
}

func splitGroups(s string) []string {
	groups := []string{}
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

// processRequirement classifies, validates and records one requirement block.
func (c *Collector) processRequirement(node *document.Node) error {
	attrs, err := parseRequirementAttributes(node)
	if err != nil {
		return err
	}
	number := attrs.number
	loc := node.Location

	if _, dup := c.model.Requirements[number]; dup {
		return core.Fatalf(loc, "duplicate requirement #%d", number)
	}
	if attrs.globalID == "" {
		return core.Fatalf(loc, "requirement #%d is missing the %s attribute", number, schema.AttrID)
	}

	if !attrs.hasLevel {
		return core.Fatalf(loc, "missing %s attribute for requirement #%d", schema.AttrLevel, number)
	}
	level, ok := schema.ParseRequirementLevel(attrs.level)
	if !ok {
		return core.Fatalf(loc, "invalid requirement level %q for requirement #%d", attrs.level, number)
	}

	reqType := schema.TypeTechFeature
	if attrs.hasType {
		if reqType, ok = schema.ParseRequirementType(attrs.reqType); !ok {
			return core.Fatalf(loc, "invalid requirement type %q for requirement #%d", attrs.reqType, number)
		}
	} else {
		c.logger.Warn("requirement type missing, assuming tech_feature",
			"location", loc.String(),
			"requirement", number)
	}

	c.logger.Debug("requirement", "number", number, "level", string(level), "type", string(reqType))

	spec := c.specification(node, number)
	if err := schema.ValidateNormativeLevel(level, spec.Normative); err != nil {
		return core.Fatalf(loc, "requirement #%d %s", number, err.Error())
	}

	req := schema.Requirement{
		Number:        number,
		LocalID:       schema.LocalID(number),
		GlobalID:      attrs.globalID,
		Level:         level,
		Type:          reqType,
		Groups:        attrs.groups,
		Specification: spec,
	}

	switch reqType {
	case schema.TypeTechFeature:
	case schema.TypeUseCase:
		err = c.buildUseCaseRequirement(node, &req)
	case schema.TypeRefIcs:
		err = c.buildRefIcsRequirement(node, attrs, &req)
	case schema.TypeRiskMitigation:
		err = buildRiskMitigationRequirement(node, attrs, &req)
	case schema.TypeIheProfile:
		err = core.Fatalf(loc, "requirement #%d: %s requirements are currently unsupported", number, reqType)
	}
	if err != nil {
		return err
	}

	c.model.Requirements[number] = req
	return nil
}

// specification partitions the children of a requirement block by style.
func (c *Collector) specification(node *document.Node, number int) schema.RequirementSpecification {
	spec := schema.NewRequirementSpecification()
	unstyled := schema.ContentList{}

	for _, child := range node.Children {
		content := c.content.Extract(child)
		switch child.Attributes.Get(schema.AttrStyle) {
		case schema.StyleNormative:
			spec.Normative = append(spec.Normative, content...)
		case schema.StyleNote:
			spec.Note = append(spec.Note, content...)
		case schema.StyleRelated:
			spec.Related = append(spec.Related, content...)
		case schema.StyleExample:
			spec.Example = append(spec.Example, content...)
		case schema.StyleLegacyExampleNote:
			c.logger.Warn("notes should be a NOTE block, treating example block as note",
				"location", child.Location.String(),
				"requirement", number)
			spec.Note = append(spec.Note, content...)
		default:
			c.logger.Warn("unstyled content in requirement",
				"location", child.Location.String(),
				"requirement", number)
			unstyled = append(unstyled, content...)
		}
	}

	if len(spec.Normative) == 0 {
		c.logger.Warn("missing normative content, using unstyled paragraphs",
			"location", node.Location.String(),
			"requirement", number)
		spec.Normative = append(spec.Normative, unstyled...)
	}
	return spec
}

func (c *Collector) buildUseCaseRequirement(node *document.Node, req *schema.Requirement) error {
	owner := node.Ancestor(func(n *document.Node) bool {
		_, ok := n.Attributes.Lookup(schema.AttrUseCaseID)
		return ok
	})
	if owner == nil {
		return core.Fatalf(node.Location, "can't find use case in parents for requirement #%d", req.Number)
	}

	id := owner.Attributes.Get(schema.AttrUseCaseID)
	node.Attributes[schema.AttrUseCaseID] = id
	req.UseCaseID = id
	return nil
}

func (c *Collector) buildRefIcsRequirement(node *document.Node, attrs requirementAttributes, req *schema.Requirement) error {
	loc := node.Location
	if !attrs.hasRefID {
		return core.Fatalf(loc, "missing standard id for requirement #%d", req.Number)
	}
	if attrs.refSection == "" && attrs.refRequirement == "" {
		return core.Fatalf(loc, "at least one of %s or %s is required for requirement #%d",
			schema.AttrRefSection, schema.AttrRefRequirement, req.Number)
	}

	source, ok := c.bibliography.SourceFor(attrs.refID)
	if !ok {
		return core.Fatalf(loc, "bibliography entry for %s is missing", attrs.refID)
	}

	req.RefIcs = &schema.RefIcsDetails{
		StandardID:  attrs.refID,
		Source:      source,
		Section:     attrs.refSection,
		Requirement: attrs.refRequirement,
	}
	return nil
}

func buildRiskMitigationRequirement(node *document.Node, attrs requirementAttributes, req *schema.Requirement) error {
	loc := node.Location
	if !attrs.hasSesType {
		return core.Fatalf(loc, "missing ses type for requirement #%d", req.Number)
	}
	sesType, ok := schema.ParseRiskMitigationType(attrs.sesType)
	if !ok {
		return core.Fatalf(loc, "invalid ses type (%s) for requirement #%d", attrs.sesType, req.Number)
	}

	if !attrs.hasTest {
		return core.Fatalf(loc, "missing test type for requirement #%d", req.Number)
	}
	testability, ok := schema.ParseRiskMitigationTestability(attrs.testability)
	if !ok {
		return core.Fatalf(loc, "invalid test type (%s) for requirement #%d", attrs.testability, req.Number)
	}

	req.RiskMitigation = &schema.RiskMitigationDetails{
		SesType:     sesType,
		Testability: testability,
	}
	return nil
}
