package sdpi

import (
	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

// processUseCase records one use-case block with its background and scenarios.
func (c *Collector) processUseCase(node *document.Node) error {
	id, ok := node.Attributes.Lookup(schema.AttrUseCaseID)
	if !ok || id == "" {
		return core.Fatalf(node.Location, "use case is missing the %s attribute", schema.AttrUseCaseID)
	}

	var blocks []*document.Node
	gatherUseCaseBlocks(node, &blocks)

	spec := schema.UseCaseSpecification{
		Background: []schema.GherkinStep{},
		Scenarios:  []schema.UseCaseScenario{},
	}
	for i, block := range blocks {
		if block.HasRole(schema.RoleUseCaseBackground) {
			steps, err := parseSteps(block)
			if err != nil {
				return err
			}
			spec.Background = append(spec.Background, steps...)
		}

		if !block.HasRole(schema.RoleUseCaseScenario) {
			continue
		}
		title, ok := block.Attributes.Lookup(schema.AttrScenario)
		if !ok {
			return core.Fatalf(block.Location, "missing required scenario title")
		}
		if i+1 >= len(blocks) || !blocks[i+1].HasRole(schema.RoleUseCaseSteps) {
			return core.Fatalf(block.Location, "missing steps for scenario %s", title)
		}
		steps, err := parseSteps(blocks[i+1])
		if err != nil {
			return err
		}
		spec.Scenarios = append(spec.Scenarios, schema.UseCaseScenario{Title: title, Steps: steps})
	}

	if prev, exists := c.model.UseCases[id]; exists {
		c.logger.Warn("use case id redefined, replacing earlier definition",
			"location", node.Location.String(),
			"use_case", id,
			"previous", prev.Anchor)
	}

	c.model.UseCases[id] = schema.UseCase{
		ID:            id,
		Title:         node.Title,
		Anchor:        node.ID,
		Specification: spec,
	}
	return nil
}

// gatherUseCaseBlocks flattens the background, scenario and steps blocks
// below node in document order. Scenario blocks are searched for nested
// blocks; other untagged blocks are passed through.
func gatherUseCaseBlocks(node *document.Node, blocks *[]*document.Node) {
	for _, child := range node.Children {
		switch {
		case child.HasRole(schema.RoleUseCaseBackground):
			*blocks = append(*blocks, child)
		case child.HasRole(schema.RoleUseCaseScenario):
			*blocks = append(*blocks, child)
			gatherUseCaseBlocks(child, blocks)
		case child.HasRole(schema.RoleUseCaseSteps):
			*blocks = append(*blocks, child)
		default:
			gatherUseCaseBlocks(child, blocks)
		}
	}
}
