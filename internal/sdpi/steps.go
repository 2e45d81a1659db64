package sdpi

import (
	"regexp"
	"strings"

	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

var stepPattern = regexp.MustCompile(`^\*\s*([A-Za-z]+)\s*\*\s+(\S.*)$`)

// ParseStep parses one step line of the form "*keyword* description".
func ParseStep(loc document.Location, line string) (schema.GherkinStep, error) {
	m := stepPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return schema.GherkinStep{}, core.Fatalf(loc, "step invalid format: %q", line)
	}

	stepType, ok := schema.ParseStepType(m[1])
	if !ok {
		return schema.GherkinStep{}, core.Fatalf(loc, "invalid step type %q", m[1])
	}

	return schema.GherkinStep{
		Type:        stepType,
		Description: strings.TrimRight(m[2], " \t"),
	}, nil
}

// parseSteps parses the step lines of every paragraph under a steps block. A
// steps paragraph is parsed directly.
func parseSteps(block *document.Node) ([]schema.GherkinStep, error) {
	paragraphs := block.Children
	if block.Context == document.ContextParagraph {
		paragraphs = []*document.Node{block}
	}

	steps := []schema.GherkinStep{}
	for _, child := range paragraphs {
		if child.Context != document.ContextParagraph {
			return nil, core.Fatalf(child.Location, "invalid step format: expected paragraph, got %s", child.Context)
		}
		for i, line := range child.Lines {
			loc := child.Location
			loc.Line += i
			step, err := ParseStep(loc, line)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step)
		}
	}
	return steps, nil
}
