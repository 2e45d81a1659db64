// Package sdpi extracts requirements and use cases from SDPi document trees
// and validates them.
package sdpi

import (
	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

// Collector walks one document and builds its model. A Collector is bound to
// a single conversion; create a new one per document.
type Collector struct {
	bibliography Bibliography
	logger       core.Logger
	content      *ContentExtractor
	model        *schema.Model
}

// NewCollector creates a collector resolving standard ids through bib.
func NewCollector(bib Bibliography, logger core.Logger) *Collector {
	if bib == nil {
		bib = MapBibliography{}
	}
	return &Collector{
		bibliography: bib,
		logger:       logger,
		content:      NewContentExtractor(logger),
	}
}

// Process walks doc in document order and returns the extracted model. The
// first fatal violation aborts the walk and no model is returned.
func (c *Collector) Process(doc *document.Node) (*schema.Model, error) {
	c.logger.Info("collecting sdpi information", "source", doc.Location.Path)
	c.model = schema.NewModel()

	if err := c.processNode(doc); err != nil {
		c.model = nil
		return nil, err
	}

	model := c.model
	c.model = nil
	c.logger.Info("sdpi information collected",
		"requirements", len(model.Requirements),
		"use_cases", len(model.UseCases))
	return model, nil
}

func (c *Collector) processNode(node *document.Node) error {
	if node.HasRole(schema.RoleRequirement) {
		if err := c.processRequirement(node); err != nil {
			return err
		}
	}
	if node.HasRole(schema.RoleUseCase) {
		if err := c.processUseCase(node); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := c.processNode(child); err != nil {
			return err
		}
	}
	return nil
}
