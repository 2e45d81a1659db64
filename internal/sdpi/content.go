package sdpi

import (
	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

// ContentExtractor turns the blocks of a requirement into typed content.
type ContentExtractor struct {
	logger core.Logger
}

// NewContentExtractor creates a content extractor logging to logger.
func NewContentExtractor(logger core.Logger) *ContentExtractor {
	return &ContentExtractor{logger: logger}
}

// Extract returns the content of a paragraph, admonition or example block.
// Other blocks are logged and yield no content.
func (e *ContentExtractor) Extract(node *document.Node) schema.ContentList {
	contents := schema.ContentList{}

	switch node.Context {
	case document.ContextParagraph:
		contents = e.appendNode(contents, node)
	case document.ContextAdmonition, document.ContextExample:
		// A paragraph admonition (NOTE: text) has no child blocks. Its
		// lines become a single block, same as a plain paragraph.
		if len(node.Children) == 0 && len(node.Lines) > 0 {
			return append(contents, schema.NewBlock(node.Lines))
		}
		for _, child := range node.Children {
			contents = e.appendNode(contents, child)
		}
	default:
		e.logger.Error("unknown content type",
			"location", node.Location.String(),
			"context", string(node.Context))
	}

	return contents
}

func (e *ContentExtractor) appendNode(contents schema.ContentList, node *document.Node) schema.ContentList {
	switch {
	case node.IsList():
		items := schema.ContentList{}
		for _, item := range node.Children {
			items = e.appendNode(items, item)
		}
		if node.Context == document.ContextOList {
			return append(contents, schema.OrderedList{Items: items})
		}
		return append(contents, schema.UnorderedList{Items: items})

	case node.IsListItem():
		return append(contents, schema.ListItem{Marker: node.Marker, Text: node.Text})

	case node.IsLeaf():
		if node.Context == document.ContextListing {
			return append(contents, schema.NewListing(node.Title, node.Lines))
		}
		return append(contents, schema.NewBlock(node.Lines))
	}

	e.logger.Info("unknown content node",
		"location", node.Location.String(),
		"context", string(node.Context))
	return contents
}
