package sdpi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

type logEntry struct {
	level  string
	msg    string
	fields []any
}

// recordingLogger keeps every entry for inspection.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) log(level, msg string, fields []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Info(msg string, fields ...any)  { l.log("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...any)  { l.log("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...any) { l.log("error", msg, fields) }
func (l *recordingLogger) Debug(msg string, fields ...any) { l.log("debug", msg, fields) }
func (l *recordingLogger) With(fields ...any) core.Logger  { return l }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}

func leaf(ctx document.Context, lines ...string) *document.Node {
	n := document.NewNode(ctx, document.Location{Path: "c.adoc", Line: 1})
	n.Lines = lines
	return n
}

func listItem(marker, text string) *document.Node {
	n := document.NewNode(document.ContextListItem, document.Location{Path: "c.adoc", Line: 1})
	n.Marker = marker
	n.Text = text
	return n
}

func TestExtractParagraph(t *testing.T) {
	e := NewContentExtractor(core.NewNopLogger())

	got := e.Extract(leaf(document.ContextParagraph, "a", "b"))
	assert.Equal(t, schema.ContentList{schema.Block{Lines: []string{"a", "b"}}}, got)
}

func TestExtractContainer(t *testing.T) {
	e := NewContentExtractor(core.NewNopLogger())

	example := document.NewNode(document.ContextExample, document.Location{Line: 1})
	example.Append(leaf(document.ContextParagraph, "intro"))

	listing := leaf(document.ContextListing, "<mdib/>")
	listing.Title = "Sample"
	example.Append(listing)
	example.Append(leaf(document.ContextLiteral, "raw"))

	olist := document.NewNode(document.ContextOList, document.Location{Line: 1})
	first := listItem(".", "first")
	nested := document.NewNode(document.ContextUList, document.Location{Line: 1})
	nested.Append(listItem("*", "ignored"))
	first.Append(nested)
	olist.Append(first)
	olist.Append(listItem(".", "second"))
	example.Append(olist)

	got := e.Extract(example)
	assert.Equal(t, schema.ContentList{
		schema.Block{Lines: []string{"intro"}},
		schema.Listing{Title: "Sample", Lines: []string{"<mdib/>"}},
		schema.Block{Lines: []string{"raw"}},
		schema.OrderedList{Items: schema.ContentList{
			schema.ListItem{Marker: ".", Text: "first"},
			schema.ListItem{Marker: ".", Text: "second"},
		}},
	}, got)
}

func TestExtractAdmonitionParagraph(t *testing.T) {
	e := NewContentExtractor(core.NewNopLogger())

	note := leaf(document.ContextAdmonition, "a note", "over two lines")
	got := e.Extract(note)
	assert.Equal(t, schema.ContentList{schema.Block{Lines: []string{"a note", "over two lines"}}}, got)
	assert.Equal(t, e.Extract(leaf(document.ContextParagraph, "a note", "over two lines")), got)

	empty := document.NewNode(document.ContextAdmonition, document.Location{Line: 1})
	assert.Empty(t, e.Extract(empty))
}

func TestExtractUnknown(t *testing.T) {
	logger := &recordingLogger{}
	e := NewContentExtractor(logger)

	got := e.Extract(document.NewNode(document.ContextSidebar, document.Location{Line: 4}))
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, []string{"unknown content type"}, logger.messages("error"))

	admonition := document.NewNode(document.ContextAdmonition, document.Location{Line: 1})
	admonition.Append(document.NewNode(document.ContextSection, document.Location{Line: 2}))
	got = e.Extract(admonition)
	assert.Empty(t, got)
	assert.Equal(t, []string{"unknown content node"}, logger.messages("info"))
}
