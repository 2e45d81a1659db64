// Package asciidoc reads the block structure of AsciiDoc sources into
// document trees. Inline markup is left untouched; only the block level
// (sections, delimited blocks, paragraphs, lists) and block metadata are
// interpreted.
package asciidoc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

// RequirementStyle marks a requirement written in shorthand form:
// [sdpi_requirement#r1001,sdpi_req_level=shall]
const RequirementStyle = "sdpi_requirement"

var (
	sectionTitlePattern = regexp.MustCompile(`^(={2,6})\s+(\S.*)$`)
	docTitlePattern     = regexp.MustCompile(`^=\s+(\S.*)$`)
	docAttrPattern      = regexp.MustCompile(`^:([A-Za-z0-9_][A-Za-z0-9_-]*):\s*(.*)$`)
	anchorPattern       = regexp.MustCompile(`^\[\[([A-Za-z_:][A-Za-z0-9_.:-]*)(?:,\s*[^\]]*)?\]\]$`)
	blockTitlePattern   = regexp.MustCompile(`^\.([^.\s].*)$`)
	listItemPattern     = regexp.MustCompile(`^(\*{1,5}|-|\.{1,5})\s+(.*)$`)
	admonitionPattern   = regexp.MustCompile(`^(NOTE|TIP|IMPORTANT|WARNING|CAUTION):\s+(.*)$`)
	trailingDigits      = regexp.MustCompile(`([0-9]+)$`)
	idUnsafe            = regexp.MustCompile(`[^a-z0-9]+`)
)

var admonitionStyles = map[string]bool{
	"NOTE":      true,
	"TIP":       true,
	"IMPORTANT": true,
	"WARNING":   true,
	"CAUTION":   true,
}

// delimiterContext returns the context of a block delimiter line, or "".
func delimiterContext(line string) document.Context {
	if line == "--" {
		return document.ContextOpen
	}
	if len(line) < 4 || strings.Trim(line, line[:1]) != "" {
		return ""
	}
	switch line[0] {
	case '=':
		return document.ContextExample
	case '*':
		return document.ContextSidebar
	case '-':
		return document.ContextListing
	case '.':
		return document.ContextLiteral
	}
	return ""
}

type openSection struct {
	node  *document.Node
	level int
}

type parser struct {
	path    string
	lines   []string
	pos     int
	doc     *document.Node
	pending blockAttributes
}

// ParseFile reads and parses the AsciiDoc file at path.
func ParseFile(path string) (*document.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	return Parse(path, f)
}

// ParseString parses text; path is only used for source locations.
func ParseString(path, text string) (*document.Node, error) {
	return Parse(path, strings.NewReader(text))
}

// Parse reads an AsciiDoc document from r.
func Parse(path string, r io.Reader) (*document.Node, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	p := &parser{
		path:  path,
		lines: lines,
		doc:   document.NewNode(document.ContextDocument, document.Location{Path: path, Line: 1}),
	}
	p.parseHeader()
	if err := p.parseBlocks(p.doc, "", 0); err != nil {
		return nil, err
	}
	return p.doc, nil
}

func (p *parser) location(line int) document.Location {
	return document.Location{Path: p.path, Line: line}
}

func (p *parser) parseHeader() {
	for p.pos < len(p.lines) && (p.lines[p.pos] == "" || isLineComment(p.lines[p.pos])) {
		p.pos++
	}
	if p.pos >= len(p.lines) {
		return
	}
	if m := docTitlePattern.FindStringSubmatch(p.lines[p.pos]); m != nil {
		p.doc.Title = m[1]
		p.doc.Attributes["doctitle"] = m[1]
		p.pos++
	}
	for p.pos < len(p.lines) && p.lines[p.pos] != "" {
		m := docAttrPattern.FindStringSubmatch(p.lines[p.pos])
		if m == nil && !isLineComment(p.lines[p.pos]) {
			break
		}
		if m != nil {
			p.doc.Attributes[m[1]] = m[2]
		}
		p.pos++
	}
}

// parseBlocks parses blocks into container until the closing delimiter (or
// the end of input when closing is empty). Sections are only recognized at
// the top level.
func (p *parser) parseBlocks(container *document.Node, closing string, openLine int) error {
	var sections []openSection
	target := func() *document.Node {
		if len(sections) > 0 {
			return sections[len(sections)-1].node
		}
		return container
	}

	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		lineNo := p.pos + 1

		switch {
		case closing != "" && line == closing:
			p.pos++
			return nil

		case line == "":
			p.pos++

		case line == "////":
			if err := p.skipCommentBlock(lineNo); err != nil {
				return err
			}

		case isLineComment(line):
			p.pos++

		case anchorPattern.MatchString(line):
			p.pending.id = anchorPattern.FindStringSubmatch(line)[1]
			p.pos++

		case isAttributeLine(line):
			p.pending.parseAttributeList(line[1 : len(line)-1])
			p.pos++

		case blockTitlePattern.MatchString(line):
			p.pending.title = line[1:]
			p.pos++

		case docAttrPattern.MatchString(line):
			m := docAttrPattern.FindStringSubmatch(line)
			p.doc.Attributes[m[1]] = m[2]
			p.pos++

		case closing == "" && sectionTitlePattern.MatchString(line):
			m := sectionTitlePattern.FindStringSubmatch(line)
			level := len(m[1]) - 1
			for len(sections) > 0 && sections[len(sections)-1].level >= level {
				sections = sections[:len(sections)-1]
			}
			section := p.newNode(document.ContextSection, lineNo)
			section.Title = m[2]
			section.Attributes["level"] = fmt.Sprint(level)
			if section.ID == "" {
				section.ID = autoID(m[2])
				section.Attributes["id"] = section.ID
			}
			p.finish(section)
			target().Append(section)
			sections = append(sections, openSection{node: section, level: level})
			p.pos++

		case delimiterContext(line) != "":
			if err := p.parseDelimited(target(), line, lineNo); err != nil {
				return err
			}

		case listItemPattern.MatchString(line):
			p.parseList(target(), lineNo)

		default:
			p.parseParagraph(target(), lineNo)
		}
	}

	if closing != "" {
		return core.Fatalf(p.location(openLine), "unterminated block, expected closing %q", closing)
	}
	return nil
}

func (p *parser) skipCommentBlock(openLine int) error {
	p.pos++
	for p.pos < len(p.lines) {
		if strings.TrimSpace(p.lines[p.pos]) == "////" {
			p.pos++
			return nil
		}
		p.pos++
	}
	return core.Fatalf(p.location(openLine), "unterminated comment block")
}

func (p *parser) parseDelimited(parent *document.Node, delimiter string, lineNo int) error {
	ctx := delimiterContext(delimiter)
	node := p.newNode(ctx, lineNo)
	p.pos++

	switch ctx {
	case document.ContextListing, document.ContextLiteral:
		node.Lines = []string{}
		for {
			if p.pos >= len(p.lines) {
				return core.Fatalf(p.location(lineNo), "unterminated block, expected closing %q", delimiter)
			}
			if strings.TrimSpace(p.lines[p.pos]) == delimiter {
				p.pos++
				break
			}
			node.Lines = append(node.Lines, p.lines[p.pos])
			p.pos++
		}
		if node.Style == "" {
			node.Style = string(ctx)
		}

	default:
		if ctx == document.ContextExample && admonitionStyles[node.Style] {
			node.Context = document.ContextAdmonition
		}
		if node.Style == "" {
			node.Style = string(ctx)
		}
		if err := p.parseBlocks(node, delimiter, lineNo); err != nil {
			return err
		}
	}

	node.Attributes["style"] = node.Style
	p.finish(node)
	parent.Append(node)
	return nil
}

func (p *parser) parseParagraph(parent *document.Node, lineNo int) {
	node := p.newNode(document.ContextParagraph, lineNo)
	node.Lines = []string{}

	if m := admonitionPattern.FindStringSubmatch(strings.TrimSpace(p.lines[p.pos])); m != nil {
		node.Context = document.ContextAdmonition
		node.Style = m[1]
		node.Attributes["style"] = m[1]
		node.Lines = append(node.Lines, m[2])
		p.pos++
	} else if admonitionStyles[node.Style] {
		node.Context = document.ContextAdmonition
	}

	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		if line == "" || delimiterContext(line) != "" {
			break
		}
		node.Lines = append(node.Lines, line)
		p.pos++
	}

	p.finish(node)
	parent.Append(node)
}

type listFrame struct {
	marker string
	list   *document.Node
}

func listContext(marker string) document.Context {
	if strings.HasPrefix(marker, ".") {
		return document.ContextOList
	}
	return document.ContextUList
}

func (p *parser) parseList(parent *document.Node, lineNo int) {
	first := listItemPattern.FindStringSubmatch(strings.TrimSpace(p.lines[p.pos]))
	root := p.newNode(listContext(first[1]), lineNo)
	if root.Style != "" {
		root.Attributes["style"] = root.Style
	}
	p.finish(root)
	parent.Append(root)

	stack := []listFrame{{marker: first[1], list: root}}
	var last *document.Node

	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])

		if line == "" {
			next := p.pos
			for next < len(p.lines) && strings.TrimSpace(p.lines[next]) == "" {
				next++
			}
			if next < len(p.lines) && isListItem(strings.TrimSpace(p.lines[next])) {
				p.pos = next
				continue
			}
			return
		}

		m := listItemPattern.FindStringSubmatch(line)
		if m == nil || delimiterContext(line) != "" {
			if last != nil && isListContinuation(line) {
				last.Text += "\n" + line
				p.pos++
				continue
			}
			return
		}

		marker := m[1]
		depth := -1
		for i := range stack {
			if stack[i].marker == marker {
				depth = i
				break
			}
		}
		if depth >= 0 {
			stack = stack[:depth+1]
		} else {
			nested := document.NewNode(listContext(marker), p.location(p.pos+1))
			last.Append(nested)
			stack = append(stack, listFrame{marker: marker, list: nested})
		}

		item := document.NewNode(document.ContextListItem, p.location(p.pos+1))
		item.Marker = marker
		item.Text = m[2]
		stack[len(stack)-1].list.Append(item)
		last = item
		p.pos++
	}
}

func isListItem(line string) bool {
	return listItemPattern.MatchString(line) && delimiterContext(line) == ""
}

func isListContinuation(line string) bool {
	return delimiterContext(line) == "" && !isLineComment(line) &&
		!isAttributeLine(line) && !anchorPattern.MatchString(line) &&
		!blockTitlePattern.MatchString(line) && !sectionTitlePattern.MatchString(line) &&
		line != "+"
}

// newNode creates a node and consumes the pending block attributes.
func (p *parser) newNode(ctx document.Context, lineNo int) *document.Node {
	node := document.NewNode(ctx, p.location(lineNo))
	attrs := p.pending
	p.pending = blockAttributes{}

	for k, v := range attrs.named {
		node.Attributes[k] = v
	}
	if attrs.style != "" {
		node.Style = attrs.style
		node.Attributes["style"] = attrs.style
	}
	if attrs.id != "" {
		node.ID = attrs.id
		node.Attributes["id"] = attrs.id
	}
	for _, role := range attrs.roles {
		node.AddRole(role)
	}
	for _, opt := range attrs.options {
		node.Attributes[opt+"-option"] = ""
	}
	node.Title = attrs.title
	return node
}

// finish applies the shorthand requirement form: the style becomes the
// requirement role and the number is taken from the trailing digits of the id.
func (p *parser) finish(node *document.Node) {
	if node.Style != RequirementStyle {
		return
	}
	node.AddRole(schema.RoleRequirement)
	if _, ok := node.Attributes.Lookup(schema.AttrRequirementNumber); ok {
		return
	}
	if m := trailingDigits.FindStringSubmatch(node.ID); m != nil {
		node.Attributes[schema.AttrRequirementNumber] = strings.TrimLeft(m[1], "0")
	}
}

func isLineComment(line string) bool {
	return strings.HasPrefix(line, "//") && line != "////"
}

func isAttributeLine(line string) bool {
	return len(line) >= 2 && line[0] == '[' && line[len(line)-1] == ']' &&
		!strings.HasPrefix(line, "[[")
}

// autoID derives a section id the way AsciiDoc does by default.
func autoID(title string) string {
	id := idUnsafe.ReplaceAllString(strings.ToLower(title), "_")
	return "_" + strings.Trim(id, "_")
}
