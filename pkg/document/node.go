// Package document defines the block tree the extractor walks. Readers for
// concrete markup languages translate their parse trees into these nodes.
package document

import (
	"fmt"
	"strings"
)

// Context is the kind of a node, named after the AsciiDoc block contexts.
type Context string

const (
	ContextDocument   Context = "document"
	ContextSection    Context = "section"
	ContextParagraph  Context = "paragraph"
	ContextAdmonition Context = "admonition"
	ContextExample    Context = "example"
	ContextSidebar    Context = "sidebar"
	ContextOpen       Context = "open"
	ContextListing    Context = "listing"
	ContextLiteral    Context = "literal"
	ContextOList      Context = "olist"
	ContextUList      Context = "ulist"
	ContextListItem   Context = "list_item"
)

// Location is the source position of a node.
type Location struct {
	Path string
	Line int
}

func (l Location) String() string {
	path := l.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%d", path, l.Line)
}

// Attributes are the named attributes of a node.
type Attributes map[string]string

// Lookup returns the attribute value and whether it is present.
func (a Attributes) Lookup(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// Get returns the attribute value or "" if absent.
func (a Attributes) Get(key string) string {
	return a[key]
}

// Node is one block of a document tree.
type Node struct {
	Context    Context
	ID         string
	Title      string
	Style      string
	Roles      []string
	Attributes Attributes
	Location   Location

	// Lines holds the raw text of leaf blocks.
	Lines []string
	// Marker and Text describe list items.
	Marker string
	Text   string

	Parent   *Node
	Children []*Node
}

// NewNode creates a node of the given context at loc.
func NewNode(ctx Context, loc Location) *Node {
	return &Node{
		Context:    ctx,
		Attributes: make(Attributes),
		Location:   loc,
	}
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// HasRole reports whether the node carries role.
func (n *Node) HasRole(role string) bool {
	for _, r := range n.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AddRole adds role unless it is already present.
func (n *Node) AddRole(role string) {
	if role == "" || n.HasRole(role) {
		return
	}
	n.Roles = append(n.Roles, role)
	n.Attributes["role"] = strings.Join(n.Roles, " ")
}

// Role returns the first role, or "".
func (n *Node) Role() string {
	if len(n.Roles) == 0 {
		return ""
	}
	return n.Roles[0]
}

// IsList reports whether the node is an ordered or unordered list.
func (n *Node) IsList() bool {
	return n.Context == ContextOList || n.Context == ContextUList
}

// IsListItem reports whether the node is a list item.
func (n *Node) IsListItem() bool {
	return n.Context == ContextListItem
}

// IsLeaf reports whether the node is a block whose content is its own lines
// rather than child blocks.
func (n *Node) IsLeaf() bool {
	switch n.Context {
	case ContextParagraph, ContextListing, ContextLiteral:
		return true
	case ContextAdmonition:
		return len(n.Children) == 0
	}
	return false
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Ancestor returns the nearest ancestor (excluding n) for which match returns true.
func (n *Node) Ancestor(match func(*Node) bool) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if match(p) {
			return p
		}
	}
	return nil
}
