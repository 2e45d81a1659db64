package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ContentType discriminates the Content variants in serialized form.
type ContentType string

const (
	ContentBlock         ContentType = "block"
	ContentListing       ContentType = "listing"
	ContentOrderedList   ContentType = "ordered_list"
	ContentUnorderedList ContentType = "unordered_list"
	ContentListItem      ContentType = "list_item"
)

// Content is one node of extracted document text.
type Content interface {
	ContentType() ContentType
	// TextLines returns the text carried by the node and its descendants, in order.
	TextLines() []string
}

// Block is a run of plain text lines (typically a paragraph).
type Block struct {
	Lines []string
}

// Listing is a titled block of preformatted lines.
type Listing struct {
	Title string
	Lines []string
}

// OrderedList is a numbered list.
type OrderedList struct {
	Items ContentList
}

// UnorderedList is a bulleted list.
type UnorderedList struct {
	Items ContentList
}

// ListItem is a single list entry.
type ListItem struct {
	Marker string
	Text   string
}

// NewBlock copies lines into a Block.
func NewBlock(lines []string) Block {
	return Block{Lines: append(make([]string, 0, len(lines)), lines...)}
}

// NewListing copies lines into a Listing.
func NewListing(title string, lines []string) Listing {
	return Listing{Title: title, Lines: append(make([]string, 0, len(lines)), lines...)}
}

func (Block) ContentType() ContentType         { return ContentBlock }
func (Listing) ContentType() ContentType       { return ContentListing }
func (OrderedList) ContentType() ContentType   { return ContentOrderedList }
func (UnorderedList) ContentType() ContentType { return ContentUnorderedList }
func (ListItem) ContentType() ContentType      { return ContentListItem }

func (b Block) TextLines() []string         { return b.Lines }
func (l Listing) TextLines() []string       { return l.Lines }
func (l OrderedList) TextLines() []string   { return l.Items.TextLines() }
func (l UnorderedList) TextLines() []string { return l.Items.TextLines() }
func (i ListItem) TextLines() []string      { return []string{i.Text} }

// ContentList is an ordered sequence of Content. It owns the tagged
// (de)serialization of its elements.
type ContentList []Content

// TextLines flattens the text of every element.
func (l ContentList) TextLines() []string {
	var out []string
	for _, c := range l {
		out = append(out, c.TextLines()...)
	}
	return out
}

// contentWire is the serialized shape shared by every Content variant.
type contentWire struct {
	Type   ContentType `json:"type" yaml:"type"`
	Title  string      `json:"title,omitempty" yaml:"title,omitempty"`
	Lines  []string    `json:"lines,omitempty" yaml:"lines,omitempty"`
	Items  ContentList `json:"items,omitempty" yaml:"items,omitempty"`
	Marker string      `json:"marker,omitempty" yaml:"marker,omitempty"`
	Text   string      `json:"text,omitempty" yaml:"text,omitempty"`
}

func toWire(c Content) (contentWire, error) {
	switch v := c.(type) {
	case Block:
		return contentWire{Type: ContentBlock, Lines: v.Lines}, nil
	case Listing:
		return contentWire{Type: ContentListing, Title: v.Title, Lines: v.Lines}, nil
	case OrderedList:
		return contentWire{Type: ContentOrderedList, Items: v.Items}, nil
	case UnorderedList:
		return contentWire{Type: ContentUnorderedList, Items: v.Items}, nil
	case ListItem:
		return contentWire{Type: ContentListItem, Marker: v.Marker, Text: v.Text}, nil
	}
	return contentWire{}, fmt.Errorf("unsupported content %T", c)
}

func fromWire(w contentWire) (Content, error) {
	lines := w.Lines
	if lines == nil {
		lines = []string{}
	}
	items := w.Items
	if items == nil {
		items = ContentList{}
	}

	switch w.Type {
	case ContentBlock:
		return Block{Lines: lines}, nil
	case ContentListing:
		return Listing{Title: w.Title, Lines: lines}, nil
	case ContentOrderedList:
		return OrderedList{Items: items}, nil
	case ContentUnorderedList:
		return UnorderedList{Items: items}, nil
	case ContentListItem:
		return ListItem{Marker: w.Marker, Text: w.Text}, nil
	}
	return nil, fmt.Errorf("unknown content type %q", w.Type)
}

func (l ContentList) wire() ([]contentWire, error) {
	out := make([]contentWire, 0, len(l))
	for _, c := range l {
		w, err := toWire(c)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (l *ContentList) fromWire(wires []contentWire) error {
	out := make(ContentList, 0, len(wires))
	for _, w := range wires {
		c, err := fromWire(w)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l ContentList) MarshalJSON() ([]byte, error) {
	wires, err := l.wire()
	if err != nil {
		return nil, err
	}

	// Listings carry XML, so HTML escaping is left to the caller.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wires); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ContentList) UnmarshalJSON(data []byte) error {
	var wires []contentWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return err
	}
	return l.fromWire(wires)
}

// MarshalYAML implements yaml.Marshaler.
func (l ContentList) MarshalYAML() (interface{}, error) {
	return l.wire()
}

// UnmarshalYAML implements custom YAML unmarshaling for ContentList.
func (l *ContentList) UnmarshalYAML(node *yaml.Node) error {
	var wires []contentWire
	if err := node.Decode(&wires); err != nil {
		return err
	}
	return l.fromWire(wires)
}
