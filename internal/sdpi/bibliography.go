package sdpi

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"sdpix/pkg/document"
)

// BibliographyStyle marks sections and lists holding bibliography entries.
const BibliographyStyle = "bibliography"

// Bibliography looks up the citation of an external standard.
type Bibliography interface {
	SourceFor(id string) (string, bool)
}

// MapBibliography is a static bibliography keyed by standard id.
type MapBibliography map[string]string

func (b MapBibliography) SourceFor(id string) (string, bool) {
	source, ok := b[id]
	return source, ok
}

// Merge copies the entries of other into b, replacing existing ids.
func (b MapBibliography) Merge(other MapBibliography) {
	for id, source := range other {
		b[id] = source
	}
}

var bibEntryPattern = regexp.MustCompile(`^\[\[\[([^,\]]+)(?:,\s*([^\]]*))?\]\]\]\s*(.*)$`)

// CollectBibliography gathers `[[[id]]] citation` list items from the
// bibliography sections and lists of doc.
func CollectBibliography(doc *document.Node) MapBibliography {
	bib := make(MapBibliography)
	doc.Walk(func(n *document.Node) bool {
		if !n.IsListItem() || !inBibliography(n) {
			return true
		}
		m := bibEntryPattern.FindStringSubmatch(strings.TrimSpace(n.Text))
		if m == nil {
			return true
		}
		id := strings.TrimSpace(m[1])
		source := strings.TrimSpace(m[3])
		if source == "" {
			source = strings.TrimSpace(m[2])
		}
		bib[id] = source
		return true
	})
	return bib
}

func inBibliography(n *document.Node) bool {
	return n.Ancestor(func(a *document.Node) bool {
		return a.Style == BibliographyStyle
	}) != nil
}

// LoadBibliography reads extra entries from a YAML mapping of standard id to
// citation.
func LoadBibliography(path string) (MapBibliography, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bibliography: %w", err)
	}

	bib := make(MapBibliography)
	if err := yaml.Unmarshal(data, &bib); err != nil {
		return nil, fmt.Errorf("parse bibliography %s: %w", path, err)
	}
	return bib, nil
}
