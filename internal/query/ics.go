package query

import (
	"strings"

	"sdpix/pkg/schema"
)

// ICSRow is one line of an implementation conformance statement table.
type ICSRow struct {
	LocalID  string `json:"local_id" yaml:"local_id"`
	GlobalID string `json:"global_id" yaml:"global_id"`
	Level    string `json:"level" yaml:"level"`
	Type     string `json:"type" yaml:"type"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Locator  string `json:"locator,omitempty" yaml:"locator,omitempty"`
}

// ICSRows returns the table rows for the requirements matching f.
func ICSRows(model *schema.Model, f Filter) []ICSRow {
	rows := []ICSRow{}
	for _, r := range Select(model, f) {
		row := ICSRow{
			LocalID:  r.LocalID,
			GlobalID: r.GlobalID,
			Level:    strings.ToUpper(r.Level.Keyword()),
			Type:     string(r.Type),
		}
		if r.RefIcs != nil {
			row.Source = r.RefIcs.Source
			row.Locator = locator(r.RefIcs)
		}
		rows = append(rows, row)
	}
	return rows
}

func locator(d *schema.RefIcsDetails) string {
	var parts []string
	if d.Section != "" {
		parts = append(parts, "section "+d.Section)
	}
	if d.Requirement != "" {
		parts = append(parts, d.Requirement)
	}
	return strings.Join(parts, ", ")
}
