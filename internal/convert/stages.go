package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"sdpix/internal/asciidoc"
	"sdpix/internal/export"
	"sdpix/internal/sdpi"
	"sdpix/pkg/schema"
)

// Stage is one step of a document conversion. Stages run in order and hand
// their results to later stages through the Document.
type Stage interface {
	Name() string
	Execute(ctx context.Context, run *Run, doc *Document) error
}

// DefaultStages returns read, parse, bibliography, collect and export.
func DefaultStages() []Stage {
	return []Stage{
		ReadStage{},
		ParseStage{},
		BibliographyStage{},
		CollectStage{},
		ExportStage{},
	}
}

// ReadStage loads the document source from disk.
type ReadStage struct{}

func (ReadStage) Name() string { return "read" }

func (ReadStage) Execute(_ context.Context, _ *Run, doc *Document) error {
	if doc.Source != nil {
		return nil
	}
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", doc.Path, err)
	}
	doc.Source = data
	return nil
}

// ParseStage builds the document tree.
type ParseStage struct{}

func (ParseStage) Name() string { return "parse" }

func (ParseStage) Execute(_ context.Context, run *Run, doc *Document) error {
	tree, err := asciidoc.Parse(doc.Path, bytes.NewReader(doc.Source))
	if err != nil {
		return err
	}
	doc.Tree = tree
	run.Logger.Debug("document parsed", "blocks", len(tree.Children))
	return nil
}

// BibliographyStage indexes the bibliography of the document. Entries from
// the configured bibliography file are used where the document has none.
type BibliographyStage struct{}

func (BibliographyStage) Name() string { return "bibliography" }

func (BibliographyStage) Execute(_ context.Context, run *Run, doc *Document) error {
	bib := make(sdpi.MapBibliography)
	if run.Config.BibliographyFile != "" {
		extra, err := sdpi.LoadBibliography(run.Config.BibliographyFile)
		if err != nil {
			return err
		}
		bib.Merge(extra)
	}
	bib.Merge(sdpi.CollectBibliography(doc.Tree))
	doc.Bibliography = bib

	run.Logger.Debug("bibliography indexed", "entries", len(bib))
	return nil
}

// CollectStage extracts requirements and use cases with a collector owned
// by the run.
type CollectStage struct{}

func (CollectStage) Name() string { return "collect" }

func (CollectStage) Execute(_ context.Context, run *Run, doc *Document) error {
	model, err := sdpi.NewCollector(doc.Bibliography, run.Logger).Process(doc.Tree)
	if err != nil {
		return err
	}
	doc.Model = model
	return nil
}

// ExportStage writes the model as referenced artifacts. It does nothing
// when the document has no output directory.
type ExportStage struct{}

func (ExportStage) Name() string { return "export" }

func (ExportStage) Execute(_ context.Context, run *Run, doc *Document) error {
	if doc.OutputDir == "" {
		run.Logger.Debug("no output directory, skipping export")
		return nil
	}

	w, err := export.NewWriter(doc.OutputDir, run.Config.Format, run.Logger)
	if err != nil {
		return err
	}
	return w.Write(doc.Model, schema.Manifest{
		RunID:     run.ID,
		Source:    doc.Path,
		CreatedAt: time.Now().UTC(),
	})
}
