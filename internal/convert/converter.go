// Package convert runs the conversion pipeline from an AsciiDoc source to an
// extracted, optionally exported, model.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"sdpix/internal/core"
	"sdpix/internal/sdpi"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

// Document carries one source through the stages.
type Document struct {
	Path      string
	Source    []byte // read from Path when nil
	OutputDir string // empty disables export

	Tree         *document.Node
	Bibliography sdpi.MapBibliography
	Model        *schema.Model
}

// Run is a single conversion. Every run has its own id and logger.
type Run struct {
	ID     string
	Config *core.Config
	Logger core.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	RunID     string
	Path      string
	OutputDir string
	Model     *schema.Model
}

// Converter executes the stages for each document.
type Converter struct {
	config *core.Config
	logger core.Logger
	stages []Stage
}

// NewConverter creates a converter with the default stages.
func NewConverter(cfg *core.Config, logger core.Logger) *Converter {
	return NewConverterWithStages(cfg, logger, DefaultStages()...)
}

// NewConverterWithStages creates a converter running stages in order.
func NewConverterWithStages(cfg *core.Config, logger core.Logger, stages ...Stage) *Converter {
	return &Converter{config: cfg, logger: logger, stages: stages}
}

// Convert reads and converts the file at path. Artifacts go to the
// configured output directory.
func (c *Converter) Convert(ctx context.Context, path string) (*Result, error) {
	return c.ConvertDocument(ctx, &Document{Path: path, OutputDir: c.config.OutputDir})
}

// ConvertDocument runs every stage on doc, stopping at the first error or
// when ctx is done.
func (c *Converter) ConvertDocument(ctx context.Context, doc *Document) (*Result, error) {
	runID, err := schema.NewRunID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	run := &Run{
		ID:     runID,
		Config: c.config,
		Logger: c.logger.With("run", runID, "source", doc.Path),
	}

	run.Logger.Info("conversion started")
	for _, stage := range c.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stage.Execute(ctx, run, doc); err != nil {
			run.Logger.Error("conversion failed", "stage", stage.Name(), "error", err)
			return nil, fmt.Errorf("%s stage: %w", stage.Name(), err)
		}
	}
	run.Logger.Info("conversion finished")

	return &Result{
		RunID:     runID,
		Path:      doc.Path,
		OutputDir: doc.OutputDir,
		Model:     doc.Model,
	}, nil
}

// ConvertAll converts paths concurrently, at most config.Parallel at a time.
// With more than one path each document exports into its own subdirectory
// named after the file; two paths with the same file stem are rejected
// before anything runs. Results keep the order of paths. The first failure
// cancels the remaining conversions.
func (c *Converter) ConvertAll(ctx context.Context, paths []string) ([]*Result, error) {
	docs := make([]*Document, len(paths))
	owners := make(map[string]string, len(paths))
	for i, path := range paths {
		dir := c.outputDirFor(path, len(paths))
		if dir != "" {
			if other, ok := owners[dir]; ok {
				return nil, &core.ValidationError{
					Field:   "output_dir",
					Message: fmt.Sprintf("%s and %s both export to %s", other, path, dir),
				}
			}
			owners[dir] = path
		}
		docs[i] = &Document{Path: path, OutputDir: dir}
	}

	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if c.config.Parallel > 0 {
		g.SetLimit(c.config.Parallel)
	}

	for i, doc := range docs {
		g.Go(func() error {
			result, err := c.ConvertDocument(ctx, doc)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Converter) outputDirFor(path string, total int) string {
	if c.config.OutputDir == "" || total < 2 {
		return c.config.OutputDir
	}
	base := filepath.Base(path)
	return filepath.Join(c.config.OutputDir, strings.TrimSuffix(base, filepath.Ext(base)))
}
