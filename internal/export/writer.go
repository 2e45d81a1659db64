// Package export writes extracted models as referenced artifacts and reads
// them back.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sdpix/internal/core"
	"sdpix/pkg/schema"
)

// Artifact names and locations.
const (
	ArtifactsDir         = "referenced-artifacts"
	RequirementsArtifact = "sdpi-requirements"
	UseCasesArtifact     = "sdpi-use-cases"
	ManifestArtifact     = "manifest"
)

// ArtifactFile returns the file name of an artifact in format.
func ArtifactFile(name, format string) string {
	return name + "." + format
}

// Writer writes the artifacts of one model into an output directory.
type Writer struct {
	dir    string
	format string
	logger core.Logger
}

// NewWriter creates a writer placing artifacts under
// <outputDir>/referenced-artifacts in format (json or yaml).
func NewWriter(outputDir, format string, logger core.Logger) (*Writer, error) {
	if outputDir == "" {
		return nil, &core.ValidationError{Field: "output_dir", Message: "output directory is required"}
	}
	if format != core.FormatJSON && format != core.FormatYAML {
		return nil, &core.ValidationError{Field: "format", Message: fmt.Sprintf("unsupported format %q (expected json or yaml)", format)}
	}
	return &Writer{
		dir:    filepath.Join(outputDir, ArtifactsDir),
		format: format,
		logger: logger,
	}, nil
}

// Dir returns the artifact directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write replaces the artifact directory with the artifacts of model. Either
// every artifact is written or none is; files of an earlier run, in any
// format, do not survive.
func (w *Writer) Write(model *schema.Model, manifest schema.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(w.dir), 0755); err != nil {
		return &core.ExportError{Message: "create output directory", Err: err}
	}

	lock := NewFileLock(w.dir+".lock", manifest.RunID, w.logger)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			w.logger.Warn("failed to release artifact lock", "error", err)
		}
	}()

	manifest.Format = w.format
	manifest.Requirements = len(model.Requirements)
	manifest.UseCases = len(model.UseCases)

	artifacts := []struct {
		name  string
		value any
	}{
		{RequirementsArtifact, model.Requirements},
		{UseCasesArtifact, model.UseCases},
		{ManifestArtifact, manifest},
	}

	tx := NewReplaceTx(w.dir)
	if err := tx.Begin(); err != nil {
		return &core.ExportError{Message: "begin transaction", Err: err}
	}

	for _, a := range artifacts {
		data, err := Encode(a.value, w.format)
		if err != nil {
			w.rollback(tx)
			return &core.ExportError{Artifact: a.name, Message: "encode", Err: err}
		}
		if err := tx.WriteFile(ArtifactFile(a.name, w.format), data); err != nil {
			w.rollback(tx)
			return &core.ExportError{Artifact: a.name, Message: "write", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		w.rollback(tx)
		return &core.ExportError{Message: "commit transaction", Err: err}
	}

	w.logger.Info("artifacts written",
		"dir", w.dir,
		"format", w.format,
		"requirements", manifest.Requirements,
		"use_cases", manifest.UseCases)
	return nil
}

func (w *Writer) rollback(tx *ReplaceTx) {
	if err := tx.Rollback(); err != nil {
		w.logger.Error("rollback failed", "error", err)
	}
}

// Encode serializes v as indented JSON or YAML. Map keys are emitted in
// sorted order, so equal models encode to identical bytes.
func Encode(v any, format string) ([]byte, error) {
	switch format {
	case core.FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case core.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Decode parses data written by Encode into v.
func Decode(data []byte, format string, v any) error {
	switch format {
	case core.FormatJSON:
		return json.Unmarshal(data, v)
	case core.FormatYAML:
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("unsupported format %q", format)
}
