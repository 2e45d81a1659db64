package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sdpix/internal/core"
	"sdpix/pkg/schema"
)

// Reader loads artifacts written by Writer.
type Reader struct {
	dir string
}

// NewReader creates a reader for the artifacts under outputDir.
func NewReader(outputDir string) *Reader {
	return &Reader{dir: filepath.Join(outputDir, ArtifactsDir)}
}

// Format reports the format the artifacts were written in.
func (r *Reader) Format() (string, error) {
	for _, format := range []string{core.FormatJSON, core.FormatYAML} {
		path := filepath.Join(r.dir, ArtifactFile(RequirementsArtifact, format))
		if _, err := os.Stat(path); err == nil {
			return format, nil
		}
	}
	return "", &core.ExportError{
		Artifact: RequirementsArtifact,
		Message:  fmt.Sprintf("no artifacts found in %s", r.dir),
		Err:      os.ErrNotExist,
	}
}

// Read loads the model and its manifest and checks every requirement. A
// missing manifest is not an error; the returned manifest is then nil.
func (r *Reader) Read() (*schema.Model, *schema.Manifest, error) {
	format, err := r.Format()
	if err != nil {
		return nil, nil, err
	}

	model := schema.NewModel()
	if err := r.load(RequirementsArtifact, format, &model.Requirements); err != nil {
		return nil, nil, err
	}
	if err := r.load(UseCasesArtifact, format, &model.UseCases); err != nil {
		return nil, nil, err
	}
	if model.Requirements == nil {
		model.Requirements = make(map[int]schema.Requirement)
	}
	if model.UseCases == nil {
		model.UseCases = make(map[string]schema.UseCase)
	}
	if err := validate(model); err != nil {
		return nil, nil, err
	}

	var manifest schema.Manifest
	if err := r.load(ManifestArtifact, format, &manifest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model, nil, nil
		}
		return nil, nil, err
	}
	return model, &manifest, nil
}

func (r *Reader) load(name, format string, v any) error {
	data, err := os.ReadFile(filepath.Join(r.dir, ArtifactFile(name, format)))
	if err != nil {
		return &core.ExportError{Artifact: name, Message: "read", Err: err}
	}
	if err := Decode(data, format, v); err != nil {
		return &core.ExportError{Artifact: name, Message: "decode", Err: err}
	}
	return nil
}

func validate(model *schema.Model) error {
	for _, number := range model.RequirementNumbers() {
		r := model.Requirements[number]
		if r.Number != number {
			return &core.ExportError{
				Artifact: RequirementsArtifact,
				Message:  fmt.Sprintf("requirement keyed %d has number %d", number, r.Number),
			}
		}
		if err := schema.ValidateRequirement(&r); err != nil {
			return &core.ExportError{
				Artifact: RequirementsArtifact,
				Message:  fmt.Sprintf("invalid requirement %s", schema.LocalID(number)),
				Err:      err,
			}
		}
	}
	for id, uc := range model.UseCases {
		if uc.ID != id {
			return &core.ExportError{
				Artifact: UseCasesArtifact,
				Message:  fmt.Sprintf("use case keyed %q has id %q", id, uc.ID),
			}
		}
	}
	return nil
}
