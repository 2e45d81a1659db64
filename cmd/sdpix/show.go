package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sdpix/internal/convert"
	"sdpix/internal/export"
	"sdpix/internal/query"
	"sdpix/pkg/schema"
)

func newShowCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a requirement or use case",
		Long: `Show a requirement or use case from an AsciiDoc source, or from the
artifacts an earlier "extract --out <dir>" wrote to <dir>.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "requirement <R1001|1001> <file.adoc|out-dir>",
		Aliases: []string{"req"},
		Short:   "Show one requirement",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := resolve(cmd, opts, args[1])
			if err != nil {
				return err
			}
			req, link, err := resolver.Requirement(args[0])
			if err != nil {
				return err
			}
			printRequirement(cmd.OutOrStdout(), req, link)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "use-case <id> <file.adoc|out-dir>",
		Aliases: []string{"uc"},
		Short:   "Show one use case",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := resolve(cmd, opts, args[1])
			if err != nil {
				return err
			}
			uc, link, err := resolver.UseCase(args[0])
			if err != nil {
				return err
			}
			printUseCase(cmd.OutOrStdout(), uc, link)
			return nil
		},
	})

	return cmd
}

// extractModel converts path without exporting. A directory is read as the
// output directory of an earlier extract --out run.
func extractModel(cmd *cobra.Command, opts *globalOptions, path string) (*schema.Model, error) {
	cfg, logger, err := loadConfig(cmd, opts, []string{path})
	if err != nil {
		return nil, err
	}
	cfg.OutputDir = ""

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		model, manifest, err := export.NewReader(path).Read()
		if err != nil {
			return nil, err
		}
		if manifest != nil {
			logger.Debug("artifacts loaded", "dir", path, "run", manifest.RunID, "source", manifest.Source)
		}
		return model, nil
	}

	result, err := convert.NewConverter(cfg, logger).Convert(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	return result.Model, nil
}

func resolve(cmd *cobra.Command, opts *globalOptions, path string) (*query.Resolver, error) {
	model, err := extractModel(cmd, opts, path)
	if err != nil {
		return nil, err
	}
	return query.NewResolver(model), nil
}

func printRequirement(w io.Writer, req schema.Requirement, link query.Link) {
	fmt.Fprintf(w, "%s  #%s  %s  %s\n",
		headingColor.Sprint(link.Text), link.Anchor, strings.ToUpper(string(req.Level)), req.Type)
	if len(req.Groups) > 0 {
		fmt.Fprintf(w, "groups: %s\n", strings.Join(req.Groups, ", "))
	}
	switch {
	case req.UseCaseID != "":
		fmt.Fprintf(w, "use case: %s\n", req.UseCaseID)
	case req.RefIcs != nil:
		fmt.Fprintf(w, "standard: %s (%s)\n", req.RefIcs.StandardID, req.RefIcs.Source)
	case req.RiskMitigation != nil:
		fmt.Fprintf(w, "mitigation: %s, %s\n", req.RiskMitigation.SesType, req.RiskMitigation.Testability)
	}

	sections := []struct {
		name    string
		content schema.ContentList
	}{
		{"Normative", req.Specification.Normative},
		{"Note", req.Specification.Note},
		{"Example", req.Specification.Example},
		{"Related", req.Specification.Related},
	}
	for _, s := range sections {
		if len(s.content) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", headingColor.Sprint(s.name))
		for _, line := range s.content.TextLines() {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func printUseCase(w io.Writer, uc schema.UseCase, link query.Link) {
	fmt.Fprintf(w, "%s  #%s  %s\n", headingColor.Sprint(uc.ID), link.Anchor, link.Text)

	if len(uc.Specification.Background) > 0 {
		fmt.Fprintf(w, "\n%s\n", headingColor.Sprint("Background"))
		printSteps(w, uc.Specification.Background)
	}
	for _, s := range uc.Specification.Scenarios {
		fmt.Fprintf(w, "\n%s %s\n", headingColor.Sprint("Scenario:"), s.Title)
		printSteps(w, s.Steps)
	}
}

func printSteps(w io.Writer, steps []schema.GherkinStep) {
	for _, step := range steps {
		keyword := string(step.Type)
		fmt.Fprintf(w, "  %s %s\n", strings.ToUpper(keyword[:1])+keyword[1:], step.Description)
	}
}
