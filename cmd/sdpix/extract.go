package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"sdpix/internal/convert"
	"sdpix/internal/export"
	"sdpix/internal/query"
)

func newExtractCmd(opts *globalOptions) *cobra.Command {
	var queryExpr string

	cmd := &cobra.Command{
		Use:   "extract <file.adoc>...",
		Short: "Extract requirements and use cases",
		Long: `Extract requirements and use cases from one or more documents.

With --out the model is written to <out>/referenced-artifacts; several
documents each get their own subdirectory named after the file. Without
--out the model is printed to stdout.`,
		Example: `  sdpix extract sdpi-supplement.adoc --out build
  sdpix extract *.adoc --out build --format yaml --parallel 8
  sdpix extract sdpi-supplement.adoc --query '.requirements | keys'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, opts, args)
			if err != nil {
				return err
			}

			results, err := convert.NewConverter(cfg, logger).ConvertAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				switch {
				case queryExpr != "":
					values, err := query.JQ(r.Model, queryExpr)
					if err != nil {
						return err
					}
					if err := printValues(out, values); err != nil {
						return err
					}
				case r.OutputDir == "":
					data, err := export.Encode(r.Model, cfg.Format)
					if err != nil {
						return err
					}
					if _, err := out.Write(data); err != nil {
						return err
					}
				default:
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %d requirements, %d use cases -> %s\n",
						okColor.Sprint("extracted"),
						r.Path,
						len(r.Model.Requirements),
						len(r.Model.UseCases),
						filepath.Join(r.OutputDir, export.ArtifactsDir))
				}
			}
			return nil
		},
	}

	cmd.Flags().String("out", "", "output directory for the artifacts")
	cmd.Flags().String("format", "json", "artifact format (json|yaml)")
	cmd.Flags().Int("parallel", 4, "documents converted at once")
	cmd.Flags().String("bibliography", "", "YAML file with extra bibliography entries")
	cmd.Flags().StringVarP(&queryExpr, "query", "q", "", "jq expression applied to each extracted model")
	return cmd
}

// printValues writes each value as indented JSON.
func printValues(w io.Writer, values []any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
