package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sdpix/internal/convert"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.adoc>...",
		Short: "Validate documents without exporting",
		Long: `Validate the requirements and use cases of one or more documents.
Warnings are logged; the first fatal violation is reported with its location
and the command exits with status 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			cfg.OutputDir = ""

			results, err := convert.NewConverter(cfg, logger).ConvertAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, r := range results {
				if len(r.Model.Requirements) == 0 && len(r.Model.UseCases) == 0 {
					fmt.Fprintf(w, "%s %s: no requirements or use cases found\n", warnColor.Sprint("warning:"), r.Path)
					continue
				}
				fmt.Fprintf(w, "%s %s: %d requirements, %d use cases\n",
					okColor.Sprint("ok"), r.Path, len(r.Model.Requirements), len(r.Model.UseCases))
			}
			return nil
		},
	}

	cmd.Flags().Int("parallel", 4, "documents checked at once")
	cmd.Flags().String("bibliography", "", "YAML file with extra bibliography entries")
	return cmd
}
