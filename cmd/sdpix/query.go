package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sdpix/internal/query"
)

func newQueryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <jq-expression> <file.adoc|out-dir>",
		Short: "Run a jq expression over the extracted model",
		Long: `Run a jq expression over the JSON form of the extracted model. Each
result is printed as indented JSON. The model is extracted from an AsciiDoc
source, or read from the artifacts an earlier "extract --out <dir>" wrote.`,
		Example: `  sdpix query '.requirements | length' sdpi-supplement.adoc
  sdpix query '[.requirements[] | select(.level == "shall") | .local_id]' sdpi-supplement.adoc
  sdpix query '.use_cases | keys' build/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := extractModel(cmd, opts, args[1])
			if err != nil {
				return err
			}
			values, err := query.JQ(model, args[0])
			if err != nil {
				return err
			}
			return printValues(cmd.OutOrStdout(), values)
		},
	}
}

func newICSCmd(opts *globalOptions) *cobra.Command {
	var groups, types, levels []string

	cmd := &cobra.Command{
		Use:   "ics <file.adoc|out-dir>",
		Short: "Print the implementation conformance statement table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := query.ParseFilter(groups, types, levels)
			if err != nil {
				return err
			}
			model, err := extractModel(cmd, opts, args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tANCHOR\tLEVEL\tTYPE\tREFERENCE")
			for _, row := range query.ICSRows(model, filter) {
				reference := strings.TrimSpace(strings.Join([]string{row.Source, row.Locator}, " "))
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.LocalID, row.GlobalID, row.Level, row.Type, reference)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringSliceVar(&groups, "group", nil, "only requirements in one of these groups")
	cmd.Flags().StringSliceVar(&types, "type", nil, "only requirements of these types")
	cmd.Flags().StringSliceVar(&levels, "level", nil, "only requirements of these levels")
	return cmd
}
