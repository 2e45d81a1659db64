package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sdpix/internal/core"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	headingColor = color.New(color.Bold)
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logLevel string
	noColor  bool
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "sdpix",
		Short: "Extract requirements and use cases from SDPi documents",
		Long: `sdpix reads SDPi supplement sources written in AsciiDoc, validates the
requirements and use cases they declare and exports them as JSON or YAML
artifacts.

Environment Variables:
  LOG_LEVEL           debug, info, warn or error
  SDPIX_OUTPUT_DIR    default output directory for extract
  SDPIX_FORMAT        json or yaml
  SDPIX_PARALLEL      documents converted at once
  SDPIX_BIBLIOGRAPHY  YAML file with extra bibliography entries`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newExtractCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newQueryCmd(opts))
	root.AddCommand(newICSCmd(opts))
	return root
}

// loadConfig resolves the configuration for inputs. Flags that were set on
// the command line override env and sdpix.toml.
func loadConfig(cmd *cobra.Command, opts *globalOptions, inputs []string) (*core.Config, core.Logger, error) {
	startDir := ""
	if len(inputs) > 0 {
		startDir = filepath.Dir(inputs[0])
	}

	cfg, err := core.LoadConfigFrom(startDir)
	if err != nil {
		return nil, nil, err
	}

	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if flagChanged(cmd, "out") {
		cfg.OutputDir, _ = cmd.Flags().GetString("out")
	}
	if flagChanged(cmd, "format") {
		cfg.Format, _ = cmd.Flags().GetString("format")
	}
	if flagChanged(cmd, "parallel") {
		cfg.Parallel, _ = cmd.Flags().GetInt("parallel")
	}
	if flagChanged(cmd, "bibliography") {
		cfg.BibliographyFile, _ = cmd.Flags().GetString("bibliography")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := core.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.ProjectFile != "" {
		logger.Debug("project file applied", "path", cfg.ProjectFile)
	}
	return cfg, logger, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// printError reports err on w. Extraction errors are shown with their
// document location.
func printError(w io.Writer, err error) {
	var extractionErr *core.ExtractionError
	if errors.As(err, &extractionErr) {
		fmt.Fprintf(w, "%s %s: %s\n",
			errorColor.Sprint("error:"),
			headingColor.Sprint(extractionErr.Location.String()),
			extractionErr.Message)
		return
	}
	fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("error:"), err)
}
