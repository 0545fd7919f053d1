package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/wapdec/internal/config"
	"firestige.xyz/wapdec/pkg/plugin"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without decoding anything.

The file is loaded with the same defaults and environment overrides as every other
command, and every plugin named in the pipeline section must be registered.

Examples:
  wapdec validate -c wapdec.yml`,
	// The config may be invalid; it is loaded by the command itself.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		if configFile == "" {
			exitWithError("--config is required", nil)
		}
		if err := runValidate(configFile, cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
			os.Exit(1)
		}
	},
}

func runValidate(path string, w io.Writer) error {
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	pc := c.Pipeline
	if _, err := plugin.GetCapturerFactory(pc.Capturer.Name); err != nil {
		return err
	}
	for _, p := range pc.Parsers {
		if _, err := plugin.GetParserFactory(p.Name); err != nil {
			return err
		}
	}
	for _, p := range pc.Processors {
		if _, err := plugin.GetProcessorFactory(p.Name); err != nil {
			return err
		}
	}
	for _, r := range pc.Reporters {
		if _, err := plugin.GetReporterFactory(r.Name); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "VALID: capturer %q, %d parser(s), %d processor(s), %d reporter(s), output %s\n",
		pc.Capturer.Name, len(pc.Parsers), len(pc.Processors), len(pc.Reporters), c.Output.Format)
	return nil
}
