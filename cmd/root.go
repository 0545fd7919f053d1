// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/wapdec/internal/config"
	"firestige.xyz/wapdec/internal/log"
	_ "firestige.xyz/wapdec/plugins" // built-in plugins
)

var (
	// Global flags
	configFile   string
	outputFormat string
	logLevel     string

	// cfg is loaded before any subcommand runs.
	cfg *config.GlobalConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wapdec",
	Short: "wapdec - WAP binary protocol decoder",
	Long: `wapdec decodes the binary encodings of the WAP stack: WBXML documents, MMS
encapsulated PDUs and connectionless WSP push, from files, hex strings or pcap captures.

Every decoded item is reported with its byte offset and length. Malformed fields are
reported in place and decoding continues where the format allows it.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", "",
		"output format: text, json, yaml or cbor (overrides output.format)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides log.level)")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(tablesCmd)
}

// loadConfig loads the global configuration, applies flag overrides and initializes
// logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if outputFormat != "" {
		c.Output.Format = outputFormat
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := c.ValidateAndApplyDefaults(); err != nil {
		return err
	}
	if err := log.Init(c.Log); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	cfg = c
	return nil
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
