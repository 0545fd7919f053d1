package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"firestige.xyz/wapdec/internal/core/wbxml/tokens"
	"firestige.xyz/wapdec/pkg/plugin"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the known WBXML token maps and the registered plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTables(cmd.OutOrStdout())
	},
}

func runTables(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBLIC ID\tMAP\tFORMAL ID\tCONTENT TYPES\tTABLES")
	for _, e := range tokens.Entries() {
		tables := "yes"
		if !e.HasTables {
			tables = "no"
		}
		cts := strings.Join(e.ContentTypes, ",")
		if cts == "" {
			cts = "-"
		}
		fmt.Fprintf(tw, "0x%02x\t%s\t%s\t%s\t%s\n", e.PublicID, e.Name, e.FormalID, cts, tables)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "capturers:  %s\n", strings.Join(plugin.ListCapturers(), ", "))
	fmt.Fprintf(w, "parsers:    %s\n", strings.Join(plugin.ListParsers(), ", "))
	fmt.Fprintf(w, "processors: %s\n", strings.Join(plugin.ListProcessors(), ", "))
	fmt.Fprintf(w, "reporters:  %s\n", strings.Join(plugin.ListReporters(), ", "))
	return nil
}
