package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mentalhealthdb/mhdb/internal/ingest"
)

func newPassesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List the ingestion passes in run order",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PASS\tWORKBOOKS")
			for _, p := range ingest.Passes() {
				fmt.Fprintf(w, "%s\t%s\n", p.Name, strings.Join(p.Workbooks, ", "))
			}
			_ = w.Flush()
		},
	}
}
