package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mentalhealthdb/mhdb/pkg/turtle"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that Turtle files parse",
		Long: `Parse each Turtle file and print the number of triples it holds.
The command fails on the first file that does not parse.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				n, err := turtle.Validate(string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d triples\n", path, n)
			}
			return nil
		},
	}
}
