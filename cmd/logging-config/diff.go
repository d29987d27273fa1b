package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template1> <template2>",
		Short: "Compare two CloudFormation templates",
		Long: `Diff compares two templates resource by resource and reports added,
removed and modified resources with their changed properties.

Examples:
    logging-config diff template.json out.json
    logging-config diff template.json out.yaml --ignore-order
    logging-config diff template.json out.json -f json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args[0], args[1], outputFormat, ignoreOrder)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore the order of list elements")

	return cmd
}

func runDiff(w io.Writer, file1, file2, format string, ignoreOrder bool) error {
	result, err := differ.CompareFiles(file1, file2, differ.Options{IgnoreOrder: ignoreOrder})
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return printJSON(w, loggingconfig.DiffResult{
			Success: true,
			Diff:    result.Diff,
			Summary: result.Summary,
		})
	case "text":
		printDiffText(w, result)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func printDiffText(w io.Writer, result *differ.Result) {
	if result.Summary.Total == 0 {
		fmt.Fprintln(w, "No differences.")
		return
	}

	for _, e := range result.Diff.Added {
		fmt.Fprintf(w, "+ %s (%s)\n", e.Resource, e.Type)
	}
	for _, e := range result.Diff.Removed {
		fmt.Fprintf(w, "- %s (%s)\n", e.Resource, e.Type)
	}
	for _, e := range result.Diff.Modified {
		fmt.Fprintf(w, "~ %s (%s)\n", e.Resource, e.Type)
		for _, c := range e.Changes {
			fmt.Fprintf(w, "    %s\n", c)
		}
	}

	fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n",
		result.Summary.Added, result.Summary.Removed, result.Summary.Modified)
}
