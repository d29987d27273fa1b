package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/lint"
	"github.com/lex00/logging-config-go/internal/pipeline"
)

func newLintCmd() *cobra.Command {
	var (
		configPath   string
		templatePath string
		outputFormat string
		rules        []string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check a template for logging problems",
		Long: `Lint checks a compiled template against the logging settings.

Rules:
    LCF001: Function role must exist in the template
    LCF002: Function keeps its default log group
    LCF003: Deny statement covers logs actions
    LCF004: Role grants no logs actions

Only LCF001 is an error; the process exits with code 2 when it fires.

Examples:
    logging-config lint --template out.json
    logging-config lint --template out.json -f json
    logging-config lint --template out.json --rule LCF003`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.OutOrStdout(), configPath, templatePath, outputFormat, rules)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "serverless.yml", "Service definition holding the settings")
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "CloudFormation template to check (required)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&rules, "rule", nil, "Only run these rules")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func runLint(w io.Writer, configPath, templatePath, format string, rules []string) error {
	in, err := pipeline.Load(pipeline.Options{
		ConfigPath:   configPath,
		TemplatePath: templatePath,
	})
	if err != nil {
		return err
	}

	res := lint.Lint(&lint.Input{
		Template: in.Template,
		Settings: in.Settings(),
		File:     templatePath,
	}, lint.Options{EnabledRules: rules})

	return outputLintResult(w, lint.ToLintResult(res), format)
}

func outputLintResult(w io.Writer, result loggingconfig.LintResult, format string) error {
	switch format {
	case "json":
		if err := printJSON(w, result); err != nil {
			return err
		}
	case "text":
		printLintText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return errIssuesFound
	}
	return nil
}

func printLintText(w io.Writer, result loggingconfig.LintResult) {
	if len(result.Issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "%s: %s [%s]\n", issue.Severity, issue.Message, issue.Rule)
	}
}
