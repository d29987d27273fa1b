package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/pipeline"
	"github.com/lex00/logging-config-go/internal/validation"
)

func newValidateCmd() *cobra.Command {
	var (
		configPath   string
		templatePath string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the logging settings of a service",
		Long: `Validate checks the settings under custom.serverless-logging-config.

With --template, the template is also checked with the logging lint rules
and cfn-lint.

Examples:
    logging-config validate
    logging-config validate --config serverless.yml -f json
    logging-config validate --template out.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), configPath, templatePath, outputFormat)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "serverless.yml", "Service definition holding the settings")
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Also validate this template")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

type validateOutput struct {
	loggingconfig.ValidateResult
	Template *validation.ValidationResult `json:"template,omitempty"`
}

func runValidate(w io.Writer, configPath, templatePath, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	in, err := pipeline.Load(pipeline.Options{ConfigPath: configPath})
	if err != nil {
		return err
	}

	out := validateOutput{ValidateResult: *pipeline.Validate(in)}
	if templatePath != "" && out.Success {
		out.Template, err = validation.ValidateTemplate(templatePath, in.Settings())
		if err != nil {
			return err
		}
	}
	passed := out.Success && (out.Template == nil || out.Template.Passed())

	if format == "json" {
		if err := printJSON(w, out); err != nil {
			return err
		}
	} else {
		printValidateText(w, out)
	}

	if !passed {
		return errIssuesFound
	}
	return nil
}

func printValidateText(w io.Writer, out validateOutput) {
	for _, e := range out.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if out.Success {
		if out.LogGroupName != "" {
			fmt.Fprintf(w, "Settings OK: %d function(s) log to %s\n", out.Functions, out.LogGroupName)
		} else {
			fmt.Fprintf(w, "Settings OK: %d function(s)\n", out.Functions)
		}
	}

	if out.Template == nil {
		return
	}
	if out.Template.LintResult != nil {
		printLintText(w, *out.Template.LintResult)
	}
	if out.Template.CfnLintResult != nil {
		printCfnLint(w, out.Template.CfnLintResult)
	}
}
