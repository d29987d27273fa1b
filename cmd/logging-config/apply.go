package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/differ"
	"github.com/lex00/logging-config-go/internal/pipeline"
	"github.com/lex00/logging-config-go/internal/template"
	"github.com/lex00/logging-config-go/internal/validation"
)

type applyOptions struct {
	configPath   string
	templatePath string
	outputFile   string
	outputFormat string
	serviceOut   string
	showDiff     bool
	cfnLint      bool
	report       bool
}

func newApplyCmd() *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the logging settings to a compiled template",
		Long: `Apply runs the four lifecycle steps on a service and its compiled template:

    initialize                   validate the settings
    before:package:initialize    set disableLogs on the functions
    after:package:compileEvents  write LoggingConfig on every Lambda function
    before:package:finalize      grant the roles access to the shared log group

Examples:
    logging-config apply --template template.json
    logging-config apply --template template.json -o out.yaml
    logging-config apply --template template.json -o out.json --service-out serverless.out.yml
    logging-config apply --template template.json -o out.json --diff --cfn-lint`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "serverless.yml", "Service definition holding the settings")
	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "Compiled CloudFormation template (required)")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "", "Output format: json or yaml (default: from --output extension, else json)")
	cmd.Flags().StringVar(&opts.serviceOut, "service-out", "", "Write the service definition with disableLogs flags to this file")
	cmd.Flags().BoolVar(&opts.showDiff, "diff", false, "Print a summary of template changes to stderr")
	cmd.Flags().BoolVar(&opts.cfnLint, "cfn-lint", false, "Validate the output with cfn-lint")
	cmd.Flags().BoolVar(&opts.report, "report", false, "Print the apply result as JSON to stderr")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func runApply(stdout, stderr io.Writer, opts applyOptions) error {
	format, err := outputFormat(opts.outputFormat, opts.outputFile)
	if err != nil {
		return err
	}

	in, err := pipeline.Load(pipeline.Options{
		ConfigPath:   opts.configPath,
		TemplatePath: opts.templatePath,
	})
	if err != nil {
		return err
	}

	var before *loggingconfig.Template
	if opts.showDiff {
		if before, err = template.Clone(in.Template); err != nil {
			return err
		}
	}

	result, err := pipeline.Apply(in)
	if opts.report {
		if rerr := printJSON(stderr, result); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		return err
	}

	if opts.outputFile == "" {
		data, err := template.Marshal(in.Template, format)
		if err != nil {
			return err
		}
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	} else {
		if err := writeTemplate(in, opts.outputFile, format); err != nil {
			return err
		}
		logrus.WithField("path", opts.outputFile).Info("Wrote template")
	}

	if opts.serviceOut != "" {
		if err := in.Service.Save(opts.serviceOut); err != nil {
			return fmt.Errorf("writing %s: %w", opts.serviceOut, err)
		}
		logrus.WithField("path", opts.serviceOut).Info("Wrote service definition")
	}

	if opts.showDiff {
		diff, err := differ.Compare(before, in.Template, differ.Options{})
		if err != nil {
			return err
		}
		printDiffText(stderr, diff)
	}

	if opts.cfnLint {
		var cfn *validation.CfnLintResult
		if opts.outputFile != "" {
			cfn, err = validation.RunCfnLint(opts.outputFile)
		} else {
			cfn, err = validation.RunCfnLintTemplate(in.Template)
		}
		if err != nil {
			return err
		}
		printCfnLint(stderr, cfn)
		if !cfn.Passed {
			return fmt.Errorf("cfn-lint found %d error(s)", len(cfn.Errors))
		}
	}

	return nil
}

// writeTemplate writes the transformed template to path.
func writeTemplate(in *pipeline.Inputs, path string, format template.Format) error {
	data, err := template.Marshal(in.Template, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// outputFormat resolves the -f flag, falling back to the output extension.
func outputFormat(flag, outputFile string) (template.Format, error) {
	if flag != "" {
		return template.ParseFormat(flag)
	}
	if outputFile != "" {
		return template.FormatForPath(outputFile), nil
	}
	return template.FormatJSON, nil
}

func printCfnLint(w io.Writer, r *validation.CfnLintResult) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "cfn-lint error: %s\n", e)
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "cfn-lint warning: %s\n", e)
	}
	for _, e := range r.Informational {
		fmt.Fprintf(w, "cfn-lint info: %s\n", e)
	}
	if r.Passed {
		fmt.Fprintln(w, "cfn-lint passed")
	}
}
