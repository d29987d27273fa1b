// Command logging-config points every Lambda function of a compiled service at
// one shared CloudWatch log group.
//
// Usage:
//
//	logging-config apply --template template.json -o out.json   Transform a template
//	logging-config validate                                    Check the settings
//	logging-config lint --template out.json                    Check a template
//	logging-config diff before.json after.json                 Compare templates
//	logging-config graph --template out.json                   Draw where logs go
//	logging-config version                                     Show version
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lex00/logging-config-go/internal/settings"
)

// errIssuesFound makes the process exit with code 2, like a linter.
var errIssuesFound = errors.New("issues found")

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errIssuesFound) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "logging-config",
		Short: "Send all Lambda logs of a service to one log group",
		Long: `logging-config applies the ` + settings.Namespace + ` settings of a service
to its compiled CloudFormation template.

Configure it in serverless.yml:

    custom:
      ` + settings.Namespace + `:
        enableJson: true
        logGroupName: my-logs

Then transform the template:

    logging-config apply --template .serverless/cloudformation-template-update-stack.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(logrus.StandardLogger(), logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newApplyCmd(),
		newValidateCmd(),
		newLintCmd(),
		newDiffCmd(),
		newGraphCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// configureLogging sets the level and formatter of the diagnostics logger.
// Diagnostics go to stderr so stdout stays clean for templates.
func configureLogging(logger *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	logger.SetOutput(os.Stderr)

	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s (use 'text' or 'json')", format)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "logging-config %s\n", getVersion())
		},
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
