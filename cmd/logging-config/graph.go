package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lex00/logging-config-go/internal/graph"
	"github.com/lex00/logging-config-go/internal/pipeline"
	"github.com/lex00/logging-config-go/internal/template"
)

func newGraphCmd() *cobra.Command {
	var (
		configPath    string
		templatePath  string
		outputFormat  string
		clusterByType bool
		apply         bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a graph of where function logs go",
		Long: `Generate a DOT or Mermaid graph of the functions in a template, the roles
they use, and the log groups they write to.

The output can be rendered with Graphviz:
    logging-config graph --template out.json | dot -Tpng -o logs.png

Or used in GitHub markdown (Mermaid format):
    logging-config graph --template out.json -f mermaid

Examples:
    logging-config graph --template out.json
    logging-config graph --template template.json --apply   # graph the result of apply
    logging-config graph --template out.json -c             # cluster by service`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.OutOrStdout(), configPath, templatePath, outputFormat, clusterByType, apply)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "serverless.yml", "Service definition holding the settings (with --apply)")
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "CloudFormation template (required)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&clusterByType, "cluster", "c", false, "Cluster resources by AWS service")
	cmd.Flags().BoolVar(&apply, "apply", false, "Apply the logging settings before drawing")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func runGraph(w io.Writer, configPath, templatePath, format string, cluster, apply bool) error {
	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	gen := &graph.Generator{
		Format:        graphFormat,
		ClusterByType: cluster,
	}

	if !apply {
		tmpl, err := template.Load(templatePath)
		if err != nil {
			return err
		}
		return gen.Generate(tmpl, w)
	}

	in, err := pipeline.Load(pipeline.Options{
		ConfigPath:   configPath,
		TemplatePath: templatePath,
	})
	if err != nil {
		return err
	}
	if _, err := pipeline.Apply(in); err != nil {
		return err
	}
	return gen.Generate(in.Template, w)
}
