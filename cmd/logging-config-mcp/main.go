// Command logging-config-mcp serves the logging-config operations as MCP tools
// over stdio.
//
// Tools:
//
//	logging_apply     apply the settings to a template and return the result
//	logging_validate  check the settings of a service
//	logging_lint      check a template for logging problems
//	logging_diff      compare two templates
//	logging_graph     draw where function logs go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lex00/wetwire-core-go/mcp"
	"github.com/sirupsen/logrus"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/differ"
	"github.com/lex00/logging-config-go/internal/graph"
	"github.com/lex00/logging-config-go/internal/lint"
	"github.com/lex00/logging-config-go/internal/pipeline"
	"github.com/lex00/logging-config-go/internal/template"
)

func main() {
	server := mcp.NewServer(mcp.Config{
		Name:    "logging-config",
		Version: "1.0.0",
	})

	server.RegisterToolWithSchema("logging_apply", "Apply the serverless-logging-config settings to a compiled CloudFormation template", handleApply, applySchema)
	server.RegisterToolWithSchema("logging_validate", "Validate the serverless-logging-config settings of a service", handleValidate, validateSchema)
	server.RegisterToolWithSchema("logging_lint", "Check a template for logging problems (LCF rules)", handleLint, lintSchema)
	server.RegisterToolWithSchema("logging_diff", "Compare two CloudFormation templates", handleDiff, diffSchema)
	server.RegisterToolWithSchema("logging_graph", "Visualize functions, roles and log groups (DOT/Mermaid)", handleGraph, graphSchema)

	// Run on stdio transport
	if err := server.Start(context.Background()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

var configProperty = map[string]any{
	"type":        "string",
	"description": "Path to serverless.yml (default: serverless.yml)",
}

var templateProperty = map[string]any{
	"type":        "string",
	"description": "Path to the compiled CloudFormation template",
}

var applySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"config":   configProperty,
		"template": templateProperty,
		"format": map[string]any{
			"type":        "string",
			"enum":        []string{"json", "yaml"},
			"description": "Template output format (default: json)",
		},
	},
	"required": []string{"template"},
}

var validateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"config": configProperty,
	},
}

var lintSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"config":   configProperty,
		"template": templateProperty,
	},
	"required": []string{"template"},
}

var diffSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"before": templateProperty,
		"after":  templateProperty,
		"ignore_order": map[string]any{
			"type":        "boolean",
			"description": "Ignore the order of list elements",
		},
	},
	"required": []string{"before", "after"},
}

var graphSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"template": templateProperty,
		"format": map[string]any{
			"type":        "string",
			"enum":        []string{"dot", "mermaid"},
			"description": "Output format (default: mermaid)",
		},
	},
	"required": []string{"template"},
}

// quietLogger keeps plugin diagnostics off stdout, which carries the protocol.
func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func loadInputs(args map[string]any) (*pipeline.Inputs, error) {
	config, _ := args["config"].(string)
	tmpl, _ := args["template"].(string)
	if config == "" {
		config = "serverless.yml"
	}
	return pipeline.Load(pipeline.Options{
		ConfigPath:   config,
		TemplatePath: tmpl,
		Logger:       quietLogger(),
	})
}

// handleApply applies the settings and returns the transformed template.
func handleApply(_ context.Context, args map[string]any) (string, error) {
	result := ApplyResult{}

	if path, _ := args["template"].(string); path == "" {
		result.Errors = []string{"template is required"}
		return toJSON(result)
	}

	format := template.FormatJSON
	if f, _ := args["format"].(string); f != "" {
		parsed, err := template.ParseFormat(f)
		if err != nil {
			result.Errors = []string{err.Error()}
			return toJSON(result)
		}
		format = parsed
	}

	in, err := loadInputs(args)
	if err != nil {
		result.Errors = []string{err.Error()}
		return toJSON(result)
	}

	applied, err := pipeline.Apply(in)
	result.ApplyResult = *applied
	if err != nil {
		return toJSON(result)
	}

	data, err := template.Marshal(in.Template, format)
	if err != nil {
		result.Success = false
		result.Errors = []string{err.Error()}
		return toJSON(result)
	}
	result.Template = string(data)
	return toJSON(result)
}

// handleValidate checks the settings of a service.
func handleValidate(_ context.Context, args map[string]any) (string, error) {
	in, err := loadInputs(map[string]any{"config": args["config"]})
	if err != nil {
		return toJSON(loggingconfig.ValidateResult{Errors: []string{err.Error()}})
	}
	return toJSON(pipeline.Validate(in))
}

// handleLint lints a template against the settings.
func handleLint(_ context.Context, args map[string]any) (string, error) {
	path, _ := args["template"].(string)
	if path == "" {
		return toJSON(loggingconfig.LintResult{Issues: []loggingconfig.LintIssue{{
			Severity: "error",
			Message:  "template is required",
			Rule:     "internal",
		}}})
	}

	in, err := loadInputs(args)
	if err != nil {
		return toJSON(loggingconfig.LintResult{Issues: []loggingconfig.LintIssue{{
			Severity: "error",
			Message:  err.Error(),
			Rule:     "internal",
		}}})
	}

	res := lint.Lint(&lint.Input{Template: in.Template, Settings: in.Settings(), File: path}, lint.Options{})
	return toJSON(lint.ToLintResult(res))
}

// handleDiff compares two templates.
func handleDiff(_ context.Context, args map[string]any) (string, error) {
	before, _ := args["before"].(string)
	after, _ := args["after"].(string)
	ignoreOrder, _ := args["ignore_order"].(bool)

	if before == "" || after == "" {
		return toJSON(DiffResult{Error: "before and after are required"})
	}

	res, err := differ.CompareFiles(before, after, differ.Options{IgnoreOrder: ignoreOrder})
	if err != nil {
		return toJSON(DiffResult{Error: err.Error()})
	}
	return toJSON(DiffResult{
		DiffResult: loggingconfig.DiffResult{
			Success: true,
			Diff:    res.Diff,
			Summary: res.Summary,
		},
	})
}

// handleGraph renders the logging graph of a template.
func handleGraph(_ context.Context, args map[string]any) (string, error) {
	path, _ := args["template"].(string)
	format, _ := args["format"].(string)

	result := GraphResult{}

	if path == "" {
		result.Error = "template is required"
		return toJSON(result)
	}
	if format == "" {
		format = "mermaid"
	}

	gen := &graph.Generator{Format: graph.Format(strings.ToLower(format))}
	if gen.Format != graph.FormatDOT && gen.Format != graph.FormatMermaid {
		result.Error = fmt.Sprintf("unknown format: %s (use 'dot' or 'mermaid')", format)
		return toJSON(result)
	}

	tmpl, err := template.Load(path)
	if err != nil {
		result.Error = err.Error()
		return toJSON(result)
	}

	out, err := gen.GenerateString(tmpl)
	if err != nil {
		result.Error = err.Error()
		return toJSON(result)
	}

	result.Success = true
	result.Graph = out
	return toJSON(result)
}

// Result types

// ApplyResult is the result of the logging_apply tool.
type ApplyResult struct {
	loggingconfig.ApplyResult
	Template string `json:"template,omitempty"`
}

// DiffResult is the result of the logging_diff tool.
type DiffResult struct {
	loggingconfig.DiffResult
	Error string `json:"error,omitempty"`
}

// GraphResult is the result of the logging_graph tool.
type GraphResult struct {
	Success bool   `json:"success"`
	Graph   string `json:"graph,omitempty"`
	Error   string `json:"error,omitempty"`
}

// toJSON converts a value to a JSON string.
func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}
	return string(data), nil
}
