package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loggingconfig "github.com/lex00/logging-config-go"
)

const serviceYAML = `service: checkout
custom:
  serverless-logging-config:
    logGroupName: my-logs
functions:
  hello:
    handler: hello.handler
`

const templateJSON = `{
  "Resources": {
    "IamRoleLambdaExecution": {
      "Type": "AWS::IAM::Role",
      "Properties": {
        "Policies": [{
          "PolicyDocument": {
            "Statement": [{"Effect": "Allow", "Action": "logs:PutLogEvents", "Resource": "*"}]
          }
        }]
      }
    },
    "HelloLogGroup": {"Type": "AWS::Logs::LogGroup"},
    "HelloLambdaFunction": {
      "Type": "AWS::Lambda::Function",
      "DependsOn": ["HelloLogGroup"],
      "Properties": {"Role": {"Fn::GetAtt": ["IamRoleLambdaExecution", "Arn"]}}
    }
  }
}`

func writeFixture(t *testing.T) (config, tmpl string) {
	t.Helper()
	dir := t.TempDir()
	config = filepath.Join(dir, "serverless.yml")
	tmpl = filepath.Join(dir, "template.json")
	require.NoError(t, os.WriteFile(config, []byte(serviceYAML), 0644))
	require.NoError(t, os.WriteFile(tmpl, []byte(templateJSON), 0644))
	return config, tmpl
}

func decode(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v))
}

func TestHandleApply(t *testing.T) {
	config, tmpl := writeFixture(t)

	out, err := handleApply(context.Background(), map[string]any{
		"config":   config,
		"template": tmpl,
	})
	require.NoError(t, err)

	var result ApplyResult
	decode(t, out, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "my-logs", result.LogGroupName)
	assert.Equal(t, []string{"HelloLambdaFunction"}, result.Functions)
	assert.Equal(t, []string{"hello"}, result.Disabled)
	assert.Contains(t, result.Template, `"LogFormat": "Text"`)
	assert.Contains(t, result.Template, "log-group:my-logs:*")
}

func TestHandleApply_YAML(t *testing.T) {
	config, tmpl := writeFixture(t)

	out, err := handleApply(context.Background(), map[string]any{
		"config":   config,
		"template": tmpl,
		"format":   "yaml",
	})
	require.NoError(t, err)

	var result ApplyResult
	decode(t, out, &result)
	assert.True(t, result.Success)
	assert.Contains(t, result.Template, "LogFormat: Text")
}

func TestHandleApply_Errors(t *testing.T) {
	config, tmpl := writeFixture(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing template", map[string]any{"config": config}, "template is required"},
		{"bad format", map[string]any{"config": config, "template": tmpl, "format": "xml"}, "xml"},
		{"missing config", map[string]any{"config": filepath.Join(t.TempDir(), "nope.yml"), "template": tmpl}, "nope.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handleApply(context.Background(), tt.args)
			require.NoError(t, err)

			var result ApplyResult
			decode(t, out, &result)
			assert.False(t, result.Success)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestHandleValidate(t *testing.T) {
	config, _ := writeFixture(t)

	out, err := handleValidate(context.Background(), map[string]any{"config": config})
	require.NoError(t, err)

	var result loggingconfig.ValidateResult
	decode(t, out, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "my-logs", result.LogGroupName)
	assert.Equal(t, 1, result.Functions)
	assert.Empty(t, result.Warnings)
}

func TestHandleLint(t *testing.T) {
	config, tmpl := writeFixture(t)

	out, err := handleLint(context.Background(), map[string]any{
		"config":   config,
		"template": tmpl,
	})
	require.NoError(t, err)

	var result loggingconfig.LintResult
	decode(t, out, &result)
	assert.True(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "LCF002", result.Issues[0].Rule)
	assert.Equal(t, "HelloLambdaFunction", result.Issues[0].Resource)
}

func TestHandleLint_MissingTemplate(t *testing.T) {
	out, err := handleLint(context.Background(), map[string]any{})
	require.NoError(t, err)

	var result loggingconfig.LintResult
	decode(t, out, &result)
	assert.False(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "template is required", result.Issues[0].Message)
}

func TestHandleDiff(t *testing.T) {
	config, tmpl := writeFixture(t)

	out, err := handleApply(context.Background(), map[string]any{
		"config":   config,
		"template": tmpl,
	})
	require.NoError(t, err)
	var applied ApplyResult
	decode(t, out, &applied)

	after := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(after, []byte(applied.Template), 0644))

	out, err = handleDiff(context.Background(), map[string]any{
		"before": tmpl,
		"after":  after,
	})
	require.NoError(t, err)

	var result DiffResult
	decode(t, out, &result)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, 2, result.Summary.Modified)
	assert.Equal(t, 0, result.Summary.Added)
}

func TestHandleDiff_MissingArgs(t *testing.T) {
	out, err := handleDiff(context.Background(), map[string]any{"before": "a.json"})
	require.NoError(t, err)

	var result DiffResult
	decode(t, out, &result)
	assert.False(t, result.Success)
	assert.Equal(t, "before and after are required", result.Error)
}

func TestHandleGraph(t *testing.T) {
	_, tmpl := writeFixture(t)

	tests := []struct {
		format string
		dot    bool
	}{
		{"", false},
		{"mermaid", false},
		{"dot", true},
		{"DOT", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := handleGraph(context.Background(), map[string]any{
				"template": tmpl,
				"format":   tt.format,
			})
			require.NoError(t, err)

			var result GraphResult
			decode(t, out, &result)
			assert.True(t, result.Success)
			assert.NotEmpty(t, result.Graph)
			assert.Equal(t, tt.dot, strings.Contains(result.Graph, "digraph"), result.Graph)
			if tt.dot {
				assert.Contains(t, result.Graph, "HelloLambdaFunction")
			}
		})
	}
}

func TestHandleGraph_Errors(t *testing.T) {
	_, tmpl := writeFixture(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing template", map[string]any{}, "template is required"},
		{"unknown format", map[string]any{"template": tmpl, "format": "svg"}, "unknown format: svg"},
		{"missing file", map[string]any{"template": filepath.Join(t.TempDir(), "nope.json")}, "nope.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handleGraph(context.Background(), tt.args)
			require.NoError(t, err)

			var result GraphResult
			decode(t, out, &result)
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, tt.want)
		})
	}
}

func TestToJSON(t *testing.T) {
	out, err := toJSON(GraphResult{Success: true})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"success\": true\n}", out)

	_, err = toJSON(make(chan int))
	assert.Error(t, err)
}
