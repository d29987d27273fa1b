package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/service"
	"github.com/lex00/logging-config-go/internal/template"
)

const serviceYAML = `service: checkout
custom:
  serverless-logging-config:
    enableJson: true
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
    "HelloLambdaFunction": {
      "Type": "AWS::Lambda::Function",
      "Properties": {"Role": {"Fn::GetAtt": ["IamRoleLambdaExecution", "Arn"]}}
    }
  }
}`

type fixture struct {
	dir      string
	config   string
	template string
}

func newFixture(t *testing.T, svc string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		config:   filepath.Join(dir, "serverless.yml"),
		template: filepath.Join(dir, "template.json"),
	}
	require.NoError(t, os.WriteFile(f.config, []byte(svc), 0o644))
	require.NoError(t, os.WriteFile(f.template, []byte(templateJSON), 0o644))
	return f
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"apply", "validate", "lint", "diff", "graph", "watch", "version"} {
		assert.Contains(t, names, want)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-format"))
}

func TestConfigureLogging(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "text", level: "debug", format: "text"},
		{name: "json", level: "warn", format: "json"},
		{name: "bad level", level: "loud", format: "text", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logrus.New()
			err := configureLogging(logger, tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			want, _ := logrus.ParseLevel(tt.level)
			assert.Equal(t, want, logger.GetLevel())
		})
	}
}

func TestNewApplyCmd(t *testing.T) {
	cmd := newApplyCmd()

	assert.Equal(t, "apply", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	for _, name := range []string{"config", "template", "output", "format", "service-out", "diff", "cfn-lint", "report"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s flag", name)
	}
}

func TestRunApply(t *testing.T) {
	f := newFixture(t, serviceYAML)
	out := filepath.Join(f.dir, "out.yaml")
	svcOut := filepath.Join(f.dir, "serverless.out.yml")

	var stdout, stderr bytes.Buffer
	err := runApply(&stdout, &stderr, applyOptions{
		configPath:   f.config,
		templatePath: f.template,
		outputFile:   out,
		serviceOut:   svcOut,
		showDiff:     true,
		report:       true,
	})
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	tmpl, err := template.Load(out)
	require.NoError(t, err)
	fn := tmpl.Resources["HelloLambdaFunction"]
	assert.Equal(t, map[string]any{"LogGroup": "my-logs", "LogFormat": "JSON"}, fn.Properties["LoggingConfig"])
	assert.Equal(t, []string{}, fn.DependsOn)

	svc, err := service.Load(svcOut)
	require.NoError(t, err)
	assert.True(t, svc.Functions["hello"].DisableLogs)

	assert.Contains(t, stderr.String(), "LoggingConfig added")
	assert.Contains(t, stderr.String(), `"log_group_name": "my-logs"`)
}

func TestRunApply_Stdout(t *testing.T) {
	f := newFixture(t, serviceYAML)

	var stdout, stderr bytes.Buffer
	require.NoError(t, runApply(&stdout, &stderr, applyOptions{
		configPath:   f.config,
		templatePath: f.template,
	}))

	var tmpl loggingconfig.Template
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &tmpl))
	stm := tmpl.Resources["IamRoleLambdaExecution"].Properties["Policies"].([]any)[0].(map[string]any)["PolicyDocument"].(map[string]any)["Statement"].([]any)[0].(map[string]any)
	assert.Len(t, stm["Resource"], 2)
}

func TestRunApply_Errors(t *testing.T) {
	f := newFixture(t, "service: checkout\n")

	var stdout, stderr bytes.Buffer
	err := runApply(&stdout, &stderr, applyOptions{configPath: f.config, templatePath: f.template})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No custom settings found")

	err = runApply(&stdout, &stderr, applyOptions{configPath: f.config, templatePath: f.template, outputFormat: "toml"})
	assert.Error(t, err)
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		flag, output string
		want         template.Format
		wantErr      bool
	}{
		{want: template.FormatJSON},
		{output: "out.yml", want: template.FormatYAML},
		{flag: "json", output: "out.yml", want: template.FormatJSON},
		{flag: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := outputFormat(tt.flag, tt.output)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewDiffCmd(t *testing.T) {
	cmd := newDiffCmd()

	assert.Equal(t, "diff <template1> <template2>", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("format"))
	assert.NotNil(t, cmd.Flags().Lookup("ignore-order"))
}

func TestRunDiff(t *testing.T) {
	f := newFixture(t, serviceYAML)
	out := filepath.Join(f.dir, "out.json")
	var discard bytes.Buffer
	require.NoError(t, runApply(&discard, &discard, applyOptions{
		configPath: f.config, templatePath: f.template, outputFile: out,
	}))

	var text bytes.Buffer
	require.NoError(t, runDiff(&text, f.template, out, "text", false))
	assert.Contains(t, text.String(), "~ HelloLambdaFunction (AWS::Lambda::Function)")
	assert.Contains(t, text.String(), "0 added, 0 removed, 2 modified")

	var js bytes.Buffer
	require.NoError(t, runDiff(&js, f.template, out, "json", false))
	var result loggingconfig.DiffResult
	require.NoError(t, json.Unmarshal(js.Bytes(), &result))
	assert.Equal(t, 2, result.Summary.Modified)

	var same bytes.Buffer
	require.NoError(t, runDiff(&same, out, out, "text", false))
	assert.Equal(t, "No differences.\n", same.String())

	assert.Error(t, runDiff(&same, out, out, "xml", false))
}

func TestRunLint(t *testing.T) {
	f := newFixture(t, serviceYAML)

	var out bytes.Buffer
	require.NoError(t, runLint(&out, f.config, f.template, "text", nil))
	assert.Equal(t, "No issues found.\n", out.String())

	broken := strings.Replace(templateJSON, `["IamRoleLambdaExecution", "Arn"]`, `["GoneRole", "Arn"]`, 1)
	require.NoError(t, os.WriteFile(f.template, []byte(broken), 0o644))

	out.Reset()
	err := runLint(&out, f.config, f.template, "json", nil)
	assert.ErrorIs(t, err, errIssuesFound)
	var result loggingconfig.LintResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "LCF001", result.Issues[0].Rule)

	out.Reset()
	require.NoError(t, runLint(&out, f.config, f.template, "text", []string{"LCF003"}))
}

func TestRunValidate(t *testing.T) {
	f := newFixture(t, serviceYAML)

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, f.config, "", "text"))
	assert.Contains(t, out.String(), "Settings OK: 1 function(s) log to my-logs")

	bad := newFixture(t, "custom:\n  serverless-logging-config:\n    systemLogLevel: TRACE\n")
	out.Reset()
	err := runValidate(&out, bad.config, "", "json")
	assert.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, out.String(), "systemLogLevel")

	assert.Error(t, runValidate(&out, f.config, "", "xml"))
}

func TestRunGraph(t *testing.T) {
	f := newFixture(t, serviceYAML)

	var out bytes.Buffer
	require.NoError(t, runGraph(&out, f.config, f.template, "dot", false, false))
	assert.Contains(t, out.String(), "digraph")
	assert.NotContains(t, out.String(), "my-logs")

	out.Reset()
	require.NoError(t, runGraph(&out, f.config, f.template, "dot", false, true))
	assert.Contains(t, out.String(), "my-logs")

	out.Reset()
	require.NoError(t, runGraph(&out, f.config, f.template, "mermaid", true, false))
	assert.NotContains(t, out.String(), "digraph")

	assert.Error(t, runGraph(&out, f.config, f.template, "png", false, false))
}

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd()

	assert.Equal(t, "watch", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	for _, name := range []string{"config", "template", "output", "format", "debounce"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s flag", name)
	}

	flag := cmd.Flags().Lookup("debounce")
	assert.Equal(t, (500 * time.Millisecond).String(), flag.DefValue)
}

func TestIsRelevantEvent(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "serverless.yml")
	watched, err := watchedFiles(cfg)
	require.NoError(t, err)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write to config", event: fsnotify.Event{Name: cfg, Op: fsnotify.Write}, want: true},
		{name: "create config", event: fsnotify.Event{Name: cfg, Op: fsnotify.Create}, want: true},
		{name: "chmod config", event: fsnotify.Event{Name: cfg, Op: fsnotify.Chmod}},
		{name: "other file", event: fsnotify.Event{Name: filepath.Join(dir, "out.json"), Op: fsnotify.Write}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevantEvent(tt.event, watched))
		})
	}

	assert.Equal(t, []string{dir}, watchedDirs(watched))
}

func TestRunWatchApply(t *testing.T) {
	f := newFixture(t, serviceYAML)
	out := filepath.Join(f.dir, "out.json")
	opts := watchOptions{configPath: f.config, templatePath: f.template, outputFile: out}

	// twice: every run starts from the files on disk
	runWatchApply(opts)
	runWatchApply(opts)

	tmpl, err := template.Load(out)
	require.NoError(t, err)
	stm := tmpl.Resources["IamRoleLambdaExecution"].Properties["Policies"].([]any)[0].(map[string]any)["PolicyDocument"].(map[string]any)["Statement"].([]any)[0].(map[string]any)
	assert.Len(t, stm["Resource"], 2)
}
