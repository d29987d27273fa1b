// Package pipeline loads a service definition and its compiled template from
// disk and runs the plugin lifecycle on them. It is shared by the CLI commands
// and the MCP server.
package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/plugin"
	"github.com/lex00/logging-config-go/internal/service"
	"github.com/lex00/logging-config-go/internal/settings"
	"github.com/lex00/logging-config-go/internal/template"
)

// Options selects the inputs.
type Options struct {
	// ConfigPath is the serverless.yml holding the settings
	ConfigPath string
	// TemplatePath is the compiled CloudFormation template
	TemplatePath string
	// Logger receives plugin diagnostics. Defaults to the standard logger.
	Logger logrus.FieldLogger
}

// Inputs are the loaded service, template and plugin.
type Inputs struct {
	Service  *service.Service
	Template *loggingconfig.Template
	Plugin   *plugin.Plugin
}

// Context returns the plugin context over the loaded inputs.
func (in *Inputs) Context() *plugin.Context {
	return &plugin.Context{Service: in.Service, Template: in.Template}
}

// Settings returns the plugin settings, which may be nil.
func (in *Inputs) Settings() *settings.Settings {
	return in.Plugin.Settings()
}

// Load reads the service definition and, when TemplatePath is set, the template.
func Load(opts Options) (*Inputs, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config path is required")
	}

	svc, err := service.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", opts.ConfigPath, err)
	}

	var pluginOpts []plugin.Option
	if opts.Logger != nil {
		pluginOpts = append(pluginOpts, plugin.WithLogger(opts.Logger))
	}
	p, err := plugin.FromService(svc, pluginOpts...)
	if err != nil {
		return nil, err
	}

	in := &Inputs{Service: svc, Plugin: p}

	if opts.TemplatePath != "" {
		tmpl, err := template.Load(opts.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", opts.TemplatePath, err)
		}
		in.Template = tmpl
	}

	return in, nil
}

// Apply runs the full lifecycle on the inputs. The template is modified in
// place; the returned result lists what was touched.
func Apply(in *Inputs) (*loggingconfig.ApplyResult, error) {
	result := &loggingconfig.ApplyResult{}

	if err := in.Plugin.Lifecycle().Run(in.Context()); err != nil {
		result.Errors = []string{err.Error()}
		return result, err
	}

	result.Success = true
	if s := in.Settings(); s != nil {
		result.LogGroupName = s.LogGroupName
	}
	if in.Template != nil {
		result.Functions = in.Template.LogicalIDs(loggingconfig.KindFunction)
	}
	for _, name := range in.Service.FunctionNames() {
		if in.Service.Functions[name].DisableLogs {
			result.Disabled = append(result.Disabled, name)
		}
	}
	return result, nil
}

// Validate checks the settings and counts the functions they would apply to.
func Validate(in *Inputs) *loggingconfig.ValidateResult {
	result := &loggingconfig.ValidateResult{
		Functions: len(in.Service.Functions),
	}

	if err := in.Plugin.Init(); err != nil {
		result.Errors = []string{err.Error()}
		return result
	}

	s := in.Settings()
	result.Success = true
	result.LogGroupName = s.LogGroupName
	if !s.HasLogGroup() {
		result.Warnings = append(result.Warnings,
			"logGroupName is not set: functions keep their own log groups")
	}
	for _, name := range s.UseDefaultLogGroup {
		if _, ok := in.Service.Functions[name]; !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("useDefaultLogGroup: function %q is not defined", name))
		}
	}
	return result
}
