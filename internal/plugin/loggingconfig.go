package plugin

import (
	loggingconfig "github.com/lex00/logging-config-go"
)

// SetLoggingConfig writes a LoggingConfig block to every Lambda function in the
// template, replacing any previous value, and makes sure DependsOn is a list.
func (p *Plugin) SetLoggingConfig(ctx *Context) {
	if p.settings == nil || ctx.Template == nil {
		return
	}

	tmpl := ctx.Template
	functions := tmpl.LogicalIDs(loggingconfig.KindFunction)
	for _, id := range functions {
		fn := tmpl.Resources[id]

		if fn.Properties == nil {
			fn.Properties = make(map[string]any)
		}
		fn.Properties["LoggingConfig"] = p.loggingConfig(usesDefaultLogGroup(tmpl, fn))

		// Some plugins expect DependsOn to be a list once the default log
		// group has been removed.
		if fn.DependsOn == nil {
			fn.DependsOn = []string{}
		}
	}

	p.log.WithField("functions", functions).Info("Added LoggingConfig to all the functions")
}

// loggingConfig builds the block, leaving out unset fields.
func (p *Plugin) loggingConfig(defaultLogGroup bool) map[string]any {
	cfg := map[string]any{
		"LogFormat": p.settings.LogFormat(),
	}
	if p.settings.ApplicationLogLevel != "" {
		cfg["ApplicationLogLevel"] = string(p.settings.ApplicationLogLevel)
	}
	if p.settings.SystemLogLevel != "" {
		cfg["SystemLogLevel"] = string(p.settings.SystemLogLevel)
	}
	if p.settings.HasLogGroup() && !defaultLogGroup {
		cfg["LogGroup"] = p.settings.LogGroupName
	}
	return cfg
}

// usesDefaultLogGroup reports whether the function still depends on a log group
// the framework created for it, i.e. it was excluded via useDefaultLogGroup.
func usesDefaultLogGroup(tmpl *loggingconfig.Template, fn *loggingconfig.Resource) bool {
	for _, dep := range fn.DependsOn {
		if tmpl.IsDefaultLogGroup(dep) {
			return true
		}
	}
	return false
}
