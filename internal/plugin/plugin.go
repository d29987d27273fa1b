// Package plugin applies the shared log group configuration to a service and its
// compiled CloudFormation template.
//
// The work is split into four steps that the Lifecycle runs in order:
//
//	initialize                   → Init
//	before:package:initialize    → DisableFunctionLogs
//	after:package:compileEvents  → SetLoggingConfig
//	before:package:finalize      → AddIamPermissions
//
// Every step mutates the Context in place.
package plugin

import (
	"github.com/sirupsen/logrus"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/service"
	"github.com/lex00/logging-config-go/internal/settings"
)

// Context is the mutable state the steps operate on.
// Either field may be nil; steps that need it are skipped.
type Context struct {
	Service  *service.Service
	Template *loggingconfig.Template
}

// Plugin holds validated settings and a diagnostics logger.
type Plugin struct {
	settings *settings.Settings
	log      logrus.FieldLogger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the diagnostics logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Plugin) {
		p.log = l
	}
}

// New creates a Plugin. A nil settings means the namespace is missing; Init
// reports it.
func New(s *settings.Settings, opts ...Option) *Plugin {
	p := &Plugin{
		settings: s,
		log:      logrus.StandardLogger().WithField("plugin", settings.Namespace),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromService reads the settings from custom.serverless-logging-config.
func FromService(svc *service.Service, opts ...Option) (*Plugin, error) {
	s, err := settings.Decode(svc.Custom(settings.Namespace))
	if err != nil {
		return nil, err
	}
	return New(s, opts...), nil
}

// Settings returns the plugin settings, which may be nil.
func (p *Plugin) Settings() *settings.Settings {
	return p.settings
}

// Init validates the settings.
func (p *Plugin) Init() error {
	return settings.Validate(p.settings)
}
