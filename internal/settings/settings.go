// Package settings holds the custom.serverless-logging-config section of a service.
package settings

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Namespace is the key under "custom" that holds the settings.
const Namespace = "serverless-logging-config"

// ApplicationLogLevel is the Lambda LoggingConfig.ApplicationLogLevel value.
type ApplicationLogLevel string

// Application log levels accepted by AWS::Lambda::Function LoggingConfig.
const (
	ApplicationLogLevelDebug ApplicationLogLevel = "DEBUG"
	ApplicationLogLevelError ApplicationLogLevel = "ERROR"
	ApplicationLogLevelFatal ApplicationLogLevel = "FATAL"
	ApplicationLogLevelInfo  ApplicationLogLevel = "INFO"
	ApplicationLogLevelTrace ApplicationLogLevel = "TRACE"
	ApplicationLogLevelWarn  ApplicationLogLevel = "WARN"
)

// ApplicationLogLevels lists every valid ApplicationLogLevel.
var ApplicationLogLevels = []ApplicationLogLevel{
	ApplicationLogLevelDebug,
	ApplicationLogLevelError,
	ApplicationLogLevelFatal,
	ApplicationLogLevelInfo,
	ApplicationLogLevelTrace,
	ApplicationLogLevelWarn,
}

// Valid reports whether the level is one of ApplicationLogLevels.
func (l ApplicationLogLevel) Valid() bool {
	for _, v := range ApplicationLogLevels {
		if l == v {
			return true
		}
	}
	return false
}

// SystemLogLevel is the Lambda LoggingConfig.SystemLogLevel value.
type SystemLogLevel string

// System log levels accepted by AWS::Lambda::Function LoggingConfig.
const (
	SystemLogLevelDebug SystemLogLevel = "DEBUG"
	SystemLogLevelInfo  SystemLogLevel = "INFO"
	SystemLogLevelWarn  SystemLogLevel = "WARN"
)

// SystemLogLevels lists every valid SystemLogLevel.
var SystemLogLevels = []SystemLogLevel{
	SystemLogLevelDebug,
	SystemLogLevelInfo,
	SystemLogLevelWarn,
}

// Valid reports whether the level is one of SystemLogLevels.
func (l SystemLogLevel) Valid() bool {
	for _, v := range SystemLogLevels {
		if l == v {
			return true
		}
	}
	return false
}

// Settings configures the logging transformations.
type Settings struct {
	// EnableJSON sets LogFormat to JSON instead of Text
	EnableJSON bool `yaml:"enableJson,omitempty" json:"enableJson,omitempty"`
	// LogGroupName is the shared log group every function writes to.
	// When empty, the log-group related steps do nothing.
	LogGroupName string `yaml:"logGroupName,omitempty" json:"logGroupName,omitempty"`
	// ApplicationLogLevel is optional
	ApplicationLogLevel ApplicationLogLevel `yaml:"applicationLogLevel,omitempty" json:"applicationLogLevel,omitempty"`
	// SystemLogLevel is optional
	SystemLogLevel SystemLogLevel `yaml:"systemLogLevel,omitempty" json:"systemLogLevel,omitempty"`
	// UseDefaultLogGroup lists functions that keep their own log group
	UseDefaultLogGroup []string `yaml:"useDefaultLogGroup,omitempty" json:"useDefaultLogGroup,omitempty"`
}

// HasLogGroup reports whether a shared log group is configured.
// It is safe to call on a nil Settings.
func (s *Settings) HasLogGroup() bool {
	return s != nil && s.LogGroupName != ""
}

// Excluded returns the set of function names listed in UseDefaultLogGroup.
func (s *Settings) Excluded() map[string]bool {
	excluded := make(map[string]bool)
	if s == nil {
		return excluded
	}
	for _, name := range s.UseDefaultLogGroup {
		excluded[name] = true
	}
	return excluded
}

// LogFormat returns "JSON" when EnableJSON is set, "Text" otherwise.
func (s *Settings) LogFormat() string {
	if s != nil && s.EnableJSON {
		return "JSON"
	}
	return "Text"
}

// Decode reads Settings from the YAML node of the namespace.
// A nil node means the namespace is absent and returns (nil, nil).
func Decode(node *yaml.Node) (*Settings, error) {
	if node == nil {
		return nil, nil
	}
	// "serverless-logging-config:" with no body
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigError{
			Field:  Namespace,
			Reason: fmt.Sprintf("custom.%s must be a map (line %d)", Namespace, node.Line),
		}
	}

	var s Settings
	if err := node.Decode(&s); err != nil {
		return nil, &ConfigError{
			Field:  Namespace,
			Reason: fmt.Sprintf("invalid custom.%s: %v", Namespace, err),
		}
	}
	return &s, nil
}

// Validate checks the settings. A nil Settings means the namespace is missing.
//
// A missing logGroupName is accepted: the steps that need it do nothing.
func Validate(s *Settings) error {
	if s == nil {
		return &ConfigError{
			Field:  Namespace,
			Reason: "No custom settings found.",
			Hint:   missingSectionHint,
		}
	}

	if s.ApplicationLogLevel != "" && !s.ApplicationLogLevel.Valid() {
		allowed := make([]string, len(ApplicationLogLevels))
		for i, l := range ApplicationLogLevels {
			allowed[i] = string(l)
		}
		return invalidLevel("applicationLogLevel", string(s.ApplicationLogLevel), allowed)
	}

	if s.SystemLogLevel != "" && !s.SystemLogLevel.Valid() {
		allowed := make([]string, len(SystemLogLevels))
		for i, l := range SystemLogLevels {
			allowed[i] = string(l)
		}
		return invalidLevel("systemLogLevel", string(s.SystemLogLevel), allowed)
	}

	return nil
}

func invalidLevel(field, value string, allowed []string) error {
	sort.Strings(allowed)
	return &ConfigError{
		Field:   field,
		Reason:  fmt.Sprintf("%q is not a valid %s.", value, field),
		Allowed: allowed,
		Hint:    exampleConfig,
	}
}
