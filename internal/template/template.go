// Package template loads and writes compiled CloudFormation templates.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	loggingconfig "github.com/lex00/logging-config-go"
)

// Format is a template serialization format.
type Format string

const (
	// FormatJSON is indented CloudFormation JSON.
	FormatJSON Format = "json"
	// FormatYAML is long-form CloudFormation YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a CLI format string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format: %s (use 'json' or 'yaml')", s)
	}
}

// FormatForPath guesses the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a CloudFormation template from a file.
func Load(path string) (*loggingconfig.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tmpl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return tmpl, nil
}

// Parse reads a CloudFormation template from JSON or YAML content.
// YAML short-form intrinsics (!Ref, !Sub, !GetAtt, ...) are expanded to long form.
func Parse(data []byte) (*loggingconfig.Template, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty template")
	}

	if trimmed[0] == '{' {
		var tmpl loggingconfig.Template
		if err := json.Unmarshal(trimmed, &tmpl); err != nil {
			return nil, fmt.Errorf("failed to parse as JSON: %w", err)
		}
		return &tmpl, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse as YAML: %w", err)
	}
	val, err := nodeToValue(&doc)
	if err != nil {
		return nil, err
	}
	m, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template must be a map, got %T", val)
	}
	return loggingconfig.TemplateFromMap(m)
}

// ToJSON serializes the template to indented JSON.
func ToJSON(t *loggingconfig.Template) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.ToMap()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToYAML serializes the template to long-form YAML.
func ToYAML(t *loggingconfig.Template) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t.ToMap()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal serializes the template in the given format.
func Marshal(t *loggingconfig.Template, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(t)
	case FormatYAML:
		return ToYAML(t)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// Clone returns a deep copy of the template.
func Clone(t *loggingconfig.Template) (*loggingconfig.Template, error) {
	data, err := json.Marshal(t.ToMap())
	if err != nil {
		return nil, err
	}
	var out loggingconfig.Template
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
