// Package loggingconfig provides the CloudFormation template model shared by the
// logging-config transformations.
//
// A compiled template is held as a mutable graph of resources:
//
//	tmpl.Resources["HelloLambdaFunction"].Properties["LoggingConfig"] = map[string]any{
//	    "LogFormat": "JSON",
//	    "LogGroup":  "my-logs",
//	}
//
// Sections other than Resources are carried through untouched.
package loggingconfig

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CloudFormation resource types the transformations care about.
const (
	TypeFunction = "AWS::Lambda::Function"
	TypeRole     = "AWS::IAM::Role"
	TypeLogGroup = "AWS::Logs::LogGroup"
)

// Kind classifies a resource by its CloudFormation type.
type Kind int

const (
	// KindOther is any resource the transformations do not touch.
	KindOther Kind = iota
	// KindFunction is an AWS::Lambda::Function.
	KindFunction
	// KindRole is an AWS::IAM::Role.
	KindRole
	// KindLogGroup is an AWS::Logs::LogGroup.
	KindLogGroup
)

// KindOf returns the Kind for a CloudFormation resource type.
func KindOf(resourceType string) Kind {
	switch resourceType {
	case TypeFunction:
		return KindFunction
	case TypeRole:
		return KindRole
	case TypeLogGroup:
		return KindLogGroup
	default:
		return KindOther
	}
}

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindRole:
		return "role"
	case KindLogGroup:
		return "log-group"
	default:
		return "other"
	}
}

// Resource is a single resource in a CloudFormation template.
type Resource struct {
	// Type is the CloudFormation type (e.g., "AWS::Lambda::Function")
	Type string
	// Properties is the free-form property map
	Properties map[string]any
	// DependsOn lists logical IDs this resource depends on.
	// nil means the attribute is absent; an empty slice serializes as [].
	DependsOn []string
	// Attributes holds the remaining resource attributes (Condition, DeletionPolicy, Metadata, ...)
	Attributes map[string]any
}

// Kind returns the resource kind derived from Type.
func (r *Resource) Kind() Kind {
	return KindOf(r.Type)
}

// ToMap converts the resource back to its template representation.
func (r *Resource) ToMap() map[string]any {
	m := make(map[string]any, len(r.Attributes)+3)
	for k, v := range r.Attributes {
		m[k] = v
	}
	m["Type"] = r.Type
	if r.Properties != nil {
		m["Properties"] = r.Properties
	}
	if r.DependsOn != nil {
		deps := make([]any, len(r.DependsOn))
		for i, d := range r.DependsOn {
			deps[i] = d
		}
		m["DependsOn"] = deps
	}
	return m
}

// ResourceFromMap builds a Resource from its template representation.
func ResourceFromMap(m map[string]any) (*Resource, error) {
	r := &Resource{}
	for key, val := range m {
		switch key {
		case "Type":
			s, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("Type must be a string, got %T", val)
			}
			r.Type = s
		case "Properties":
			if val == nil {
				continue
			}
			props, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("Properties must be a map, got %T", val)
			}
			r.Properties = props
		case "DependsOn":
			deps, err := dependsOnFromValue(val)
			if err != nil {
				return nil, err
			}
			r.DependsOn = deps
		default:
			if r.Attributes == nil {
				r.Attributes = make(map[string]any)
			}
			r.Attributes[key] = val
		}
	}
	return r, nil
}

// dependsOnFromValue accepts the string and list forms of DependsOn.
func dependsOnFromValue(val any) ([]string, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		deps := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("DependsOn entries must be strings, got %T", item)
			}
			deps = append(deps, s)
		}
		return deps, nil
	default:
		return nil, fmt.Errorf("DependsOn must be a string or list, got %T", val)
	}
}

// Template represents a CloudFormation template.
type Template struct {
	// Resources maps logical IDs to resources
	Resources map[string]*Resource
	// Sections holds every top-level key except Resources
	Sections map[string]any
}

// NewTemplate creates an empty template.
func NewTemplate() *Template {
	return &Template{
		Resources: make(map[string]*Resource),
		Sections:  make(map[string]any),
	}
}

// Resource returns the resource with the given logical ID.
func (t *Template) Resource(logicalID string) (*Resource, bool) {
	r, ok := t.Resources[logicalID]
	return r, ok && r != nil
}

// defaultLogGroupSuffix ends the logical IDs of the log groups the framework
// creates per function (e.g. "HelloLogGroup").
const defaultLogGroupSuffix = "LogGroup"

// IsDefaultLogGroup reports whether logicalID names a per-function log group
// created by the framework. The suffix match follows the framework's naming;
// the resource must also be an AWS::Logs::LogGroup.
func (t *Template) IsDefaultLogGroup(logicalID string) bool {
	if !strings.HasSuffix(logicalID, defaultLogGroupSuffix) {
		return false
	}
	r, ok := t.Resource(logicalID)
	return ok && r.Kind() == KindLogGroup
}

// LogicalIDs returns the sorted logical IDs of all resources of the given kind.
func (t *Template) LogicalIDs(kind Kind) []string {
	var ids []string
	for id, r := range t.Resources {
		if r != nil && r.Kind() == kind {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ToMap converts the template to a generic map suitable for serialization.
func (t *Template) ToMap() map[string]any {
	m := make(map[string]any, len(t.Sections)+1)
	for k, v := range t.Sections {
		m[k] = v
	}
	resources := make(map[string]any, len(t.Resources))
	for id, r := range t.Resources {
		if r != nil {
			resources[id] = r.ToMap()
		}
	}
	m["Resources"] = resources
	return m
}

// TemplateFromMap builds a Template from a generic map.
func TemplateFromMap(m map[string]any) (*Template, error) {
	t := NewTemplate()
	for key, val := range m {
		if key != "Resources" {
			t.Sections[key] = val
			continue
		}
		if val == nil {
			continue
		}
		resources, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("Resources must be a map, got %T", val)
		}
		for id, raw := range resources {
			rm, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("resource %s: must be a map, got %T", id, raw)
			}
			r, err := ResourceFromMap(rm)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", id, err)
			}
			t.Resources[id] = r
		}
	}
	return t, nil
}

// MarshalJSON serializes the template in CloudFormation form.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// UnmarshalJSON parses a CloudFormation JSON template.
func (t *Template) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := TemplateFromMap(m)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// MarshalYAML serializes the template in long-form CloudFormation YAML.
func (t *Template) MarshalYAML() (any, error) {
	return t.ToMap(), nil
}

// ApplyResult is the JSON output from `logging-config apply --report json`.
type ApplyResult struct {
	Success      bool     `json:"success"`
	LogGroupName string   `json:"log_group_name,omitempty"`
	Functions    []string `json:"functions,omitempty"`
	Disabled     []string `json:"disabled,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `logging-config validate`.
type ValidateResult struct {
	Success      bool     `json:"success"`
	LogGroupName string   `json:"log_group_name,omitempty"`
	Functions    int      `json:"functions"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// LintResult is the JSON output from `logging-config lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	Resource string `json:"resource,omitempty"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
}

// DiffEntry describes one changed resource.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// TemplateDiff groups resource changes between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffSummary counts resource changes.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}

// DiffResult is the JSON output from `logging-config diff`.
type DiffResult struct {
	Success bool         `json:"success"`
	Diff    TemplateDiff `json:"diff"`
	Summary DiffSummary  `json:"summary"`
}
