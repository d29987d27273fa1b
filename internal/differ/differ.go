// Package differ provides semantic comparison of CloudFormation templates.
//
// It is used to show what the logging transformations changed: the compiled
// template before and after the plugin ran.
package differ

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/template"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates.
type Result struct {
	Diff    loggingconfig.TemplateDiff
	Summary loggingconfig.DiffSummary
}

// Compare compares two CloudFormation templates and returns differences.
func Compare(template1, template2 *loggingconfig.Template, opts Options) (*Result, error) {
	if template1 == nil || template2 == nil {
		return nil, fmt.Errorf("cannot compare nil template")
	}

	result := &Result{}

	res1 := template1.Resources
	res2 := template2.Resources

	// Find added resources (in template2 but not in template1)
	for name, def := range res2 {
		if _, exists := res1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, loggingconfig.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	// Find removed resources (in template1 but not in template2)
	for name, def := range res1 {
		if _, exists := res2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, loggingconfig.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	// Find modified resources
	for name, def1 := range res1 {
		if def2, exists := res2[name]; exists {
			changes := compareResources(def1, def2, opts)
			if len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, loggingconfig.DiffEntry{
					Resource: name,
					Type:     def1.Type,
					Changes:  changes,
				})
			}
		}
	}

	// Sort entries for consistent output
	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = loggingconfig.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := template.Load(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := template.Load(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 *loggingconfig.Resource, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	// An absent DependsOn and an empty list serialize differently.
	if (def1.DependsOn == nil) != (def2.DependsOn == nil) || !equalStrings(def1.DependsOn, def2.DependsOn, opts) {
		changes = append(changes, "DependsOn changed")
	}

	if !deepEqual(def1.Attributes, def2.Attributes, opts) {
		changes = append(changes, "Attributes changed")
	}

	return changes
}

// compareProperties recursively compares property maps. Nested maps are
// reported by dotted path, e.g. "LoggingConfig.LogGroup added".
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		val1, exists := props1[key]
		if !exists {
			changes = append(changes, fmt.Sprintf("%s added", path))
			continue
		}

		m1, ok1 := val1.(map[string]any)
		m2, ok2 := val2.(map[string]any)
		if ok1 && ok2 {
			changes = append(changes, compareProperties(path, m1, m2, opts)...)
			continue
		}

		if !deepEqual(val1, val2, opts) {
			changes = append(changes, fmt.Sprintf("%s modified", path))
		}
	}

	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

// deepEqual compares two values deeply, optionally ignoring order.
func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts every list by the JSON encoding of its elements.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item)
		}
		sort.SliceStable(result, func(i, j int) bool {
			return sortKey(result[i]) < sortKey(result[j])
		})
		return result
	case []string:
		result := make([]string, len(val))
		copy(result, val)
		sort.Strings(result)
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = normalizeValue(v)
		}
		return result
	default:
		return v
	}
}

func sortKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// equalStrings compares two string slices, optionally ignoring order.
func equalStrings(a, b []string, opts Options) bool {
	if len(a) != len(b) {
		return false
	}
	if opts.IgnoreOrder {
		a = normalizeValue(a).([]string)
		b = normalizeValue(b).([]string)
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortEntries sorts diff entries by resource name.
func sortEntries(entries []loggingconfig.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
