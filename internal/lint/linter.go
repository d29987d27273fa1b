package lint

import (
	"fmt"

	corelint "github.com/lex00/wetwire-core-go/lint"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/internal/settings"
	"github.com/lex00/logging-config-go/internal/template"
)

// Severity is an alias for corelint.Severity.
type Severity = corelint.Severity

// Severity constants.
const (
	SeverityError   = corelint.SeverityError
	SeverityWarning = corelint.SeverityWarning
	SeverityInfo    = corelint.SeverityInfo
)

// Issue is a core lint issue tied to a template resource.
type Issue struct {
	corelint.Issue
	// Resource is the logical ID the issue is about.
	Resource string
}

// Rule checks a template.
type Rule interface {
	ID() string
	Description() string
	Check(in *Input) []Issue
}

// Input is what rules look at.
type Input struct {
	// Template is the compiled template.
	Template *loggingconfig.Template
	// Settings may be nil when the namespace is missing.
	Settings *settings.Settings
	// File is the template path, used in issue locations.
	File string
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
}

// Check runs every rule against the template.
func Check(tmpl *loggingconfig.Template, s *settings.Settings) Result {
	return Lint(&Input{Template: tmpl, Settings: s}, Options{})
}

// Lint runs the enabled rules. Only errors make the result unsuccessful.
func Lint(in *Input, opts Options) Result {
	var issues []Issue
	if in.Template != nil {
		for _, rule := range getRules(opts) {
			issues = append(issues, rule.Check(in)...)
		}
	}

	success := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			success = false
		}
	}

	return Result{
		Success: success,
		Issues:  issues,
	}
}

// LintFile loads a template from disk and lints it.
func LintFile(path string, s *settings.Settings, opts Options) (Result, error) {
	tmpl, err := template.Load(path)
	if err != nil {
		return Result{}, err
	}
	return Lint(&Input{Template: tmpl, Settings: s, File: path}, opts), nil
}

// ToLintResult converts issues into the CLI result record.
func ToLintResult(r Result) loggingconfig.LintResult {
	out := loggingconfig.LintResult{Success: r.Success}
	for _, issue := range r.Issues {
		out.Issues = append(out.Issues, loggingconfig.LintIssue{
			Resource: issue.Resource,
			Severity: fmt.Sprint(issue.Severity),
			Message:  issue.Message,
			Rule:     issue.Rule,
		})
	}
	return out
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if len(opts.EnabledRules) == 0 {
		return all
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if enabled[r.ID()] {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
