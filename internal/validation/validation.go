// Package validation checks a transformed template.
//
// Two checks run:
//   - logging lint: the LCF rules in internal/lint
//   - cfn-lint-go: CloudFormation template validation (library dependency)
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	loggingconfig "github.com/lex00/logging-config-go"
	lclint "github.com/lex00/logging-config-go/internal/lint"
	"github.com/lex00/logging-config-go/internal/settings"
	"github.com/lex00/logging-config-go/internal/template"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// ValidationResult contains all validation results for a template.
type ValidationResult struct {
	LintResult    *loggingconfig.LintResult `json:"lint_result"`
	CfnLintResult *CfnLintResult            `json:"cfn_lint_result"`
}

// Passed reports whether neither check found an error.
func (r *ValidationResult) Passed() bool {
	if r.LintResult != nil && !r.LintResult.Success {
		return false
	}
	if r.CfnLintResult != nil && !r.CfnLintResult.Passed {
		return false
	}
	return true
}

// RunCfnLint runs cfn-lint-go on the given template file.
// This uses cfn-lint-go as a library dependency for guaranteed version control.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	if len(matches) == 0 {
		result.Passed = true
		return result, nil
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Passed if no errors (warnings are acceptable)
	result.Passed = len(result.Errors) == 0

	return result, nil
}

// RunCfnLintTemplate writes the template to a temporary file and runs
// cfn-lint-go on it.
func RunCfnLintTemplate(tmpl *loggingconfig.Template) (*CfnLintResult, error) {
	data, err := template.ToJSON(tmpl)
	if err != nil {
		return nil, fmt.Errorf("serializing template: %w", err)
	}

	dir, err := os.MkdirTemp("", "logging-config-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}
	return RunCfnLint(path)
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// ValidateTemplate runs the logging lint and cfn-lint-go on a template file.
func ValidateTemplate(templatePath string, s *settings.Settings) (*ValidationResult, error) {
	lintResult, err := lclint.LintFile(templatePath, s, lclint.Options{})
	if err != nil {
		return nil, fmt.Errorf("running lint: %w", err)
	}
	converted := lclint.ToLintResult(lintResult)

	cfnResult, err := RunCfnLint(templatePath)
	if err != nil {
		return nil, fmt.Errorf("running cfn-lint: %w", err)
	}

	return &ValidationResult{
		LintResult:    &converted,
		CfnLintResult: cfnResult,
	}, nil
}
