// Package lint checks a compiled CloudFormation template for logging setups
// that will not behave as configured.
//
// Rules:
//
//	LCF001: Function role must exist in the template
//	LCF002: Function keeps its default log group
//	LCF003: Deny statement covers logs actions
//	LCF004: Role grants no logs actions
package lint

import (
	"fmt"
	"sort"
	"strings"

	corelint "github.com/lex00/wetwire-core-go/lint"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/intrinsics"
)

// AllRules returns every rule in ID order.
func AllRules() []Rule {
	return []Rule{
		MissingRole{},
		DefaultLogGroup{},
		DenyLogsStatement{},
		NoLogsPermission{},
	}
}

func newIssue(in *Input, rule Rule, resource string, severity Severity, message, suggestion string) Issue {
	return Issue{
		Issue: corelint.Issue{
			Rule:       rule.ID(),
			Message:    message,
			Suggestion: suggestion,
			File:       in.File,
			Severity:   severity,
		},
		Resource: resource,
	}
}

// MissingRole reports functions whose Fn::GetAtt role is not in the template.
// The IAM step skips those with a warning, so the function never gets access
// to the shared log group.
type MissingRole struct{}

func (r MissingRole) ID() string { return "LCF001" }
func (r MissingRole) Description() string {
	return "Function role must exist in the template"
}

func (r MissingRole) Check(in *Input) []Issue {
	var issues []Issue
	for _, id := range in.Template.LogicalIDs(loggingconfig.KindFunction) {
		ref, ok := intrinsics.ParseGetAtt(in.Template.Resources[id].Properties["Role"])
		if !ok {
			continue
		}
		if _, exists := in.Template.Resource(ref.LogicalName); exists {
			continue
		}
		issues = append(issues, newIssue(in, r, id, SeverityError,
			fmt.Sprintf("%s: role %s not found", id, ref.LogicalName),
			"define "+ref.LogicalName+" or reference an existing role"))
	}
	return issues
}

// DefaultLogGroup reports functions that still depend on a framework log group
// while a shared log group is configured.
type DefaultLogGroup struct{}

func (r DefaultLogGroup) ID() string { return "LCF002" }
func (r DefaultLogGroup) Description() string {
	return "Function keeps its default log group"
}

func (r DefaultLogGroup) Check(in *Input) []Issue {
	if !in.Settings.HasLogGroup() {
		return nil
	}

	excluded := in.Settings.Excluded()
	var issues []Issue
	for _, id := range in.Template.LogicalIDs(loggingconfig.KindFunction) {
		for _, dep := range in.Template.Resources[id].DependsOn {
			if !in.Template.IsDefaultLogGroup(dep) {
				continue
			}
			// listed in useDefaultLogGroup on purpose
			if excluded[functionName(id)] {
				continue
			}
			issues = append(issues, newIssue(in, r, id, SeverityWarning,
				fmt.Sprintf("%s: depends on log group %s instead of %s", id, dep, in.Settings.LogGroupName),
				"add the function to useDefaultLogGroup or drop the dependency"))
		}
	}
	return issues
}

// DenyLogsStatement reports Deny statements that mention logs actions. They
// are left untouched and may override the permission the plugin grants.
type DenyLogsStatement struct{}

func (r DenyLogsStatement) ID() string { return "LCF003" }
func (r DenyLogsStatement) Description() string {
	return "Deny statement covers logs actions"
}

func (r DenyLogsStatement) Check(in *Input) []Issue {
	var issues []Issue
	for _, id := range in.Template.LogicalIDs(loggingconfig.KindRole) {
		for _, stm := range statements(in.Template.Resources[id]) {
			if stm["Effect"] != intrinsics.EffectDeny {
				continue
			}
			if !intrinsics.HasActionPrefix(intrinsics.Arrayify(stm["Action"]), intrinsics.LogsActionPrefix) {
				continue
			}
			issues = append(issues, newIssue(in, r, id, SeverityWarning,
				fmt.Sprintf("%s: Deny statement covers logs actions", id), ""))
		}
	}
	return issues
}

// NoLogsPermission reports roles used by functions that have no Allow
// statement with logs actions, so they gain nothing from the IAM step.
type NoLogsPermission struct{}

func (r NoLogsPermission) ID() string { return "LCF004" }
func (r NoLogsPermission) Description() string {
	return "Role grants no logs actions"
}

func (r NoLogsPermission) Check(in *Input) []Issue {
	var issues []Issue
	for _, id := range functionRoles(in.Template) {
		role, ok := in.Template.Resource(id)
		if !ok {
			continue
		}
		found := false
		for _, stm := range statements(role) {
			if stm["Effect"] == intrinsics.EffectAllow &&
				intrinsics.HasActionPrefix(intrinsics.Arrayify(stm["Action"]), intrinsics.LogsActionPrefix) {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, newIssue(in, r, id, SeverityInfo,
				fmt.Sprintf("%s: no Allow statement with logs actions", id),
				"grant logs:CreateLogStream and logs:PutLogEvents"))
		}
	}
	return issues
}

// statements returns the inline policy statements of a role.
func statements(role *loggingconfig.Resource) []map[string]any {
	policies, ok := role.Properties["Policies"].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, raw := range policies {
		policy, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		doc, ok := policy["PolicyDocument"].(map[string]any)
		if !ok {
			continue
		}
		for _, s := range intrinsics.Arrayify(doc["Statement"]) {
			if stm, ok := s.(map[string]any); ok {
				out = append(out, stm)
			}
		}
	}
	return out
}

// functionRoles returns the sorted IDs of roles referenced by functions.
func functionRoles(tmpl *loggingconfig.Template) []string {
	seen := make(map[string]bool)
	for _, id := range tmpl.LogicalIDs(loggingconfig.KindFunction) {
		if ref, ok := intrinsics.ParseGetAtt(tmpl.Resources[id].Properties["Role"]); ok {
			seen[ref.LogicalName] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// functionName recovers the service function name from the logical ID the
// framework generates ("HelloLambdaFunction" → "hello").
func functionName(logicalID string) string {
	name := strings.TrimSuffix(logicalID, "LambdaFunction")
	if name == "" {
		return logicalID
	}
	return strings.ToLower(name[:1]) + name[1:]
}
