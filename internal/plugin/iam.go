package plugin

import (
	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/intrinsics"
)

// DefaultRoleID is the shared execution role the framework creates.
const DefaultRoleID = "IamRoleLambdaExecution"

// AddIamPermissions grants every function role access to the shared log group.
//
// For each Allow statement of the default role and of every role referenced by a
// function, Action and Resource are normalized to lists; if any action is a
// "logs:" action, the log group ARN is appended to Resource. Deny statements are
// left alone. Calling it twice on the same template appends the ARN twice.
func (p *Plugin) AddIamPermissions(ctx *Context) {
	if !p.settings.HasLogGroup() || ctx.Template == nil {
		return
	}

	tmpl := ctx.Template
	arn := intrinsics.LogGroupArn(p.settings.LogGroupName)
	visited := make(map[string]bool)

	updateRole := func(roleID string) {
		if visited[roleID] {
			return
		}
		visited[roleID] = true

		role, ok := tmpl.Resource(roleID)
		if !ok {
			p.log.WithField("role", roleID).Warn("Role not found")
			return
		}
		p.updateRole(roleID, role, arn)
	}

	updateRole(DefaultRoleID)

	for _, id := range tmpl.LogicalIDs(loggingconfig.KindFunction) {
		fn := tmpl.Resources[id]
		ref, ok := intrinsics.ParseGetAtt(fn.Properties["Role"])
		if !ok {
			p.log.WithField("function", id).Warn("Role is not a Fn::GetAtt reference, skipping")
			continue
		}
		updateRole(ref.LogicalName)
	}

	p.log.WithField("roles", len(visited)).Info("Added permissions to all the functions")
}

func (p *Plugin) updateRole(roleID string, role *loggingconfig.Resource, arn intrinsics.Sub) {
	policies, ok := role.Properties["Policies"].([]any)
	if !ok {
		p.log.WithField("role", roleID).Debug("Role has no inline policies")
		return
	}

	appended := 0
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
			stm, ok := s.(map[string]any)
			if !ok {
				continue
			}
			if augmentStatement(stm, arn) {
				appended++
			}
		}
	}

	p.log.WithField("role", roleID).WithField("statements", appended).Debug("Updated role")
}

// augmentStatement normalizes an Allow statement and appends the log group ARN
// when it grants a logs action. Absent Action or Resource keys stay absent.
func augmentStatement(stm map[string]any, arn intrinsics.Sub) bool {
	if stm["Effect"] != intrinsics.EffectAllow {
		return false
	}

	var actions []any
	if a, ok := stm["Action"]; ok {
		actions = intrinsics.Arrayify(a)
		stm["Action"] = actions
	}

	raw, ok := stm["Resource"]
	if !ok {
		return false
	}
	resources := intrinsics.Arrayify(raw)
	stm["Resource"] = resources

	if !intrinsics.HasActionPrefix(actions, intrinsics.LogsActionPrefix) {
		return false
	}

	stm["Resource"] = append(resources, intrinsics.SubValue(arn))
	return true
}
