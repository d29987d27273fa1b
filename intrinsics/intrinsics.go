// Package intrinsics provides CloudFormation intrinsic functions.
//
// The core intrinsic types are re-exported from cloudformation-schema-go. Templates
// loaded from disk hold intrinsics in their long map form, so this package also
// converts between the two:
//
//	Sub{"arn:${AWS::Partition}:logs:..."} → {"Fn::Sub": "arn:${AWS::Partition}:logs:..."}
//	{"Fn::GetAtt": ["MyRole", "Arn"]}     → GetAtt{LogicalName: "MyRole", Attribute: "Arn"}
package intrinsics

import (
	"fmt"
	"strings"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub
)

// Json is a shorthand for map[string]any.
type Json = map[string]any

// Intrinsic function keys as they appear in long-form templates.
const (
	KeyRef    = "Ref"
	KeyGetAtt = "Fn::GetAtt"
	KeySub    = "Fn::Sub"
)

// LogGroupArn returns the Fn::Sub expression for every stream of the named log group.
//
//	LogGroupArn("my-logs") → arn:${AWS::Partition}:logs:${AWS::Region}:${AWS::AccountId}:log-group:my-logs:*
func LogGroupArn(logGroupName string) Sub {
	return Sub{String: fmt.Sprintf("arn:%s:logs:%s:%s:log-group:%s:*",
		Var(Partition), Var(Region), Var(AccountID), logGroupName)}
}

// SubValue converts a Sub into its template map form.
func SubValue(s Sub) Json {
	return Json{KeySub: s.String}
}

// ParseGetAtt extracts a GetAtt from a template value.
// Both the list form {"Fn::GetAtt": ["Role", "Arn"]} and the dotted string form
// {"Fn::GetAtt": "Role.Arn"} are accepted. The attribute may be omitted.
func ParseGetAtt(v any) (GetAtt, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return GetAtt{}, false
	}

	switch args := m[KeyGetAtt].(type) {
	case string:
		name, attr, _ := strings.Cut(args, ".")
		if name == "" {
			return GetAtt{}, false
		}
		return GetAtt{LogicalName: name, Attribute: attr}, true
	case []any:
		if len(args) == 0 {
			return GetAtt{}, false
		}
		name, ok := args[0].(string)
		if !ok || name == "" {
			return GetAtt{}, false
		}
		g := GetAtt{LogicalName: name}
		if len(args) > 1 {
			if attr, ok := args[1].(string); ok {
				g.Attribute = attr
			}
		}
		return g, true
	case []string:
		if len(args) == 0 || args[0] == "" {
			return GetAtt{}, false
		}
		g := GetAtt{LogicalName: args[0]}
		if len(args) > 1 {
			g.Attribute = args[1]
		}
		return g, true
	default:
		return GetAtt{}, false
	}
}
