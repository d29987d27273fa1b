package template

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// shortTags maps CloudFormation YAML short-form tags to their long-form keys.
var shortTags = map[string]string{
	"!Ref":         "Ref",
	"!Condition":   "Condition",
	"!Base64":      "Fn::Base64",
	"!Cidr":        "Fn::Cidr",
	"!FindInMap":   "Fn::FindInMap",
	"!GetAtt":      "Fn::GetAtt",
	"!GetAZs":      "Fn::GetAZs",
	"!ImportValue": "Fn::ImportValue",
	"!Join":        "Fn::Join",
	"!Select":      "Fn::Select",
	"!Split":       "Fn::Split",
	"!Sub":         "Fn::Sub",
	"!Transform":   "Fn::Transform",
	"!And":         "Fn::And",
	"!Equals":      "Fn::Equals",
	"!If":          "Fn::If",
	"!Not":         "Fn::Not",
	"!Or":          "Fn::Or",
}

// nodeToValue converts a YAML node into plain Go values, expanding short-form tags.
func nodeToValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeToValue(n.Content[0])
	case yaml.AliasNode:
		return nodeToValue(n.Alias)
	}

	if key, ok := shortTags[n.Tag]; ok {
		return expandShortTag(n, key)
	}
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		return nil, fmt.Errorf("line %d: unsupported tag %s", n.Line, n.Tag)
	}

	switch n.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := nodeToValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node", n.Line)
	}
}

// expandShortTag converts a tagged node such as `!GetAtt Role.Arn` into
// {"Fn::GetAtt": ["Role", "Arn"]}.
func expandShortTag(n *yaml.Node, key string) (any, error) {
	if n.Kind == yaml.ScalarNode {
		if key == "Fn::GetAtt" {
			name, attr, found := strings.Cut(n.Value, ".")
			if !found {
				return map[string]any{key: []any{name}}, nil
			}
			return map[string]any{key: []any{name, attr}}, nil
		}
		return map[string]any{key: n.Value}, nil
	}

	untagged := *n
	untagged.Tag = ""
	val, err := nodeToValue(&untagged)
	if err != nil {
		return nil, err
	}
	return map[string]any{key: val}, nil
}
