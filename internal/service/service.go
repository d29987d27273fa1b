// Package service reads and writes Serverless-style service definitions.
//
// Only the parts the logging transformations need are modelled: the function
// declarations and the "custom" section. Every other key of the document is kept
// in the underlying YAML tree so Marshal writes it back unchanged.
package service

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Function is a single function declaration.
type Function struct {
	// Name is the key under "functions"
	Name string
	// DisableLogs suppresses the framework's auto-created log group
	DisableLogs bool
}

// Service is a parsed service definition.
type Service struct {
	// Name is the "service" key
	Name string
	// Functions maps function names to declarations
	Functions map[string]*Function

	doc *yaml.Node
}

// New creates a service with the named, empty function declarations.
func New(name string, functions ...string) *Service {
	s := &Service{
		Name:      name,
		Functions: make(map[string]*Function, len(functions)),
	}
	for _, fn := range functions {
		s.Functions[fn] = &Function{Name: fn}
	}
	return s
}

// Load reads a service definition from a file.
func Load(path string) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	svc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return svc, nil
}

// Parse reads a service definition from YAML (or JSON) content.
func Parse(data []byte) (*Service, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	s := &Service{
		Functions: make(map[string]*Function),
		doc:       &doc,
	}

	root := s.root()
	if root == nil {
		return s, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("service definition must be a map (line %d)", root.Line)
	}

	if name := mappingValue(root, "service"); name != nil {
		s.Name = serviceName(name)
	}

	fns := mappingValue(root, "functions")
	if fns == nil || isNull(fns) {
		return s, nil
	}
	if fns.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("functions must be a map (line %d)", fns.Line)
	}

	for i := 0; i+1 < len(fns.Content); i += 2 {
		key, val := fns.Content[i], fns.Content[i+1]
		fn := &Function{Name: key.Value}
		if val.Kind == yaml.MappingNode {
			if flag := mappingValue(val, "disableLogs"); flag != nil {
				fn.DisableLogs, _ = strconv.ParseBool(flag.Value)
			}
		}
		s.Functions[key.Value] = fn
	}

	return s, nil
}

// FunctionNames returns the sorted function names.
func (s *Service) FunctionNames() []string {
	names := make([]string, 0, len(s.Functions))
	for name := range s.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Custom returns the YAML node at custom.<key>, or nil when absent.
func (s *Service) Custom(key string) *yaml.Node {
	root := s.root()
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	custom := mappingValue(root, "custom")
	if custom == nil || custom.Kind != yaml.MappingNode {
		return nil
	}
	return mappingValue(custom, key)
}

// Marshal writes the service definition back to YAML, including any
// DisableLogs flags set since it was loaded.
func (s *Service) Marshal() ([]byte, error) {
	if s.doc == nil || s.doc.Kind != yaml.DocumentNode {
		s.doc = &yaml.Node{Kind: yaml.DocumentNode}
	}
	if len(s.doc.Content) == 0 || isNull(s.doc.Content[0]) {
		s.doc.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	root := s.doc.Content[0]

	if s.Name != "" && mappingValue(root, "service") == nil {
		setKey(root, "service", scalar("!!str", s.Name))
	}

	fns := mappingValue(root, "functions")
	if fns == nil || isNull(fns) {
		fns = &yaml.Node{Kind: yaml.MappingNode}
		setKey(root, "functions", fns)
	}

	for _, name := range s.FunctionNames() {
		node := mappingValue(fns, name)
		if node == nil {
			node = &yaml.Node{Kind: yaml.MappingNode}
			setKey(fns, name, node)
		}
		if !s.Functions[name].DisableLogs {
			continue
		}
		if isNull(node) {
			node = &yaml.Node{Kind: yaml.MappingNode}
			setKey(fns, name, node)
		}
		if node.Kind == yaml.MappingNode {
			setKey(node, "disableLogs", scalar("!!bool", "true"))
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s.doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the service definition to a file.
func (s *Service) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Service) root() *yaml.Node {
	if s.doc == nil || len(s.doc.Content) == 0 {
		return nil
	}
	return s.doc.Content[0]
}

// serviceName accepts both "service: name" and the older "service: {name: ...}".
func serviceName(n *yaml.Node) string {
	if n.Kind == yaml.MappingNode {
		if name := mappingValue(n, "name"); name != nil {
			return name.Value
		}
		return ""
	}
	return n.Value
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setKey(m *yaml.Node, key string, val *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = val
			return
		}
	}
	m.Content = append(m.Content, scalar("!!str", key), val)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
