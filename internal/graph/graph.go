// Package graph generates DOT and Mermaid graphs showing where each function
// in a template sends its logs and which role grants it access.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	loggingconfig "github.com/lex00/logging-config-go"
	"github.com/lex00/logging-config-go/intrinsics"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// sharedNodeID is the node standing for the LoggingConfig.LogGroup target. It
// is not a template resource: the group is expected to exist already.
const sharedNodeID = "SharedLogGroup"

// Generator creates logging graphs from templates.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service.
	ClusterByType bool
}

// Generate creates the graph and writes it to w.
func (g *Generator) Generate(tmpl *loggingconfig.Template, w io.Writer) error {
	graph := g.buildGraph(tmpl)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(tmpl *loggingconfig.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(tmpl, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure. Only functions, roles and log
// groups are drawn.
func (g *Generator) buildGraph(tmpl *loggingconfig.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	if tmpl == nil {
		return graph
	}

	// Edges must reuse the nodes created above: a clustered node looked up
	// on the root graph would be created a second time.
	nodes := make(map[string]dot.Node)
	ids := g.relevantIDs(tmpl)
	if g.ClusterByType {
		g.addClusteredNodes(graph, tmpl, ids, nodes)
	} else {
		g.addNodes(graph, tmpl, ids, nodes)
	}

	for _, id := range tmpl.LogicalIDs(loggingconfig.KindFunction) {
		fn := tmpl.Resources[id]
		from := nodes[id]

		// role edge, blue like every GetAtt reference
		if ref, ok := intrinsics.ParseGetAtt(fn.Properties["Role"]); ok {
			if to, exists := nodes[ref.LogicalName]; exists {
				e := graph.Edge(from, to, "role")
				e.Attr("color", "blue")
			}
		}

		for _, dep := range fn.DependsOn {
			if r, ok := tmpl.Resource(dep); ok && r.Kind() == loggingconfig.KindLogGroup {
				graph.Edge(from, nodes[dep], "DependsOn")
			}
		}

		if name := sharedLogGroup(fn); name != "" {
			shared := graph.Node(sharedNodeID)
			shared.Attr("shape", "ellipse")
			shared.Attr("style", "dashed")
			shared.Label(name)
			e := graph.Edge(from, shared, "logs")
			e.Attr("color", "darkgreen")
		}
	}

	return graph
}

// relevantIDs returns the sorted logical IDs of functions, roles and log groups.
func (g *Generator) relevantIDs(tmpl *loggingconfig.Template) []string {
	var ids []string
	for _, kind := range []loggingconfig.Kind{loggingconfig.KindFunction, loggingconfig.KindRole, loggingconfig.KindLogGroup} {
		ids = append(ids, tmpl.LogicalIDs(kind)...)
	}
	sort.Strings(ids)
	return ids
}

// addNodes adds resource nodes without clustering.
func (g *Generator) addNodes(graph *dot.Graph, tmpl *loggingconfig.Template, ids []string, nodes map[string]dot.Node) {
	for _, id := range ids {
		n := graph.Node(id)
		n.Label(id + "\\n[" + tmpl.Resources[id].Type + "]")
		nodes[id] = n
	}
}

// addClusteredNodes adds resource nodes grouped by AWS service.
func (g *Generator) addClusteredNodes(graph *dot.Graph, tmpl *loggingconfig.Template, ids []string, nodes map[string]dot.Node) {
	serviceResources := make(map[string][]string)
	var services []string
	for _, id := range ids {
		service := extractService(tmpl.Resources[id].Type)
		if _, seen := serviceResources[service]; !seen {
			services = append(services, service)
		}
		serviceResources[service] = append(serviceResources[service], id)
	}
	sort.Strings(services)

	for _, service := range services {
		names := serviceResources[service]
		target := graph
		// Single resource, no cluster needed
		if len(names) > 1 {
			target = graph.Subgraph("cluster_"+service, dot.ClusterOption{})
			target.Attr("label", service)
			target.Attr("style", "rounded")
			target.Attr("bgcolor", "lightyellow")
		}
		for _, id := range names {
			n := target.Node(id)
			n.Label(id + "\\n[" + tmpl.Resources[id].Type + "]")
			nodes[id] = n
		}
	}
}

// sharedLogGroup returns LoggingConfig.LogGroup when it is a plain name.
func sharedLogGroup(fn *loggingconfig.Resource) string {
	cfg, ok := fn.Properties["LoggingConfig"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := cfg["LogGroup"].(string)
	return name
}

// extractService extracts the AWS service name from a resource type.
// e.g., "AWS::Lambda::Function" -> "Lambda"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}
