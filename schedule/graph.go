package schedule

import (
	"fmt"
	"strings"

	"github.com/kingrea/legion/label"
)

// edge means "From runs before To".
type edge struct {
	From string
	To   string
}

type graphStage struct {
	id          string
	label       label.Label
	controllers []graphNode
	edges       []edge
}

type graphNode struct {
	id   string
	name label.Label
}

// graph lays the plan out with stable aliases: s<i> for stages and
// s<i>c<j> for controllers. Constraint labels are expanded to every carrier
// in the same stage.
func (p Plan) graph() ([]graphStage, []edge) {
	stageIDs := make(map[label.Label]string, len(p.Stages))
	stages := make([]graphStage, len(p.Stages))
	for i, sp := range p.Stages {
		id := fmt.Sprintf("s%d", i)
		stageIDs[sp.Label] = id
		gs := graphStage{id: id, label: sp.Label}
		carriers := make(map[label.Label][]string)
		for j, c := range sp.Controllers {
			nid := fmt.Sprintf("%sc%d", id, j)
			gs.controllers = append(gs.controllers, graphNode{id: nid, name: c.Name})
			for _, l := range c.Labels {
				carriers[l] = append(carriers[l], nid)
			}
		}
		seen := make(map[edge]struct{})
		addEdge := func(e edge) {
			if e.From == e.To {
				return
			}
			if _, ok := seen[e]; ok {
				return
			}
			seen[e] = struct{}{}
			gs.edges = append(gs.edges, e)
		}
		for j, c := range sp.Controllers {
			self := gs.controllers[j].id
			for _, l := range c.After {
				for _, dep := range carriers[l] {
					addEdge(edge{From: dep, To: self})
				}
			}
			for _, l := range c.Before {
				for _, dep := range carriers[l] {
					addEdge(edge{From: self, To: dep})
				}
			}
		}
		stages[i] = gs
	}

	var between []edge
	for i, sp := range p.Stages {
		self := stages[i].id
		for _, l := range sp.After {
			if from, ok := stageIDs[l]; ok {
				between = append(between, edge{From: from, To: self})
			}
		}
		for _, l := range sp.Before {
			if to, ok := stageIDs[l]; ok {
				between = append(between, edge{From: self, To: to})
			}
		}
	}
	return stages, between
}

// DOT exports Graphviz DOT text. Each stage is a cluster holding a header
// node plus its controllers.
func (p Plan) DOT() string {
	stages, between := p.graph()
	var b strings.Builder
	b.WriteString("digraph legion {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")
	for _, st := range stages {
		fmt.Fprintf(&b, "  subgraph \"cluster_%s\" {\n", st.id)
		fmt.Fprintf(&b, "    label=\"%s\";\n", escapeDOT(st.label.String()))
		fmt.Fprintf(&b, "    %s [label=\"%s\", shape=plaintext];\n", st.id, escapeDOT(st.label.String()))
		for _, n := range st.controllers {
			fmt.Fprintf(&b, "    %s [label=\"%s\"];\n", n.id, escapeDOT(n.name.String()))
		}
		for _, e := range st.edges {
			fmt.Fprintf(&b, "    %s -> %s;\n", e.From, e.To)
		}
		b.WriteString("  }\n")
	}
	for _, e := range between {
		fmt.Fprintf(&b, "  %s -> %s;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid flowchart text.
func (p Plan) Mermaid() string {
	stages, between := p.graph()
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, st := range stages {
		fmt.Fprintf(&b, "    subgraph %s[\"%s\"]\n", st.id, escapeMermaid(st.label.String()))
		for _, n := range st.controllers {
			fmt.Fprintf(&b, "        %s[\"%s\"]\n", n.id, escapeMermaid(n.name.String()))
		}
		for _, e := range st.edges {
			fmt.Fprintf(&b, "        %s --> %s\n", e.From, e.To)
		}
		b.WriteString("    end\n")
	}
	for _, e := range between {
		fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
	}
	return b.String()
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
