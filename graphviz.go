package fsm

import (
	"github.com/enetx/g"
)

type edge[ID comparable] struct {
	from, to ID
}

type edgeStats struct {
	count  int
	forced bool
}

// ToDOT generates a DOT language string representation of the machine for
// visualization. Nodes are the registered states; edges are the transitions
// observed in the history, labeled with how often they were taken.
func (m *Machine[ID, C]) ToDOT() g.String {
	b := g.NewBuilder()

	b.WriteString("digraph FSM {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(
		"  node [shape=circle, style=filled, fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n",
	)
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	edges := g.NewMap[edge[ID], edgeStats]()
	order := g.NewSlice[edge[ID]]()
	visited := g.NewSet[ID]()

	for t := range m.history.Iter() {
		visited.Insert(t.To)

		if t.From.IsNone() {
			b.WriteString("  __start [shape=point, style=invis];\n")
			b.WriteString(g.Format("  __start -> \"{}\" [label=\" initial\"];\n\n", m.label(t.To)))
			continue
		}

		key := edge[ID]{from: t.From.Some(), to: t.To}
		stats, seen := edges[key]
		if !seen {
			order.Push(key)
		}

		stats.count++
		stats.forced = stats.forced || t.Forced
		edges[key] = stats
	}

	for id := range m.order.Iter() {
		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}\"", m.label(id)))

		switch {
		case m.isCurrent(id):
			attrs.Push("fillcolor=\"#90ee90\"", "shape=doublecircle")
		case !visited.Contains(id):
			attrs.Push("fillcolor=\"#d3d3d3\"")
		}

		b.WriteString(g.Format("  \"{}\" [{}];\n", idLabel(id), attrs.Join(", ")))
	}

	b.WriteByte('\n')

	for key := range order.Iter() {
		stats := edges[key]

		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\" x{} \"", stats.count))

		if stats.forced {
			attrs.Push("style=dashed", "color=red")
		}

		b.WriteString(g.Format("  \"{}\" -> \"{}\" [{}];\n", idLabel(key.from), idLabel(key.to), attrs.Join(", ")))
	}

	b.WriteString("\n  subgraph cluster_legend {\n")
	b.WriteString("    label = \"Legend\";\n")
	b.WriteString("    style = dashed;\n")
	b.WriteString(`    key [label=<
      <table border="0" cellpadding="4" cellspacing="0" cellborder="0">
        <tr><td align="right">●</td><td>Visited state</td></tr>
        <tr><td align="right"><font color="green">◎</font></td><td>Current state</td></tr>
        <tr><td align="right"><font color="gray">●</font></td><td>Never entered</td></tr>
        <tr><td align="right"><font color="red">→</font></td><td>Forced re-entry</td></tr>
      </table>
    >, shape=none];`)

	b.WriteString("  }\n")
	b.WriteString("}\n")

	return b.String()
}

// label returns the diagnostic label of a registered state.
func (m *Machine[ID, C]) label(id ID) g.String {
	if state, ok := m.registry[id]; ok {
		return stateLabel(id, state)
	}

	return idLabel(id)
}
