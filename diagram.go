package tickfsm

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Mermaid writes the definition as a Mermaid stateDiagram-v2.
//
// Fallback rules are drawn from every state that has no scoped rule for the
// same event, labelled "(any)". The initial marker is drawn only when
// initial is a registered state.
func (d *Definition[O, S, E]) Mermaid(w io.Writer, initial S) error {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	ids := newMermaidIDs[S]()
	for _, s := range d.order {
		label := fmt.Sprint(s)
		if id := ids.get(s); id != label {
			sb.WriteString(fmt.Sprintf("    state %q as %s\n", label, id))
		}
	}

	if _, ok := d.states[initial]; ok {
		sb.WriteString(fmt.Sprintf("    [*] --> %s\n", ids.get(initial)))
	}

	t := newTable(d.transitions)

	type edge struct{ event, to string }
	byEvent := func(edges []edge) {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].event != edges[j].event {
				return edges[i].event < edges[j].event
			}
			return edges[i].to < edges[j].to
		})
	}

	for _, from := range d.order {
		fromID := ids.get(from)

		var scoped []edge
		for k, to := range t.scoped {
			if k.state == from {
				scoped = append(scoped, edge{fmt.Sprint(k.event), ids.get(to)})
			}
		}
		byEvent(scoped)
		for _, e := range scoped {
			sb.WriteString(fmt.Sprintf("    %s --> %s: %s\n", fromID, e.to, e.event))
		}

		var fallback []edge
		for ev, to := range t.fallback {
			if _, shadowed := t.scoped[scopedKey[S, E]{event: ev, state: from}]; shadowed {
				continue
			}
			fallback = append(fallback, edge{fmt.Sprint(ev), ids.get(to)})
		}
		byEvent(fallback)
		for _, e := range fallback {
			sb.WriteString(fmt.Sprintf("    %s --> %s: %s (any)\n", fromID, e.to, e.event))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// mermaidIDs assigns each state a distinct Mermaid ID. States whose
// sanitized labels collide get a numeric suffix in the order first seen.
type mermaidIDs[S comparable] struct {
	byState map[S]string
	used    map[string]bool
}

func newMermaidIDs[S comparable]() *mermaidIDs[S] {
	return &mermaidIDs[S]{
		byState: make(map[S]string),
		used:    make(map[string]bool),
	}
}

func (m *mermaidIDs[S]) get(s S) string {
	if id, ok := m.byState[s]; ok {
		return id
	}
	base := mermaidID(fmt.Sprint(s))
	id := base
	for n := 2; m.used[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	m.used[id] = true
	m.byState[s] = id
	return id
}

// mermaidID replaces characters Mermaid does not accept in state IDs.
func mermaidID(label string) string {
	if label == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
