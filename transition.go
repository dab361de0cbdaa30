package tickfsm

// Transition defines a state change rule
type Transition[S, E comparable] struct {
	From  S    // Source state, ignored when Any is set
	Event E    // Triggering event
	To    S    // Target state
	Any   bool // Fallback rule: applies from every state without a scoped match
}

// scopedKey indexes state-scoped rules
type scopedKey[S, E comparable] struct {
	event E
	state S
}

// table is the flat, immutable rule set a Machine resolves events against
type table[S, E comparable] struct {
	scoped   map[scopedKey[S, E]]S
	fallback map[E]S
}

func newTable[S, E comparable](rules []Transition[S, E]) table[S, E] {
	t := table[S, E]{
		scoped:   make(map[scopedKey[S, E]]S),
		fallback: make(map[E]S),
	}
	for _, r := range rules {
		if r.Any {
			t.fallback[r.Event] = r.To
			continue
		}
		t.scoped[scopedKey[S, E]{event: r.Event, state: r.From}] = r.To
	}
	return t
}

// resolve returns the destination for ev sent while in current.
// A scoped rule wins over a fallback rule.
func (t table[S, E]) resolve(ev E, current S) (S, bool) {
	if to, ok := t.scoped[scopedKey[S, E]{event: ev, state: current}]; ok {
		return to, true
	}
	to, ok := t.fallback[ev]
	return to, ok
}
