package tickfsm

// StateOption is a functional option for configuring a state's Behavior
type StateOption[O any] func(*Behavior[O])

// WithOnEnter sets the entry action for the state
func WithOnEnter[O any](fn func(O)) StateOption[O] {
	return func(b *Behavior[O]) {
		b.OnEnter = fn
	}
}

// WithOnUpdate sets the action run by every Update while in the state
func WithOnUpdate[O any](fn func(O)) StateOption[O] {
	return func(b *Behavior[O]) {
		b.OnUpdate = fn
	}
}

// WithOnExit sets the exit action for the state
func WithOnExit[O any](fn func(O)) StateOption[O] {
	return func(b *Behavior[O]) {
		b.OnExit = fn
	}
}

// WithBehavior copies all three hooks from b, replacing any set earlier.
func WithBehavior[O any](b Behavior[O]) StateOption[O] {
	return func(dst *Behavior[O]) {
		*dst = b
	}
}

func (b *Behavior[O]) enter(owner O) {
	if b.OnEnter != nil {
		b.OnEnter(owner)
	}
}

func (b *Behavior[O]) update(owner O) {
	if b.OnUpdate != nil {
		b.OnUpdate(owner)
	}
}

func (b *Behavior[O]) exit(owner O) {
	if b.OnExit != nil {
		b.OnExit(owner)
	}
}
