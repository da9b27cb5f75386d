package optimistic

import "sync"

// Engine holds the current local state and runs the optimistic protocol:
// Dispatch applies an action synchronously and hands back its compensating
// inverse; when the store call later fails the caller feeds that inverse to
// Rollback, which restores the pre-mutation view and raises a transient
// notification. The engine never retries and never blocks.
type Engine struct {
	mu    sync.Mutex
	state State

	// Notify surfaces a non-blocking failure notice to the UI. Optional.
	Notify func(message string)
}

func NewEngine(initial State) *Engine {
	return &Engine{state: initial.clone()}
}

// State returns a snapshot safe to read concurrently with dispatches.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Dispatch applies the action to local state before any network call and
// returns the compensating action captured against the pre-mutation state.
// ok is false for non-invertible actions (reconciliations).
func (e *Engine) Dispatch(a Action) (undo Action, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	undo, ok = Invert(e.state, a)
	e.state = Apply(e.state, a)
	return undo, ok
}

// Reconcile applies a server response (temp id swap or authoritative
// refresh) without producing an inverse.
func (e *Engine) Reconcile(a Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Apply(e.state, a)
}

// Rollback applies a compensating action after a failed store call and
// notifies the UI. A nil undo (non-invertible dispatch) is a no-op.
func (e *Engine) Rollback(undo Action, message string) {
	if undo == nil {
		return
	}
	e.mu.Lock()
	e.state = Apply(e.state, undo)
	notify := e.Notify
	e.mu.Unlock()

	if notify != nil && message != "" {
		notify(message)
	}
}
