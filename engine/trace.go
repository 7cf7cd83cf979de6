package engine

import "github.com/google/uuid"

// trace is the Trace Recorder for a single top-level query: an explicit,
// per-call object threaded through recursive lookups rather than attached
// to the engine (§9: "make the trace stack a per-top-level-call object
// ... which cleanly supports concurrent top-level queries"). It is the
// generalization of the teacher's per-goroutine trackingState
// (pkg/bubbly/tracker.go) from "one stack per goroutine" to "one stack
// per top-level call", since a worker pool may run several top-level
// queries on the same goroutine.
type traceFrame struct {
	key   DependencyKey
	order []DependencyKey
	seen  map[DependencyKey]bool
}

type trace struct {
	cyclesEnabled bool
	frames        []*traceFrame
	liveSet       map[DependencyKey]bool
}

func newTrace(cyclesEnabled bool) *trace {
	return &trace{cyclesEnabled: cyclesEnabled}
}

// record attaches key as a direct dependency of whatever frame is
// currently on top of the stack, deduplicating via the frame's
// membership set. It is a no-op outside any frame (a bare top-level
// read). Unlike enter, record never pushes a new frame and never
// consults the live-call stack. It is the only place a key is added to
// its caller's dependency list: readDerived and readInput call it for
// every read, whether that read is then served from cache, revalidated
// or recomputed (enter does not add the key to the parent frame).
func (t *trace) record(key DependencyKey) {
	if len(t.frames) == 0 {
		return
	}
	top := t.frames[len(t.frames)-1]
	if top.seen == nil {
		top.seen = make(map[DependencyKey]bool)
	}
	if !top.seen[key] {
		top.seen[key] = true
		top.order = append(top.order, key)
	}
}

// enter begins a new frame for the recomputation of key: it checks key
// against the live-call stack (cycle detection), then pushes key onto
// that stack and opens a fresh frame to collect key's own direct
// dependencies. It returns CycleError if cycle detection is enabled and
// key is already being recomputed somewhere on this call's stack.
func (t *trace) enter(key DependencyKey) error {
	if t.cyclesEnabled && t.liveSet[key] {
		return &CycleError{Stack: t.liveStack(key), ID: uuid.New()}
	}
	if t.liveSet == nil {
		t.liveSet = make(map[DependencyKey]bool)
	}
	t.liveSet[key] = true
	t.frames = append(t.frames, &traceFrame{key: key, seen: make(map[DependencyKey]bool)})
	return nil
}

// pop closes the current frame and returns its ordered, deduplicated
// direct-dependency list.
func (t *trace) pop() []DependencyKey {
	n := len(t.frames)
	f := t.frames[n-1]
	t.frames = t.frames[:n-1]
	delete(t.liveSet, f.key)
	return f.order
}

// liveStack returns the keys currently being recomputed on this call's
// stack, in entry order, with the about-to-cycle key appended — the
// diagnostic payload for CycleError.
func (t *trace) liveStack(closingWith DependencyKey) []DependencyKey {
	stack := make([]DependencyKey, 0, len(t.frames)+1)
	for _, f := range t.frames {
		stack = append(stack, f.key)
	}
	return append(stack, closingWith)
}
