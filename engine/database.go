package engine

import "sync"

// Database is the engine handle: it owns the Revision Clock, the Cache
// Store, and the registry of derived thunks. Per the §9 "Global-ish
// runtime state" re-architecture note, none of this lives in package
// globals the way the teacher's signal.go keeps a global signalRegistry
// / globalMutex / trackingStack — every piece of mutable state here is a
// field on Database, and the Trace Recorder is a per-top-level-call
// object threaded explicitly through recursive lookups instead.
type Database struct {
	mu sync.Mutex

	clk clock

	activeCount int

	inputs  map[InputId]*inputTable
	derived map[DerivedId]*derivedTable
	thunks  map[DerivedId]thunk

	cyclesEnabled bool
	metrics       Metrics
	reporter      Reporter
}

// thunk is the type-erased invocation wrapper installed by
// RegisterDerived: it receives the shared Context/trace and the erased
// argument tuple, and returns the erased result.
type thunk func(c *Context, args any) (any, error)

// Option configures a Database at construction time.
type Option func(*Database)

// WithCycleDetection toggles cycle detection (on by default). Per §4.3,
// cycle detection may be compiled out; with it off, dependency recording
// still functions correctly and cycles manifest as unbounded recursion
// instead of CycleError.
func WithCycleDetection(enabled bool) Option {
	return func(db *Database) { db.cyclesEnabled = enabled }
}

// WithMetrics wires a Metrics sink, e.g. metrics.NewPrometheusMetrics.
func WithMetrics(m Metrics) Option {
	return func(db *Database) { db.metrics = m }
}

// WithReporter wires a Reporter sink, e.g. observability.NewSentryReporter.
func WithReporter(r Reporter) Option {
	return func(db *Database) { db.reporter = r }
}

// NewDatabase creates an empty engine handle at revision 0.
func NewDatabase(opts ...Option) *Database {
	db := &Database{
		inputs:        make(map[InputId]*inputTable),
		derived:       make(map[DerivedId]*derivedTable),
		thunks:        make(map[DerivedId]thunk),
		cyclesEnabled: true,
		metrics:       noopMetrics{},
		reporter:      noopReporter{},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Revision returns the current revision. Safe to call from any thread;
// it only blocks briefly on the cache lock.
func (db *Database) Revision() Revision {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.clk.current
}
