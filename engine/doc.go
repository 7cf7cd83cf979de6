// Package engine implements a demand-driven, memoized incremental
// computation graph: inputs that clients set directly, and derived
// functions whose return values are cached against a revision-versioned
// store until one of their transitive inputs actually changes.
//
// The three load-bearing pieces are the revision-versioned Store
// (store.go, handle.go), the per-top-level-call dependency Trace
// (trace.go), and the memoized-lookup state machine that ties them
// together (lookup.go). Database (database.go) is the handle a client
// holds: it owns the clock, the store, and the registry of derived
// thunks, and exposes the registration and query surface in registry.go.
package engine
