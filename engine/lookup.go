package engine

import "github.com/google/uuid"

// Context is handed to a derived function's thunk during (re)computation.
// It carries the Database handle and the trace belonging to the current
// top-level call, so that nested reads (Derived[A,V].Get,
// Input[A,V].Get) recurse through the same memoized-lookup machinery
// and record themselves as this thunk's direct dependencies.
type Context struct {
	db *Database
	tr *trace
}

func newContext(db *Database, tr *trace) *Context {
	return &Context{db: db, tr: tr}
}

// readDerived is the single entry point used both by a top-level
// Derived[A,V].Call (with a fresh trace) and by Context-mediated nested
// reads (with the caller's trace): it records the key as a dependency of
// whatever frame is active, then defers to the core state machine.
func (db *Database) readDerived(tr *trace, id DerivedId, args any) (any, error) {
	key := derivedKey(id, args)
	tr.record(key)
	v, _, err := db.memoizedLookupDerived(tr, id, args)
	return v, err
}

// keyChangedAt resolves the changed_at of an arbitrary dependency key
// during a validity walk (§4.4.3). It intentionally does NOT call
// tr.record: the validity walk is internal bookkeeping performed on
// behalf of the entry being validated, not a fresh read by whichever
// frame happens to be on top of the trace when validation runs. If
// resolving the dependency forces it to recompute, that recomputation
// pushes its own frame via trace.enter and its own nested reads go
// through readDerived/readInput as usual, so dependency completeness for
// the *recomputed* dependency is unaffected.
func (db *Database) keyChangedAt(tr *trace, dep DependencyKey) (Revision, error) {
	if dep.IsInput() {
		return db.inputChangedAt(dep.InputId(), dep.Args)
	}
	_, changedAt, err := db.memoizedLookupDerived(tr, dep.DerivedId(), dep.Args)
	return changedAt, err
}

// memoizedLookupDerived is the Lookup Engine state machine of §4.4.1.
func (db *Database) memoizedLookupDerived(tr *trace, id DerivedId, args any) (value any, changedAt Revision, err error) {
	// 1. Enter.
	db.mu.Lock()
	db.activeCount++
	active := db.activeCount
	db.mu.Unlock()
	db.metrics.ActiveComputations(active)
	defer func() {
		db.mu.Lock()
		db.activeCount--
		active := db.activeCount
		db.mu.Unlock()
		db.metrics.ActiveComputations(active)
	}()

	key := derivedKey(id, args)

	// 2. Cache probe (under lock).
	db.mu.Lock()
	call, registered := db.thunks[id]
	if !registered {
		db.mu.Unlock()
		return nil, 0, &unregisteredDerivedError{id: id}
	}
	equal := db.equalFor(id)
	table := db.derivedTableFor(id, equal)
	existing, found := table.probe(args)
	rev := db.clk.current
	db.mu.Unlock()

	// 3. Fresh?
	if found && existing.fresh(rev) {
		db.metrics.DerivedHit(id)
		return existing.value, existing.changedAt, nil
	}

	// 4. Possibly-valid? Walk dependencies in their recorded order so
	// that an earlier dependency's recomputation (which may itself
	// install new entries) is fully observed before later dependencies
	// are checked, per the §9 open-question resolution on walk ordering.
	if found {
		valid := true
		for _, dep := range existing.deps {
			depChangedAt, derr := db.keyChangedAt(tr, dep)
			if derr != nil {
				return nil, 0, derr
			}
			if depChangedAt > existing.verifiedAt {
				valid = false
				break
			}
		}
		if valid {
			db.mu.Lock()
			existing.verifiedAt = db.clk.current
			db.mu.Unlock()
			db.metrics.DerivedRevalidated(id)
			return existing.value, existing.changedAt, nil
		}
	}

	// 5. Recompute.
	if err := tr.enter(key); err != nil {
		if cycleErr, ok := err.(*CycleError); ok {
			db.reporter.ReportCycle(cycleErr)
		}
		return nil, 0, err
	}
	v, callErr := call(newContext(db, tr), args)
	deps := tr.pop()
	if callErr != nil {
		if isEngineStructuredError(callErr) {
			// A CycleError or another key's own UserFunctionError/missing-
			// input error is already carrying its own accurate live-call
			// stack; re-wrapping it at every intermediate frame it bubbles
			// through would bury the original failure under nested
			// UserFunctionErrors instead of surfacing it once, cleanly.
			return nil, 0, callErr
		}
		ufe := &UserFunctionError{Key: key, Stack: tr.liveStack(key), Err: callErr, ID: uuid.New()}
		db.reporter.ReportUserFunctionFailure(ufe)
		return nil, 0, ufe
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	rev = db.clk.current

	// 6. Early-exit compare (Part 2).
	if found && equal(existing.value, v) {
		existing.verifiedAt = rev
		existing.deps = deps // computation path may differ even though the value did not
		db.metrics.DerivedEarlyExit(id)
		return existing.value, existing.changedAt, nil
	}

	// 7. Install.
	newEntry := &derivedEntry{value: v, deps: deps, changedAt: rev, verifiedAt: rev}
	table.install(args, newEntry)
	db.metrics.DerivedRecomputed(id)
	return v, rev, nil
}

// equalFor returns the equality predicate registered for id, or the
// package default if, surprisingly, the table does not exist yet (this
// only happens if a dependency key was recorded for an id that was never
// registered, which readDerived/keyChangedAt never produce on their own
// but is kept defensive for direct callers).
func (db *Database) equalFor(id DerivedId) equalFn {
	if t, ok := db.derived[id]; ok {
		return t.equal
	}
	return defaultEqual
}

// readInput is the entry point for a Context-mediated or top-level input
// read: §4.4.2. It records the dependency unconditionally (even on
// error, since the attempted read is still real information about what
// the caller depends on) before returning the failure.
func (db *Database) readInput(tr *trace, id InputId, args any, requireKey bool) (any, error) {
	key := inputKey(id, args)
	tr.record(key)

	db.mu.Lock()
	table := db.inputTableFor(id)
	entry, ok := table.probe(args)
	db.mu.Unlock()

	if !ok {
		if requireKey {
			return nil, &missingInputError{key: key}
		}
		return nil, &uninitializedInputError{key: key}
	}
	return entry.value, nil
}

func (db *Database) inputChangedAt(id InputId, args any) (Revision, error) {
	db.mu.Lock()
	table := db.inputTableFor(id)
	entry, ok := table.probe(args)
	db.mu.Unlock()

	if !ok {
		return 0, &missingInputError{key: inputKey(id, args)}
	}
	return entry.changedAt, nil
}

type unregisteredDerivedError struct{ id DerivedId }

func (e *unregisteredDerivedError) Error() string {
	return "engine: derived function " + e.id.String() + " was never registered"
}
