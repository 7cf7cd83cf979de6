package engine

// derivedTableFor returns the per-DerivedId cache handle, creating it
// lazily on first reference. Must be called with db.mu held.
func (db *Database) derivedTableFor(id DerivedId, equal equalFn) *derivedTable {
	t, ok := db.derived[id]
	if !ok {
		t = newDerivedTable(equal)
		db.derived[id] = t
	}
	return t
}

// inputTableFor returns the per-InputId table, creating it lazily on
// first reference. Must be called with db.mu held.
func (db *Database) inputTableFor(id InputId) *inputTable {
	t, ok := db.inputs[id]
	if !ok {
		t = newInputTable()
		db.inputs[id] = t
	}
	return t
}

// setInput is the erased write path behind Input[A,V].Set. Per §4.1: if
// an entry exists and is equal (by value-equality) to value, it returns
// with no state change (Early-Exit Part 1, no revision advance).
// Otherwise it requires activeCount == 0 and panics with
// InputMutationDuringComputationError otherwise (a fatal assertion, not
// a recoverable error — §5/§7), then advances the clock and writes the
// new InputEntry.
func (db *Database) setInput(id InputId, args any, value any, equal equalFn) {
	db.mu.Lock()
	defer db.mu.Unlock()

	table := db.inputTableFor(id)
	if existing, ok := table.probe(args); ok && equal(existing.value, value) {
		return
	}

	if db.activeCount > 0 {
		panic(&InputMutationDuringComputationError{Operation: "set_input"})
	}

	rev := db.clk.advance()
	table.write(args, &inputEntry{value: value, changedAt: rev})
	db.metrics.RevisionAdvanced(rev)
}

// deleteInput is the erased write path behind Input[A,V].Delete. It
// requires activeCount == 0, per §4.1, then advances the revision and
// removes the entry if the key is present (a present key becoming absent
// is always a change); deleting an absent key changes nothing.
func (db *Database) deleteInput(id InputId, args any) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.activeCount > 0 {
		panic(&InputMutationDuringComputationError{Operation: "delete_input"})
	}

	table := db.inputTableFor(id)
	if _, ok := table.probe(args); !ok {
		return
	}

	rev := db.clk.advance()
	table.delete(args)
	db.metrics.RevisionAdvanced(rev)
}

// emptyInput deletes every key currently stored for id, as a single
// write-path operation (one revision advance for the whole family, or
// none if it was already empty).
func (db *Database) emptyInput(id InputId) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.activeCount > 0 {
		panic(&InputMutationDuringComputationError{Operation: "empty_input"})
	}

	table := db.inputTableFor(id)
	if len(table.entries) == 0 {
		return
	}

	rev := db.clk.advance()
	table.entries = make(map[any]*inputEntry)
	db.metrics.RevisionAdvanced(rev)
}
