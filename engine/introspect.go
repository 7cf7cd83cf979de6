package engine

import "sort"

// DerivedIds enumerates every registered DerivedId, sorted by its string
// form, for the §6 introspection surface.
func (db *Database) DerivedIds() []DerivedId {
	db.mu.Lock()
	defer db.mu.Unlock()
	ids := make([]DerivedId, 0, len(db.derived))
	for id := range db.derived {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// InputIds enumerates every registered InputId.
func (db *Database) InputIds() []InputId {
	db.mu.Lock()
	defer db.mu.Unlock()
	ids := make([]InputId, 0, len(db.inputs))
	for id := range db.inputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Keys enumerates the cached argument tuples for one DerivedId.
func (db *Database) Keys(id DerivedId) []any {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.derived[id]
	if !ok {
		return nil
	}
	return t.keys()
}

// InputKeys enumerates the written argument tuples for one InputId.
func (db *Database) InputKeys(id InputId) []any {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.inputs[id]
	if !ok {
		return nil
	}
	return t.keys()
}

// EntrySnapshot is a read-only copy of a DerivedEntry for introspection:
// the cached value as stored (not deep-copied), a copy of the dependency
// list, and the two timestamps.
type EntrySnapshot struct {
	Value      any
	Dependencies []DependencyKey
	ChangedAt  Revision
	VerifiedAt Revision
}

// Dependencies returns a snapshot of one derived entry's metadata: the
// dependency listing and two timestamps the §6 introspection surface
// calls for. The second return value is false if no entry is cached for
// (id, args).
func (db *Database) Dependencies(id DerivedId, args any) (EntrySnapshot, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.derived[id]
	if !ok {
		return EntrySnapshot{}, false
	}
	e, ok := t.probe(args)
	if !ok {
		return EntrySnapshot{}, false
	}
	deps := make([]DependencyKey, len(e.deps))
	copy(deps, e.deps)
	return EntrySnapshot{
		Value:        e.value,
		Dependencies: deps,
		ChangedAt:    e.changedAt,
		VerifiedAt:   e.verifiedAt,
	}, true
}
