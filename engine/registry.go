package engine

import "fmt"

// RegisterFunc is the thunk signature a derived function registers: it
// receives a Context for nested reads and the argument tuple, and
// returns the computed value or an error. Registration is idempotent —
// re-registering the same name+signature replaces the function and, per
// §6, is exactly the "registration surface" the distilled spec delegates
// to external macro glue, given a concrete Go shape here (§9: "an
// explicit registry keyed by a stable identity token ... whose values
// are type-erased thunks plus a type-safe downcasting wrapper").
type RegisterFunc[A comparable, V any] func(ctx *Context, args A) (V, error)

// Derived is the typed front-end for one registered derived function,
// returned by RegisterDerived. It closes over the Database and the
// DerivedId so callers never handle the erased representation directly.
type Derived[A comparable, V any] struct {
	db *Database
	id DerivedId
}

// RegisterDerived declares a derived function under name, distinguished
// from any other registration by its argument/value type signature.
// equal, if non-nil, is the value-equality predicate used for Early-Exit
// Part 2 (§4.1); pass nil to use the package default (reflect.DeepEqual,
// with NaN == NaN).
func RegisterDerived[A comparable, V any](db *Database, name string, equal func(a, b V) bool, fn RegisterFunc[A, V]) *Derived[A, V] {
	id := DerivedId{name: name, sig: fmt.Sprintf("%T->%T", *new(A), *new(V))}

	erased := newEqualFn(equal)

	db.mu.Lock()
	db.derivedTableFor(id, erased)
	db.thunks[id] = func(c *Context, args any) (any, error) {
		return fn(c, args.(A))
	}
	db.mu.Unlock()

	return &Derived[A, V]{db: db, id: id}
}

// ID returns the identity this derived function is registered under.
func (d *Derived[A, V]) ID() DerivedId { return d.id }

// Call is the top-level entry point: it opens a fresh trace for this
// call and runs the memoized-lookup state machine (§4.4.1).
func (d *Derived[A, V]) Call(args A) (V, error) {
	tr := newTrace(d.db.cyclesEnabledSnapshot())
	v, err := d.db.readDerived(tr, d.id, args)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Get is the nested-read entry point used from inside another derived
// function's thunk: it reuses the caller's Context (and therefore its
// trace), so this access is recorded as a direct dependency of the
// currently executing thunk.
func (d *Derived[A, V]) Get(ctx *Context, args A) (V, error) {
	v, err := d.db.readDerived(ctx.tr, d.id, args)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// cyclesEnabledSnapshot reads cyclesEnabled without requiring callers to
// take the lock themselves; cyclesEnabled is set only at construction
// time via WithCycleDetection, so no lock is strictly required, but the
// read goes through the lock for consistency with every other piece of
// Database state.
func (db *Database) cyclesEnabledSnapshot() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.cyclesEnabled
}

// Input is the typed front-end for one registered input family.
type Input[A comparable, V any] struct {
	db    *Database
	id    InputId
	equal equalFn
	isMap bool
}

// registerInput declares a scalar input (isMap=false) or a map input
// (isMap=true) family under name. A scalar input ignores its argument
// type at the call site (callers pass NoArgs{}); a map input is keyed by
// A.
func registerInput[A comparable, V any](db *Database, name string, equal func(a, b V) bool, isMap bool) *Input[A, V] {
	id := InputId{name: name, sig: fmt.Sprintf("%T->%T", *new(A), *new(V))}
	erased := newEqualFn(equal)

	db.mu.Lock()
	db.inputTableFor(id)
	db.mu.Unlock()

	return &Input[A, V]{db: db, id: id, equal: erased, isMap: isMap}
}

// RegisterScalarInput declares a single-slot input: reads use NoArgs{}.
func RegisterScalarInput[V any](db *Database, name string, equal func(a, b V) bool) *Input[NoArgs, V] {
	return registerInput[NoArgs, V](db, name, equal, false)
}

// RegisterMapInput declares a keyed-table input, keyed by A.
func RegisterMapInput[A comparable, V any](db *Database, name string, equal func(a, b V) bool) *Input[A, V] {
	return registerInput[A, V](db, name, equal, true)
}

// ID returns the identity this input family is registered under.
func (in *Input[A, V]) ID() InputId { return in.id }

// Read is the top-level read, used outside of any derived computation.
// A scalar input missing its first write returns ErrUninitializedInput;
// a map input read with an absent key returns ErrMissingInputKey.
func (in *Input[A, V]) Read(args A) (V, error) {
	v, err := in.db.readInput(newTrace(false), in.id, args, in.isMap)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Get is the nested-read entry point used from inside a derived
// function's thunk.
func (in *Input[A, V]) Get(ctx *Context, args A) (V, error) {
	v, err := in.db.readInput(ctx.tr, in.id, args, in.isMap)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Set writes value for args (NoArgs{} for a scalar input), per §4.1's
// Early-Exit Part 1: an equal value is a no-op, otherwise this requires
// no derived computation be active and advances the revision.
func (in *Input[A, V]) Set(args A, value V) {
	in.db.setInput(in.id, args, value, in.equal)
}

// Delete removes args from a map input. See §4.1; panics with
// InputMutationDuringComputationError if a derived computation is
// active.
func (in *Input[A, V]) Delete(args A) {
	in.db.deleteInput(in.id, args)
}

// Empty removes every key from a map input in one write-path operation.
func (in *Input[A, V]) Empty() {
	in.db.emptyInput(in.id)
}
