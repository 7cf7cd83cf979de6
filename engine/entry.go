package engine

import "reflect"

// Revision is a non-negative, strictly monotonic logical timestamp.
// Revision 0 denotes the initial state before any input write.
type Revision uint64

// inputEntry is the stored record for one input family's one key.
// It is created or overwritten by the write path and never mutated by
// the lookup engine.
type inputEntry struct {
	value     any
	changedAt Revision
}

// derivedEntry is the stored record for one derived function's one
// argument tuple.
//
//   - changedAt <= verifiedAt always (Invariant, §3).
//   - changedAt is the revision at which value last actually changed,
//     which can trail verifiedAt when the early-exit optimization fires.
//   - verifiedAt is the latest revision at which this entry was
//     confirmed still valid.
//   - deps is a deduplicated, insertion-ordered list of the direct
//     callees observed during the most recent (re)computation.
type derivedEntry struct {
	value      any
	deps       []DependencyKey
	changedAt  Revision
	verifiedAt Revision
}

// fresh reports whether e is authoritative without further work, i.e.
// whether it was already verified at the revision given.
func (e *derivedEntry) fresh(rev Revision) bool {
	return e.verifiedAt == rev
}

// equalFn is the erased form of a per-value equality predicate: it is
// captured, with its real type parameter bound, at registration time and
// stored on the owning table so the store never needs to know V.
type equalFn func(a, b any) bool

// newEqualFn builds an erased equality predicate from an optional
// user-supplied comparator. With no comparator, it falls back to a
// default that treats floating point NaN as equal to NaN (the "equal"
// predicate the spec calls for, as opposed to "ordered equal") and
// reflect.DeepEqual otherwise — the same two-tier scheme the teacher's
// Signal[T] uses (equalsFn override, else a generic fallback) in
// pkg/core/signal.go.
func newEqualFn[V any](custom func(a, b V) bool) equalFn {
	if custom != nil {
		return func(a, b any) bool { return custom(a.(V), b.(V)) }
	}
	return func(a, b any) bool { return defaultEqual(a, b) }
}

func defaultEqual(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		if av != av && bv != bv {
			return true // NaN == NaN under the "equal" predicate
		}
		return av == bv
	case float32:
		bv := b.(float32)
		if av != av && bv != bv {
			return true
		}
		return av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
