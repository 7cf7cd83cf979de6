package engine

import "fmt"

// InputId identifies one input family: a logical keyed table (map input)
// or a single scalar slot. It is parameterized only by name and a
// signature tag so that two inputs of different argument/value shapes
// registered under colliding names never alias each other.
type InputId struct {
	name string
	sig  string
}

// DerivedId identifies one derived function, parameterized by its
// argument-type signature so that keys of different signatures remain
// distinct even when the declared names collide.
type DerivedId struct {
	name string
	sig  string
}

func (id InputId) String() string   { return fmt.Sprintf("input(%s)%s", id.name, id.sig) }
func (id DerivedId) String() string { return fmt.Sprintf("derived(%s)%s", id.name, id.sig) }

// queryKind distinguishes the two halves of a DependencyKey. Kept as a
// small unexported enum rather than an interface so that DependencyKey
// stays a plain comparable struct usable as a map key.
type queryKind uint8

const (
	kindInput queryKind = iota
	kindDerived
)

// DependencyKey is the canonical (QueryId, ArgumentTuple) pair used
// throughout the engine to name any memoizable call: it is what a
// DerivedEntry's dependency list is made of, and what the Trace Recorder
// accumulates per frame.
//
// Args must hold a comparable Go value (string, int, a struct of
// comparable fields, or NoArgs{} for zero-arity families) — DependencyKey
// itself is only comparable, and therefore only usable as a map key, when
// its dynamic Args value is.
type DependencyKey struct {
	kind    queryKind
	input   InputId
	derived DerivedId
	Args    any
}

// NoArgs is the zero-arity argument tuple used by scalar inputs and
// nullary derived functions.
type NoArgs struct{}

func inputKey(id InputId, args any) DependencyKey {
	return DependencyKey{kind: kindInput, input: id, Args: args}
}

func derivedKey(id DerivedId, args any) DependencyKey {
	return DependencyKey{kind: kindDerived, derived: id, Args: args}
}

// IsInput reports whether this key names an input family.
func (k DependencyKey) IsInput() bool { return k.kind == kindInput }

// IsDerived reports whether this key names a derived function.
func (k DependencyKey) IsDerived() bool { return k.kind == kindDerived }

// InputId returns the input identity this key names; it is the zero
// InputId if the key names a derived function instead.
func (k DependencyKey) InputId() InputId { return k.input }

// DerivedId returns the derived identity this key names; it is the zero
// DerivedId if the key names an input instead.
func (k DependencyKey) DerivedId() DerivedId { return k.derived }

func (k DependencyKey) String() string {
	if k.kind == kindInput {
		return fmt.Sprintf("%s[%v]", k.input, k.Args)
	}
	return fmt.Sprintf("%s[%v]", k.derived, k.Args)
}
