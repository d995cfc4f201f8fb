// compare.go — value equality.
//
// Equality is strategy-based: each value reports, via CompareAs, whether it
// compares by its string form, by identity, or not at all, and Equal combines
// the two sides' strategies. String comparison is deliberately cross-kind —
// int 3 equals string "3", and a color equals its "#rrggbb" spelling. That
// bias matches the string-leaning conversions elsewhere in the value model
// and is pinned by tests; it is a documented property, not a bug to fix.
package stencil

import "reflect"

// CompareWhat selects an equality strategy for one side of a comparison.
type CompareWhat int

const (
	// CompareNone — the value never compares equal to anything.
	CompareNone CompareWhat = iota
	// CompareAsString — compare by canonical string form.
	CompareAsString
	// CompareAsIdentity — compare by payload identity (reference equality);
	// used where no canonical string form exists or identity is the point.
	CompareAsIdentity
)

// CompareAs reports this value's strategy plus the material for it: the
// string form when comparing as string, the identity pointer when comparing
// by identity.
func (v Value) CompareAs() (CompareWhat, string, any) {
	switch v.Tag {
	case STNil, STInt, STBool, STDouble, STString, STColor, STDateTime:
		s, _ := v.ToString()
		return CompareAsString, s, nil
	case STObject:
		// Identity is the host, so wrapping the same host twice still
		// compares equal.
		return CompareAsIdentity, "", v.Data.(*Object).Host
	case STFunction, STCollection, STRegex, STImage, STIterator:
		return CompareAsIdentity, "", v.Data
	default:
		// dummy and error values never compare equal; forcing an error value
		// in a comparison is handled by Equal before we get here.
		return CompareNone, "", nil
	}
}

// Equal compares two values. If either side is an error value the deferred
// failure surfaces. If either side compares by identity, the result is
// payload identity; otherwise both string forms are compared. Either side
// reporting CompareNone makes the values unequal.
func Equal(a, b Value) (bool, error) {
	if a.Tag == STError {
		return false, a.Data.(*ScriptError)
	}
	if b.Tag == STError {
		return false, b.Data.(*ScriptError)
	}
	wa, sa, pa := a.CompareAs()
	wb, sb, pb := b.CompareAs()
	if wa == CompareNone || wb == CompareNone {
		return false, nil
	}
	if wa == CompareAsIdentity || wb == CompareAsIdentity {
		if wa != wb {
			return false, nil
		}
		if !hasIdentity(pa) || !hasIdentity(pb) {
			return false, nil
		}
		return pa == pb, nil
	}
	return sa == sb, nil
}

// hasIdentity reports whether a payload can be compared with ==.
// ScriptableObject is an open extension point: a host implemented on a value
// type containing a map or slice is legal but has no usable identity, so it
// compares unequal instead of faulting the evaluator.
func hasIdentity(p any) bool {
	if p == nil {
		return false
	}
	return reflect.ValueOf(p).Comparable()
}
