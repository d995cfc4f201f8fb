// dependency.go — the "what would change" descriptor and its propagation
// protocol.
//
// A host that caches computed script results needs to know, for each cached
// result, which inputs it transitively read — so that when "field F of entity
// E" changes, only the affected results are invalidated. Stencil answers this
// with a second, abstract walk of the same expression tree (eval.go): instead
// of computing values it threads a Dependency descriptor through every
// value-producing operation, and host objects record the descriptor against
// the members a script touches.
//
// The protocol on values, mirroring real evaluation:
//
//   - DependencyThis(dep): the result depends on this value as a whole.
//   - DependencyMember(name, dep): the result depends on member `name`;
//     returns an abstract stand-in usable in place of the real member so
//     propagation continues without real evaluation.
//   - DependencyName(container, dep): the visitor inversion — this value,
//     known by its type name inside `container`, reacts to the dependency.
//   - Dependencies(ctx, dep) on callables (value.go): the abstract twin of
//     Eval, returning a value shaped like the real result.
//
// The walk is conservative: over-reporting is acceptable, missing a real
// dependency is not.
package stencil

// DependencyKind tells the host which of its entity spaces Index/Name refer
// to. The evaluator never interprets these; it only carries them.
type DependencyKind int

const (
	// DepMember — a named member of an entity changed.
	DepMember DependencyKind = iota
	// DepIndex — an indexed slot changed.
	DepIndex
	// DepDummy — a walk performed for its side effects only; hosts usually
	// ignore recordings made under it.
	DepDummy
)

// Dependency describes one changed (or watched) quantity: entity Index,
// field Name, in the host's Kind space. It is threaded by value and treated
// as opaque by everything except the host that minted it.
type Dependency struct {
	Kind  DependencyKind
	Index int
	Name  string
}

// DependencyTracker is implemented by host objects that want to build an
// invalidation graph. When the dependency walk touches a member of the host,
// the hook records the dependency and returns the abstract stand-in the walk
// should continue with (usually Dummy, or a real sub-object to walk deeper).
type DependencyTracker interface {
	DependencyMember(name string, dep Dependency) Value
}

// DependencyThis declares that a computation depends on v as a whole.
// Only host objects observe this; for every other variant it is a no-op.
func (v Value) DependencyThis(dep Dependency) {
	if v.Tag != STObject {
		return
	}
	if t, ok := v.Data.(*Object).Host.(interface{ DependencyThis(Dependency) }); ok {
		t.DependencyThis(dep)
	}
}

// DependencyMember is the abstract version of GetMember: it records that a
// computation depends on member `name` and returns a stand-in to continue
// the walk with.
func (v Value) DependencyMember(name string, dep Dependency) Value {
	switch v.Tag {
	case STObject:
		if t, ok := v.Data.(*Object).Host.(DependencyTracker); ok {
			return t.DependencyMember(name, dep)
		}
		// Untracked host: fall back to the real member so the walk can
		// continue into nested tracked objects.
		if m, ok := v.Data.(*Object).Host.GetMember(name); ok {
			return m
		}
		return Dummy
	case STCollection:
		// Collections are plain values; depending on a member means
		// depending on the collection.
		v.DependencyThis(dep)
		return Dummy
	case STError:
		return v
	default:
		return Dummy
	}
}

// DependencyName supports container-driven propagation: the container, not
// the member, drives the walk, and each candidate value is asked whether it
// is affected. The default delegates to the container's DependencyMember
// under this value's type name.
func (v Value) DependencyName(container Value, dep Dependency) Value {
	return container.DependencyMember(v.TypeName(), dep)
}
