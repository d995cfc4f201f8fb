// collection.go — ordered, optionally keyed collections, and host objects.
package stencil

// collectionEntry is one slot: a value at a position, optionally also
// reachable under a key. key=="" means the entry is purely positional.
type collectionEntry struct {
	key   string
	value Value
}

// Collection is the payload of a collection value: an ordered sequence of
// entries where each entry may carry a key, so the same collection supports
// both GetIndex (by position) and GetMember (by key). Collections are built
// once and then shared; the mutating methods exist only for construction.
type Collection struct {
	entries []collectionEntry
	byKey   map[string]int
}

// NewCollection returns an empty collection ready for Append/Put.
func NewCollection() *Collection {
	return &Collection{byKey: map[string]int{}}
}

// CollectionOf builds a positional collection from values.
func CollectionOf(values ...Value) Value {
	c := NewCollection()
	for _, v := range values {
		c.Append(v)
	}
	return c.Value()
}

// Value wraps the collection as a script value.
func (c *Collection) Value() Value { return Value{Tag: STCollection, Data: c} }

// Append adds a purely positional entry.
func (c *Collection) Append(v Value) {
	c.entries = append(c.entries, collectionEntry{value: v})
}

// Put adds a keyed entry. A repeated key shadows the earlier entry for member
// access; both remain visible positionally.
func (c *Collection) Put(key string, v Value) {
	c.byKey[key] = len(c.entries)
	c.entries = append(c.entries, collectionEntry{key: key, value: v})
}

// Len is the number of entries, keyed or not.
func (c *Collection) Len() int { return len(c.entries) }

// Keyed reports whether any entry carries a key.
func (c *Collection) Keyed() bool { return len(c.byKey) > 0 }

// Member fetches by key; a miss is a lazy error value.
func (c *Collection) Member(name string) Value {
	if i, ok := c.byKey[name]; ok {
		return c.entries[i].value
	}
	return NewErrorf("collection has no member '%s'", name)
}

// Index fetches by position; out of range is a lazy error value. A negative
// index counts from the end.
func (c *Collection) Index(i int) Value {
	if i < 0 {
		i += len(c.entries)
	}
	if i < 0 || i >= len(c.entries) {
		return NewErrorf("index %d out of range for collection of %d items", i, len(c.entries))
	}
	return c.entries[i].value
}

func (c *Collection) iterate() ScriptIterator {
	return &collectionIterator{entries: c.entries}
}

// concat builds a new collection with the entries of both operands; keyed
// entries keep their keys, right side shadowing on key collisions.
func (c *Collection) concat(other *Collection) *Collection {
	out := NewCollection()
	for _, e := range c.entries {
		if e.key != "" {
			out.Put(e.key, e.value)
		} else {
			out.Append(e.value)
		}
	}
	for _, e := range other.entries {
		if e.key != "" {
			out.Put(e.key, e.value)
		} else {
			out.Append(e.value)
		}
	}
	return out
}

/* ---------- host objects ---------- */

// ScriptableObject is the contract a host type implements to appear in
// scripts as an object value: a stable type name (used in error messages and
// by the persistence layer) and member access by name. Hosts that also
// implement DependencyTracker (dependency.go) participate in the
// invalidation walk.
type ScriptableObject interface {
	TypeName() string
	GetMember(name string) (Value, bool)
}

// Object is the payload of an object value.
type Object struct {
	Host ScriptableObject
}

// ObjectV wraps a host object as a script value. Object values compare by
// identity: two distinct hosts with identical content are not equal.
func ObjectV(host ScriptableObject) Value {
	return Value{Tag: STObject, Data: &Object{Host: host}}
}
