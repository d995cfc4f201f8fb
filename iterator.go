// iterator.go — the lazy iteration protocol.
package stencil

// ScriptIterator is the payload of an iterator value: a lazy, finite,
// forward-only sequence. Next returns (item, true) until exhaustion, then
// (_, false); iterators are not restartable. keyOut and indexOut, when
// non-nil, are populated only if the underlying collection is keyed or
// indexed, so array-like and map-like iteration share one shape.
type ScriptIterator interface {
	Next(keyOut *Value, indexOut *int) (Value, bool)
}

func iteratorValue(it ScriptIterator) Value {
	return Value{Tag: STIterator, Data: it}
}

type emptyIterator struct{}

func (emptyIterator) Next(*Value, *int) (Value, bool) { return Nil, false }

// collectionIterator walks a Collection's entries in order.
type collectionIterator struct {
	entries []collectionEntry
	pos     int
}

func (it *collectionIterator) Next(keyOut *Value, indexOut *int) (Value, bool) {
	if it.pos >= len(it.entries) {
		return Nil, false
	}
	e := it.entries[it.pos]
	if keyOut != nil {
		if e.key != "" {
			*keyOut = Str(e.key)
		} else {
			*keyOut = Nil
		}
	}
	if indexOut != nil {
		*indexOut = it.pos
	}
	it.pos++
	return e.value, true
}

// rangeIterator backs `for x from a to b`: it yields the integers a..b-1.
type rangeIterator struct {
	next, end int64
	pos       int
}

func (it *rangeIterator) Next(keyOut *Value, indexOut *int) (Value, bool) {
	if it.next >= it.end {
		return Nil, false
	}
	if keyOut != nil {
		*keyOut = Nil
	}
	if indexOut != nil {
		*indexOut = it.pos
	}
	v := Int(it.next)
	it.next++
	it.pos++
	return v, true
}

// singleIterator yields exactly one value; the dependency walk uses it to
// run loop bodies once over a dummy element.
type singleIterator struct {
	value Value
	done  bool
}

func (it *singleIterator) Next(keyOut *Value, indexOut *int) (Value, bool) {
	if it.done {
		return Nil, false
	}
	it.done = true
	if keyOut != nil {
		*keyOut = Nil
	}
	if indexOut != nil {
		*indexOut = 0
	}
	return it.value, true
}
