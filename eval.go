// eval.go — the tree-walk evaluator, shared between real evaluation and the
// dependency walk.
//
// One walker serves both modes. In modeReal it computes values; in modeDeps
// it performs the identical traversal but with abstract effects: member reads
// go through DependencyMember so tracked hosts can record them, conditionals
// walk both branches, loops run their body once over a dummy element, and
// operators produce Dummy. The walk is conservative — it may mark reads the
// real evaluation would skip, never the reverse.
package stencil

import "time"

type evalMode int

const (
	modeReal evalMode = iota
	modeDeps
)

type evaluator struct {
	ctx  *Context
	mode evalMode
	dep  Dependency
}

func (e *evaluator) eval(n S) Value {
	switch tag(n) {
	case "block":
		result := Nil
		for _, stmt := range n[1:] {
			result = e.eval(stmt.(S))
		}
		return result

	case "nil":
		return Nil
	case "int":
		return Int(n[1].(int64))
	case "double":
		return Double(n[1].(float64))
	case "str":
		return Str(n[1].(string))
	case "bool":
		return Bool(n[1].(bool))

	case "id":
		name := n[1].(string)
		if e.mode == modeDeps {
			if v, ok := e.ctx.LookupVariable(name); ok {
				return v
			}
			return Dummy
		}
		return e.ctx.GetVariable(name)

	case "declare":
		v := e.eval(n[2].(S))
		e.ctx.SetVariable(n[1].(string), v)
		return v

	case "binop":
		return e.binop(n[1].(string), n[2].(S), n[3].(S))

	case "unop":
		return e.unop(n[1].(string), n[2].(S))

	case "get":
		obj := e.eval(n[1].(S))
		name := n[2].(string)
		if e.mode == modeDeps {
			return obj.DependencyMember(name, e.dep)
		}
		return obj.GetMember(name)

	case "idx":
		obj := e.eval(n[1].(S))
		idx := e.eval(n[2].(S))
		if e.mode == modeDeps {
			// Indexing with an unknown index depends on the whole container.
			obj.DependencyThis(e.dep)
			return Dummy
		}
		if idx.Tag == STString {
			return obj.GetMember(idx.Data.(string))
		}
		i, err := idx.ToInt()
		if err != nil {
			return NewError(err.Error())
		}
		return obj.GetIndex(int(i))

	case "call":
		return e.call(n)

	case "bind":
		return e.bind(n)

	case "array":
		c := NewCollection()
		for _, part := range n[1:] {
			pn := part.(S)
			if tag(pn) == "pair" {
				c.Put(pn[1].(string), e.eval(pn[2].(S)))
			} else {
				c.Append(e.eval(pn))
			}
		}
		return c.Value()

	case "fun":
		return Value{Tag: STFunction, Data: &ScriptFun{body: n[1].(S)}}

	case "if":
		if e.mode == modeDeps {
			e.eval(n[1].(S))
			e.eval(n[2].(S))
			e.eval(n[3].(S))
			return Dummy
		}
		cond := e.eval(n[1].(S))
		ok, err := cond.ToBool()
		if err != nil {
			return NewError(err.Error())
		}
		if ok {
			return e.eval(n[2].(S))
		}
		return e.eval(n[3].(S))

	case "foreach":
		return e.forEach(n[1].(string), n[2].(S), n[3].(S))

	case "forrange":
		return e.forRange(n[1].(string), n[2].(S), n[3].(S), n[4].(S))
	}
	return NewErrorf("internal: unknown node %q", tag(n))
}

/* ---------- calls ---------- */

// call implements the call protocol: evaluate the callee and every argument
// in the caller's scope, open a fresh scope, bind the arguments by name, then
// invoke the callee with openScope=false. Calling a non-function yields the
// value itself; calling an error value yields the error.
func (e *evaluator) call(n S) Value {
	callee := e.eval(n[1].(S))
	if callee.Tag == STError {
		return callee
	}

	type boundArg struct {
		name  string
		value Value
	}
	args := make([]boundArg, 0, len(n)-2)
	for _, a := range n[2:] {
		an := a.(S)
		args = append(args, boundArg{name: an[1].(string), value: e.eval(an[2].(S))})
	}

	h := e.ctx.OpenScope()
	defer e.ctx.CloseScope(h)
	for _, a := range args {
		e.ctx.SetVariable(a.name, a.value)
	}

	if e.mode == modeDeps {
		return callee.Dependencies(e.ctx, e.dep)
	}

	if p := e.ctx.profiler; p != nil {
		if cn := n[1].(S); tag(cn) == "id" {
			start := time.Now()
			result := callee.Eval(e.ctx, false)
			p.Record(cn[1].(string), time.Since(start))
			return result
		}
	}
	return callee.Eval(e.ctx, false)
}

// bind implements `f @(name: expr)`: the bindings are evaluated now, in the
// caller's scope, and attached as default arguments.
func (e *evaluator) bind(n S) Value {
	callee := e.eval(n[1].(S))
	if callee.Tag == STError {
		return callee
	}
	bindings := make([]ClosureBinding, 0, len(n)-2)
	for _, a := range n[2:] {
		an := a.(S)
		bindings = append(bindings, ClosureBinding{Name: an[1].(string), Value: e.eval(an[2].(S))})
	}
	return Value{Tag: STFunction, Data: NewClosure(callee, bindings)}
}

/* ---------- loops ---------- */

// forEach folds the loop body results with the same combination rule as `+`
// (valueAdd): strings concatenate, collections append, numbers sum. An empty
// iteration yields nil.
func (e *evaluator) forEach(name string, iterExpr, body S) Value {
	src := e.eval(iterExpr)

	if e.mode == modeDeps {
		src.DependencyThis(e.dep)
		h := e.ctx.OpenScope()
		defer e.ctx.CloseScope(h)
		// Run the body once over a dummy element.
		it := &singleIterator{value: Dummy}
		for {
			item, ok := it.Next(nil, nil)
			if !ok {
				break
			}
			e.ctx.SetVariable(name, item)
			e.ctx.SetVariable(name+"_key", Dummy)
			e.eval(body)
		}
		return Dummy
	}

	it := src.MakeIterator()
	if it.Tag == STError {
		return it
	}

	h := e.ctx.OpenScope()
	defer e.ctx.CloseScope(h)

	acc := Nil
	var key Value
	for {
		item, ok := it.Next(&key, nil)
		if !ok {
			break
		}
		e.ctx.SetVariable(name, item)
		if key.Tag != STNil {
			e.ctx.SetVariable(name+"_key", key)
		}
		acc = valueAdd(acc, e.eval(body))
		if acc.Tag == STError {
			return acc
		}
	}
	return acc
}

func (e *evaluator) forRange(name string, fromExpr, toExpr, body S) Value {
	from := e.eval(fromExpr)
	to := e.eval(toExpr)

	if e.mode == modeDeps {
		h := e.ctx.OpenScope()
		defer e.ctx.CloseScope(h)
		e.ctx.SetVariable(name, Dummy)
		e.eval(body)
		return Dummy
	}

	a, err := from.ToInt()
	if err != nil {
		return NewError(err.Error())
	}
	b, err := to.ToInt()
	if err != nil {
		return NewError(err.Error())
	}

	h := e.ctx.OpenScope()
	defer e.ctx.CloseScope(h)

	acc := Nil
	it := &rangeIterator{next: a, end: b}
	for {
		item, ok := it.Next(nil, nil)
		if !ok {
			return acc
		}
		e.ctx.SetVariable(name, item)
		acc = valueAdd(acc, e.eval(body))
		if acc.Tag == STError {
			return acc
		}
	}
}

/* ---------- operators ---------- */

func (e *evaluator) binop(op string, lhsN, rhsN S) Value {
	if e.mode == modeDeps {
		e.eval(lhsN)
		e.eval(rhsN)
		return Dummy
	}

	// and/or short-circuit; everything else evaluates both sides.
	switch op {
	case "and", "or":
		lhs := e.eval(lhsN)
		lb, err := lhs.ToBool()
		if err != nil {
			return NewError(err.Error())
		}
		if (op == "and" && !lb) || (op == "or" && lb) {
			return Bool(lb)
		}
		rhs := e.eval(rhsN)
		rb, err := rhs.ToBool()
		if err != nil {
			return NewError(err.Error())
		}
		return Bool(rb)
	}

	lhs := e.eval(lhsN)
	rhs := e.eval(rhsN)

	switch op {
	case "xor":
		lb, err := lhs.ToBool()
		if err != nil {
			return NewError(err.Error())
		}
		rb, err := rhs.ToBool()
		if err != nil {
			return NewError(err.Error())
		}
		return Bool(lb != rb)
	case "==":
		eq, err := Equal(lhs, rhs)
		if err != nil {
			return NewError(err.Error())
		}
		return Bool(eq)
	case "!=":
		eq, err := Equal(lhs, rhs)
		if err != nil {
			return NewError(err.Error())
		}
		return Bool(!eq)
	case "<", "<=", ">", ">=":
		return valueOrder(op, lhs, rhs)
	case "+":
		return valueAdd(lhs, rhs)
	case "-":
		return valueArith(op, lhs, rhs)
	case "*":
		return valueArith(op, lhs, rhs)
	case "/":
		return valueDiv(lhs, rhs)
	case "mod":
		return valueMod(lhs, rhs)
	}
	return NewErrorf("internal: unknown operator %q", op)
}

func (e *evaluator) unop(op string, rhsN S) Value {
	if e.mode == modeDeps {
		e.eval(rhsN)
		return Dummy
	}
	rhs := e.eval(rhsN)
	switch op {
	case "-":
		switch rhs.Tag {
		case STInt:
			return Int(-rhs.Data.(int64))
		case STDouble:
			return Double(-rhs.Data.(float64))
		case STError:
			return rhs
		}
		f, err := rhs.ToDouble()
		if err != nil {
			return NewError(err.Error())
		}
		return Double(-f)
	case "not":
		b, err := rhs.ToBool()
		if err != nil {
			return NewError(err.Error())
		}
		return Bool(!b)
	}
	return NewErrorf("internal: unknown operator %q", op)
}

// valueAdd is the `+` rule, also the loop accumulation rule:
// nil is the identity, collections concatenate, a string on either side
// means string concatenation, otherwise numeric addition (int when both
// operands are ints).
func valueAdd(a, b Value) Value {
	if a.Tag == STError {
		return a
	}
	if b.Tag == STError {
		return b
	}
	if a.Tag == STNil {
		return b
	}
	if b.Tag == STNil {
		return a
	}
	if a.Tag == STDummy || b.Tag == STDummy {
		return Dummy
	}
	if a.Tag == STCollection && b.Tag == STCollection {
		return a.Data.(*Collection).concat(b.Data.(*Collection)).Value()
	}
	if a.Tag == STString || b.Tag == STString {
		sa, err := a.ToString()
		if err != nil {
			return NewError(err.Error())
		}
		sb, err := b.ToString()
		if err != nil {
			return NewError(err.Error())
		}
		return Str(sa + sb)
	}
	if a.Tag == STInt && b.Tag == STInt {
		return Int(a.Data.(int64) + b.Data.(int64))
	}
	fa, err := a.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	fb, err := b.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	return Double(fa + fb)
}

// valueArith covers `-` and `*`: integer when both sides are ints, double
// otherwise.
func valueArith(op string, a, b Value) Value {
	if a.Tag == STDummy || b.Tag == STDummy {
		return Dummy
	}
	if a.Tag == STInt && b.Tag == STInt {
		x, y := a.Data.(int64), b.Data.(int64)
		if op == "-" {
			return Int(x - y)
		}
		return Int(x * y)
	}
	fa, err := a.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	fb, err := b.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	if op == "-" {
		return Double(fa - fb)
	}
	return Double(fa * fb)
}

// valueDiv always divides as doubles; integer division is spelled
// `to_int(a / b)`.
func valueDiv(a, b Value) Value {
	if a.Tag == STDummy || b.Tag == STDummy {
		return Dummy
	}
	fa, err := a.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	fb, err := b.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	if fb == 0 {
		return NewError("division by zero")
	}
	return Double(fa / fb)
}

func valueMod(a, b Value) Value {
	if a.Tag == STDummy || b.Tag == STDummy {
		return Dummy
	}
	x, err := a.ToInt()
	if err != nil {
		return NewError(err.Error())
	}
	y, err := b.ToInt()
	if err != nil {
		return NewError(err.Error())
	}
	if y == 0 {
		return NewError("division by zero")
	}
	return Int(x % y)
}

// valueOrder compares < <= > >=: numerically when both sides read as
// numbers, lexicographically when both are strings.
func valueOrder(op string, a, b Value) Value {
	if a.Tag == STError {
		return a
	}
	if b.Tag == STError {
		return b
	}
	if a.Tag == STDummy || b.Tag == STDummy {
		return Dummy
	}
	if a.Tag == STString && b.Tag == STString {
		return orderResult(op, strcmp(a.Data.(string), b.Data.(string)))
	}
	fa, err := a.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	fb, err := b.ToDouble()
	if err != nil {
		return NewError(err.Error())
	}
	switch {
	case fa < fb:
		return orderResult(op, -1)
	case fa > fb:
		return orderResult(op, 1)
	default:
		return orderResult(op, 0)
	}
}

func strcmp(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderResult(op string, cmp int) Value {
	switch op {
	case "<":
		return Bool(cmp < 0)
	case "<=":
		return Bool(cmp <= 0)
	case ">":
		return Bool(cmp > 0)
	default:
		return Bool(cmp >= 0)
	}
}
