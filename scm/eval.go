/*
Copyright (C) 2023-2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package scm

import "io"

// apply invokes a Function's native routine on its captured data. There
// is no notion of a "call stack" here: apply runs exactly once and
// returns once its routine has pushed whatever operands or continuations
// it needs; any further work happens because that routine pushed more
// continuations, which the driver loop in Run picks up next.
func (it *Interpreter) apply(f *Function) {
	f.apply(it, f.data)
}

// popApply is the continuation every cons-application pushes first, so it
// runs last: once the evaluated argument and then the function value have
// been pushed onto the operand stack, popApply pops the function value
// (the top) and applies it, leaving the argument for the function to pop.
func popApply(it *Interpreter, data Object) {
	f := asFunction(it.pop())
	it.apply(f)
}

// eval is both an ordinary Go function and, wrapped in a Function value,
// a continuation: data is (envs . expr) where envs is (forms . env).
// Evaluating an atom looks it up in env; evaluating a cons either expands
// a special form bound in forms or schedules three continuations -
// evaluate the argument, evaluate the operator, then apply - so that no
// Go call frame is outstanding once eval itself returns. That is what
// makes the evaluator tail-call safe: a tail call pushes an eval
// continuation and returns, rather than calling eval again.
func eval(it *Interpreter, data Object) {
	pair := asCons(data)
	envs := pair.head
	expr := pair.tail
	envsPair := asCons(envs)
	forms := envsPair.head
	env := envsPair.tail

	switch expr := expr.(type) {
	case *Atom:
		value := assoc(expr, env)
		if value == nil {
			if it.Trace != nil {
				it.Trace.evalUnbound(string(expr.bytes))
			}
			fail(UnboundError, "eval: no such binding: %s", string(expr.bytes))
		}
		it.push(value)

	case *Cons:
		fExpr := expr.head
		argExpr := expr.tail

		var form Object
		if fAtom, ok := fExpr.(*Atom); ok {
			form = assoc(fAtom, forms)
		}

		if form != nil {
			it.roots.rooted(&form, func() {
				value := it.newCons(envs, argExpr)
				it.push(value)
			})
			it.apply(asFunction(form))
			return
		}

		it.roots.rooted(&envs, func() {
			it.roots.rooted(&fExpr, func() {
				it.roots.rooted(&argExpr, func() {
					it.pushCont(it.newFunction(popApply, it.nilValue))

					evalF := it.newCons(envs, fExpr)
					it.pushCont(it.newFunction(eval, evalF))

					evalArg := it.newCons(envs, argExpr)
					it.pushCont(it.newFunction(eval, evalArg))
				})
			})
		})

	default:
		fail(TypeError, "eval: cannot evaluate: not an atom or a cons")
	}
}

// quoteApply implements the quote special form: pop the (envs . body)
// pair apply built for it and push body back unevaluated.
func quoteApply(it *Interpreter, data Object) {
	arg := asCons(it.pop())
	it.push(arg.tail)
}

// funApply implements the outer half of fun: applying the fun form pops
// the (envs . (param . body)) pair eval pushed for it and produces a
// closure - a Function wrapping funApplyApply over that raw, unevaluated
// pair - without
// evaluating anything yet.
func funApply(it *Interpreter, data Object) {
	arg := it.pop()
	it.roots.rooted(&arg, func() {
		closure := it.newFunction(funApplyApply, arg)
		var v Object = closure
		it.push(v)
	})
}

// funApplyApply implements the inner half of fun: applying the closure
// produced by funApply to one evaluated argument. It binds param to arg
// in a fresh environment frame layered over the closure's captured env,
// then schedules evaluation of body under (forms . newEnv).
func funApplyApply(it *Interpreter, data Object) {
	arg := it.pop()
	pair := asCons(data)
	envs := pair.head
	expr := pair.tail
	envsPair := asCons(envs)
	forms := envsPair.head
	env := envsPair.tail
	exprPair := asCons(expr)
	param := exprPair.head
	body := exprPair.tail

	paramAtom, ok := param.(*Atom)
	if !ok {
		fail(TypeError, "fun: param should be an atom")
	}

	newEnv := env
	it.roots.pushRoot(&newEnv)
	it.roots.pushRoot(&forms)
	it.roots.pushRoot(&body)
	it.roots.pushRoot(&arg)
	it.mapCons(paramAtom, arg, &newEnv)
	newEnvs := it.newCons(forms, newEnv)
	var newEnvsObj Object = newEnvs
	it.roots.pushRoot(&newEnvsObj)
	newData := it.newCons(newEnvsObj, body)
	it.pushCont(it.newFunction(eval, newData))
	it.roots.popRoot()
	it.roots.popRoot()
	it.roots.popRoot()
	it.roots.popRoot()
	it.roots.popRoot()
}

// printAtomApply implements print_atom: pop one atom argument, write its
// bytes to the interpreter's output sink, and push nil as the result
// (every form must leave exactly one value on the operand stack).
func printAtomApply(it *Interpreter, data Object) {
	arg := asAtom(it.pop())
	it.writeOutput(arg.bytes)
	it.push(it.nilValue)
}

// Run evaluates expr - which must already be rooted by the caller if it
// needs to survive past this call - under the interpreter's top-level
// forms/env, draining the continuation stack until empty, and returns
// the single value left on the operand stack.
func (it *Interpreter) Run(expr Object) (result Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(*RuntimeError); ok {
				err = rerr
				return
			}
			panic(r)
		}
	}()

	it.roots.pushRoot(&expr)
	envs := it.newCons(it.forms, it.env)
	var envsObj Object = envs
	it.roots.pushRoot(&envsObj)
	data := it.newCons(envsObj, expr)
	it.pushCont(it.newFunction(eval, data))
	it.roots.popRoot()
	it.roots.popRoot()

	for {
		cont := it.popCont()
		if cont == nil {
			break
		}
		it.apply(cont)
	}
	return it.pop(), nil
}

// EvalAll reads and runs every top-level term in r in sequence, returning
// the value of the last one. A clean end of input after zero or more
// complete terms is not an error; it returns whatever the last term
// evaluated to (nil if r held no terms at all).
func (it *Interpreter) EvalAll(r io.Reader) (Object, error) {
	tok := NewTokenizer(r)
	var result Object = it.nilValue
	for {
		expr, err := it.ReadExpr(tok)
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		result, err = it.Run(expr)
		if err != nil {
			return nil, err
		}
	}
}
