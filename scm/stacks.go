/*
Copyright (C) 2023-2024  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

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

// newCons allocates a fresh Cons(head, tail). Both arguments must already
// be on the heap list; the caller is responsible for rooting anything it
// still needs after this call returns (allocate may trigger a GC).
func (it *Interpreter) newCons(head, tail Object) *Cons {
	it.roots.pushRoot(&head)
	it.roots.pushRoot(&tail)
	c := &Cons{head: head, tail: tail}
	it.heap.allocate(c, consClass)
	it.roots.popRoot()
	it.roots.popRoot()
	return c
}

// push prepends v onto the operand stack: stack := cons(v, stack).
func (it *Interpreter) push(v Object) {
	it.roots.pushRoot(&v)
	c := it.newCons(v, it.operandStack)
	setRoot(&it.operandStack, c)
	it.roots.popRoot()
}

// pop reads head(stack) and sets stack := tail(stack). A stack-underflow
// (or non-cons shape) is a TypeError.
func (it *Interpreter) pop() Object {
	c, ok := it.operandStack.(*Cons)
	if !ok {
		fail(TypeError, "pop: stack underflow")
	}
	result := c.head
	setRoot(&it.operandStack, c.tail)
	return result
}

// pushCont pushes a continuation (a *Function) onto the continuation
// stack.
func (it *Interpreter) pushCont(f *Function) {
	var v Object = f
	it.roots.pushRoot(&v)
	c := it.newCons(v, it.contStack)
	setRoot(&it.contStack, c)
	it.roots.popRoot()
}

// popCont pops the next continuation to run, or returns nil when the
// continuation stack is empty — the top-level driver's termination
// condition.
func (it *Interpreter) popCont() *Function {
	c, ok := it.contStack.(*Cons)
	if !ok {
		return nil
	}
	result := c.head
	setRoot(&it.contStack, c.tail)
	return result.(*Function)
}
