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

// Object is the common interface every heap node satisfies. It is the Go
// analogue of the C "struct object" header embedded at the front of every
// node: next/marked live in objHeader, class() dispatches to the node's
// vtable.
type Object interface {
	header() *objHeader
	class() *Class
}

// objHeader is embedded as the first field of every concrete node type.
// Its address is stable for the lifetime of the node, which is what lets
// the sweep and the Schorr-Waite marker manipulate "next" and "marked"
// uniformly regardless of concrete type.
type objHeader struct {
	next   Object
	marked bool
}

func (h *objHeader) header() *objHeader { return h }

// Nil is the unique empty-list / "no value" singleton. Its address doubles
// as the canonical empty value: two Nils are never allocated.
type Nil struct {
	objHeader
}

func (n *Nil) class() *Class { return nilClass }

// Cons is a two-slot node used for program structure and for the operand
// and continuation stacks alike. tailIsNext records, only while this node
// is in Schorr-Waite shape, which slot currently holds the reversed link:
// true means head is reversed (child 0 in progress), false means tail is
// (child 1 in progress).
type Cons struct {
	objHeader
	tailIsNext bool
	head       Object
	tail       Object
}

func (c *Cons) class() *Class { return consClass }

// Atom is a leaf node that owns an immutable byte buffer. Equality is by
// buffer contents (see atomsEqual), never by address, except that two
// Atoms built from the identical buffer are of course also content-equal.
type Atom struct {
	objHeader
	bytes []byte
}

func (a *Atom) class() *Class { return atomClass }

// applyFunc is a native apply routine: it consumes whatever it needs from
// the operand stack (via it.pop()) and/or data, and may push onto the
// operand or continuation stack. It must never recurse into the host Go
// call stack to perform interpreter-level evaluation — that is the whole
// point of the continuation stack.
type applyFunc func(it *Interpreter, data Object)

// Function wraps a native apply routine and a single data payload child.
// The payload is typically a Cons carrying captured environment(s) and
// any pending argument expression.
type Function struct {
	objHeader
	apply applyFunc
	data  Object
}

func (f *Function) class() *Class { return functionClass }

// asCons panics with a TypeError if o is not a *Cons; used pervasively by
// code that destructures pairs.
func asCons(o Object) *Cons {
	c, ok := o.(*Cons)
	if !ok {
		panic(&RuntimeError{Kind: TypeError, Message: "cons expected"})
	}
	return c
}

// asAtom panics with a TypeError if o is not an *Atom.
func asAtom(o Object) *Atom {
	a, ok := o.(*Atom)
	if !ok {
		panic(&RuntimeError{Kind: TypeError, Message: "atom expected"})
	}
	return a
}

// asFunction panics with a TypeError if o is not a *Function.
func asFunction(o Object) *Function {
	f, ok := o.(*Function)
	if !ok {
		panic(&RuntimeError{Kind: TypeError, Message: "apply: not a function"})
	}
	return f
}

// atomsEqual compares two atoms by buffer contents, per spec: "Atoms are
// value-compared by their byte buffer contents."
func atomsEqual(a, b Object) bool {
	if a == b {
		return true
	}
	x, ok1 := a.(*Atom)
	y, ok2 := b.(*Atom)
	if !ok1 || !ok2 {
		panic(&RuntimeError{Kind: TypeError, Message: "atom_equals: atoms expected"})
	}
	return string(x.bytes) == string(y.bytes)
}
