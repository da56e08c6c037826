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

// Class is the per-node-type vtable the collector dispatches through. It
// is immutable and shared across every Interpreter instance; only the
// heap state (not the class descriptors) is per-interpreter.
//
// startMarking is called exactly once, right after the collector has set
// obj's marked bit. If the node has at least one outgoing reference, it
// rotates that slot into the reversed "parent link" position, advances
// *obj to the child and sets *cursor to the node itself, returning true.
// With no children it leaves both pointers untouched and returns false.
//
// markNext is called when control returns to a Schorr-Waite node from the
// child it is currently processing. If another child exists, it rotates
// the reversed link to that slot and advances; otherwise it fully restores
// the node to normal shape and returns false.
type Class struct {
	Name         string
	startMarking func(obj, cursor *Object) bool
	markNext     func(obj, cursor *Object) bool
	dispose      func(o Object)
}

var nilClass = &Class{
	Name: "nil",
	startMarking: func(obj, cursor *Object) bool {
		return false
	},
	markNext: func(obj, cursor *Object) bool {
		panic("nil: mark_next is unreachable")
	},
	dispose: func(o Object) {
		panic("nil: dispose is unreachable (the singleton is always rooted)")
	},
}

var atomClass = &Class{
	Name: "atom",
	startMarking: func(obj, cursor *Object) bool {
		return false
	},
	markNext: func(obj, cursor *Object) bool {
		panic("atom: mark_next is unreachable")
	},
	dispose: func(o Object) {
		a := o.(*Atom)
		a.bytes = nil
	},
}

var consClass = &Class{
	Name: "cons",
	startMarking: func(obj, cursor *Object) bool {
		c := (*obj).(*Cons)
		child := c.head
		c.head = *cursor
		*cursor = c
		c.tailIsNext = true
		*obj = child
		return true
	},
	markNext: func(obj, cursor *Object) bool {
		c := (*cursor).(*Cons)
		if c.tailIsNext {
			grandparent := c.head
			c.head = *obj
			*obj = c.tail
			c.tail = grandparent
			c.tailIsNext = false
			return true
		}
		*cursor = c.tail
		c.tail = *obj
		*obj = c
		return false
	},
	dispose: func(o Object) {
		c := o.(*Cons)
		c.head, c.tail = nil, nil
	},
}

var functionClass = &Class{
	Name: "function",
	startMarking: func(obj, cursor *Object) bool {
		f := (*obj).(*Function)
		child := f.data
		f.data = *cursor
		*cursor = f
		*obj = child
		return true
	},
	markNext: func(obj, cursor *Object) bool {
		f := (*cursor).(*Function)
		*cursor = f.data
		f.data = *obj
		*obj = f
		return false
	},
	dispose: func(o Object) {
		f := o.(*Function)
		f.data, f.apply = nil, nil
	},
}
