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

import (
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Interpreter bundles every piece of state that used to live as process
// globals in the original C implementation this package descends from:
// the heap, the root stack, the nil singleton, the operand and
// continuation stacks, and the forms/env alists. Bundling them into a
// struct rather than leaving them as package variables lets multiple
// interpreters coexist in one process and lets tests create and tear
// down instances deterministically.
//
// Exactly one goroutine may drive a given Interpreter at a time; nothing
// here is safe for concurrent use.
type Interpreter struct {
	ID     uuid.UUID
	Trace  *Tracer
	Output io.Writer // defaults to os.Stdout; print_atom writes here

	heap         *Heap
	roots        RootStack
	nilValue     *Nil
	operandStack Object
	contStack    Object
	forms        Object // alist: name atom -> form (quote, fun)
	env          Object // alist: name atom -> value (print_atom, ...)
}

// Option configures a new Interpreter.
type Option func(*Interpreter, *int)

// WithLimit overrides the heap's soft object-count limit.
func WithLimit(n int) Option {
	return func(it *Interpreter, limit *int) { *limit = n }
}

// WithTrace attaches a diagnostic Tracer; nil disables tracing (the
// default).
func WithTrace(t *Tracer) Option {
	return func(it *Interpreter, limit *int) { it.Trace = t }
}

// NewInterpreter builds a ready-to-use interpreter: the four built-in
// classes are stateless package-level vtables needing no per-instance
// registration; the nil singleton is allocated and rooted; and forms/env
// are seeded with quote, fun, and print_atom.
func NewInterpreter(opts ...Option) *Interpreter {
	it := &Interpreter{ID: uuid.New(), Output: os.Stdout}
	limit := DefaultSoftLimit
	for _, opt := range opts {
		opt(it, &limit)
	}
	it.heap = newHeap(limit, &it.roots)
	it.heap.it = it

	it.nilValue = &Nil{}
	it.heap.allocate(it.nilValue, nilClass)
	var nilRoot Object = it.nilValue
	it.roots.pushRoot(&nilRoot)

	it.operandStack = it.nilValue
	it.contStack = it.nilValue
	it.roots.pushRoot(&it.operandStack)
	it.roots.pushRoot(&it.contStack)

	it.forms = it.nilValue
	it.env = it.nilValue
	it.roots.pushRoot(&it.forms)
	it.roots.pushRoot(&it.env)

	it.mapConsNative("quote", quoteApply, &it.forms)
	it.mapConsNative("fun", funApply, &it.forms)
	it.mapConsNative("print_atom", printAtomApply, &it.env)

	Sessions.register(it)
	return it
}

// Close deregisters the interpreter from Sessions and flushes its
// tracer, if any. It does not need to free heap memory: once the
// Interpreter value itself is unreachable, Go's own GC reclaims every
// node the heap ever allocated.
func (it *Interpreter) Close() {
	Sessions.unregister(it.ID)
	if it.Trace != nil {
		it.Trace.Close()
	}
}

// Heap exposes read-only heap diagnostics (object count, limit) for the
// REPL's (heap_stats) builtin and for tests.
func (it *Interpreter) Heap() *Heap { return it.heap }

// writeOutput sends raw atom bytes to Output, falling back to Stdout if
// the caller cleared it.
func (it *Interpreter) writeOutput(p []byte) {
	w := it.Output
	if w == nil {
		w = os.Stdout
	}
	w.Write(p)
}

// newAtom allocates an atom from a freshly-owned byte buffer. Atoms
// exclusively own their buffer — callers must not retain or mutate buf
// after the call.
func (it *Interpreter) newAtom(buf []byte) *Atom {
	a := &Atom{bytes: buf}
	it.heap.allocate(a, atomClass)
	return a
}

func (it *Interpreter) newAtomFromString(s string) *Atom {
	return it.newAtom([]byte(s))
}

// newFunction allocates a Function wrapping a native apply routine and a
// data payload, rooting data across the allocation.
func (it *Interpreter) newFunction(apply applyFunc, data Object) *Function {
	it.roots.pushRoot(&data)
	f := &Function{apply: apply, data: data}
	it.heap.allocate(f, functionClass)
	it.roots.popRoot()
	return f
}

// mapConsNative binds name, in the alist pointed to by mapRoot, to a
// fresh Function wrapping fn applied to nil. Used to seed forms/env with
// built-ins.
func (it *Interpreter) mapConsNative(name string, fn applyFunc, mapRoot *Object) {
	var nilObj Object = it.nilValue
	var fnObj Object = it.newFunction(fn, nilObj)
	it.roots.pushRoot(&fnObj)
	defer it.roots.popRoot()
	it.mapCons(it.newAtomFromString(name), fnObj, mapRoot)
}

// mapCons prepends entry (key . value) onto the alist at mapRoot.
func (it *Interpreter) mapCons(key *Atom, value Object, mapRoot *Object) {
	var keyObj Object = key
	it.roots.pushRoot(&keyObj)
	it.roots.pushRoot(&value)
	entry := it.newCons(keyObj, value)
	var entryObj Object = entry
	it.roots.pushRoot(&entryObj)
	cons := it.newCons(entryObj, *mapRoot)
	setRoot(mapRoot, cons)
	it.roots.popRoot()
	it.roots.popRoot()
	it.roots.popRoot()
}

// assoc walks an alist of (key . value) conses looking for a key atom
// equal (by buffer contents) to key, returning the bound value, or nil
// if absent. A plain linear scan: env/forms are alists the collector
// walks as ordinary cons chains, so a hash index would break GC
// visibility (see DESIGN.md).
func assoc(key Object, list Object) Object {
	for {
		c, ok := list.(*Cons)
		if !ok {
			return nil
		}
		entry := asCons(c.head)
		if atomsEqual(key, entry.head) {
			return entry.tail
		}
		list = c.tail
	}
}

// Sessions tracks every live Interpreter by ID, for diagnostics only.
// Evaluation semantics never consult it.
var Sessions = &sessionRegistry{sessions: make(map[uuid.UUID]*Interpreter)}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Interpreter
}

func (r *sessionRegistry) register(it *Interpreter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[it.ID] = it
}

func (r *sessionRegistry) unregister(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of currently registered live interpreters.
func (r *sessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
