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

import "testing"

func TestCollectReclaimsUnreachableConses(t *testing.T) {
	it := NewInterpreter()
	it.heap.collect()
	baseline := it.heap.Count()

	for i := 0; i < 50; i++ {
		it.newCons(it.nilValue, it.nilValue) // never rooted beyond this call
	}
	it.heap.collect()

	if got := it.heap.Count(); got != baseline {
		t.Errorf("collect left %d live objects, want back to baseline %d", got, baseline)
	}
}

func TestCollectKeepsRootedChainAlive(t *testing.T) {
	it := NewInterpreter()
	it.heap.collect()
	baseline := it.heap.Count()

	chain := Object(it.nilValue)
	it.roots.pushRoot(&chain)
	for i := 0; i < 10; i++ {
		setRoot(&chain, it.newCons(it.nilValue, chain))
	}
	it.heap.collect()
	it.roots.popRoot()

	if got := it.heap.Count(); got != baseline+10 {
		t.Errorf("collect reclaimed a rooted object: got %d live, want %d", got, baseline+10)
	}
}

func TestMarkTerminatesOnSelfReferentialCons(t *testing.T) {
	it := NewInterpreter()
	var root Object
	c := it.newCons(it.nilValue, it.nilValue)
	c.tail = c // cons pointing to itself through its tail
	root = c
	it.roots.pushRoot(&root)
	defer it.roots.popRoot()

	mark(root) // must terminate; a cycle that isn't handled would hang here
	if !c.header().marked {
		t.Error("self-referential cons should have been marked")
	}
}

func TestAllocateRecyclesUnrootedGarbageUnderLimit(t *testing.T) {
	it := NewInterpreter(WithLimit(20))
	for i := 0; i < 200; i++ {
		it.newCons(it.nilValue, it.nilValue)
	}
	if it.heap.Count() > it.heap.Limit() {
		t.Errorf("live count %d exceeds limit %d after repeated allocation", it.heap.Count(), it.heap.Limit())
	}
}

func TestAllocateFailsWithResourceErrorWhenRootedPastLimit(t *testing.T) {
	it := NewInterpreter(WithLimit(20))
	defer func() {
		r := recover()
		rerr, ok := r.(*RuntimeError)
		if !ok || rerr.Kind != ResourceError {
			t.Fatalf("expected ResourceError panic, got %v", r)
		}
	}()

	chain := Object(it.nilValue)
	it.roots.pushRoot(&chain)
	for i := 0; i < 1000; i++ {
		setRoot(&chain, it.newCons(it.nilValue, chain))
	}
	t.Fatal("expected allocation to panic with ResourceError before this point")
}
