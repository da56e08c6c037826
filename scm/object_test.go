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

func TestAsConsRejectsNonCons(t *testing.T) {
	defer func() {
		r := recover()
		rerr, ok := r.(*RuntimeError)
		if !ok || rerr.Kind != TypeError {
			t.Fatalf("expected TypeError panic, got %v", r)
		}
	}()
	it := NewInterpreter()
	asCons(it.newAtomFromString("x"))
}

func TestAsAtomRejectsNonAtom(t *testing.T) {
	defer func() {
		r := recover()
		rerr, ok := r.(*RuntimeError)
		if !ok || rerr.Kind != TypeError {
			t.Fatalf("expected TypeError panic, got %v", r)
		}
	}()
	it := NewInterpreter()
	asAtom(it.newCons(it.nilValue, it.nilValue))
}

func TestAtomsEqualComparesBufferContents(t *testing.T) {
	it := NewInterpreter()
	a := it.newAtomFromString("hello")
	b := it.newAtomFromString("hello")
	c := it.newAtomFromString("world")
	if a == b {
		t.Fatal("test setup: expected distinct atom allocations")
	}
	if !atomsEqual(a, b) {
		t.Error("atoms with equal bytes should compare equal")
	}
	if atomsEqual(a, c) {
		t.Error("atoms with different bytes should not compare equal")
	}
}

func TestAtomsEqualRejectsNonAtoms(t *testing.T) {
	defer func() {
		r := recover()
		rerr, ok := r.(*RuntimeError)
		if !ok || rerr.Kind != TypeError {
			t.Fatalf("expected TypeError panic, got %v", r)
		}
	}()
	it := NewInterpreter()
	atomsEqual(it.newAtomFromString("x"), it.newCons(it.nilValue, it.nilValue))
}
