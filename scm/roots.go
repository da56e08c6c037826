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

// RootStack is a LIFO of root-cell addresses: the address of a mutable
// object-typed slot whose current value must stay reachable across any
// allocation that could trigger a collection. Every caller that holds
// object-typed locals across an allocate() call must push them here
// first and pop them after.
type RootStack []*Object

// pushRoot registers addr as a GC root. addr's current value must
// already be on the heap list.
func (s *RootStack) pushRoot(addr *Object) {
	*s = append(*s, addr)
}

// setRoot mutates the most-recently-pushed-or-not root cell at addr.
// value must already be on the heap list. This is just *addr = value;
// it exists as a named operation to document the invariant it relies on.
func setRoot(addr *Object, value Object) {
	*addr = value
}

// popRoot removes the most recently pushed root. Pushes and pops must be
// balanced per caller — violating that is a memory-safety bug (an object
// that should have stayed rooted can be collected out from under a live
// local).
func (s *RootStack) popRoot() {
	n := len(*s)
	if n == 0 {
		panic("popRoot: root stack underflow")
	}
	*s = (*s)[:n-1]
}

// rooted is a small helper for the common "push one local, run f, pop"
// pattern used throughout the evaluator.
func (s *RootStack) rooted(addr *Object, f func()) {
	s.pushRoot(addr)
	defer s.popRoot()
	f()
}
