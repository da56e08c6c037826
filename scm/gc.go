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

// mark runs Schorr-Waite marking from a single root value, using no
// auxiliary storage beyond the two local state variables obj/cursor and
// whatever per-node "which slot is reversed" bit each class keeps inline
// (cons's tailIsNext). Two phases, startMarking and markNext, joined by
// goto to keep the traversal a loop instead of recursion on the Go stack.
func mark(root Object) {
	obj := root
	var cursor Object

startMarking:
	if obj.header().marked {
		goto markNext
	}
	obj.header().marked = true
	if obj.class().startMarking(&obj, &cursor) {
		goto startMarking
	}

markNext:
	if cursor == nil {
		return
	}
	if cursor.class().markNext(&obj, &cursor) {
		goto startMarking
	}
	goto markNext
}
