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

import (
	"strings"
)

// String renders v the way the REPL echoes results: atoms print their raw
// bytes, nil prints as "()", and conses print as a parenthesized,
// space-separated list - or, when the tail isn't itself a proper list, as
// a dotted pair.
func String(v Object) string {
	switch v := v.(type) {
	case nil:
		return "()"
	case *Nil:
		return "()"
	case *Atom:
		return string(v.bytes)
	case *Function:
		return "[native function]"
	case *Cons:
		var b strings.Builder
		b.WriteByte('(')
		b.WriteString(String(v.head))
		tail := v.tail
		for {
			switch t := tail.(type) {
			case *Nil:
				b.WriteByte(')')
				return b.String()
			case *Cons:
				b.WriteByte(' ')
				b.WriteString(String(t.head))
				tail = t.tail
			default:
				b.WriteString(" . ")
				b.WriteString(String(tail))
				b.WriteByte(')')
				return b.String()
			}
		}
	default:
		return "?"
	}
}
