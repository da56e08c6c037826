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

// DefaultSoftLimit is the nominal object-count soft limit. It is a policy
// knob only — correctness never depends on its value — and can be
// overridden per Interpreter via WithLimit.
const DefaultSoftLimit = 10000

// Heap is a singly linked list of every live allocation plus a live
// object counter. It is owned by exactly one Interpreter; nothing about
// it is process-global, so multiple interpreters can coexist in one
// process.
type Heap struct {
	head  Object
	count int
	limit int
	roots *RootStack
	it    *Interpreter // back-reference, used only to reach the optional Tracer
}

func newHeap(limit int, roots *RootStack) *Heap {
	if limit <= 0 {
		limit = DefaultSoftLimit
	}
	return &Heap{limit: limit, roots: roots}
}

// Count returns the number of currently live objects. Exposed for
// diagnostics (tracer, heap_stats builtin) and tests.
func (h *Heap) Count() int { return h.count }

// Limit returns the heap's soft object-count limit.
func (h *Heap) Limit() int { return h.limit }

// allocate reserves a new node of the given class. Callers that hold
// other live Object locals across this call must have pushed them as
// roots beforehand — that's the one safety rule the whole package
// depends on.
//
// If the live count has reached the soft limit, a collection runs first.
// If the count is still at the limit afterward, allocation fails with a
// ResourceError rather than growing the limit.
func (h *Heap) allocate(o Object, class *Class) Object {
	if h.count >= h.limit {
		h.collect()
	}
	if h.count >= h.limit {
		fail(ResourceError, "allocate: object count limit (%d) exceeded", h.limit)
	}
	hdr := o.header()
	hdr.next = h.head
	hdr.marked = false
	h.head = o
	h.count++
	return o
}

// collect runs one full mark-sweep cycle: mark from every root, then
// sweep the heap list, disposing anything left unmarked.
func (h *Heap) collect() {
	if h.it != nil && h.it.Trace != nil {
		h.it.Trace.gcStart(h.count)
	}
	before := h.count
	for _, r := range *h.roots {
		if *r != nil {
			mark(*r)
		}
	}
	h.sweep()
	if h.it != nil && h.it.Trace != nil {
		h.it.Trace.gcEnd(before, h.count, len(*h.roots))
	}
}

// sweep walks the heap list once. Every node whose marked bit survived
// the mark phase has the bit cleared and is kept; every other node is
// unlinked and disposed. Unlinking happens before dispose so that no
// listed node can ever point into disposed memory.
func (h *Heap) sweep() {
	link := &h.head
	for *link != nil {
		o := *link
		hdr := o.header()
		if hdr.marked {
			hdr.marked = false
			link = &hdr.next
		} else {
			*link = hdr.next
			o.class().dispose(o)
			h.count--
		}
	}
}
