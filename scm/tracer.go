/*
Copyright (C) 2024  Carl-Philip Hänsch

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
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Tracer writes one JSON object per line to an underlying
// io.WriteCloser - no enclosing array, so a trace file can be tailed
// while the interpreter is still running. A nil *Tracer (the default,
// or WithTrace(nil)) disables tracing; every call site checks
// it.Trace == nil first.
type Tracer struct {
	w     io.WriteCloser
	m     sync.Mutex
	start time.Time
}

// NewTracer wraps w. Closing the returned Tracer closes w.
func NewTracer(w io.WriteCloser) *Tracer {
	return &Tracer{w: w, start: time.Now()}
}

func (t *Tracer) Close() error {
	return t.w.Close()
}

type traceEvent struct {
	Event   string  `json:"event"`
	TimeUs  int64   `json:"t_us"`
	Before  int     `json:"before,omitempty"`
	After   int     `json:"after,omitempty"`
	Roots   int     `json:"roots,omitempty"`
	Binding string  `json:"binding,omitempty"`
	Elapsed float64 `json:"elapsed_ms,omitempty"`
}

func (t *Tracer) write(ev traceEvent) {
	ev.TimeUs = time.Since(t.start).Microseconds()
	t.m.Lock()
	defer t.m.Unlock()
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	t.w.Write(b)
	t.w.Write([]byte("\n"))
}

// gcStart logs the live object count observed just before a collection
// begins marking.
func (t *Tracer) gcStart(before int) {
	t.write(traceEvent{Event: "gc_start", Before: before})
}

// gcEnd logs a completed collection: the count before and after sweep,
// and how many root cells were walked.
func (t *Tracer) gcEnd(before, after, roots int) {
	t.write(traceEvent{Event: "gc_end", Before: before, After: after, Roots: roots})
}

// evalUnbound logs a failed atom lookup just before the interpreter
// panics with an UnboundError, so a trace consumer can see which name
// was missing without parsing the panic message.
func (t *Tracer) evalUnbound(name string) {
	t.write(traceEvent{Event: "eval_unbound", Binding: name})
}
