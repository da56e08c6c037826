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
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// nopWriteCloser adapts a bytes.Buffer to io.WriteCloser for tests that
// don't care what Close does.
type nopWriteCloser struct {
	*bytes.Buffer
}

func (nopWriteCloser) Close() error { return nil }

func linesOf(buf *bytes.Buffer) []string {
	trimmed := strings.TrimRight(buf.String(), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestTracerWritesOneJSONObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(nopWriteCloser{&buf})

	tr.gcStart(10)
	tr.gcEnd(10, 3, 4)
	tr.evalUnbound("mystery")

	lines := linesOf(&buf)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}

	var start, end, unbound map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &start); err != nil {
		t.Fatalf("line 1 not valid JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("line 2 not valid JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[2]), &unbound); err != nil {
		t.Fatalf("line 3 not valid JSON: %v", err)
	}

	if start["event"] != "gc_start" || start["before"] != float64(10) {
		t.Errorf("gc_start event: %v", start)
	}
	if end["event"] != "gc_end" || end["before"] != float64(10) || end["after"] != float64(3) || end["roots"] != float64(4) {
		t.Errorf("gc_end event: %v", end)
	}
	if unbound["event"] != "eval_unbound" || unbound["binding"] != "mystery" {
		t.Errorf("eval_unbound event: %v", unbound)
	}
}

func TestTracerOmitsZeroFieldsNotApplicableToTheEvent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(nopWriteCloser{&buf})
	tr.evalUnbound("x")

	var ev map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	for _, field := range []string{"before", "after", "roots", "elapsed_ms"} {
		if _, present := ev[field]; present {
			t.Errorf("expected %q to be omitted from an eval_unbound event, got %v", field, ev[field])
		}
	}
}

func TestInterpreterGCTriggersTraceEvents(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(nopWriteCloser{&buf})
	it := NewInterpreter(WithLimit(20), WithTrace(tr))

	chain := Object(it.nilValue)
	it.roots.pushRoot(&chain)
	for i := 0; i < 5; i++ {
		setRoot(&chain, it.newCons(it.nilValue, chain))
	}
	it.roots.popRoot()
	for i := 0; i < 20; i++ {
		it.newCons(it.nilValue, it.nilValue) // garbage the collector can reclaim
	}

	if len(linesOf(&buf)) == 0 {
		t.Error("expected at least one trace event once allocation pushed past the soft limit")
	}
}
