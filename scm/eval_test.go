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
	"strings"
	"testing"
)

func evalSource(t *testing.T, it *Interpreter, src string) Object {
	t.Helper()
	result, err := it.EvalAll(strings.NewReader(src))
	if err != nil {
		t.Fatalf("EvalAll(%q): %v", src, err)
	}
	return result
}

func TestEvalQuoteReturnsArgumentUnevaluated(t *testing.T) {
	it := NewInterpreter()
	result := evalSource(t, it, "(quote undefined_name)")
	atom, ok := result.(*Atom)
	if !ok {
		t.Fatalf("expected *Atom, got %T", result)
	}
	if string(atom.bytes) != "undefined_name" {
		t.Errorf("got %q, want %q", atom.bytes, "undefined_name")
	}
}

func TestEvalUnboundAtomFails(t *testing.T) {
	it := NewInterpreter()
	_, err := it.EvalAll(strings.NewReader("undefined_name"))
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != UnboundError {
		t.Fatalf("expected UnboundError, got %v", err)
	}
}

func TestFunAppliesClosureAndPrintAtomWritesOutput(t *testing.T) {
	it := NewInterpreter()
	var out bytes.Buffer
	it.Output = &out

	result := evalSource(t, it, "((fun (x (print_atom x))) (quote hello))")
	if _, ok := result.(*Nil); !ok {
		t.Errorf("print_atom should return nil, got %T", result)
	}
	if out.String() != "hello" {
		t.Errorf("print_atom wrote %q, want %q", out.String(), "hello")
	}
}

func TestFunClosureCanBeAppliedMultipleTimes(t *testing.T) {
	it := NewInterpreter()
	var out bytes.Buffer
	it.Output = &out

	// f is bound to one closure, which is then applied twice.
	evalSource(t, it, "((fun (f ((fun (ignored (f (quote second)))) (f (quote first))))) (fun (x (print_atom x))))")
	if out.String() != "firstsecond" {
		t.Errorf("got %q, want %q", out.String(), "firstsecond")
	}
}

func TestAssocFindsBoundNameInAlist(t *testing.T) {
	it := NewInterpreter()
	key := it.newAtomFromString("print_atom")
	value := assoc(key, it.env)
	if value == nil {
		t.Fatal("expected print_atom to be bound in the initial environment")
	}
	if _, ok := value.(*Function); !ok {
		t.Errorf("expected *Function, got %T", value)
	}
}

func TestAssocReturnsNilForUnboundName(t *testing.T) {
	it := NewInterpreter()
	key := it.newAtomFromString("not_bound_anywhere")
	if assoc(key, it.env) != nil {
		t.Error("expected nil for an unbound name")
	}
}
