package debugger

import (
	"strings"
	"testing"

	"github.com/justina-lang/justinavm/interp"
)

func TestExecuteLinePrintsOutput(t *testing.T) {
	dbg := NewDebugger(interp.DefaultLimits, nil)

	if err := dbg.ExecuteLine(`coutLine "hello";`); err != nil {
		t.Fatalf("ExecuteLine: %v", err)
	}
	if out := dbg.Output(); out != "hello\n" {
		t.Errorf("Output() = %q, want %q", out, "hello\n")
	}
}

func TestExecuteLineRepeatsLastOnEmpty(t *testing.T) {
	dbg := NewDebugger(interp.DefaultLimits, nil)

	if err := dbg.ExecuteLine(`cout "x";`); err != nil {
		t.Fatalf("ExecuteLine: %v", err)
	}
	dbg.Output()

	if err := dbg.ExecuteLine(""); err != nil {
		t.Fatalf("ExecuteLine(empty): %v", err)
	}
	if out := dbg.Output(); out != "x" {
		t.Errorf("Output() after repeat = %q, want %q", out, "x")
	}
	if dbg.History.Size() != 1 {
		t.Errorf("History.Size() = %d, want 1 (repeat should not re-add)", dbg.History.Size())
	}
}

func TestExecuteLineReportsError(t *testing.T) {
	dbg := NewDebugger(interp.DefaultLimits, nil)

	err := dbg.ExecuteLine(`cout undeclaredVar;`)
	if err == nil {
		t.Fatal("expected an error referencing an undeclared variable")
	}
	if !strings.Contains(err.Error(), "var") && !strings.Contains(err.Error(), "declar") {
		t.Logf("error was: %v (not asserting exact wording)", err)
	}
}

func TestListBPReportsEmptyTable(t *testing.T) {
	dbg := NewDebugger(interp.DefaultLimits, nil)

	if err := dbg.ExecuteLine(`listBP;`); err != nil {
		t.Fatalf("listBP: %v", err)
	}
	if out := dbg.Output(); !strings.Contains(out, "no breakpoints set") {
		t.Errorf("listBP output = %q, want it to report no breakpoints", out)
	}
}
