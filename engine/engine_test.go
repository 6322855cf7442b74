package engine

import (
	"strconv"
	"strings"
	"testing"

	"github.com/justina-lang/justinavm/ident"
	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/value"
)

// recordingHost captures every Print call so tests can assert on
// console output without a real terminal.
type recordingHost struct {
	lines []string
}

func (h *recordingHost) Print(s string)          { h.lines = append(h.lines, s) }
func (h *recordingHost) ReadLine() (string, bool) { return "", false }
func (h *recordingHost) Millis() int64            { return 0 }
func (h *recordingHost) Micros() int64            { return 0 }

// compileAndRun parses each line in order against a shared store/parser
// (so declarations and later statements see the same slots), then runs
// the resulting stream to completion.
func compileAndRun(t *testing.T, lines ...string) (*Engine, *recordingHost) {
	t.Helper()
	acct := ident.NewAccounting()
	vars := value.NewStore(acct, 8)
	p := parser.NewParser(4096, vars, acct)
	for i, line := range lines {
		if err := p.ParseLine(line, i+1); err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
	}
	eng := NewEngine(p.Stream, vars, acct, p.Pool)
	host := &recordingHost{}
	eng.Host = host
	eng.Mode = ModeRun
	if err := eng.Run(0); err != nil {
		t.Fatalf("run: %v", err)
	}
	return eng, host
}

func scalarSlot(t *testing.T, vars *value.Store, name string) *value.Slot {
	t.Helper()
	idx, ok := vars.LookupProgramVar(name)
	if !ok {
		t.Fatalf("variable %q not declared", name)
	}
	return vars.ProgramSlots[idx]
}

func TestArithmeticAssignment(t *testing.T) {
	eng, _ := compileAndRun(t,
		"var x;",
		"x = 2 + 3 * 4;",
	)
	slot := scalarSlot(t, eng.Vars, "x")
	if slot.Value.Kind != value.KindLong || slot.Value.Long != 14 {
		t.Errorf("x = %+v, want Long(14)", slot.Value)
	}
}

func TestCompoundAssignAndIncrDecr(t *testing.T) {
	eng, _ := compileAndRun(t,
		"var x = 10;",
		"x += 5;",
		"x++;",
	)
	slot := scalarSlot(t, eng.Vars, "x")
	if slot.Value.Long != 16 {
		t.Errorf("x = %d, want 16", slot.Value.Long)
	}
}

func TestIfElseifElseChain(t *testing.T) {
	tests := []struct {
		input int32
		want  string
	}{
		{1, "one"},
		{2, "two"},
		{99, "other"},
	}
	for _, tt := range tests {
		eng, _ := compileAndRun(t,
			"var n; var label;",
			"n = "+strconv.Itoa(int(tt.input))+";",
			"if n == 1;",
			"label = \"one\";",
			"elseif n == 2;",
			"label = \"two\";",
			"else;",
			"label = \"other\";",
			"end;",
		)
		slot := scalarSlot(t, eng.Vars, "label")
		if got := slot.Value.AsString(); got != tt.want {
			t.Errorf("n=%d: label = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWhileLoop(t *testing.T) {
	eng, _ := compileAndRun(t,
		"var i = 0; var total = 0;",
		"while i < 5;",
		"total = total + i;",
		"i = i + 1;",
		"end;",
	)
	total := scalarSlot(t, eng.Vars, "total")
	if total.Value.Long != 10 {
		t.Errorf("total = %d, want 10", total.Value.Long)
	}
}

func TestForLoopBreakAndContinue(t *testing.T) {
	eng, _ := compileAndRun(t,
		"var i; var sum = 0;",
		"for i = 1, 10;",
		"if i == 7;",
		"break;",
		"end;",
		"if i % 2 == 0;",
		"continue;",
		"end;",
		"sum = sum + i;",
		"end;",
	)
	sum := scalarSlot(t, eng.Vars, "sum")
	// odd numbers 1,3,5 are added before the loop breaks at i == 7
	if sum.Value.Long != 9 {
		t.Errorf("sum = %d, want 9", sum.Value.Long)
	}
}

func TestFunctionCallWithDefaultArgument(t *testing.T) {
	eng, _ := compileAndRun(t,
		"function add(a, b = 10);",
		"return a + b;",
		"end;",
		"var r1; var r2;",
		"r1 = add(3, 4);",
		"r2 = add(3);",
	)
	r1 := scalarSlot(t, eng.Vars, "r1")
	r2 := scalarSlot(t, eng.Vars, "r2")
	if r1.Value.Long != 7 {
		t.Errorf("r1 = %d, want 7", r1.Value.Long)
	}
	if r2.Value.Long != 13 {
		t.Errorf("r2 = %d, want 13 (default b=10)", r2.Value.Long)
	}
}

func TestEvalBuiltinSharesStore(t *testing.T) {
	eng, _ := compileAndRun(t,
		"var x = 4; var y;",
		"y = eval(\"x * x\");",
	)
	y := scalarSlot(t, eng.Vars, "y")
	if y.Value.Long != 16 {
		t.Errorf("y = %d, want 16", y.Value.Long)
	}
}

func TestTrapErrorsResumesAtNextStatement(t *testing.T) {
	eng, _ := compileAndRun(t,
		"trapErrors on;",
		"var x; var ok;",
		"x = 1 / 0;",
		"ok = 1;",
	)
	ok := scalarSlot(t, eng.Vars, "ok")
	if ok.Value.Long != 1 {
		t.Errorf("ok = %d, want 1 (execution should resume after the trapped error)", ok.Value.Long)
	}
	if eng.LastErrCode == 0 {
		t.Errorf("LastErrCode = 0, want non-zero after the division error")
	}
}

func TestCoutLineWritesThroughHost(t *testing.T) {
	_, host := compileAndRun(t,
		"coutLine \"hello\", 42;",
	)
	if len(host.lines) != 1 {
		t.Fatalf("got %d printed lines, want 1", len(host.lines))
	}
	if !strings.Contains(host.lines[0], "hello") || !strings.Contains(host.lines[0], "42") {
		t.Errorf("printed line %q missing expected content", host.lines[0])
	}
}
