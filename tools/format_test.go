package tools

import (
	"strings"
	"testing"
)

func TestFormat_IndentsNestedBlock(t *testing.T) {
	source := `program p; function main(); var x=1; if x>0; x=x+1; end; end;`

	result, err := NewFormatter(DefaultFormatOptions()).Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	want := []string{
		"program p;",
		"function main();",
		"    var x = 1;",
		"    if x > 0;",
		"        x = x + 1;",
		"    end;",
		"end;",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), result)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: got %q, want %q", i, lines[i], w)
		}
	}
}

func TestFormat_ElseifDedentsThenReindents(t *testing.T) {
	source := `if a; x=1; elseif b; x=2; else; x=3; end;`

	result, err := NewFormatter(DefaultFormatOptions()).Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	want := "if a;\n    x = 1;\nelseif b;\n    x = 2;\nelse;\n    x = 3;\nend;\n"
	if result != want {
		t.Errorf("got:\n%s\nwant:\n%s", result, want)
	}
}

func TestFormat_IsIdempotent(t *testing.T) {
	source := `program p; function f(a, b); var total=0; for i, 1, b; total=total+i; end; return total; end;`

	formatter := NewFormatter(DefaultFormatOptions())
	once, err := formatter.Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	twice, err := formatter.Format(once)
	if err != nil {
		t.Fatalf("Format error on reformat: %v", err)
	}
	if once != twice {
		t.Errorf("formatting is not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
}

func TestFormat_PreservesStringEscapes(t *testing.T) {
	source := `coutLine("a \"quoted\" value\\");`

	result, err := NewFormatter(DefaultFormatOptions()).Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	if !strings.Contains(result, `"a \"quoted\" value\\"`) {
		t.Errorf("expected preserved string escapes, got: %s", result)
	}
}

func TestFormat_TrailingCommentStaysAttached(t *testing.T) {
	source := "x=1; // set initial value\ny=2;"

	result, err := NewFormatter(DefaultFormatOptions()).Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if !strings.HasSuffix(lines[0], "// set initial value") {
		t.Errorf("expected trailing comment on first line, got: %q", lines[0])
	}
	if strings.Contains(lines[1], "//") {
		t.Errorf("comment leaked onto second line: %q", lines[1])
	}
}

func TestFormat_LeadingCommentOnOwnLine(t *testing.T) {
	source := "// explains the next line\nx=1;"

	result, err := NewFormatter(DefaultFormatOptions()).Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "// explains the next line" {
		t.Errorf("got %q", lines[0])
	}
	if lines[1] != "x = 1;" {
		t.Errorf("got %q", lines[1])
	}
}

func TestFormat_CompactStyleDropsIndentation(t *testing.T) {
	source := `if a; x=1; end;`

	result, err := NewFormatter(CompactFormatOptions()).Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(result, "\n"), "\n") {
		if strings.HasPrefix(line, " ") {
			t.Errorf("compact style should not indent, got: %q", line)
		}
	}
}

func TestFormatString_MatchesDefaultFormatter(t *testing.T) {
	source := `x=1;`
	viaHelper, err := FormatString(source)
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	viaFormatter, err := NewFormatter(DefaultFormatOptions()).Format(source)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	if viaHelper != viaFormatter {
		t.Errorf("FormatString diverged from explicit default Formatter: %q vs %q", viaHelper, viaFormatter)
	}
}

func TestFormatStringWithStyle_Expanded(t *testing.T) {
	source := `if a; x=1; end;`
	result, err := FormatStringWithStyle(source, FormatExpanded)
	if err != nil {
		t.Fatalf("FormatStringWithStyle error: %v", err)
	}
	if !strings.Contains(result, "        x = 1;") {
		t.Errorf("expected wide indent for expanded style, got: %s", result)
	}
}
