// Package debugger implements the interactive frontend session around
// one interp.Interpreter: a command-history-aware REPL loop.
//
// setBP/clearBP/go/step/stepOver/stepOut/abort/debug/loadProg/
// clearProg/clearMem/delete are language commands (spec §6's command
// table marks them "immediate only", not a separate debugger-command
// syntax), so unlike the teacher's GDB-style Debugger — which parsed
// its own "break/step/continue/print" command language and dispatched
// each to a VM-specific handler — this package's only remaining job is
// presentation: read a line, hand it to interp.Interpreter.ExecLine,
// and show whatever it printed or returned.
package debugger

import (
	"strings"
	"time"

	"github.com/justina-lang/justinavm/housekeeping"
	"github.com/justina-lang/justinavm/interp"
)

// Debugger is one REPL session wrapping an Interpreter.
type Debugger struct {
	Interp  *interp.Interpreter
	History *CommandHistory

	LastLine string
	output   strings.Builder
}

// bufferHost implements engine.Host by collecting Print output into
// the owning Debugger's buffer instead of writing straight to a
// stream, so CLI/TUI/API frontends can each decide how and when to
// flush it. Grounded on the teacher's Debugger.Output strings.Builder,
// generalized from a debugger-command result buffer to the
// interpreter's own Host output seam.
type bufferHost struct {
	d *Debugger
}

func (h bufferHost) Print(s string) { h.d.output.WriteString(s) }
func (h bufferHost) ReadLine() (string, bool) {
	return "", false
}
func (h bufferHost) Millis() int64 { return time.Now().UnixMilli() }
func (h bufferHost) Micros() int64 { return time.Now().UnixMicro() }

// NewDebugger creates a REPL session around a freshly constructed
// Interpreter bound to the given limits and housekeeping monitor.
func NewDebugger(limits interp.Limits, house *housekeeping.Monitor) *Debugger {
	d := &Debugger{History: NewCommandHistory()}
	d.Interp = interp.New(limits, bufferHost{d: d}, house)
	return d
}

// ExecuteLine parses and runs one line of input, mirroring the
// teacher's Debugger.ExecuteCommand: history bookkeeping plus
// empty-line repeat of the last line, but dispatching straight to
// interp.Interpreter.ExecLine rather than a separate meta-command
// table.
func (d *Debugger) ExecuteLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastLine
	}
	if line == "" {
		return nil
	}
	d.History.Add(line)
	d.LastLine = line
	return d.Interp.ExecLine(line)
}

// Output returns and clears whatever the interpreter has printed since
// the last call.
func (d *Debugger) Output() string {
	out := d.output.String()
	d.output.Reset()
	return out
}
