// Package service wraps an interp.Interpreter behind a mutex-guarded
// API surface suitable for driving from concurrent HTTP/WebSocket
// handlers, the way the teacher's DebuggerService wrapped a *vm.VM.
package service

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/justina-lang/justinavm/engine"
	"github.com/justina-lang/justinavm/housekeeping"
	"github.com/justina-lang/justinavm/interp"
	"github.com/justina-lang/justinavm/value"
)

// DebuggerService owns one interpreter session and serializes access to
// it, the direct replacement for the teacher's *vm.VM-wrapping type of
// the same name. Dropped from the teacher's surface, each for a reason
// with no Justina-domain equivalent:
//   - GetRegisterState/GetMemory/GetLastMemoryWrite/GetDisassembly/
//     GetStack: this interpreter has named variables and a token
//     stream, not a flat register file, addressable memory, or a
//     machine-code disassembly view.
//   - AddWatchpoint/RemoveWatchpoint/GetWatchpoints: breakpoint.Table's
//     hit-count/trigger-expression fields already cover watchpoint-like
//     conditional breaks (see BreakpointInfo), so no separate mechanism
//     is carried.
//   - EvaluateExpression: superseded by ExecuteLine, which already runs
//     an arbitrary line of the language through the interpreter's own
//     parser/engine.
//   - SendInput/stdin-pipe redirection: no interactive-stdin-over-HTTP
//     design exists; engine.Host.ReadLine returning ("", false) when no
//     host is wired up (as bufferHost does) is the intended behavior.
//   - EnableExecutionTrace/.../EnableStatistics/...: tied to vm.VM's
//     per-instruction hook, which engine.Engine does not expose at
//     token granularity; no equivalent was built.
type DebuggerService struct {
	mu sync.RWMutex

	interp *interp.Interpreter
	house  *housekeeping.Monitor
	output *EventEmittingWriter
}

// serviceHost implements engine.Host by routing Print through the
// service's EventEmittingWriter and never offering interactive input,
// matching debugger.bufferHost's shape for a frontend with no terminal.
type serviceHost struct {
	writer *EventEmittingWriter
}

func (h *serviceHost) Print(s string) { _, _ = h.writer.Write([]byte(s)) }
func (h *serviceHost) ReadLine() (string, bool) {
	return "", false
}
func (h *serviceHost) Millis() int64 { return time.Now().UnixMilli() }
func (h *serviceHost) Micros() int64 { return time.Now().UnixMicro() }

// NewDebuggerService creates a session around a freshly constructed
// Interpreter. onOutput, if non-nil, is invoked with each chunk of
// program output as it is produced (wired by a caller to
// api.Broadcaster.BroadcastOutput, for instance).
func NewDebuggerService(limits interp.Limits, house *housekeeping.Monitor, onOutput func(string)) *DebuggerService {
	writer := NewEventEmittingWriter(&bytes.Buffer{}, onOutput)
	host := &serviceHost{writer: writer}

	svc := &DebuggerService{
		house:  house,
		output: writer,
	}
	svc.interp = interp.New(limits, host, house)
	return svc
}

// LoadSource loads a whole program from in-memory source text.
func (s *DebuggerService) LoadSource(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interp.ClearProgram(); err != nil {
		return err
	}
	if err := s.interp.LoadSource(text); err != nil {
		return err
	}
	return s.interp.RearmBreakpoints()
}

// LoadProgram loads a whole program from a filesystem path (through
// Root's sandbox, if the interpreter has one configured).
func (s *DebuggerService) LoadProgram(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interp.LoadProgram(path); err != nil {
		return err
	}
	return s.interp.RearmBreakpoints()
}

// Run starts/resumes free-run execution from the current cursor.
func (s *DebuggerService) Run() error { return s.runMode(engine.ModeRun) }

// Step, StepOver, and StepOut run exactly one statement at the
// respective granularity before suspending again.
func (s *DebuggerService) Step() error     { return s.runMode(engine.ModeStep) }
func (s *DebuggerService) StepOver() error { return s.runMode(engine.ModeStepOver) }
func (s *DebuggerService) StepOut() error  { return s.runMode(engine.ModeStepOut) }

func (s *DebuggerService) runMode(m engine.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interp.Engine.Mode = m
	return s.interp.Run(s.interp.Engine.Cursor())
}

// Pause requests that a concurrently running Run/Step call suspend at
// its next statement boundary, via the same housekeeping flag the
// language's own stop-from-host mechanism uses (engine.Engine.Run polls
// House.Poll between statements).
func (s *DebuggerService) Pause() {
	if s.house != nil {
		s.house.RequestStop()
	}
}

// Reset discards the parsed program and variable store, matching the
// clearProg command.
func (s *DebuggerService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interp.ClearProgram()
}

// GetExecutionState reports the engine's current suspension state.
func (s *DebuggerService) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return EngineStateToExecution(s.interp.Engine.State)
}

// SetBreakpoint, ClearBreakpoint, EnableBreakpoint, DisableBreakpoint,
// and ListBreakpoints delegate to the interpreter's own breakpoint-table
// methods, which already implement spec-level setBP/clearBP/enableBP/
// disableBP/listBP semantics; this layer only adds locking and a
// frontend-facing DTO.
func (s *DebuggerService) SetBreakpoint(line int, view string, hasView bool, hitCount int, trigger string, hasTrigger bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interp.SetBreakpoint(line, view, hasView, hitCount, trigger, hasTrigger)
}

func (s *DebuggerService) ClearBreakpoint(line int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interp.ClearBreakpoint(line)
}

func (s *DebuggerService) EnableBreakpoint(line int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interp.EnableBreakpoint(line)
}

func (s *DebuggerService) DisableBreakpoint(line int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interp.DisableBreakpoint(line)
}

func (s *DebuggerService) ListBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.interp.ListBreakpoints()
	infos := make([]BreakpointInfo, len(rows))
	for i, r := range rows {
		infos[i] = BreakpointInfo{
			Line: r.Line, Enabled: r.Enabled,
			View: r.View, HasView: r.HasView,
			Trigger: r.Trigger, HasTrigger: r.HasTrigger,
			HitCount: r.HitCount, HasHitCount: r.HasHitCount,
			HitCounter: r.HitCounter,
		}
	}
	return infos
}

// GetVariables enumerates every declared user (immediate-mode) variable,
// the replacement for the teacher's register-file snapshot: there is no
// bulk-enumeration helper on value.Store, so this walks UserNames the
// same way ident.NameTable's own internals do (0..Len()).
func (s *DebuggerService) GetVariables() []VariableInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.interp.Vars.UserNames
	slots := s.interp.Vars.UserSlots
	out := make([]VariableInfo, 0, names.Len())
	for i := 0; i < names.Len() && i < len(slots); i++ {
		slot := slots[i]
		out = append(out, VariableInfo{
			Name:  names.Name(i),
			Kind:  slot.Value.Kind.String(),
			Value: formatValue(slot.Value),
		})
	}
	return out
}

// ExecuteLine runs one line of immediate-mode input and returns whatever
// it printed.
func (s *DebuggerService) ExecuteLine(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.interp.ExecLine(text)
	return s.output.GetBufferAndClear(), err
}

// GetOutput drains and returns buffered program output produced since
// the last call (by Run/Step or ExecuteLine).
func (s *DebuggerService) GetOutput() string {
	return s.output.GetBufferAndClear()
}

// Interp exposes the underlying interpreter for callers (session
// construction) that need to set fields like Root directly.
func (s *DebuggerService) Interp() *interp.Interpreter {
	return s.interp
}

func formatValue(v value.Value) string {
	switch v.Kind {
	case value.KindLong:
		return fmt.Sprintf("%d", v.Long)
	case value.KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case value.KindString:
		return v.AsString()
	default:
		return ""
	}
}
