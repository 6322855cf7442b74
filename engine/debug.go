package engine

// Debug abstracts the breakpoint-table and program-control commands of
// spec §4.F/§6 (setBP, clearBP, enableBP, disableBP, moveBP, BPon,
// BPoff, BPactivate, listBP, loadProg, clearProg, clearMem, delete) out
// to the orchestration layer. interp.Interpreter implements this; the
// engine never imports interp (interp already imports engine), the
// same inversion Host draws around hardware I/O.
type Debug interface {
	SetBreakpoint(line int, view string, hasView bool, hitCount int, trigger string, hasTrigger bool) error
	ClearBreakpoint(line int) error
	EnableBreakpoint(line int) error
	DisableBreakpoint(line int) error
	MoveBreakpoint(from, to int) error
	BreakpointsOn()
	BreakpointsOff()
	RearmBreakpoints() error
	FormatBreakpoints() string

	// LoadProgram, ClearProgram and ClearMemory each replace state the
	// engine itself holds (token stream, variable store); the caller
	// must stop using the Engine these ran on and pick up the fresh one
	// the Debug implementation now owns.
	LoadProgram(path string) error
	ClearProgram() error
	ClearMemory() error

	DeleteVariable(name string) error
}
