// Package housekeeping implements component I: the periodic callback
// and cancellation flags that let a host interrupt a running Justina
// program without tearing down the interpreter.
//
// Grounded on api/process_monitor.go's ticker-driven background
// monitor (NewProcessMonitor/Start/Stop, the stopChan/sync.Once
// shutdown pattern), generalized from "watch for parent-process death"
// to "poll a host-supplied callback at a bounded minimum interval and
// latch whatever flags it requests".
package housekeeping

import (
	"sync"
	"time"
)

// MinInterval is the floor on how often Poll will actually invoke the
// callback, mirroring spec §4.I's "bounded minimum interval": callers
// may ask to be polled on every statement, but the callback itself
// only runs this often.
const MinInterval = 10 * time.Millisecond

// Callback is the host-supplied function consulted by Poll. It
// receives the flags already latched (so a host can see, e.g., that a
// stop is already pending) and returns the flags it wants to add.
type Callback func(current Flags) Flags

// Flags are the four housekeeping signal bits of spec §4.I.
type Flags struct {
	Kill         bool // terminate the interpreter entirely
	Abort        bool // stop the running program, preserving state
	Stop         bool // suspend into debug
	ConsoleReset bool // re-route console streams to defaults
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.Kill || f.Abort || f.Stop || f.ConsoleReset
}

// Monitor owns the latched flags and the host callback, and paces how
// often that callback actually runs. It is not a goroutine: Poll is
// called synchronously by engine.Engine.Run before every executed
// token step (and by Background, for hosts that drive it on a ticker);
// nothing polls during parsing or while waiting for input. This works like
// ProcessMonitor.monitorLoop's ticker tick but driven by the caller
// instead of a background timer.
type Monitor struct {
	mu       sync.Mutex
	cb       Callback
	last     time.Time
	flags    Flags
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a Monitor with no callback registered; SetCallback wires
// one up once the host is ready (mirrors the reference's "register a
// housekeeping callback before the main loop" sequencing).
func New() *Monitor {
	return &Monitor{}
}

// SetCallback installs (or replaces) the host callback.
func (m *Monitor) SetCallback(cb Callback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cb = cb
}

// Poll runs the callback if at least MinInterval has elapsed since the
// last run, merging in any flags it requests. It always returns the
// flags latched so far, whether or not the callback actually ran this
// call — a suspension point that calls Poll every statement still sees
// a kill/abort requested one tick "late" rather than missing it.
func (m *Monitor) Poll(now time.Time) Flags {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cb != nil && now.Sub(m.last) >= MinInterval {
		m.last = now
		requested := m.cb(m.flags)
		m.flags.Kill = m.flags.Kill || requested.Kill
		m.flags.Abort = m.flags.Abort || requested.Abort
		m.flags.Stop = m.flags.Stop || requested.Stop
		m.flags.ConsoleReset = m.flags.ConsoleReset || requested.ConsoleReset
	}
	return m.flags
}

// RequestKill, RequestAbort, RequestStop, RequestConsoleReset let the
// interp layer (or a signal handler) set a flag directly, bypassing
// the callback — used for SIGINT/SIGTERM delivery, which must take
// effect regardless of the callback's polling cadence.
func (m *Monitor) RequestKill()         { m.setFlag(func(f *Flags) { f.Kill = true }) }
func (m *Monitor) RequestAbort()        { m.setFlag(func(f *Flags) { f.Abort = true }) }
func (m *Monitor) RequestStop()         { m.setFlag(func(f *Flags) { f.Stop = true }) }
func (m *Monitor) RequestConsoleReset() { m.setFlag(func(f *Flags) { f.ConsoleReset = true }) }

func (m *Monitor) setFlag(apply func(*Flags)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.flags)
}

// Flags returns the currently latched flags without polling the
// callback.
func (m *Monitor) Flags() Flags {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags
}

// ClearAbort and ClearStop are called once the interp layer has acted
// on a latched abort/stop (program halted, or debugger entered), so
// the next Poll doesn't immediately re-trigger the same transition.
// Kill is intentionally not clearable: once requested the interpreter
// is shutting down.
func (m *Monitor) ClearAbort() { m.setFlag(func(f *Flags) { f.Abort = false }) }
func (m *Monitor) ClearStop()  { m.setFlag(func(f *Flags) { f.Stop = false }) }

// ClearConsoleReset is called once the host has re-routed its console
// streams to defaults in response to a pending ConsoleReset flag.
func (m *Monitor) ClearConsoleReset() { m.setFlag(func(f *Flags) { f.ConsoleReset = false }) }

// Background starts an optional ticker-driven goroutine that calls
// Poll on its own schedule, for hosts that have no natural per-
// statement suspension point to drive polling from (e.g. the API
// server's long-idle-waiting-for-a-websocket-message case). It
// mirrors ProcessMonitor.Start/monitorLoop/Stop exactly: a ticker, a
// stop channel, and a sync.Once-guarded Stop.
type Background struct {
	monitor  *Monitor
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewBackground wires a Monitor to a free-running ticker at interval
// (which is clamped up to MinInterval).
func NewBackground(m *Monitor, interval time.Duration) *Background {
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Background{monitor: m, interval: interval, stopChan: make(chan struct{})}
}

// Start begins the background polling goroutine.
func (b *Background) Start() {
	go b.loop()
}

func (b *Background) loop() {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.monitor.Poll(time.Now())
		case <-b.stopChan:
			return
		}
	}
}

// Stop gracefully stops the background goroutine. Safe to call more
// than once.
func (b *Background) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopChan)
	})
}
