package service

import (
	"bytes"
	"io"
	"sync"
)

// EventEmittingWriter wraps a buffer and invokes an optional callback
// whenever output is written to it. Adapted from the teacher's version,
// which emitted desktop-runtime events through a wails context; since
// this tree carries no GUI frontend, the wails dependency is dropped in
// favor of a plain callback a frontend (HTTP API, CLI) can wire to
// whatever transport it has (api.Broadcaster.BroadcastOutput, a
// terminal write, ...).
type EventEmittingWriter struct {
	buffer   *bytes.Buffer
	onOutput func(string)
	mutex    sync.Mutex
}

// NewEventEmittingWriter creates a new event-emitting writer. onOutput
// may be nil, in which case writes are only buffered.
func NewEventEmittingWriter(buffer *bytes.Buffer, onOutput func(string)) *EventEmittingWriter {
	return &EventEmittingWriter{
		buffer:   buffer,
		onOutput: onOutput,
	}
}

// Write implements io.Writer.
func (w *EventEmittingWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err = w.buffer.Write(p)
	if err == nil && n > 0 && w.onOutput != nil {
		w.onOutput(string(p))
	}
	return n, err
}

// GetBufferAndClear returns buffer contents and clears it.
func (w *EventEmittingWriter) GetBufferAndClear() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	output := w.buffer.String()
	w.buffer.Reset()
	return output
}

var _ io.Writer = (*EventEmittingWriter)(nil)
