// Package loader resolves and sandboxes Justina source-file paths
// before handing them to interp.Interpreter.LoadFile.
//
// Grounded on the teacher's loader.LoadProgramIntoVM, which took a
// parsed program and placed it into the VM's address space; here there
// is no separate assembly/encode step (interp.Interpreter.LoadFile
// parses directly), so the part of the teacher's loader worth keeping
// is the "resolve an external path against a trusted root" concern
// main.go applied via machine.FilesystemRoot — generalized from
// restricting runtime file-builtins to restricting which program file
// itself may be loaded.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a requested path resolves outside
// the configured filesystem root.
var ErrOutsideRoot = fmt.Errorf("path escapes filesystem root")

// Root sandboxes file access to a directory subtree, the same
// restriction main.go's -fsroot flag applied to the ARM VM's
// file-system built-ins, carried over to this interpreter's program
// loading and its own file-system built-ins (spec §6 stream I/O).
type Root struct {
	abs string
}

// NewRoot resolves dir to an absolute path and returns a Root bound to
// it. An empty dir defaults to the current working directory.
func NewRoot(dir string) (*Root, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving current directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving filesystem root: %w", err)
	}
	return &Root{abs: abs}, nil
}

// Resolve joins a user-supplied path against the root and verifies the
// result does not escape it, rejecting `../` traversal the same way
// the teacher's FilesystemRoot check did for VM file built-ins.
func (r *Root) Resolve(path string) (string, error) {
	var joined string
	if filepath.IsAbs(path) {
		joined = filepath.Clean(path)
	} else {
		joined = filepath.Clean(filepath.Join(r.abs, path))
	}
	if joined != r.abs && !strings.HasPrefix(joined, r.abs+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return joined, nil
}

// LoadSource resolves path against the root and reads it back, for
// callers that want the raw source text rather than a pre-parsed
// interpreter. The loadProg command does not use it: it goes through
// Resolve and interp.Interpreter.LoadFile.
func (r *Root) LoadSource(path string) (string, error) {
	resolved, err := r.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved) // #nosec G304 -- resolved against a caller-configured sandbox root above
	if err != nil {
		return "", fmt.Errorf("reading program file: %w", err)
	}
	return string(data), nil
}
