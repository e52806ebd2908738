package log

import (
	"sync/atomic"
)

// process is the logger of the running command. It is nil until a command
// installs one.
var process atomic.Pointer[Logger]

// Install makes logger the process-wide default until the returned restore
// func runs. Each command installs the logger built from its resolved
// config and restores the previous one when it closes.
func Install(logger *Logger) (restore func()) {
	prev := process.Swap(logger)
	return func() { process.Store(prev) }
}

// DefaultLogger returns the installed logger. Before any command has
// installed one, warnings and errors go to stderr.
func DefaultLogger() *Logger {
	if l := process.Load(); l != nil {
		return l
	}
	l := Default()
	if process.CompareAndSwap(nil, l) {
		return l
	}
	return process.Load()
}

// OrDefault returns l, or the process-wide logger when l is nil
func OrDefault(l *Logger) *Logger {
	if l != nil {
		return l
	}
	return DefaultLogger()
}
