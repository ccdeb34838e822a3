package logger

import (
	"sync"
)

// Log levels accepted in config.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings accepted in config.
const (
	ConsoleEncoding = "console"
	JSONEncoding    = "json"
)

var (
	// globalLogger holds the process logger.
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process logger. The first call decides level and
// encoding; later calls return the same instance.
func Get(level string, encoding ...string) *Logger {
	once.Do(func() {
		enc := ConsoleEncoding
		if len(encoding) > 0 && encoding[0] != "" {
			enc = encoding[0]
		}
		globalLogger = newZapLogger(level, enc)
	})
	return globalLogger
}
