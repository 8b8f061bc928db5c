package meshvk

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger bundles the leveled loggers shared by every component.
type Logger struct {
	info_log  *log.Logger
	warn_log  *log.Logger
	error_log *log.Logger
	debug     bool
	closer    io.Closer
}

// NewLogger writes to path (append mode), or to stderr when path is empty.
func NewLogger(path string, debug bool) (*Logger, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer
	if path != "" {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, err
		}
		out, closer = file, file
	}
	l := NewWriterLogger(out, debug)
	l.closer = closer
	return l, nil
}

func NewWriterLogger(out io.Writer, debug bool) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		info_log:  log.New(out, "INFO: ", flags),
		warn_log:  log.New(out, "WARNING: ", flags),
		error_log: log.New(out, "ERROR: ", flags),
		debug:     debug,
	}
}

// DiscardLogger drops everything; used by tests.
func DiscardLogger() *Logger {
	return NewWriterLogger(io.Discard, false)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.info_log.Output(2, fmt.Sprintf(format, args...))
}

// Debugf logs at info level only when debug output was requested.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.debug {
		l.info_log.Output(2, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.warn_log.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.error_log.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
