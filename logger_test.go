package meshvk

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, false)
	l.Infof("one %d", 1)
	l.Debugf("hidden")
	l.Warnf("two")
	l.Errorf("three")

	out := buf.String()
	for _, want := range []string{"INFO: ", "one 1", "WARNING: ", "ERROR: ", "logger_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged without debug enabled:\n%s", out)
	}
}

func TestLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, true)
	l.Debugf("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("have %q, want the debug line", buf.String())
	}
	if err := l.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
