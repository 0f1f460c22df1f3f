package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestZerologSinkWritesEachChannel(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(&buf)

	sink.Info("hello info")
	sink.Warning("hello warning")
	sink.Error("hello error")

	out := buf.String()
	for _, want := range []string{"hello info", "hello warning", "hello error"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q: %s", want, out)
		}
	}
}

func TestDisableDegradesToNoop(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(&buf)

	sink.Disable(errFake{})
	buf.Reset()

	sink.Info("should not appear")
	sink.Warning("should not appear")
	sink.Error("should not appear")

	if buf.Len() != 0 {
		t.Fatalf("sink kept logging after Disable: %s", buf.String())
	}
}

func TestSolverOutputForwardsAsInfo(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(&buf)

	w := sink.SolverOutput()
	if _, err := w.Write([]byte("solver line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "solver line") {
		t.Fatalf("solver output not forwarded: %s", buf.String())
	}
}

func TestNoopSinkDiscardsEverything(t *testing.T) {
	var s NoopSink
	s.Info("x")
	s.Warning("x")
	s.Error("x")
	if s.SolverOutput() == nil {
		t.Fatalf("SolverOutput should never be nil")
	}
}

type errFake struct{}

func (errFake) Error() string { return "fake failure" }
