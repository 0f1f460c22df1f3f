// Package logging implements the Logger sink contract (§6): three
// line-oriented channels (info, warning, error), safe for serialised calls
// from concurrent sampling workers, backed by zerolog. A LoggerError (§7)
// degrades the sink to a no-op rather than propagating, since the core must
// keep running without a working log.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/fapsolve/pkg/faerrors"
)

// Logger is the three-channel sink contract external callers provide to the
// orchestrator and solver driver (§6 "Logger sink contract").
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)

	// SolverOutput returns an io.Writer the solver driver can hand to the
	// external solver for stdout redirection (§6).
	SolverOutput() io.Writer
}

// ZerologSink is the default Logger implementation. All methods take an
// internal mutex so the core's own locking discipline (§5 "Logger sink:
// serialised by a mutex") has one real lock underneath it, not just a
// documented convention.
type ZerologSink struct {
	mu     sync.Mutex
	logger zerolog.Logger
	broken bool
}

// NewZerologSink builds a sink writing to w (os.Stderr is the usual choice
// for CLI use, per the teacher's cmd/ convention).
func NewZerologSink(w io.Writer) *ZerologSink {
	if w == nil {
		w = os.Stderr
	}
	return &ZerologSink{logger: zerolog.New(w).With().Timestamp().Logger()}
}

func (s *ZerologSink) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return
	}
	s.logger.Info().Msg(msg)
}

func (s *ZerologSink) Warning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return
	}
	s.logger.Warn().Msg(msg)
}

func (s *ZerologSink) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return
	}
	s.logger.Error().Msg(msg)
}

// SolverOutput returns a writer that logs each Write call as one info-level
// message prefixed with "[solver]". Every write is logged at info level;
// tags in the solver's output are not interpreted.
func (s *ZerologSink) SolverOutput() io.Writer {
	return solverWriter{sink: s}
}

// Disable degrades the sink to a no-op and logs one final line recording
// why, per §7 LoggerError: "reported once, then sink becomes a no-op."
func (s *ZerologSink) Disable(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return
	}
	s.broken = true
	s.logger.Error().Msgf("%v: %v", faerrors.ErrLoggerError, cause)
}

type solverWriter struct {
	sink *ZerologSink
}

func (w solverWriter) Write(p []byte) (int, error) {
	w.sink.Info(fmt.Sprintf("[solver] %s", p))
	return len(p), nil
}

// NoopSink discards everything; useful for tests and for the degraded state
// a LoggerError forces the core into.
type NoopSink struct{}

func (NoopSink) Info(string)    {}
func (NoopSink) Warning(string) {}
func (NoopSink) Error(string)   {}
func (NoopSink) SolverOutput() io.Writer { return io.Discard }
