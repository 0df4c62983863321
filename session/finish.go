package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/barrier"
	"github.com/sarchlab/nftest/config"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/result"
)

// Exit codes.
const (
	ExitPass     = 0
	ExitMismatch = 1
	ExitFatal    = 2
)

// A Script is a test body. It returns only fatal errors. Mismatches are
// recorded in the session.
type Script func(ctx context.Context, s *Session) error

// Fail records a script error. Fatal errors end the session with ExitFatal.
// A mismatch error is recorded as a failed check.
func (s *Session) Fail(err error) {
	if err == nil {
		return
	}

	if !fault.IsFatal(err) {
		_ = s.results.Add(result.Result{
			ID:          "error-" + xid.New().String(),
			Kind:        result.Packet,
			Description: err.Error(),
			Expected:    "no error",
			Actual:      "error",
		})

		return
	}

	if s.fatal == nil {
		s.fatal = err
		s.logger.Error("fatal", zap.Error(err))
	}
}

// Finish settles outstanding traffic, merges extra results, prints the
// report, releases the device, and returns the exit code: ExitPass when
// every check passed, ExitMismatch when any failed, and ExitFatal after a
// fatal error. Extra results whose ID is already recorded are ignored.
// Calling Finish again returns the same code.
func (s *Session) Finish(ctx context.Context, extra ...result.Result) int {
	if s.finished {
		return s.code
	}

	if s.fatal == nil && s.started && s.sync.State() == barrier.Sending {
		s.Fail(s.sync.Barrier(ctx))
	}

	if err := s.results.Add(extra...); err != nil {
		s.Fail(err)
	}

	s.finished = true
	sum := s.results.Finalize()

	result.Report(s.stdout, s.results, result.ReportOptions{
		Name:    s.name,
		Mode:    string(s.backend.Mode()),
		Colored: s.colored,
		Verbose: s.verbose,
	})

	s.code = exitCode(sum, s.fatal)

	if s.fatal != nil {
		Diagnose(s.stderr, s.fatal)
	}

	s.release(sum)

	return s.code
}

func exitCode(sum result.Summary, fatal error) int {
	switch {
	case fatal != nil:
		return ExitFatal
	case !sum.OK():
		return ExitMismatch
	default:
		return ExitPass
	}
}

func (s *Session) release(sum result.Summary) {
	if s.recorder != nil {
		err := errors.Join(
			s.recorder.RecordResults(s.results.Results()),
			s.recorder.End(sum, s.code),
			s.recorder.Close(),
		)
		if err != nil {
			s.logger.Warn("recording failed", zap.Error(err))
		}
	}

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := s.monitor.Stop(ctx); err != nil {
			s.logger.Warn("stopping monitor", zap.Error(err))
		}
	}

	if s.started {
		if err := s.backend.Close(); err != nil {
			s.logger.Warn("closing backend", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
}

// Diagnose writes a one-line explanation of a fatal error.
func Diagnose(w io.Writer, err error) {
	kind, ok := fault.KindOf(err)

	switch {
	case !ok:
		fmt.Fprintf(w, "FATAL: %v\n", err)
	case kind == fault.Timeout:
		fmt.Fprintf(w, "FATAL: device did not drain: %v\n", err)
	case kind == fault.Configuration:
		fmt.Fprintf(w, "FATAL: bad configuration: %v\n", err)
	case kind == fault.Transport:
		fmt.Fprintf(w, "FATAL: device unreachable: %v\n", err)
	case kind == fault.Usage:
		fmt.Fprintf(w, "FATAL: harness misuse: %v\n", err)
	default:
		fmt.Fprintf(w, "FATAL: %v\n", err)
	}
}

// Exit runs the registered exit handlers and terminates the process.
func Exit(code int) {
	atexit.Exit(code)
}

// Run creates a session, runs the script, and finishes. It returns the exit
// code.
func Run(ctx context.Context, cfg config.Config, script Script, opts ...Option) int {
	s, err := New(cfg, opts...)
	if err != nil {
		bare := Session{stderr: os.Stderr}
		for _, o := range opts {
			o(&bare)
		}

		Diagnose(bare.stderr, err)

		return ExitFatal
	}

	if err := s.Start(ctx); err != nil {
		s.Fail(err)
		return s.Finish(ctx)
	}

	s.Fail(script(ctx, s))

	return s.Finish(ctx)
}
