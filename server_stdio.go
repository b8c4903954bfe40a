package fileops

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	initialScanBufferSize = 64 * 1024
	// Lines carry whole file contents, so the limit is generous.
	maxLineSize = 64 * 1024 * 1024
)

// StdIOServer serves a Server over a line-delimited byte stream, normally
// stdin and stdout.
type StdIOServer struct {
	*Server
	in  io.Reader
	out io.Writer
}

// NewStdIOServer creates a new StdIOServer.
func NewStdIOServer(server *Server, in io.Reader, out io.Writer) *StdIOServer {
	return &StdIOServer{
		Server: server,
		in:     in,
		out:    out,
	}
}

// Run reads lines until EOF or ctx is cancelled, writing at most one
// response line per input line in input order. It returns nil on EOF,
// ctx.Err() on cancellation and an error if reading or writing fails.
// On cancellation a line that is already being handled runs to completion
// before Run returns, and no line is handled afterwards. The reader is not
// closed, so a read blocked on it ends only when input arrives or closes.
func (s *StdIOServer) Run(ctx context.Context) error {
	sessionID := uuid.NewString()

	ctx, span := StartSpan(ctx, "StdIOServer.Run")
	defer span.End()
	span.SetAttributes(attribute.String("session", sessionID))

	var err error
	defer func() {
		recordSpanError(span, err)
	}()

	logger := s.logger.WithFields(map[string]interface{}{
		"session": sessionID,
	})
	logger.Info("StdIOServer started")

	scanner := bufio.NewScanner(s.in)
	buffer := make([]byte, 0, initialScanBufferSize)
	scanner.Buffer(buffer, maxLineSize)

	done := make(chan error, 1)

	// busy is held while a line is dispatched and its response written, so
	// cancellation waits for that line instead of abandoning it.
	var busy sync.Mutex
	stopped := false

	// Lines already being handled are not cancelled.
	dispatchCtx := context.WithoutCancel(ctx)

	go func() {
		for {
			if !scanner.Scan() {
				if scanErr := scanner.Err(); scanErr != nil {
					done <- fmt.Errorf("scanner error: %w", scanErr)
				} else {
					done <- nil
				}
				return
			}

			busy.Lock()
			if stopped || ctx.Err() != nil {
				busy.Unlock()
				done <- ctx.Err()
				return
			}
			writeErr := s.handleLine(dispatchCtx, logger, scanner.Bytes())
			busy.Unlock()

			if writeErr != nil {
				done <- writeErr
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		busy.Lock()
		stopped = true
		busy.Unlock()
		logger.Debug("Context cancelled, StdIOServer shutting down")
		err = ctx.Err()
		return err
	case err = <-done:
		if err != nil {
			logger.WithErr(err).Error("StdIOServer stopped")
		} else {
			logger.Info("Input closed, StdIOServer shutting down")
		}
		return err
	}
}

// handleLine dispatches one line and writes the response, if any.
func (s *StdIOServer) handleLine(ctx context.Context, logger Logger, line []byte) error {
	outcome := s.Dispatch(ctx, line)
	switch outcome.Kind {
	case OutcomeEmit:
		return writeMessage(s.out, outcome.Response)
	case OutcomeSuppress:
		logger.Debug("Request handled without response")
	case OutcomeDrop:
		logger.WithFields(map[string]interface{}{
			"reason": outcome.Reason,
		}).Debug("Dropped input line")
	}
	return nil
}
