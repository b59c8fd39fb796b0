package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"llap/frame"
)

// reader performs blocking fixed-size reads of one 12-byte frame at a
// time and hands each raw frame to the read handler over inbound.
// Mid-frame reads are not recoverable, so the reader is always abandoned
// unconditionally on shutdown rather than joined. A read failure of any
// kind (including a clean EOF) is treated the same way: the reader exits
// and reports it as fatal so the Coordinator tears the rest of the
// pipeline down.
type reader struct {
	port    portReader
	inbound chan<- string
	errs    chan<- error
	logger  *slog.Logger

	flushRequested atomic.Bool
}

type portReader interface {
	io.Reader
	FlushInput() error
}

func newReader(port portReader, inbound chan<- string, errs chan<- error, logger *slog.Logger) *reader {
	return &reader{port: port, inbound: inbound, errs: errs, logger: logger}
}

// requestFlush raises the one-shot flush signal. On the reader's next
// iteration it discards the platform's input buffer before resuming.
func (r *reader) requestFlush() {
	r.flushRequested.Store(true)
}

// run reads until the port returns an error (closed/EOF), delivering each
// frame to inbound. It returns only when a read fails or ctx is cancelled
// while a frame is being handed over; a read blocked on the port is not
// interrupted by ctx, so callers must run it in its own goroutine and
// never join it.
func (r *reader) run(ctx context.Context) {
	buf := make([]byte, frame.FrameLen)
	for {
		n, err := io.ReadFull(r.port, buf)
		if err != nil {
			if r.logger != nil {
				r.logger.Debug("reader: serial read ended", "error", err, "bytesRead", n)
			}
			select {
			case r.errs <- fmt.Errorf("reader: serial read failed: %w", err):
			default:
			}
			return
		}

		select {
		case r.inbound <- string(buf):
		case <-ctx.Done():
			return
		}

		if r.flushRequested.CompareAndSwap(true, false) {
			if err := r.port.FlushInput(); err != nil && r.logger != nil {
				r.logger.Debug("reader: flush input failed", "error", err)
			}
		}
	}
}
