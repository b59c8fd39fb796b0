package serial

import (
	"io"
	"sync/atomic"
	"time"
)

// Fake is an in-memory Port for exercising the engine package without a
// real serial device. Inject() feeds bytes as though a peer wrote them to
// the wire; TakeWritten() drains frames the engine wrote out.
type Fake struct {
	inbound  chan byte
	outbound chan []byte
	closed   chan struct{}
	flushes  int32
}

// NewFake creates a ready-to-use Fake port.
func NewFake() *Fake {
	return &Fake{
		inbound:  make(chan byte, 4096),
		outbound: make(chan []byte, 256),
		closed:   make(chan struct{}),
	}
}

// Inject feeds data to the next Read calls, as though it arrived on the
// wire from a peer device.
func (f *Fake) Inject(data string) {
	for i := 0; i < len(data); i++ {
		select {
		case f.inbound <- data[i]:
		case <-f.closed:
			return
		}
	}
}

// Read implements io.Reader, blocking until len(b) bytes are available or
// the port is closed.
func (f *Fake) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		select {
		case by, ok := <-f.inbound:
			if !ok {
				if n > 0 {
					return n, nil
				}
				return 0, io.EOF
			}
			b[n] = by
			n++
		case <-f.closed:
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		}
	}
	return n, nil
}

// Write implements io.Writer, recording the frame for TakeWritten.
func (f *Fake) Write(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.outbound <- cp:
		return len(b), nil
	case <-f.closed:
		return 0, io.ErrClosedPipe
	}
}

// Close implements io.Closer.
func (f *Fake) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

// FlushInput discards any bytes injected but not yet read, simulating
// discarding the OS input buffer after an unparseable frame.
func (f *Fake) FlushInput() error {
	atomic.AddInt32(&f.flushes, 1)
	for {
		select {
		case <-f.inbound:
		default:
			return nil
		}
	}
}

// FlushOutput is a no-op: writes to Fake are already synchronous.
func (f *Fake) FlushOutput() error {
	return nil
}

// FlushCount reports how many times FlushInput has been called, for tests
// asserting resync behaviour on malformed frames.
func (f *Fake) FlushCount() int {
	return int(atomic.LoadInt32(&f.flushes))
}

// TakeWritten waits up to timeout for the next frame written by the
// engine, returning ok == false on timeout.
func (f *Fake) TakeWritten(timeout time.Duration) (frame []byte, ok bool) {
	select {
	case frame = <-f.outbound:
		return frame, true
	case <-time.After(timeout):
		return nil, false
	}
}
