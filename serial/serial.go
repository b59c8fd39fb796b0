// Package serial provides the byte-oriented transport the engine package
// consumes: a serial port abstraction with distinct input/output buffer
// flush operations, plus a native implementation and a loopback Port for
// tests.
package serial

import (
	"io"
	"time"
)

// Port is the serial-port contract the engine's reader and writer
// consume. Baud rate, parity, and flow control are configured by the
// caller through Config; Port itself is just bytes in, bytes out.
type Port interface {
	io.ReadWriteCloser

	// FlushInput discards the platform's input buffer. The engine's
	// reader calls this after an unparseable frame to resynchronise on
	// the next frame boundary.
	FlushInput() error

	// FlushOutput flushes the platform's output buffer. The engine does
	// not call it: the writer's shutdown drain only writes the frames
	// still queued on its channel.
	FlushOutput() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyUSB0", "COM3").
	Device string

	// Baud rate for the radio bridge.
	Baud int

	// ReadTimeout bounds each blocking read. LLAP frames are fixed-width,
	// so a timeout here only affects how promptly a closed port is
	// noticed, not framing.
	ReadTimeout time.Duration
}

// DefaultConfig returns a Config with the LLAP bridge's usual settings.
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Baud:        9600,
		ReadTimeout: 0,
	}
}
