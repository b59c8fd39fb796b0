package serial

import (
	"fmt"

	"github.com/tarm/serial"
)

// nativePort wraps github.com/tarm/serial to satisfy Port.
type nativePort struct {
	port *serial.Port
}

// Open opens a native serial port with the given configuration.
func Open(cfg Config) (Port, error) {
	tarmCfg := &serial.Config{
		Name: cfg.Device,
		Baud: cfg.Baud,
	}
	if cfg.ReadTimeout > 0 {
		tarmCfg.ReadTimeout = cfg.ReadTimeout
	}

	port, err := serial.OpenPort(tarmCfg)
	if err != nil {
		return nil, fmt.Errorf("serial: failed to open %s: %w", cfg.Device, err)
	}

	return &nativePort{port: port}, nil
}

func (p *nativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *nativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *nativePort) Close() error {
	return p.port.Close()
}

func (p *nativePort) FlushInput() error {
	return p.port.Flush()
}

func (p *nativePort) FlushOutput() error {
	return p.port.Flush()
}
