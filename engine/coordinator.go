// Package engine implements the LLAP protocol engine: the Coordinator
// and the reader/writer/read/write/retry/wake workers it runs.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"llap/config"
	"llap/internal/clock"

	"llap/frame"
	"llap/serial"
)

// Coordinator owns the serial handle, the pending/unanswered lists, the
// internal channels, and the host-facing command/event channels. The
// zero value is not usable; construct with NewCoordinator.
type Coordinator struct {
	cfg    config.Config
	clock  clock.Clock
	logger *slog.Logger

	pending    *guardedList
	unanswered *guardedList

	port     serial.Port
	ownsPort bool

	cancel context.CancelFunc
	wg     sync.WaitGroup // tracks the writer and retry handler, the two joined workers

	fatalErr atomic.Value // holds fatalErrBox
}

type fatalErrBox struct{ err error }

// NewCoordinator creates a Coordinator with the given tunables. Pass
// config.Default(devicePath) for the stock constants.
func NewCoordinator(cfg config.Config) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		clock:  clock.Real{},
		logger: slog.Default(),
	}
}

// WithClock overrides the Coordinator's time source, for tests.
func (c *Coordinator) WithClock(clk clock.Clock) *Coordinator {
	c.clock = clk
	return c
}

// WithLogger overrides the Coordinator's logger. Passing nil disables
// logging.
func (c *Coordinator) WithLogger(logger *slog.Logger) *Coordinator {
	c.logger = logger
	return c
}

// Start begins the pipeline against an already-open serial port: it
// starts all six workers and returns the event channel the host reads
// inbound Messages from. Start does not block; call Stop to shut down.
func (c *Coordinator) Start(ctx context.Context, port serial.Port, commands <-chan frame.Message) (<-chan frame.Message, error) {
	if port == nil {
		return nil, fmt.Errorf("engine: port must not be nil")
	}

	c.port = port
	c.pending = &guardedList{}
	c.unanswered = &guardedList{}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	inboundFrames := make(chan string, c.cfg.CommandBufferSize)
	outboundFrames := make(chan string, c.cfg.CommandBufferSize)
	awakeCh := make(chan string, c.cfg.CommandBufferSize)
	eventsCh := make(chan frame.Message, c.cfg.EventBufferSize)
	errsCh := make(chan error, 4)

	rd := newReader(port, inboundFrames, errsCh, c.logger)
	wr := newWriter(port, time.Duration(c.cfg.ShutdownGrace), errsCh, c.logger)
	rh := &readHandler{
		inbound:     inboundFrames,
		outbound:    outboundFrames,
		awake:       awakeCh,
		events:      eventsCh,
		reader:      rd,
		pending:     c.pending,
		dedupWindow: time.Duration(c.cfg.DedupWindow),
		clock:       c.clock,
		logger:      c.logger,
	}
	wh := &writeHandler{
		commands: commands,
		outbound: outboundFrames,
		pending:  c.pending,
		clock:    c.clock,
		logger:   c.logger,
	}
	rt := &retryHandler{
		pending:       c.pending,
		unanswered:    c.unanswered,
		outbound:      outboundFrames,
		clock:         c.clock,
		maxRetries:    c.cfg.MaxRetries,
		retryInterval: time.Duration(c.cfg.RetryInterval),
		loopInterval:  time.Duration(c.cfg.RetryLoopInterval),
		logger:        c.logger,
	}
	wk := &wakeHandler{
		awake:      awakeCh,
		unanswered: c.unanswered,
		outbound:   outboundFrames,
		logger:     c.logger,
	}

	// Reader, read handler, write handler, and wake handler are detached:
	// they are safe to abandon at shutdown.
	go rd.run(runCtx)
	go rh.run(runCtx)
	go wh.run(runCtx)
	go wk.run(runCtx)

	// Writer and retry handler are joined, with a grace period, on Stop.
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		wr.run(runCtx, outboundFrames)
	}()
	go func() {
		defer c.wg.Done()
		rt.run(runCtx)
	}()

	// Watch for a fatal I/O error and tear the pipeline down if one
	// arrives: write/read failures are fatal and propagate to the
	// Coordinator.
	go func() {
		select {
		case err := <-errsCh:
			c.fatalErr.Store(fatalErrBox{err})
			cancel()
		case <-runCtx.Done():
		}
	}()

	if c.logger != nil {
		c.logger.Info("engine: coordinator started")
	}

	return eventsCh, nil
}

// StartDevice opens the serial device named by cfg.Serial and starts the
// pipeline against it. The Coordinator takes ownership of the port and
// closes it on Stop.
func (c *Coordinator) StartDevice(ctx context.Context, commands <-chan frame.Message) (<-chan frame.Message, error) {
	port, err := serial.Open(toSerialConfig(c.cfg.Serial))
	if err != nil {
		return nil, fmt.Errorf("engine: failed to open serial device: %w", err)
	}
	events, err := c.Start(ctx, port, commands)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	c.ownsPort = true
	return events, nil
}

// Stop signals shutdown and blocks until the writer and retry handler
// have drained, or their grace period has expired.
func (c *Coordinator) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Duration(c.cfg.ShutdownGrace) + time.Duration(c.cfg.RetryLoopInterval)):
	}

	if c.ownsPort && c.port != nil {
		_ = c.port.Close()
	}

	if c.logger != nil {
		c.logger.Info("engine: coordinator stopped")
	}
}

// Err returns the fatal I/O error that caused the pipeline to tear down,
// if any.
func (c *Coordinator) Err() error {
	v := c.fatalErr.Load()
	if v == nil {
		return nil
	}
	return v.(fatalErrBox).err
}

// Pending returns a snapshot of the pending list, for diagnostics/tests.
func (c *Coordinator) Pending() []frame.Message {
	if c.pending == nil {
		return nil
	}
	return c.pending.Snapshot()
}

// Unanswered returns a snapshot of the unanswered list, for
// diagnostics/tests.
func (c *Coordinator) Unanswered() []frame.Message {
	if c.unanswered == nil {
		return nil
	}
	return c.unanswered.Snapshot()
}

func toSerialConfig(sc config.SerialConfig) serial.Config {
	cfg := serial.DefaultConfig(sc.Device)
	if sc.Baud != 0 {
		cfg.Baud = sc.Baud
	}
	cfg.ReadTimeout = time.Duration(sc.ReadTimeout)
	return cfg
}
