package engine_test

import (
	"context"
	"time"

	"llap/config"
	"llap/engine"
	"llap/frame"
)

// This example is documentation only (it has no "Output:" comment, so `go
// test` compiles but does not run it): it shows the shape of wiring a
// Coordinator against a real serial device and draining its event stream.
func Example() {
	cfg := config.Default("/dev/ttyUSB0")

	coord := engine.NewCoordinator(cfg)
	commands := make(chan frame.Message, cfg.CommandBufferSize)

	events, err := coord.StartDevice(context.Background(), commands)
	if err != nil {
		panic(err)
	}
	defer coord.Stop()

	commands <- frame.Sleep("AB")

	select {
	case msg := <-events:
		_ = msg
	case <-time.After(5 * time.Second):
	}
}
