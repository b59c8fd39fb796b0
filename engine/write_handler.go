package engine

import (
	"context"
	"log/slog"

	"llap/frame"
	"llap/internal/clock"
)

// writeHandler stamps, enqueues, and records outbound commands from the
// host.
type writeHandler struct {
	commands <-chan frame.Message
	outbound chan<- string
	pending  *guardedList
	clock    clock.Clock
	logger   *slog.Logger
}

func (h *writeHandler) run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-h.commands:
			if !ok {
				return
			}
			h.handle(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (h *writeHandler) handle(ctx context.Context, msg frame.Message) {
	msg.EnqueuedAt = h.clock.Now()
	msg.Retries = 0

	f, err := frame.Encode(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("write handler: failed to encode command", "device", msg.Device, "error", err)
		}
		return
	}

	// Acquire the pending-list lock before enqueueing the frame to the
	// writer, so a fast response cannot arrive and be matched by the
	// read handler before this Message is recorded as pending.
	h.pending.AppendAfter(func() {
		select {
		case h.outbound <- f:
		case <-ctx.Done():
		}
	}, msg)
}
