package engine

import (
	"context"
	"log/slog"
	"time"

	"llap/frame"
	"llap/internal/clock"
)

// retryHandler runs a ~10ms scan of the pending list that retransmits
// due commands and escalates exhausted ones to the unanswered list. It
// is one of the two workers the Coordinator joins on shutdown (with a
// grace period), since it is safe and useful to let it finish its
// current pass.
type retryHandler struct {
	pending    *guardedList
	unanswered *guardedList
	outbound   chan<- string
	clock      clock.Clock

	maxRetries    int
	retryInterval time.Duration
	loopInterval  time.Duration

	logger *slog.Logger
}

func (h *retryHandler) run(ctx context.Context) {
	ticker := time.NewTicker(h.loopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (h *retryHandler) tick(ctx context.Context) {
	now := h.clock.Now()
	h.pending.Tick(now, h.maxRetries, h.retryInterval,
		func(m frame.Message) { h.retransmit(ctx, m) },
		func(m frame.Message) {
			if h.logger != nil {
				h.logger.Debug("retry handler: retries exhausted, moving to unanswered", "device", m.Device, "kind", m.Kind.String())
			}
			h.unanswered.Append(m)
		},
	)
}

func (h *retryHandler) retransmit(ctx context.Context, m frame.Message) {
	f, err := frame.Encode(m)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("retry handler: failed to encode retransmit", "device", m.Device, "error", err)
		}
		return
	}
	select {
	case h.outbound <- f:
	case <-ctx.Done():
	}
}
