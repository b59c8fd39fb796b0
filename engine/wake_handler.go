package engine

import (
	"context"
	"log/slog"

	"llap/frame"
)

// wakeHandler flushes a device's unanswered traffic, in original
// insertion order, on each Awake device identifier it sees.
// Messages are not re-added to pending; delivery is best-effort within
// the wake window, and the host must resubmit if it needs a response.
type wakeHandler struct {
	awake      <-chan string
	unanswered *guardedList
	outbound   chan<- string
	logger     *slog.Logger
}

func (h *wakeHandler) run(ctx context.Context) {
	for {
		select {
		case device, ok := <-h.awake:
			if !ok {
				return
			}
			h.flush(ctx, device)
		case <-ctx.Done():
			return
		}
	}
}

func (h *wakeHandler) flush(ctx context.Context, device string) {
	h.unanswered.DrainDevice(device, func(m frame.Message) {
		f, err := frame.Encode(m)
		if err != nil {
			if h.logger != nil {
				h.logger.Error("wake handler: failed to encode retransmit", "device", m.Device, "error", err)
			}
			return
		}
		select {
		case h.outbound <- f:
		case <-ctx.Done():
		}
	})
}
