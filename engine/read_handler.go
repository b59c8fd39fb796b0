package engine

import (
	"context"
	"log/slog"
	"time"

	"llap/frame"
	"llap/internal/clock"
)

// dedupEntry is one retry-buffer entry: an inbound Message and when it
// arrived, used to recognise a peer retransmission before our ACK landed.
type dedupEntry struct {
	msg frame.Message
	at  time.Time
}

// readHandler decodes inbound frames, dedups and acknowledges them, and
// clears the pending list on a matching response. It owns the retry
// buffer exclusively (no lock: it runs on a single goroutine) and removes
// answered entries from the pending list via ClearMatching.
type readHandler struct {
	inbound  <-chan string
	outbound chan<- string
	awake    chan<- string
	events   chan<- frame.Message
	reader   *reader
	pending  *guardedList

	dedupWindow time.Duration
	clock       clock.Clock
	logger      *slog.Logger

	retryBuffer []dedupEntry
}

// run consumes raw frames until inbound closes or ctx is cancelled. The
// read handler is abandoned (not joined) on shutdown, so ctx
// cancellation here is a best-effort stop, not a drain guarantee.
func (h *readHandler) run(ctx context.Context) {
	for {
		select {
		case raw, ok := <-h.inbound:
			if !ok {
				return
			}
			h.handle(ctx, raw)
		case <-ctx.Done():
			return
		}
	}
}

func (h *readHandler) handle(ctx context.Context, raw string) {
	msg, ok := frame.Decode(raw)
	if !ok {
		// Unparseable frame: resynchronise on the next frame boundary
		// and drop it silently.
		h.reader.requestFlush()
		return
	}

	if msg.Kind == frame.KindAwake {
		h.sendAwake(ctx, msg.Device)
		// Not itself a response to anything; fall through so an Awake
		// still gets deduped/published like any other Message.
	}

	if h.isRetry(msg) {
		if h.logger != nil {
			h.logger.Debug("read handler: suppressing duplicate retransmission", "device", msg.Device, "kind", msg.Kind.String())
		}
		if msg.RequiresAck {
			h.sendAck(ctx, msg.Device)
		}
		return
	}

	if _, matched := h.pending.ClearMatching(func(p frame.Message) bool {
		return frame.MatchesResponse(p, msg)
	}); matched && h.logger != nil {
		h.logger.Debug("read handler: cleared pending entry", "device", msg.Device, "kind", msg.Kind.String())
	}

	if msg.RequiresAck {
		h.sendAck(ctx, msg.Device)
	}
	h.retryBuffer = append(h.retryBuffer, dedupEntry{msg: msg, at: h.clock.Now()})

	select {
	case h.events <- msg:
	case <-ctx.Done():
	}
}

// isRetry reports whether msg equals (per frame.Equal) a still-live
// retry-buffer entry, and opportunistically expires entries older than
// dedupWindow while it scans.
func (h *readHandler) isRetry(msg frame.Message) bool {
	now := h.clock.Now()
	matched := false
	kept := h.retryBuffer[:0:0]
	for _, e := range h.retryBuffer {
		if now.Sub(e.at) >= h.dedupWindow {
			continue
		}
		kept = append(kept, e)
		if !matched && frame.Equal(e.msg, msg) {
			matched = true
		}
	}
	h.retryBuffer = kept
	return matched
}

func (h *readHandler) sendAck(ctx context.Context, device string) {
	f, err := frame.Encode(frame.Ack(device))
	if err != nil {
		if h.logger != nil {
			h.logger.Error("read handler: failed to encode ack", "device", device, "error", err)
		}
		return
	}
	select {
	case h.outbound <- f:
	case <-ctx.Done():
	}
}

func (h *readHandler) sendAwake(ctx context.Context, device string) {
	select {
	case h.awake <- device:
	case <-ctx.Done():
	}
}
