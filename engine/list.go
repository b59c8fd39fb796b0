package engine

import (
	"sync"
	"time"

	"llap/frame"
)

// guardedList is the pending/unanswered list primitive: a mutex-guarded
// slice of Messages exposing one method per scan pattern actually used
// (append, match-and-remove, retry scan, device drain) rather than raw
// Lock/Unlock, so no caller can forget to release it mid-scan.
type guardedList struct {
	mu    sync.Mutex
	items []frame.Message
}

// Append adds m to the end of the list.
func (l *guardedList) Append(m frame.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, m)
}

// AppendAfter runs before while holding the lock, then appends m. The
// write handler uses this to enqueue the outbound frame before the
// Message becomes visible in the pending list, closing the race where a
// fast response arrives and the read handler tries to match it before
// the write handler has recorded it as pending.
func (l *guardedList) AppendAfter(before func(), m frame.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	before()
	l.items = append(l.items, m)
}

// ClearMatching removes and returns the first item for which match
// returns true, scanning in insertion order: if any pending Message
// considers this Message its response, that pending Message is removed.
func (l *guardedList) ClearMatching(match func(frame.Message) bool) (frame.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, m := range l.items {
		if match(m) {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return m, true
		}
	}
	return frame.Message{}, false
}

// Tick scans every item in insertion order: items with Retries at or
// beyond maxRetries are handed to onExhausted and dropped; items still
// due for retransmission (now - EnqueuedAt >= retryInterval) have their
// EnqueuedAt/Retries bumped and are handed to onRetransmit. Removals are
// deferred until the whole pass completes, to keep list indices stable
// during the scan, and the lock is held for the full scan.
func (l *guardedList) Tick(now time.Time, maxRetries int, retryInterval time.Duration, onRetransmit, onExhausted func(frame.Message)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.items[:0:0]
	for _, m := range l.items {
		if m.Retries >= maxRetries {
			onExhausted(m)
			continue
		}
		if now.Sub(m.EnqueuedAt) >= retryInterval {
			m.EnqueuedAt = now
			m.Retries++
			onRetransmit(m)
		}
		kept = append(kept, m)
	}
	l.items = kept
}

// DrainDevice removes, in original insertion order, every item whose
// Device matches device, handing each to onDrain before removing it.
// Used by the wake handler to flush a device's unanswered traffic inside
// its wake window.
func (l *guardedList) DrainDevice(device string, onDrain func(frame.Message)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.items[:0:0]
	for _, m := range l.items {
		if m.Device == device {
			onDrain(m)
			continue
		}
		kept = append(kept, m)
	}
	l.items = kept
}

// Snapshot returns a copy of the current items, for tests and
// diagnostics.
func (l *guardedList) Snapshot() []frame.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]frame.Message, len(l.items))
	copy(out, l.items)
	return out
}
