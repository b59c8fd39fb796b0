package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llap/frame"
)

func TestGuardedListAppendAndSnapshot(t *testing.T) {
	var l guardedList
	l.Append(frame.Reboot("AB"))
	l.Append(frame.Sleep("CD"))

	got := l.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "AB", got[0].Device)
	assert.Equal(t, "CD", got[1].Device)
}

func TestGuardedListAppendAfterRunsBeforeUnderLock(t *testing.T) {
	var l guardedList
	var order []string

	l.AppendAfter(func() {
		assert.False(t, l.mu.TryLock(), "before must run while the list lock is held")
		order = append(order, "before")
	}, frame.Hello("AB"))
	order = append(order, "after")

	assert.Equal(t, []string{"before", "after"}, order)
	assert.Len(t, l.Snapshot(), 1)
}

func TestGuardedListClearMatchingRemovesFirstMatch(t *testing.T) {
	var l guardedList
	l.Append(frame.Reboot("AB"))
	l.Append(frame.Reboot("CD"))

	got, ok := l.ClearMatching(func(m frame.Message) bool {
		return m.Device == "AB"
	})
	require.True(t, ok)
	assert.Equal(t, "AB", got.Device)

	remaining := l.Snapshot()
	require.Len(t, remaining, 1)
	assert.Equal(t, "CD", remaining[0].Device)
}

func TestGuardedListClearMatchingNoMatch(t *testing.T) {
	var l guardedList
	l.Append(frame.Reboot("AB"))

	_, ok := l.ClearMatching(func(m frame.Message) bool { return m.Device == "ZZ" })
	assert.False(t, ok)
	assert.Len(t, l.Snapshot(), 1)
}

func TestGuardedListTickRetransmitsDueItems(t *testing.T) {
	var l guardedList
	start := time.Unix(0, 0)
	msg := frame.Reboot("AB")
	msg.EnqueuedAt = start
	l.Append(msg)

	var retransmitted []frame.Message
	var exhausted []frame.Message

	l.Tick(start.Add(50*time.Millisecond), 5, 100*time.Millisecond,
		func(m frame.Message) { retransmitted = append(retransmitted, m) },
		func(m frame.Message) { exhausted = append(exhausted, m) },
	)
	assert.Empty(t, retransmitted, "not yet due for retransmission")
	assert.Empty(t, exhausted)

	l.Tick(start.Add(150*time.Millisecond), 5, 100*time.Millisecond,
		func(m frame.Message) { retransmitted = append(retransmitted, m) },
		func(m frame.Message) { exhausted = append(exhausted, m) },
	)
	require.Len(t, retransmitted, 1)
	assert.Equal(t, 1, retransmitted[0].Retries)
	assert.Empty(t, exhausted)

	got := l.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Retries)
}

func TestGuardedListTickExhaustsAtMaxRetries(t *testing.T) {
	var l guardedList
	msg := frame.BatteryLow("AB")
	msg.Retries = 5
	l.Append(msg)

	var exhausted []frame.Message
	l.Tick(time.Unix(0, 0), 5, 100*time.Millisecond,
		func(frame.Message) { t.Fatal("should not retransmit an exhausted item") },
		func(m frame.Message) { exhausted = append(exhausted, m) },
	)

	require.Len(t, exhausted, 1)
	assert.Equal(t, "AB", exhausted[0].Device)
	assert.Empty(t, l.Snapshot())
}

func TestGuardedListDrainDevice(t *testing.T) {
	var l guardedList
	l.Append(frame.BatteryLow("AB"))
	l.Append(frame.Reboot("CD"))
	l.Append(frame.Sleep("AB"))

	var drained []frame.Message
	l.DrainDevice("AB", func(m frame.Message) { drained = append(drained, m) })

	require.Len(t, drained, 2)
	assert.Equal(t, frame.KindBatteryLow, drained[0].Kind)
	assert.Equal(t, frame.KindSleep, drained[1].Kind)

	remaining := l.Snapshot()
	require.Len(t, remaining, 1)
	assert.Equal(t, "CD", remaining[0].Device)
}
