package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/testutil"
	"github.com/roach88/tetra/internal/uiloop"
)

type harness struct {
	bus   *bus.Bus
	clock *testutil.ManualClock
	loop  *uiloop.Loop
}

func newHarness() *harness {
	clock := testutil.NewManualClock()
	return &harness{bus: bus.New(nil), clock: clock, loop: uiloop.New(uiloop.WithClock(clock))}
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.loop.RunPending()
}

func TestWaiter_SettlesOnceAfterNotificationAndDelay(t *testing.T) {
	h := newHarness()
	settled := 0
	w := NewWaiter(h.bus, h.loop, "reels", 0, func() { settled++ })

	assert.True(t, w.Waiting())
	h.advance(time.Second)
	assert.True(t, w.Waiting(), "no notification, no settle")

	h.bus.Publish(bus.AddedTopic("reels"))
	assert.True(t, w.Scheduled())

	h.advance(DefaultSettleDelay - time.Millisecond)
	assert.True(t, w.Waiting())
	assert.Equal(t, 0, settled)

	h.advance(time.Millisecond)
	assert.False(t, w.Waiting())
	assert.Equal(t, 1, settled)

	h.bus.Publish(bus.AddedTopic("reels"))
	h.advance(time.Second)
	assert.Equal(t, 1, settled, "later notifications are no-ops")
}

func TestWaiter_RepeatedNotificationsScheduleOneTimer(t *testing.T) {
	h := newHarness()
	settled := 0
	NewWaiter(h.bus, h.loop, "reels", 50*time.Millisecond, func() { settled++ })

	h.bus.Publish(bus.AddedTopic("reels"))
	h.advance(30 * time.Millisecond)
	h.bus.Publish(bus.AddedTopic("reels"))
	h.advance(20 * time.Millisecond)

	assert.Equal(t, 1, settled, "the first notification's timer wins")
	assert.Equal(t, 0, h.clock.Pending())
}

func TestWaiter_IgnoresOtherLabels(t *testing.T) {
	h := newHarness()
	w := NewWaiter(h.bus, h.loop, "reels", 0, nil)

	h.bus.Publish(bus.AddedTopic("logo"))
	h.bus.Publish(bus.ClickedTopic("reels"))
	assert.False(t, w.Scheduled())
}

func TestWaiter_CloseCancels(t *testing.T) {
	h := newHarness()
	settled := false
	w := NewWaiter(h.bus, h.loop, "reels", 0, func() { settled = true })

	h.bus.Publish(bus.AddedTopic("reels"))
	w.Close()
	h.advance(time.Second)

	assert.False(t, settled)
	assert.True(t, w.Waiting())
	assert.Equal(t, 0, h.bus.Publish(bus.AddedTopic("reels")))
}
