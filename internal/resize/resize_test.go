package resize

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/ir"
)

type countingListener struct {
	calls int
}

func (c *countingListener) OnResize() error {
	c.calls++
	return nil
}

func TestDispatcher_SubscribeDeduplicates(t *testing.T) {
	d := NewDispatcher()
	l := &countingListener{}

	s1 := d.Subscribe(l)
	s2 := d.Subscribe(l)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, d.Len())

	require.NoError(t, d.Broadcast())
	assert.Equal(t, 1, l.calls, "duplicate subscription must be called once")
}

func TestDispatcher_FuncListenersNotDeduplicated(t *testing.T) {
	d := NewDispatcher()
	n := 0
	f := ListenerFunc(func() error { n++; return nil })

	d.Subscribe(f)
	d.Subscribe(f)
	require.NoError(t, d.Broadcast())
	assert.Equal(t, 2, n)
}

// taggedListener is comparable by type but may carry an incomparable tag.
type taggedListener struct {
	tag   any
	calls *int
}

func (l taggedListener) OnResize() error {
	*l.calls++
	return nil
}

func TestDispatcher_IncomparableValuesNotDeduplicated(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	l := taggedListener{tag: func() {}, calls: &calls}

	assert.NotPanics(t, func() {
		d.Subscribe(l)
		d.Subscribe(l)
	})
	assert.Equal(t, 2, d.Len())

	same := taggedListener{tag: "reels", calls: &calls}
	d.Subscribe(same)
	d.Subscribe(same)
	assert.Equal(t, 3, d.Len(), "comparable values still deduplicate")

	require.NoError(t, d.Broadcast())
	assert.Equal(t, 3, calls)
}

func TestDispatcher_RegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		d.Subscribe(ListenerFunc(func() error {
			order = append(order, name)
			return nil
		}))
	}

	require.NoError(t, d.Broadcast())
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestDispatcher_FailureIsolated(t *testing.T) {
	d := NewDispatcher()
	before := &countingListener{}
	after := &countingListener{}

	d.Subscribe(before)
	d.Subscribe(ListenerFunc(func() error { panic("listener exploded") }))
	d.Subscribe(ListenerFunc(func() error { return errors.New("no rule") }))
	d.Subscribe(after)

	err := d.Broadcast()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener exploded")
	assert.Contains(t, err.Error(), "no rule")
	assert.Equal(t, 1, before.calls)
	assert.Equal(t, 1, after.calls, "listeners after a failure still run")
}

func TestSubscription_Dispose(t *testing.T) {
	d := NewDispatcher()
	l := &countingListener{}
	s := d.Subscribe(l)

	s.Dispose()
	s.Dispose()
	assert.Equal(t, 0, d.Len())

	require.NoError(t, d.Broadcast())
	assert.Equal(t, 0, l.calls)

	// A fresh subscription after dispose works again.
	d.Subscribe(l)
	require.NoError(t, d.Broadcast())
	assert.Equal(t, 1, l.calls)
}

func TestDispatcher_SubscribeDuringBroadcast(t *testing.T) {
	d := NewDispatcher()
	late := &countingListener{}
	d.Subscribe(ListenerFunc(func() error {
		d.Subscribe(late)
		return nil
	}))

	require.NoError(t, d.Broadcast())
	assert.Equal(t, 0, late.calls, "listeners added mid-broadcast wait for the next one")

	require.NoError(t, d.Broadcast())
	assert.Equal(t, 1, late.calls)
}

func TestViewport_Resize(t *testing.T) {
	d := NewDispatcher()
	vp := NewViewport(ir.Size{Width: 800, Height: 600}, d)

	var seen []ir.Size
	d.Subscribe(ListenerFunc(func() error {
		seen = append(seen, vp.Size())
		return nil
	}))

	require.NoError(t, vp.Resize(1920, 1080))
	require.NoError(t, vp.Resize(1920, 1080))
	assert.Equal(t, []ir.Size{{Width: 1920, Height: 1080}, {Width: 1920, Height: 1080}}, seen,
		"every resize broadcasts once")
}

func TestViewport_ResizeRejectsEmpty(t *testing.T) {
	d := NewDispatcher()
	vp := NewViewport(ir.Size{Width: 800, Height: 600}, d)
	l := &countingListener{}
	d.Subscribe(l)

	assert.Error(t, vp.Resize(0, 600))
	assert.Error(t, vp.Resize(800, -1))
	assert.Error(t, vp.Resize(math.NaN(), 600))
	assert.Error(t, vp.Resize(800, math.Inf(1)))
	assert.Equal(t, 0, l.calls)
	assert.Equal(t, ir.Size{Width: 800, Height: 600}, vp.Size())
}
