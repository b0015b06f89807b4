package elements

import (
	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/scene"
	"github.com/roach88/tetra/internal/visibility"
)

// LayoutContainer is a positioned group.
//
// Containers flagged WaitsForParentDimension start hidden and show only
// after their attachment notification plus the settle delay. Until then
// resizes still move them but keep them hidden.
type LayoutContainer struct {
	placer
	waiter *visibility.Waiter
}

// NewLayoutContainer builds a LayoutContainer.
func NewLayoutContainer(p scene.Props) (scene.Element, error) {
	c := &LayoutContainer{placer: newPlacer(p)}
	if err := c.place(); err != nil {
		return nil, err
	}

	c.subscribeResize(c)
	sub := p.Env.Actor.Subscribe(c.onSnapshot)
	c.node.Own(sub.Dispose)

	label := p.Config.Label
	switch {
	case p.Config.WaitsForParentDimension:
		c.waiter = visibility.NewWaiter(p.Env.Bus, p.Env.Loop, label, p.Env.SettleDelay, c.settled)
		c.node.Own(c.waiter.Close)
	case p.Config.RequiresLoading:
		// Nothing to fetch: the container counts as loaded once attached.
		var added *bus.Subscription
		added = p.Env.Bus.Subscribe(bus.AddedTopic(label), func(bus.Topic) {
			added.Dispose()
			c.markLoaded()
		})
		c.node.Own(added.Dispose)
	}

	c.applyVisibility()
	return c, nil
}

// Node implements scene.Element.
func (c *LayoutContainer) Node() *scene.Node { return c.node }

// Waiting reports whether the container is still held hidden.
func (c *LayoutContainer) Waiting() bool {
	return c.waiter != nil && c.waiter.Waiting()
}

// OnResize implements resize.Listener.
func (c *LayoutContainer) OnResize() error {
	err := c.place()
	c.applyVisibility()
	return err
}

func (c *LayoutContainer) onSnapshot(s actor.Snapshot) {
	switch s.State.Status() {
	case actor.StatusLoading, actor.StatusIdle, actor.StatusFreeSpinIdle:
	default:
		return
	}
	if c.Waiting() {
		return
	}
	if err := c.place(); err != nil {
		c.env.Logger.Warn("container reposition failed", "label", c.node.Label(), "error", err)
	}
	c.applyVisibility()
}

func (c *LayoutContainer) settled() {
	if err := c.place(); err != nil {
		c.env.Logger.Warn("container reposition failed", "label", c.node.Label(), "error", err)
	}
	c.applyVisibility()
	c.markLoaded()
}

func (c *LayoutContainer) applyVisibility() {
	c.node.Visible = c.visible() && !c.Waiting()
}
