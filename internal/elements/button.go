package elements

import (
	"fmt"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/scene"
)

// Button shows its low-resolution sheet first, reports loaded, then
// upgrades to the high-resolution sheet in the background.
//
// A click publishes "<label>_clicked" and, when the config names an
// action, sends it to the actor.
type Button struct {
	Sprite
	action  actor.EventType
	clicks  int
	upgrade bool
}

// NewButton builds a Button.
func NewButton(p scene.Props) (scene.Element, error) {
	b := &Button{Sprite: Sprite{placer: newPlacer(p)}}
	if p.Config.Action != "" {
		ev, ok := actor.ParseEventType(p.Config.Action)
		if !ok {
			return nil, fmt.Errorf("unknown button action %q", p.Config.Action)
		}
		b.action = ev
	}
	if err := b.place(); err != nil {
		return nil, err
	}
	if b.positioned() {
		b.subscribeResize(b)
	}
	b.node.Visible = b.visible()

	low := p.Config.Texture
	if sheet := p.Config.LowSheet; sheet != nil {
		low = sheet.Texture
	}
	b.loadTexture(low, func() {
		b.markLoaded()
		b.loadHigh()
	})
	return b, nil
}

// Node implements scene.Element.
func (b *Button) Node() *scene.Node { return b.node }

// Upgraded reports whether the high-resolution sheet is showing.
func (b *Button) Upgraded() bool { return b.upgrade }

// Clicks returns how many clicks the button has handled.
func (b *Button) Clicks() int { return b.clicks }

// Click handles a pointer-down on the button. Hidden buttons ignore it.
func (b *Button) Click() {
	if !b.node.Visible || b.node.Closed() {
		return
	}
	b.clicks++
	b.env.Bus.Publish(bus.ClickedTopic(b.node.Label()))
	if b.action != "" {
		b.env.Actor.Send(actor.Event{Type: b.action})
	}
}

func (b *Button) loadHigh() {
	sheet := b.node.Config.HighSheet
	if sheet == nil || sheet.Texture == "" || b.env.Assets == nil {
		return
	}
	b.loadTexture(sheet.Texture, func() {
		b.upgrade = b.node.Texture == sheet.Texture
	})
}
