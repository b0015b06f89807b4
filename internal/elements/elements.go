// Package elements holds the concrete widgets built by the scene registry.
//
// Widgets are thin: they position themselves through the style resolver,
// load their textures through the asset loader and report completion through
// the load-status reporter. Drawing is left to the host.
package elements

import (
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/scene"
	"github.com/roach88/tetra/internal/style"
)

// Register installs every widget factory in reg.
func Register(reg *scene.Registry) error {
	factories := []struct {
		t ir.ElementType
		f scene.Factory
	}{
		{ir.TypeRoot, NewRoot},
		{ir.TypeLayoutContainer, NewLayoutContainer},
		{ir.TypeSprite, NewSprite},
		{ir.TypeBackgroundSprite, NewBackgroundSprite},
		{ir.TypeMockup, NewMockup},
		{ir.TypeButton, NewButton},
		{ir.TypeStyleLabel, NewStyleLabel},
	}
	for _, entry := range factories {
		if err := reg.Register(entry.t, entry.f); err != nil {
			return err
		}
	}
	return nil
}

// Clicker is implemented by elements that react to clicks.
type Clicker interface {
	Click()
}

// NewRoot builds the plain top-level container.
func NewRoot(p scene.Props) (scene.Element, error) {
	return scene.NewNode(p.Config), nil
}

// placer positions a node from its rule table. Nodes without rules keep
// their config transform.
type placer struct {
	node *scene.Node
	env  *scene.Env
	// base is the configured visibility; ruleVisible is the visibility of
	// the last resolved rule.
	base        bool
	ruleVisible bool
}

func newPlacer(p scene.Props) placer {
	n := scene.NewNode(p.Config)
	return placer{node: n, env: p.Env, base: n.Visible, ruleVisible: true}
}

func (pl *placer) visible() bool {
	return pl.base && pl.ruleVisible
}

func (pl *placer) positioned() bool {
	return len(pl.node.Config.Position) > 0
}

func (pl *placer) place() error {
	if !pl.positioned() {
		return nil
	}
	vp := pl.env.Viewport.Size()
	placement, err := style.Resolve(vp, pl.env.Common, pl.node.Config)
	if err != nil {
		return err
	}
	pl.node.Apply(placement.Transform(vp))
	pl.ruleVisible = placement.Visible
	return nil
}

// markLoaded reports the node loaded if it takes part in loading.
func (pl *placer) markLoaded() {
	if pl.node.Config.RequiresLoading && pl.env.Loads != nil {
		pl.env.Loads.MarkLoaded(pl.node.Label())
	}
}

func (pl *placer) subscribeResize(l interface{ OnResize() error }) {
	sub := pl.env.Resize.Subscribe(l)
	pl.node.Own(sub.Dispose)
}
