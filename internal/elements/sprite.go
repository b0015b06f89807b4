package elements

import (
	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/scene"
)

// Sprite shows one texture. It counts as loaded once the texture arrives,
// or straight away when it has none.
type Sprite struct {
	placer
	// failed is set when the texture could not be loaded.
	failed bool
}

// NewSprite builds a Sprite.
func NewSprite(p scene.Props) (scene.Element, error) {
	s := &Sprite{placer: newPlacer(p)}
	if err := s.place(); err != nil {
		return nil, err
	}
	if s.positioned() {
		s.subscribeResize(s)
	}
	s.node.Visible = s.visible()
	s.loadTexture(p.Config.Texture, s.markLoaded)
	return s, nil
}

// Node implements scene.Element.
func (s *Sprite) Node() *scene.Node { return s.node }

// Failed reports whether the texture failed to load.
func (s *Sprite) Failed() bool { return s.failed }

// OnResize implements resize.Listener.
func (s *Sprite) OnResize() error {
	if err := s.place(); err != nil {
		return err
	}
	s.node.Visible = s.visible()
	return nil
}

// loadTexture starts a load of name and calls then once it succeeds.
// A failed load is logged and then is never called, so the element never
// reports loaded; the load screen timeout forces ready instead.
// Completions after teardown are dropped.
func (s *Sprite) loadTexture(name string, then func()) {
	if name == "" || s.env.Assets == nil {
		then()
		return
	}
	s.env.Assets.Load(name, func(res *assets.Resource, err error) {
		if s.node.Closed() {
			return
		}
		if err != nil {
			s.failed = true
			s.env.Logger.Warn("texture load failed", "label", s.node.Label(), "texture", name, "error", err)
			return
		}
		s.node.Texture = name
		if s.node.Width == 0 && s.node.Height == 0 {
			s.node.Width, s.node.Height = float64(res.Width), float64(res.Height)
		}
		then()
	})
}

// BackgroundSprite is a sprite shown per game mode. With a free texture in
// its low sheet it swaps art instead of hiding.
type BackgroundSprite struct {
	Sprite
	mode ir.GameMode
}

// NewBackgroundSprite builds a BackgroundSprite.
func NewBackgroundSprite(p scene.Props) (scene.Element, error) {
	b := &BackgroundSprite{Sprite: Sprite{placer: newPlacer(p)}}
	if err := b.place(); err != nil {
		return nil, err
	}
	if b.positioned() {
		b.subscribeResize(b)
	}

	b.mode = ir.ModeFor(p.Env.Actor.Snapshot().Context.IsFreeSpin)
	sub := p.Env.Actor.Subscribe(b.onSnapshot)
	b.node.Own(sub.Dispose)

	b.loadTexture(b.textureFor(b.mode), b.markLoaded)
	b.applyVisibility()
	return b, nil
}

// Node implements scene.Element.
func (b *BackgroundSprite) Node() *scene.Node { return b.node }

// Mode returns the game mode the sprite last rendered for.
func (b *BackgroundSprite) Mode() ir.GameMode { return b.mode }

// OnResize implements resize.Listener.
func (b *BackgroundSprite) OnResize() error {
	if err := b.place(); err != nil {
		return err
	}
	b.applyVisibility()
	return nil
}

func (b *BackgroundSprite) onSnapshot(s actor.Snapshot) {
	mode := ir.ModeFor(s.Context.IsFreeSpin)
	if mode == b.mode {
		return
	}
	b.mode = mode
	if tex := b.textureFor(mode); tex != b.node.Texture && tex != "" {
		b.loadTexture(tex, func() {})
	}
	b.applyVisibility()
}

func (b *BackgroundSprite) textureFor(mode ir.GameMode) string {
	cfg := b.node.Config
	if sheet := cfg.LowSheet; sheet != nil {
		if mode == ir.GameModeFreeSpin && sheet.FreeTexture != "" {
			return sheet.FreeTexture
		}
		return sheet.Texture
	}
	return cfg.Texture
}

func (b *BackgroundSprite) applyVisibility() {
	b.node.Visible = b.visible() && b.node.Config.VisibleIn(b.mode)
}

// NewMockup builds a Mockup: a reference overlay that behaves like a
// background sprite and sits above the scene at reduced alpha.
func NewMockup(p scene.Props) (scene.Element, error) {
	elem, err := NewBackgroundSprite(p)
	if err != nil {
		return nil, err
	}
	n := elem.Node()
	if p.Config.Alpha == nil {
		n.Alpha = MockupAlpha
	}
	if p.Config.ZIndex == 0 {
		n.ZIndex = OverlayZIndex
	}
	return elem, nil
}

const (
	// MockupAlpha is the default alpha of mockup overlays.
	MockupAlpha = 0.5
	// OverlayZIndex keeps debug overlays above everything else.
	OverlayZIndex = 9999999
)
