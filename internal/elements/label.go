package elements

import (
	"github.com/roach88/tetra/internal/scene"
	"github.com/roach88/tetra/internal/style"
)

// StyleLabel is a debug readout of the current style in the top-right
// corner.
type StyleLabel struct {
	node *scene.Node
	env  *scene.Env
}

const (
	styleLabelRightInset = 130
	styleLabelTop        = 10
)

// NewStyleLabel builds a StyleLabel.
func NewStyleLabel(p scene.Props) (scene.Element, error) {
	l := &StyleLabel{node: scene.NewNode(p.Config), env: p.Env}
	if p.Config.ZIndex == 0 {
		l.node.ZIndex = OverlayZIndex
	}
	if err := l.OnResize(); err != nil {
		return nil, err
	}
	sub := p.Env.Resize.Subscribe(l)
	l.node.Own(sub.Dispose)
	return l, nil
}

// Node implements scene.Element.
func (l *StyleLabel) Node() *scene.Node { return l.node }

// OnResize implements resize.Listener.
func (l *StyleLabel) OnResize() error {
	vp := l.env.Viewport.Size()
	c, err := style.Classify(vp, l.env.Common)
	if err != nil {
		return err
	}
	l.node.Text = string(c.Style)
	l.node.X = vp.Width - styleLabelRightInset
	l.node.Y = styleLabelTop
	return nil
}
