package scene

import (
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/style"
)

// Element is anything a factory builds.
type Element interface {
	Node() *Node
}

// Node is the runtime state shared by every element: transform,
// visibility, intrinsic size and place in the tree.
type Node struct {
	Config *ir.LayoutNode

	X       float64
	Y       float64
	Scale   float64
	Visible bool
	ZIndex  int
	Alpha   float64
	Width   float64
	Height  float64
	// Texture is the currently shown texture, if any.
	Texture string
	// Text is the currently shown text, if any.
	Text string

	parent    *Node
	children  []*Node
	disposers []func()
	closed    bool
}

// NewNode creates a node for cfg with the config's static extras applied.
// Nodes start visible at the origin with unit scale.
func NewNode(cfg *ir.LayoutNode) *Node {
	n := &Node{
		Config:  cfg,
		Scale:   1,
		Visible: true,
		Alpha:   1,
		ZIndex:  cfg.ZIndex,
		Width:   cfg.Width,
		Height:  cfg.Height,
	}
	if cfg.Alpha != nil {
		n.Alpha = *cfg.Alpha
	}
	if cfg.Scale != nil {
		n.Scale = *cfg.Scale
	}
	if cfg.Visible != nil {
		n.Visible = *cfg.Visible
	}
	return n
}

// Node implements Element, so a bare *Node is a valid element.
func (n *Node) Node() *Node { return n }

// Label returns the config label.
func (n *Node) Label() ir.ElementID { return n.Config.Label }

// Parent returns the parent node, nil for the root or a detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the attached children in attachment order.
func (n *Node) Children() []*Node { return n.children }

// AddChild attaches child as the last child of n.
func (n *Node) AddChild(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
}

// Own registers fn to run when the tree is torn down. Disposers run in
// reverse registration order.
func (n *Node) Own(fn func()) {
	n.disposers = append(n.disposers, fn)
}

// Closed reports whether the node has been torn down. Late asynchronous
// completions check it and drop themselves.
func (n *Node) Closed() bool { return n.closed }

// Apply sets the node's transform.
func (n *Node) Apply(t style.Transform) {
	n.X, n.Y, n.Scale = t.X, t.Y, t.Scale
}

// close tears the subtree down, children first. Idempotent.
func (n *Node) close() {
	if n.closed {
		return
	}
	for _, c := range n.children {
		c.close()
	}
	n.closed = true
	for i := len(n.disposers) - 1; i >= 0; i-- {
		n.disposers[i]()
	}
	n.disposers = nil
}

// NodeState is a serialisable view of one node, used by snapshots.
type NodeState struct {
	Label   ir.ElementID   `json:"label" yaml:"label"`
	Type    ir.ElementType `json:"type" yaml:"type"`
	Depth   int            `json:"depth" yaml:"depth"`
	X       float64        `json:"x" yaml:"x"`
	Y       float64        `json:"y" yaml:"y"`
	Scale   float64        `json:"scale" yaml:"scale"`
	Visible bool           `json:"visible" yaml:"visible"`
	Texture string         `json:"texture,omitempty" yaml:"texture,omitempty"`
	Text    string         `json:"text,omitempty" yaml:"text,omitempty"`
}

func (n *Node) state(depth int) NodeState {
	return NodeState{
		Label:   n.Config.Label,
		Type:    n.Config.Type,
		Depth:   depth,
		X:       n.X,
		Y:       n.Y,
		Scale:   n.Scale,
		Visible: n.Visible,
		Texture: n.Texture,
		Text:    n.Text,
	}
}
