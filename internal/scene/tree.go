package scene

import (
	"github.com/roach88/tetra/internal/ir"
)

// Tree is a built scene.
type Tree struct {
	root   Element
	index  map[ir.ElementID]Element
	order  []Element
	errors []error
	closed bool
}

// Root returns the root element.
func (t *Tree) Root() Element { return t.root }

// Lookup returns the element labelled id.
func (t *Tree) Lookup(id ir.ElementID) (Element, bool) {
	e, ok := t.index[id]
	return e, ok
}

// Len returns the number of built elements.
func (t *Tree) Len() int { return len(t.order) }

// Errors returns the per-node build failures, in encounter order.
func (t *Tree) Errors() []error { return t.errors }

// Walk visits the attached tree depth-first, parents before children.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	if t.root == nil {
		return
	}
	walk(t.root.Node(), 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	fn(n, depth)
	for _, c := range n.children {
		walk(c, depth+1, fn)
	}
}

// Dump returns the state of every attached node in Walk order.
func (t *Tree) Dump() []NodeState {
	var out []NodeState
	t.Walk(func(n *Node, depth int) {
		out = append(out, n.state(depth))
	})
	return out
}

// Close tears the whole tree down, releasing every node's subscriptions
// exactly once. Elements built but never attached (their parent failed
// mid-pass) are released too. Idempotent.
func (t *Tree) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if t.root != nil {
		t.root.Node().close()
	}
	for _, e := range t.order {
		e.Node().close()
	}
}
