package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/ir"
)

// Builder turns a layout document into a Tree.
type Builder struct {
	registry *Registry
	env      *Env
	logger   *slog.Logger
}

// NewBuilder creates a builder. The registry is sealed and a nil
// env.Logger is replaced with slog.Default().
func NewBuilder(reg *Registry, env *Env) *Builder {
	reg.Seal()
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	return &Builder{registry: reg, env: env, logger: env.Logger}
}

// Build instantiates the tree in one depth-first pass.
//
// For every node: its factory runs, its subtree is built, and only then is
// it attached to its parent, immediately followed by its "<label>_added"
// notification. The root is never announced.
//
// A node whose type is unknown, whose factory fails or whose label repeats
// an earlier node is skipped together with its subtree. The failure is
// logged, recorded in Tree.Errors, and its siblings are still built. A
// failing root fails the whole build.
//
// Every built node contributes one load record, loaded unless the node
// requires loading. The records are sent to the actor as a single event
// once the pass is complete.
//
// Must run on the UI loop.
func (b *Builder) Build(ctx context.Context, doc *ir.LayoutDocument) (*Tree, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("build: document has no root")
	}

	t := &Tree{
		index: make(map[ir.ElementID]Element),
	}
	seeds := ir.LoadStatusMap{}

	root, err := b.build(ctx, t, seeds, doc.Root)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("build root: %w", err)
	}
	t.root = root

	if b.env.Loads != nil {
		b.env.Loads.Seed(seeds)
	}

	b.logger.Info("scene built",
		"nodes", len(t.index),
		"errors", len(t.errors),
		"requires_loading", len(seeds.Pending()),
	)
	return t, nil
}

func (b *Builder) build(ctx context.Context, t *Tree, seeds ir.LoadStatusMap, cfg *ir.LayoutNode) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, dup := t.index[cfg.Label]; dup {
		return nil, &Error{Code: ErrCodeDuplicateLabel, Label: cfg.Label, Type: cfg.Type, Message: "label already used"}
	}

	factory, err := b.registry.Lookup(cfg.Type)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			se.Label = cfg.Label
		}
		return nil, err
	}

	elem, err := factory(Props{Config: cfg, Env: b.env})
	if err != nil {
		return nil, &Error{Code: ErrCodeFactoryFailed, Label: cfg.Label, Type: cfg.Type, Message: "factory failed", Err: err}
	}

	node := elem.Node()
	t.index[cfg.Label] = elem
	t.order = append(t.order, elem)
	seeds[cfg.Label] = ir.ElementLoadStatus{Label: cfg.Label, IsLoaded: !cfg.RequiresLoading}

	for _, childCfg := range cfg.Children {
		child, err := b.build(ctx, t, seeds, childCfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			b.logger.Error("element skipped", "label", childCfg.Label, "type", childCfg.Type, "parent", cfg.Label, "error", err)
			t.errors = append(t.errors, err)
			continue
		}

		node.AddChild(child.Node())
		if b.env.Bus != nil {
			b.env.Bus.Publish(bus.AddedTopic(childCfg.Label))
		}
	}

	return elem, nil
}
