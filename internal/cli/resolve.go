package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/tetra/internal/app"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/loadscreen"
	"github.com/roach88/tetra/internal/style"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Width  float64
	Height float64
}

// ResolvedNode is one node's placement for the requested viewport.
type ResolvedNode struct {
	Label      ir.ElementID   `json:"label"`
	Type       ir.ElementType `json:"type,omitempty"`
	Depth      int            `json:"depth"`
	Positioned bool           `json:"positioned"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Scale      float64        `json:"scale"`
	Visible    bool           `json:"visible"`
	Error      string         `json:"error,omitempty"`
}

// ResolveResult is the output of the resolve command.
type ResolveResult struct {
	Viewport    ir.Size        `json:"viewport"`
	Style       ir.Style       `json:"style"`
	Orientation ir.Orientation `json:"orientation"`
	Ratio       float64        `json:"ratio"`
	Dividend    float64        `json:"dividend"`
	Nodes       []ResolvedNode `json:"nodes"`
	Failures    int            `json:"failures"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <layout>",
		Short: "Show the style and every node's transform for a viewport",
		Long: `Classify a viewport and resolve every positioned node of a layout.

Nodes without a position table keep their configured transform and are
listed as unpositioned. A node whose table lacks the resolved style is
reported, and the command exits 1.

Examples:
  tetra resolve layout.cue
  tetra resolve layout.cue --width 1080 --height 1920
  tetra resolve layout.cue --width 1024 --height 768 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Width, "width", app.DefaultViewport.Width, "viewport width")
	cmd.Flags().Float64Var(&opts.Height, "height", app.DefaultViewport.Height, "viewport height")

	return cmd
}

func runResolve(opts *ResolveOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	vp := ir.Size{Width: opts.Width, Height: opts.Height}
	doc, err := LoadLayout(path)
	if err != nil {
		code, msg := loadErrorParts(err)
		_ = formatter.Error(code, msg, nil)
		return WrapExitError(ExitCommandError, "failed to load layout", err)
	}

	result, err := ResolveLayout(doc, vp)
	if err != nil {
		return commandError(formatter, ErrCodeBadViewport, "cannot classify viewport", err)
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		writeResolveText(formatter, result)
	}

	if result.Failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d node(s) failed to resolve", result.Failures))
	}
	return nil
}

// ResolveLayout resolves every node of doc for vp in tree order, followed
// by the load screen when the layout defines its table.
func ResolveLayout(doc *ir.LayoutDocument, vp ir.Size) (*ResolveResult, error) {
	c, err := style.Classify(vp, doc.Common)
	if err != nil {
		return nil, err
	}
	result := &ResolveResult{
		Viewport:    vp,
		Style:       c.Style,
		Orientation: c.Orientation,
		Ratio:       c.Ratio,
		Dividend:    c.Dividend,
		Nodes:       []ResolvedNode{},
	}

	add := func(n ResolvedNode, table ir.PositionTable) {
		n.Visible = true
		if len(table) > 0 {
			n.Positioned = true
			p, err := style.ResolveTable(vp, doc.Common, n.Label, table)
			if err != nil {
				n.Error = err.Error()
				n.Visible = false
				result.Failures++
			} else {
				t := p.Transform(vp)
				n.X, n.Y, n.Scale, n.Visible = t.X, t.Y, t.Scale, p.Visible
			}
		}
		result.Nodes = append(result.Nodes, n)
	}

	doc.Root.Walk(func(n *ir.LayoutNode, depth int) bool {
		add(ResolvedNode{Label: n.Label, Type: n.Type, Depth: depth}, n.Position)
		return true
	})
	if len(doc.Common.LoadScreen) > 0 {
		add(ResolvedNode{Label: loadscreen.Label}, doc.Common.LoadScreen)
	}
	return result, nil
}

func writeResolveText(f *OutputFormatter, r *ResolveResult) {
	fmt.Fprintf(f.Writer, "%gx%g -> %s (%s, ratio %.4f, dividend %g)\n\n",
		r.Viewport.Width, r.Viewport.Height, r.Style, r.Orientation, r.Ratio, r.Dividend)

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tX\tY\tSCALE\tVISIBLE")
	for _, n := range r.Nodes {
		label := strings.Repeat("  ", n.Depth) + string(n.Label)
		switch {
		case n.Error != "":
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%s\n", label, n.Error)
		case !n.Positioned:
			fmt.Fprintf(tw, "%s\t-\t-\t-\tunpositioned\n", label)
		default:
			fmt.Fprintf(tw, "%s\t%g\t%g\t%.4g\t%t\n", label, n.X, n.Y, n.Scale, n.Visible)
		}
	}
	tw.Flush()
}
