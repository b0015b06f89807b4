// Package style classifies a viewport into one of the four responsive
// styles and resolves a node's placement for it.
//
// Everything here is a pure function of its inputs: no caching, no globals.
// Callers re-resolve on every resize.
package style

import (
	"github.com/roach88/tetra/internal/ir"
)

// PortraitTarget is the portrait content ratio (9:16). Viewports at or
// below it resolve to Sword.
const PortraitTarget = 9.0 / 16.0

// Classification is the style chosen for a viewport.
type Classification struct {
	Style       ir.Style
	Orientation ir.Orientation
	// Ratio is width / height of the viewport.
	Ratio float64
	// Dividend is the viewport dimension content is fitted to:
	// the height for Train and Square, the width for Rectangle and Sword.
	Dividend float64
}

// Classify picks the responsive style for a viewport.
//
// All comparisons are strict, so a ratio exactly on a boundary takes the
// narrower branch: 9/16 is Sword, the threshold is Square, and the landscape
// target is Rectangle.
func Classify(vp ir.Size, common ir.CommonData) (Classification, error) {
	if !vp.Valid() {
		return Classification{}, newInvalidViewport(vp)
	}

	ratio := vp.Width / vp.Height
	var s ir.Style
	switch {
	case ratio > PortraitTarget && ratio > common.AspectRatioThreshold && ratio > common.Landscape.Ratio():
		s = ir.StyleTrain
	case ratio > PortraitTarget && ratio > common.AspectRatioThreshold:
		s = ir.StyleRectangle
	case ratio > PortraitTarget:
		s = ir.StyleSquare
	default:
		s = ir.StyleSword
	}

	c := Classification{Style: s, Orientation: s.Orientation(), Ratio: ratio}
	if s.FitsHeight() {
		c.Dividend = vp.Height
	} else {
		c.Dividend = vp.Width
	}
	return c, nil
}

// IsPortrait reports whether the viewport resolves to a portrait style.
// A classification error counts as landscape.
func IsPortrait(vp ir.Size, common ir.CommonData) bool {
	c, err := Classify(vp, common)
	return err == nil && c.Orientation == ir.OrientationPortrait
}

// Placement is a node's resolved position rule for one viewport.
type Placement struct {
	Classification
	Label   ir.ElementID
	X       float64
	Y       float64
	Divisor float64
	Visible bool
}

// Resolve classifies the viewport and looks up node's rule for the result.
func Resolve(vp ir.Size, common ir.CommonData, node *ir.LayoutNode) (Placement, error) {
	return resolve(vp, common, node.Label, node.Position)
}

// ResolveTable is Resolve for consumers that own a bare rule table rather
// than a layout node, such as the load screen.
func ResolveTable(vp ir.Size, common ir.CommonData, label ir.ElementID, table ir.PositionTable) (Placement, error) {
	return resolve(vp, common, label, table)
}

func resolve(vp ir.Size, common ir.CommonData, label ir.ElementID, table ir.PositionTable) (Placement, error) {
	c, err := Classify(vp, common)
	if err != nil {
		return Placement{}, err
	}

	rule, ok := table.Lookup(c.Orientation, c.Style)
	if !ok {
		return Placement{}, newMissingRule(label, c)
	}
	if rule.Divisor <= 0 {
		return Placement{}, newInvalidDivisor(label, c, rule.Divisor)
	}

	return Placement{
		Classification: c,
		Label:          label,
		X:              rule.X,
		Y:              rule.Y,
		Divisor:        rule.Divisor,
		Visible:        rule.IsVisible(),
	}, nil
}

// Transform is the concrete on-screen placement of a node.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Scale returns the uniform scale, Dividend / Divisor.
func (p Placement) Scale() float64 {
	return p.Dividend / p.Divisor
}

// Transform anchors the rule offsets at the viewport centre and scales them
// uniformly.
func (p Placement) Transform(vp ir.Size) Transform {
	s := p.Scale()
	return Transform{
		X:     vp.Width/2 + p.X*s,
		Y:     vp.Height/2 + p.Y*s,
		Scale: s,
	}
}
