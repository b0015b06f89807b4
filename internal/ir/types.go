package ir

import "math"

// ElementType names the factory that builds a layout node.
type ElementType string

// Element types understood by the scene registry.
const (
	TypeRoot             ElementType = "Root"
	TypeLayoutContainer  ElementType = "TetraLayoutContainer"
	TypeSprite           ElementType = "TetraSprite"
	TypeBackgroundSprite ElementType = "BackgroundSprite"
	TypeMockup           ElementType = "Mockup"
	TypeButton           ElementType = "TetraButton"
	TypeStyleLabel       ElementType = "StyleLabel"
)

// ElementTypes is the closed set of known element types.
var ElementTypes = []ElementType{
	TypeRoot,
	TypeLayoutContainer,
	TypeSprite,
	TypeBackgroundSprite,
	TypeMockup,
	TypeButton,
	TypeStyleLabel,
}

// Known reports whether t is one of ElementTypes.
func (t ElementType) Known() bool {
	for _, k := range ElementTypes {
		if k == t {
			return true
		}
	}
	return false
}

// PositionRule places a node for one (orientation, style) pair.
//
// X and Y are offsets from the viewport centre in reference units; Divisor
// is the node's reference size along the fit dimension, so the uniform
// scale is dividend / Divisor.
type PositionRule struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Divisor float64 `json:"divisor"`
	Visible *bool   `json:"visible,omitempty"` // nil means visible
}

// IsVisible returns the rule's visibility, defaulting to true.
func (r PositionRule) IsVisible() bool {
	return r.Visible == nil || *r.Visible
}

// PositionKey addresses one entry of a PositionTable.
type PositionKey struct {
	Orientation Orientation
	Style       Style
}

// PositionTable maps (orientation, style) to a position rule.
type PositionTable map[PositionKey]PositionRule

// Lookup returns the rule for (o, s).
func (t PositionTable) Lookup(o Orientation, s Style) (PositionRule, bool) {
	r, ok := t[PositionKey{Orientation: o, Style: s}]
	return r, ok
}

// Set stores the rule for (o, s).
func (t PositionTable) Set(o Orientation, s Style, r PositionRule) {
	t[PositionKey{Orientation: o, Style: s}] = r
}

// Missing lists the styles without a rule, in Styles order.
func (t PositionTable) Missing() []Style {
	var missing []Style
	for _, s := range Styles {
		if _, ok := t.Lookup(s.Orientation(), s); !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// SpriteSheet references a texture inside a packed sheet.
type SpriteSheet struct {
	Sheet       string `json:"sheet"`
	Texture     string `json:"texture"`
	FreeTexture string `json:"free_texture,omitempty"`
}

// LayoutNode is the immutable description of one visual element.
type LayoutNode struct {
	Type     ElementType   `json:"type"`
	Label    ElementID     `json:"label"`
	Children []*LayoutNode `json:"children,omitempty"`

	Position              PositionTable     `json:"-"`
	VisibilityByGameState map[GameMode]bool `json:"visibility_by_game_state,omitempty"`

	RequiresLoading         bool `json:"requires_loading"`
	WaitsForParentDimension bool `json:"waits_for_parent_dimension"`

	// Action is the actor event a button sends when clicked, if any.
	Action string `json:"action,omitempty"`

	// Widget extras. None of them affect orchestration.
	Texture   string       `json:"texture,omitempty"`
	LowSheet  *SpriteSheet `json:"low_sheet,omitempty"`
	HighSheet *SpriteSheet `json:"high_sheet,omitempty"`
	ZIndex    int          `json:"z_index,omitempty"`
	Alpha     *float64     `json:"alpha,omitempty"`
	Scale     *float64     `json:"scale,omitempty"`
	Visible   *bool        `json:"visible,omitempty"`
	Width     float64      `json:"width,omitempty"`
	Height    float64      `json:"height,omitempty"`
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's subtree.
func (n *LayoutNode) Walk(fn func(node *LayoutNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *LayoutNode) walk(fn func(*LayoutNode, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// VisibleIn returns the node's visibility for a game mode. Nodes without a
// game-state table are visible in every mode.
func (n *LayoutNode) VisibleIn(mode GameMode) bool {
	if len(n.VisibilityByGameState) == 0 {
		return true
	}
	return n.VisibilityByGameState[mode]
}

// AspectRatio is a width:height pair.
type AspectRatio struct {
	Width  float64 `json:"aspect_ratio_width"`
	Height float64 `json:"aspect_ratio_height"`
}

// Ratio returns Width / Height, or 0 when Height is zero.
func (a AspectRatio) Ratio() float64 {
	if a.Height == 0 {
		return 0
	}
	return a.Width / a.Height
}

// LoadingTexture names the load-screen art per orientation.
type LoadingTexture struct {
	Landscape string `json:"landscape"`
	Portrait  string `json:"portrait"`
}

// CommonData is the static cross-cutting metadata shared by every node.
type CommonData struct {
	AspectRatioThreshold float64                      `json:"aspect_ratio_threshold"`
	Landscape            AspectRatio                  `json:"landscape"`
	Locale               string                       `json:"locale,omitempty"`
	Strings              map[string]map[string]string `json:"strings,omitempty"`
	LoadingTexture       LoadingTexture               `json:"loading_texture"`
	LoadScreen           PositionTable                `json:"-"`
}

// LayoutDocument is a compiled layout configuration.
type LayoutDocument struct {
	Common CommonData  `json:"common"`
	Root   *LayoutNode `json:"root"`
}

// Count returns the number of nodes in the document.
func (d *LayoutDocument) Count() int {
	n := 0
	d.Root.Walk(func(*LayoutNode, int) bool {
		n++
		return true
	})
	return n
}

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both sides are positive and finite.
func (s Size) Valid() bool {
	return positive(s.Width) && positive(s.Height)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
