package style

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/ir"
)

// common: threshold 1.4, landscape content 16:10.
func testCommon() ir.CommonData {
	return ir.CommonData{
		AspectRatioThreshold: 1.4,
		Landscape:            ir.AspectRatio{Width: 16, Height: 10},
	}
}

func fullTable() ir.PositionTable {
	t := ir.PositionTable{}
	t.Set(ir.OrientationLandscape, ir.StyleTrain, ir.PositionRule{X: 100, Y: -50, Divisor: 1080})
	t.Set(ir.OrientationLandscape, ir.StyleRectangle, ir.PositionRule{X: 10, Y: 20, Divisor: 1920})
	t.Set(ir.OrientationPortrait, ir.StyleSquare, ir.PositionRule{X: 0, Y: 0, Divisor: 768})
	t.Set(ir.OrientationPortrait, ir.StyleSword, ir.PositionRule{X: 0, Y: 300, Divisor: 1080})
	return t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		vp       ir.Size
		want     ir.Style
		dividend float64
	}{
		{name: "wide desktop", vp: ir.Size{Width: 1920, Height: 1080}, want: ir.StyleTrain, dividend: 1080},
		{name: "between threshold and target", vp: ir.Size{Width: 1500, Height: 1000}, want: ir.StyleRectangle, dividend: 1500},
		{name: "near square", vp: ir.Size{Width: 1024, Height: 768}, want: ir.StyleSquare, dividend: 768},
		{name: "tall phone", vp: ir.Size{Width: 1080, Height: 1920}, want: ir.StyleSword, dividend: 1080},
		{name: "very tall", vp: ir.Size{Width: 400, Height: 1000}, want: ir.StyleSword, dividend: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(tt.vp, testCommon())
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Style)
			assert.Equal(t, tt.want.Orientation(), c.Orientation)
			assert.Equal(t, tt.dividend, c.Dividend)
		})
	}
}

func TestClassify_TieBreaks(t *testing.T) {
	common := testCommon()

	// Exactly 9:16.
	c, err := Classify(ir.Size{Width: 900, Height: 1600}, common)
	require.NoError(t, err)
	assert.Equal(t, ir.StyleSword, c.Style, "ratio equal to 9/16 is Sword")

	// Exactly the threshold (1.4).
	c, err = Classify(ir.Size{Width: 1400, Height: 1000}, common)
	require.NoError(t, err)
	assert.Equal(t, ir.StyleSquare, c.Style, "ratio equal to the threshold is Square")

	// Exactly the landscape target (1.6).
	c, err = Classify(ir.Size{Width: 1600, Height: 1000}, common)
	require.NoError(t, err)
	assert.Equal(t, ir.StyleRectangle, c.Style, "ratio equal to the landscape target is Rectangle")
}

func TestClassify_InvalidViewport(t *testing.T) {
	for _, vp := range []ir.Size{
		{Width: 0, Height: 100},
		{Width: 100, Height: 0},
		{Width: -1, Height: 5},
		{Width: math.NaN(), Height: 100},
		{Width: 100, Height: math.Inf(1)},
		{Width: math.Inf(-1), Height: 100},
	} {
		t.Run(fmt.Sprintf("%gx%g", vp.Width, vp.Height), func(t *testing.T) {
			_, err := Classify(vp, testCommon())
			assert.True(t, IsInvalidViewport(err))
		})
	}
}

func TestResolve_Transform(t *testing.T) {
	node := &ir.LayoutNode{Label: "reel", Position: fullTable()}
	vp := ir.Size{Width: 1920, Height: 1080}

	p, err := Resolve(vp, testCommon(), node)
	require.NoError(t, err)

	assert.Equal(t, ir.StyleTrain, p.Style)
	assert.Equal(t, 1.0, p.Scale())
	assert.True(t, p.Visible)
	assert.Equal(t, Transform{X: 1060, Y: 490, Scale: 1}, p.Transform(vp))

	// Half-size window: same style, everything scales by one half.
	half := ir.Size{Width: 960, Height: 540}
	p, err = Resolve(half, testCommon(), node)
	require.NoError(t, err)
	assert.Equal(t, Transform{X: 530, Y: 245, Scale: 0.5}, p.Transform(half))
}

func TestResolve_Pure(t *testing.T) {
	node := &ir.LayoutNode{Label: "reel", Position: fullTable()}
	vp := ir.Size{Width: 1080, Height: 1920}

	first, err := Resolve(vp, testCommon(), node)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Resolve(vp, testCommon(), node)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolve_MissingRule(t *testing.T) {
	table := fullTable()
	delete(table, ir.PositionKey{Orientation: ir.OrientationPortrait, Style: ir.StyleSquare})
	node := &ir.LayoutNode{Label: "reel", Position: table}

	_, err := Resolve(ir.Size{Width: 1024, Height: 768}, testCommon(), node)
	require.Error(t, err)
	assert.True(t, IsMissingPositionRule(err))
	assert.Contains(t, err.Error(), "label=reel")

	wrapped := fmt.Errorf("positioning: %w", err)
	assert.True(t, IsMissingPositionRule(wrapped))
}

func TestResolve_InvalidDivisor(t *testing.T) {
	table := fullTable()
	table.Set(ir.OrientationLandscape, ir.StyleTrain, ir.PositionRule{Divisor: 0})

	_, err := ResolveTable(ir.Size{Width: 1920, Height: 1080}, testCommon(), "bg", table)
	assert.True(t, IsInvalidDivisor(err))
	assert.False(t, IsMissingPositionRule(err))
}

func TestResolve_HiddenRule(t *testing.T) {
	hidden := false
	table := fullTable()
	table.Set(ir.OrientationPortrait, ir.StyleSword, ir.PositionRule{Divisor: 1080, Visible: &hidden})

	p, err := ResolveTable(ir.Size{Width: 1080, Height: 1920}, testCommon(), "logo", table)
	require.NoError(t, err)
	assert.False(t, p.Visible)
}

func TestIsPortrait(t *testing.T) {
	assert.False(t, IsPortrait(ir.Size{Width: 1920, Height: 1080}, testCommon()))
	assert.True(t, IsPortrait(ir.Size{Width: 1024, Height: 768}, testCommon()), "Square is a portrait style")
	assert.True(t, IsPortrait(ir.Size{Width: 1080, Height: 1920}, testCommon()))
}
