package elements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/loadstatus"
	"github.com/roach88/tetra/internal/resize"
	"github.com/roach88/tetra/internal/scene"
	"github.com/roach88/tetra/internal/testutil"
	"github.com/roach88/tetra/internal/uiloop"
	"github.com/roach88/tetra/internal/visibility"
)

var (
	landscape = ir.Size{Width: 1920, Height: 1080}
	portrait  = ir.Size{Width: 1080, Height: 1920}
)

func table() ir.PositionTable {
	t := ir.PositionTable{}
	t.Set(ir.OrientationLandscape, ir.StyleTrain, ir.PositionRule{X: 100, Y: -50, Divisor: 1080})
	t.Set(ir.OrientationLandscape, ir.StyleRectangle, ir.PositionRule{X: 10, Y: 20, Divisor: 1920})
	t.Set(ir.OrientationPortrait, ir.StyleSquare, ir.PositionRule{Divisor: 768})
	t.Set(ir.OrientationPortrait, ir.StyleSword, ir.PositionRule{Y: 300, Divisor: 1080})
	return t
}

type fixture struct {
	t      *testing.T
	clock  *testutil.ManualClock
	loop   *uiloop.Loop
	actor  *actor.Actor
	bus    *bus.Bus
	vp     *resize.Viewport
	assets *assets.Manual
	env    *scene.Env
}

func newFixture(t *testing.T) *fixture {
	clock := testutil.NewManualClock()
	loop := uiloop.New(uiloop.WithClock(clock))
	a := actor.New(
		actor.WithSession(testutil.NewFixedSessionGenerator("s")),
		actor.WithDispatch(loop.Post),
	)
	disp := resize.NewDispatcher()
	vp := resize.NewViewport(landscape, disp)
	b := bus.New(nil)
	manual := assets.NewManual()
	return &fixture{
		t: t, clock: clock, loop: loop, actor: a, bus: b, vp: vp, assets: manual,
		env: &scene.Env{
			Viewport: vp,
			Resize:   disp,
			Actor:    a,
			Common:   ir.CommonData{AspectRatioThreshold: 1.4, Landscape: ir.AspectRatio{Width: 16, Height: 10}},
			Bus:      b,
			Loop:     loop,
			Assets:   manual,
			Loads:    loadstatus.NewReporter(a, nil),
		},
	}
}

func (f *fixture) build(root *ir.LayoutNode) *scene.Tree {
	f.t.Helper()
	reg := scene.NewRegistry()
	require.NoError(f.t, Register(reg))
	tree, err := scene.NewBuilder(reg, f.env).Build(context.Background(), &ir.LayoutDocument{Common: f.env.Common, Root: root})
	require.NoError(f.t, err)
	f.settle()
	return tree
}

// settle runs the loop and the actor until neither has work left.
func (f *fixture) settle() {
	for f.loop.RunPending()+f.actor.Drain(context.Background()) > 0 {
	}
}

func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.settle()
}

func (f *fixture) resize(size ir.Size) {
	f.t.Helper()
	require.NoError(f.t, f.vp.Resize(size.Width, size.Height))
	f.settle()
}

func (f *fixture) resolve(name string) {
	f.t.Helper()
	require.NoError(f.t, f.assets.Resolve(name))
	f.settle()
}

func lookup[T scene.Element](t *testing.T, tree *scene.Tree, id ir.ElementID) T {
	t.Helper()
	elem, ok := tree.Lookup(id)
	require.True(t, ok, "element %s", id)
	typed, ok := elem.(T)
	require.True(t, ok, "element %s has type %T", id, elem)
	return typed
}

func root(children ...*ir.LayoutNode) *ir.LayoutNode {
	return &ir.LayoutNode{Type: ir.TypeRoot, Label: "root", Children: children}
}

func TestRegister_AllTypes(t *testing.T) {
	reg := scene.NewRegistry()
	require.NoError(t, Register(reg))
	assert.Equal(t, ir.ElementTypes, reg.Types())
	assert.Error(t, Register(reg), "second registration must fail")
}

func TestLayoutContainer_WaitsForSettle(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{
		Type:                    ir.TypeLayoutContainer,
		Label:                   "reels",
		Position:                table(),
		RequiresLoading:         true,
		WaitsForParentDimension: true,
	}))
	c := lookup[*LayoutContainer](t, tree, "reels")

	n := c.Node()
	assert.False(t, n.Visible)
	assert.True(t, c.Waiting())
	assert.Equal(t, 1060.0, n.X)
	assert.Equal(t, 490.0, n.Y)
	assert.Equal(t, actor.StateLoading, f.actor.Snapshot().State)

	f.resize(portrait)
	assert.False(t, n.Visible, "a resize while waiting repositions but keeps it hidden")
	assert.Equal(t, 540.0, n.X)
	assert.Equal(t, 1260.0, n.Y)

	f.advance(visibility.DefaultSettleDelay - time.Millisecond)
	assert.False(t, n.Visible)

	f.advance(time.Millisecond)
	assert.True(t, n.Visible)
	assert.False(t, c.Waiting())
	assert.Equal(t, actor.StateReadyToEnterNormalSpin, f.actor.Snapshot().State)
}

func TestLayoutContainer_TeardownBeforeSettle(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{
		Type:                    ir.TypeLayoutContainer,
		Label:                   "reels",
		Position:                table(),
		WaitsForParentDimension: true,
	}))
	n := lookup[*LayoutContainer](t, tree, "reels").Node()

	tree.Close()
	f.advance(time.Second)
	assert.False(t, n.Visible, "a late settle after teardown is dropped")
}

func TestLayoutContainer_ShowsImmediatelyWithoutWaiting(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{
		Type:            ir.TypeLayoutContainer,
		Label:           "frame",
		Position:        table(),
		RequiresLoading: true,
	}))
	n := lookup[*LayoutContainer](t, tree, "frame").Node()

	assert.True(t, n.Visible)
	assert.Equal(t, actor.StateReadyToEnterNormalSpin, f.actor.Snapshot().State,
		"a loading container without assets completes once attached")

	f.resize(portrait)
	assert.Equal(t, 1260.0, n.Y)
}

func TestLayoutContainer_MissingRuleFailsFactory(t *testing.T) {
	f := newFixture(t)
	pos := ir.PositionTable{}
	pos.Set(ir.OrientationPortrait, ir.StyleSword, ir.PositionRule{Divisor: 1080})
	tree := f.build(root(&ir.LayoutNode{Type: ir.TypeLayoutContainer, Label: "reels", Position: pos}))

	require.Len(t, tree.Errors(), 1)
	assert.True(t, scene.IsFactoryFailed(tree.Errors()[0]))
	_, ok := tree.Lookup("reels")
	assert.False(t, ok)
}

func TestSprite_TextureLoadCompletesLoading(t *testing.T) {
	f := newFixture(t)
	f.assets.SetSize("logo.png", 200, 100)
	tree := f.build(root(&ir.LayoutNode{
		Type:            ir.TypeSprite,
		Label:           "logo",
		Texture:         "logo.png",
		RequiresLoading: true,
	}))
	n := lookup[*Sprite](t, tree, "logo").Node()

	assert.InDelta(t, 0.5, f.actor.Snapshot().Progress(), 1e-9)
	assert.Empty(t, n.Texture)

	f.resolve("logo.png")
	assert.Equal(t, "logo.png", n.Texture)
	assert.Equal(t, 200.0, n.Width)
	assert.Equal(t, 100.0, n.Height)
	assert.Equal(t, 1.0, f.actor.Snapshot().Progress())
	assert.Equal(t, actor.StateReadyToEnterNormalSpin, f.actor.Snapshot().State)
}

func TestSprite_FailedLoadNeverReportsLoaded(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{Type: ir.TypeSprite, Label: "logo", Texture: "logo.png", RequiresLoading: true}))
	s := lookup[*Sprite](t, tree, "logo")

	require.NoError(t, f.assets.Fail("logo.png", errors.New("404")))
	f.settle()

	assert.True(t, s.Failed())
	assert.Empty(t, s.Node().Texture)
	snap := f.actor.Snapshot()
	assert.Equal(t, actor.StateLoading, snap.State)
	assert.False(t, snap.Context.ElementLoadStatus["logo"].IsLoaded)
	assert.Less(t, snap.Progress(), 1.0)
}

func TestSprite_CompletionAfterTeardownIsDropped(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{Type: ir.TypeSprite, Label: "logo", Texture: "logo.png", RequiresLoading: true}))
	n := lookup[*Sprite](t, tree, "logo").Node()

	tree.Close()
	f.resolve("logo.png")

	assert.Empty(t, n.Texture)
	assert.Equal(t, actor.StateLoading, f.actor.Snapshot().State)
}

func TestSprite_HiddenRuleAndResize(t *testing.T) {
	f := newFixture(t)
	pos := table()
	hidden := false
	pos.Set(ir.OrientationPortrait, ir.StyleSword, ir.PositionRule{Divisor: 1080, Visible: &hidden})
	tree := f.build(root(&ir.LayoutNode{Type: ir.TypeSprite, Label: "deco", Position: pos}))
	n := lookup[*Sprite](t, tree, "deco").Node()

	assert.True(t, n.Visible)
	f.resize(portrait)
	assert.False(t, n.Visible)
	f.resize(landscape)
	assert.True(t, n.Visible)
}

func TestBackgroundSprite_FollowsGameMode(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(
		&ir.LayoutNode{
			Type:     ir.TypeBackgroundSprite,
			Label:    "bg",
			LowSheet: &ir.SpriteSheet{Sheet: "bg.json", Texture: "bg.png", FreeTexture: "bg_free.png"},
		},
		&ir.LayoutNode{
			Type:                  ir.TypeBackgroundSprite,
			Label:                 "normal_bg",
			Texture:               "normal.png",
			VisibilityByGameState: map[ir.GameMode]bool{ir.GameModeNormalSpin: true},
		},
	))
	bg := lookup[*BackgroundSprite](t, tree, "bg")
	normal := lookup[*BackgroundSprite](t, tree, "normal_bg")

	f.assets.ResolveAll()
	f.settle()
	assert.Equal(t, "bg.png", bg.Node().Texture)
	assert.True(t, normal.Node().Visible)

	f.actor.Send(actor.Event{Type: actor.EventInitToNormalSpinIdle})
	f.actor.Send(actor.Event{Type: actor.EventTriggerFreeSpin})
	f.settle()
	require.Equal(t, actor.StateFreeSpinIdle, f.actor.Snapshot().State)
	assert.Equal(t, ir.GameModeFreeSpin, bg.Mode())
	assert.False(t, normal.Node().Visible)

	f.resolve("bg_free.png")
	assert.Equal(t, "bg_free.png", bg.Node().Texture)
}

func TestMockup_Defaults(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{Type: ir.TypeMockup, Label: "mock"}))
	n := lookup[*BackgroundSprite](t, tree, "mock").Node()
	assert.Equal(t, MockupAlpha, n.Alpha)
	assert.Equal(t, OverlayZIndex, n.ZIndex)
}

func TestButton_LoadsLowThenHighAndClicks(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{
		Type:            ir.TypeButton,
		Label:           "sound",
		Action:          string(actor.EventToggleSound),
		RequiresLoading: true,
		LowSheet:        &ir.SpriteSheet{Sheet: "low.json", Texture: "sound_low.png"},
		HighSheet:       &ir.SpriteSheet{Sheet: "high.json", Texture: "sound_high.png"},
	}))
	b := lookup[*Button](t, tree, "sound")

	assert.Equal(t, []string{"sound_low.png"}, f.assets.Pending())
	f.resolve("sound_low.png")
	assert.Equal(t, actor.StateReadyToEnterNormalSpin, f.actor.Snapshot().State, "the low sheet is enough to count as loaded")
	assert.False(t, b.Upgraded())

	f.resolve("sound_high.png")
	assert.True(t, b.Upgraded())
	assert.Equal(t, "sound_high.png", b.Node().Texture)

	clicked := 0
	f.bus.Subscribe(bus.ClickedTopic("sound"), func(bus.Topic) { clicked++ })
	b.Click()
	f.settle()

	assert.Equal(t, 1, clicked)
	assert.Equal(t, 1, b.Clicks())
	assert.False(t, f.actor.Snapshot().Context.SoundOn)
}

func TestButton_FailedLowSheetKeepsLoading(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{
		Type:            ir.TypeButton,
		Label:           "sound",
		RequiresLoading: true,
		LowSheet:        &ir.SpriteSheet{Sheet: "low.json", Texture: "sound_low.png"},
		HighSheet:       &ir.SpriteSheet{Sheet: "high.json", Texture: "sound_high.png"},
	}))
	b := lookup[*Button](t, tree, "sound")

	require.NoError(t, f.assets.Fail("sound_low.png", errors.New("404")))
	f.settle()

	assert.True(t, b.Failed())
	assert.Empty(t, f.assets.Pending(), "the high sheet is not requested after a failed low sheet")
	assert.Equal(t, actor.StateLoading, f.actor.Snapshot().State)
	assert.False(t, f.actor.Snapshot().Context.ElementLoadStatus["sound"].IsLoaded)
}

func TestButton_UnknownActionFails(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{Type: ir.TypeButton, Label: "b", Action: "LAUNCH"}))
	require.Len(t, tree.Errors(), 1)
	assert.Contains(t, tree.Errors()[0].Error(), "LAUNCH")
}

func TestStyleLabel_TracksStyle(t *testing.T) {
	f := newFixture(t)
	tree := f.build(root(&ir.LayoutNode{Type: ir.TypeStyleLabel, Label: "style"}))
	n := lookup[*StyleLabel](t, tree, "style").Node()

	assert.Equal(t, "Train", n.Text)
	assert.Equal(t, 1790.0, n.X)
	assert.Equal(t, 10.0, n.Y)
	assert.Equal(t, OverlayZIndex, n.ZIndex)

	f.resize(portrait)
	assert.Equal(t, "Sword", n.Text)
	assert.Equal(t, 950.0, n.X)
}
