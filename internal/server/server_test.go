package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/app"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/testutil"
)

func testDoc() *ir.LayoutDocument {
	full := ir.PositionTable{}
	for _, s := range ir.Styles {
		full.Set(s.Orientation(), s, ir.PositionRule{Divisor: 1080})
	}
	return &ir.LayoutDocument{
		Common: ir.CommonData{
			AspectRatioThreshold: 1.4,
			Landscape:            ir.AspectRatio{Width: 16, Height: 10},
			LoadingTexture:       ir.LoadingTexture{Landscape: "load_l.png", Portrait: "load_p.png"},
			LoadScreen:           full,
		},
		Root: &ir.LayoutNode{Type: ir.TypeRoot, Label: "root", Children: []*ir.LayoutNode{
			// The manual clock never advances, so reels never settle and
			// the app stays loading.
			{Type: ir.TypeLayoutContainer, Label: "reels", Position: full, RequiresLoading: true, WaitsForParentDimension: true},
			{Type: ir.TypeButton, Label: "sound", Action: string(actor.EventToggleSound), Texture: "sound.png"},
		}},
	}
}

// newServer runs an app behind the router. start controls whether the
// scene is built.
func newServer(t *testing.T, start bool) (*app.App, http.Handler) {
	t.Helper()
	a, err := app.New(testDoc(),
		app.WithClock(testutil.NewManualClock()),
		app.WithLoader(assets.NewManual()),
		app.WithSession(testutil.NewFixedSessionGenerator("srv")),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		a.Close()
	})

	if start {
		require.NoError(t, a.Do(ctx, func() error { return a.Start(ctx) }))
	}
	return a, New(a, nil).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) app.Snapshot {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var snap app.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestHealth(t *testing.T) {
	_, h := newServer(t, false)
	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session":"srv"`)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSnapshotAndViewport(t *testing.T) {
	_, h := newServer(t, true)

	snap := decodeSnapshot(t, do(t, h, http.MethodGet, "/snapshot", ""))
	assert.Equal(t, ir.StyleTrain, snap.Style)
	assert.Len(t, snap.Nodes, 3)
	assert.Equal(t, actor.StateLoading, snap.State)

	snap = decodeSnapshot(t, do(t, h, http.MethodPost, "/viewport", `{"width":1080,"height":1920}`))
	assert.Equal(t, ir.StyleSword, snap.Style)
	assert.Equal(t, ir.Size{Width: 1080, Height: 1920}, snap.Viewport)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/viewport", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/viewport", `{"width":0,"height":10}`).Code)
}

func TestClick(t *testing.T) {
	_, h := newServer(t, true)

	rec := do(t, h, http.MethodPost, "/click/sound", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Eventually(t, func() bool {
		snap := decodeSnapshot(t, do(t, h, http.MethodGet, "/snapshot", ""))
		return !snap.SoundOn
	}, timeoutForTests, pollForTests)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/click/missing", "").Code)
}

func TestClick_NotStarted(t *testing.T) {
	_, h := newServer(t, false)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/click/sound", "").Code)
}

func TestKeyAndPointerBeforeReady(t *testing.T) {
	_, h := newServer(t, true)

	rec := do(t, h, http.MethodPost, "/key/Space", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"handlers":0}`, rec.Body.String(), "the load screen listens only once ready")

	rec = do(t, h, http.MethodPost, "/pointer", `{"x":5,"y":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"handlers":0}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/pointer", `nope`).Code)
}

const (
	timeoutForTests = 2 * time.Second
	pollForTests    = 5 * time.Millisecond
)

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	s := New(nil, slog.New(slog.NewTextHandler(&logs, nil)))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		s.writeJSON(rec, http.StatusOK, map[string]float64{"progress": math.Inf(1)})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "encode response failed")
	assert.Contains(t, logs.String(), "unsupported value")
}
