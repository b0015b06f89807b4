// Package assets loads textures and sprite sheets for scene elements.
//
// Loading is asynchronous: Load returns at once and the completion callback
// later runs on the UI loop. Loads cannot be cancelled; an element that is
// torn down before its completion arrives ignores it.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Resource is a loaded asset.
type Resource struct {
	Name string
	// Width and Height are the intrinsic pixel size, zero for assets that
	// are not images (atlases, fonts).
	Width  int
	Height int
	Size   int
}

// Done receives the outcome of one load.
type Done func(*Resource, error)

// Loader starts asset loads.
type Loader interface {
	Load(name string, done Done)
}

// Source fetches raw asset bytes. Implementations may block.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FSSource reads assets from a file system, e.g. os.DirFS(dir).
type FSSource struct {
	FS fs.FS
}

// Open implements Source.
func (s FSSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return s.FS.Open(path.Clean(name))
}

// HTTPSource fetches assets relative to a base URL.
type HTTPSource struct {
	Base   *url.URL
	Client *http.Client
}

// NewHTTPSource parses base. If client is nil a client with a 10s timeout
// is used.
func NewHTTPSource(base string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse asset base url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{Base: u, Client: client}, nil
}

// Open implements Source.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parse asset name %q: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", name, resp.StatusCode)
	}
	return resp.Body, nil
}

// Async runs a blocking Source on background goroutines and posts every
// completion back through post (the UI loop's Post).
type Async struct {
	ctx    context.Context
	src    Source
	post   func(func()) bool
	logger *slog.Logger
}

// NewAsync creates an async loader. Loads started after ctx is cancelled
// fail with ctx.Err().
func NewAsync(ctx context.Context, src Source, post func(func()) bool, logger *slog.Logger) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	return &Async{ctx: ctx, src: src, post: post, logger: logger}
}

// Load implements Loader.
func (a *Async) Load(name string, done Done) {
	go func() {
		res, err := a.fetch(name)
		if err != nil {
			a.logger.Warn("asset load failed", "asset", name, "error", err)
		} else {
			a.logger.Debug("asset loaded", "asset", name, "width", res.Width, "height", res.Height)
		}
		if !a.post(func() { done(res, err) }) {
			a.logger.Debug("asset completion dropped: loop closed", "asset", name)
		}
	}()
}

func (a *Async) fetch(name string) (*Resource, error) {
	if err := a.ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := a.src.Open(a.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return Decode(name, data)
}

// Decode builds a Resource from raw bytes. Images get their intrinsic size;
// other formats are accepted as opaque data.
func Decode(name string, data []byte) (*Resource, error) {
	res := &Resource{Name: name, Size: len(data)}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	switch {
	case err == nil:
		res.Width, res.Height = cfg.Width, cfg.Height
	case errors.Is(err, image.ErrFormat):
	default:
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return res, nil
}
