package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tetra/internal/app"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/compiler"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/server"
	"github.com/roach88/tetra/internal/store"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Width    float64
	Height   float64
	Database string
	Assets   string
	AssetURL string
	FreeSpin bool
	Language string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <layout>",
		Short: "Run a layout headless behind an HTTP API",
		Long: `Build the scene for a layout and serve it over HTTP until interrupted.

Routes:
  GET  /health          liveness and session ID
  GET  /snapshot        actor state, load progress and every node
  POST /viewport        {"width": 1080, "height": 1920}
  POST /click/{label}   click a button
  POST /key/{code}      press a key (Space, Enter)
  POST /pointer         {"x": 10, "y": 20}

Textures come from --assets (a directory) or --asset-url (a base URL).
Without either, textures are skipped and count as loaded. With --db every
actor event is journaled for 'tetra trace'.

Examples:
  tetra serve layout.cue --assets ./public
  tetra serve layout.cue --asset-url https://cdn.example.com/game/ --db tetra.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().Float64Var(&opts.Width, "width", app.DefaultViewport.Width, "initial viewport width")
	cmd.Flags().Float64Var(&opts.Height, "height", app.DefaultViewport.Height, "initial viewport height")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database path")
	cmd.Flags().StringVar(&opts.Assets, "assets", "", "asset directory")
	cmd.Flags().StringVar(&opts.AssetURL, "asset-url", "", "asset base URL")
	cmd.Flags().BoolVar(&opts.FreeSpin, "free-spin", false, "resume in free-spin mode")
	cmd.Flags().StringVar(&opts.Language, "language", "", "load screen language (BCP 47)")
	cmd.MarkFlagsMutuallyExclusive("assets", "asset-url")

	return cmd
}

// Config maps the flags onto app.Config.
func (o *ServeOptions) Config() (app.Config, error) {
	if !(ir.Size{Width: o.Width, Height: o.Height}).Valid() {
		return app.Config{}, fmt.Errorf("viewport %gx%g must be positive", o.Width, o.Height)
	}
	return app.Config{
		Viewport: ir.Size{Width: o.Width, Height: o.Height},
		FreeSpin: o.FreeSpin,
		Language: o.Language,
	}, nil
}

// Source returns the asset source selected by the flags, nil for none.
func (o *ServeOptions) Source() (assets.Source, error) {
	switch {
	case o.Assets != "" && o.AssetURL != "":
		return nil, errors.New("--assets and --asset-url are mutually exclusive")
	case o.Assets != "":
		info, err := os.Stat(o.Assets)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("not a directory: %s", o.Assets)
		}
		return assets.FSSource{FS: os.DirFS(o.Assets)}, nil
	case o.AssetURL != "":
		return assets.NewHTTPSource(o.AssetURL, nil)
	default:
		return nil, nil
	}
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := slog.Default()

	cfg, err := opts.Config()
	if err != nil {
		return commandError(formatter, ErrCodeBadViewport, "invalid viewport", err)
	}
	src, err := opts.Source()
	if err != nil {
		return commandError(formatter, ErrCodeNotFound, "invalid asset source", err)
	}

	doc, err := LoadLayout(path)
	if err != nil {
		code, msg := loadErrorParts(err)
		_ = formatter.Error(code, msg, nil)
		return WrapExitError(ExitCommandError, "failed to load layout", err)
	}
	if errs := compiler.Validate(doc); len(errs) > 0 {
		return outputValidationErrors(formatter, doc, errs)
	}

	appOpts := []app.Option{app.WithConfig(cfg), app.WithLogger(logger)}
	if src != nil {
		appOpts = append(appOpts, app.WithSource(src))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return commandError(formatter, ErrCodeJournal, "failed to open database", err)
		}
		defer st.Close()
		appOpts = append(appOpts, app.WithJournal(st))
	}

	a, err := app.New(doc, appOpts...)
	if err != nil {
		return commandError(formatter, ErrCodeBuildFailed, "failed to create app", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(ctx) }()

	if err := a.Do(ctx, func() error { return a.Start(ctx) }); err != nil {
		stop()
		<-runErr
		return commandError(formatter, ErrCodeBuildFailed, "failed to build scene", err)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		stop()
		<-runErr
		return commandError(formatter, ErrCodeServerFailed, "failed to listen", err)
	}
	srv := &http.Server{
		Handler:           server.New(a, logger).Router(),
		ReadHeaderTimeout: server.RequestTimeout,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	logger.Info("serving layout", "addr", ln.Addr().String(), "session", a.Actor.Session(), "layout", path)
	if formatter.JSON() {
		_ = formatter.encode(CLIResponse{Status: "ok", Data: map[string]string{"addr": ln.Addr().String()}, Session: a.Actor.Session()})
	} else {
		fmt.Fprintf(formatter.Writer, "Serving on http://%s (session %s)\n", ln.Addr(), a.Actor.Session())
	}

	var failure error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			failure = err
		}
	case err := <-runErr:
		failure = err
		runErr <- err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	stop()
	if err := <-runErr; err != nil && failure == nil {
		failure = err
	}

	if failure != nil {
		return commandError(formatter, ErrCodeServerFailed, "server stopped", failure)
	}
	return nil
}
