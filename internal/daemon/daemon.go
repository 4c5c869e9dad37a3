// Package daemon runs the long-lived winstack process: the registry and its
// observers, the IPC server, the config watcher, and the optional X11 mirror
// and hotkeys.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/winstack/internal/actionlog"
	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/hotkeys"
	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/metrics"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/tiling"
	"github.com/1broseidon/winstack/internal/windows"
)

// Options configures Run. Zero values select the defaults.
type Options struct {
	// ConfigPath defaults to config.DefaultConfigPath.
	ConfigPath string
	// SocketPath defaults to runtimepath.SocketPath.
	SocketPath string
	Logger     *slog.Logger
	// OpenBackend is used when the mirror is enabled. Defaults to
	// platform.Open.
	OpenBackend func() (platform.Backend, error)
	// Ready, if set, is called once the IPC server is accepting requests.
	Ready func(*windows.Registry)
}

// Run starts the daemon and blocks until ctx is cancelled or a component
// fails.
func Run(ctx context.Context, opts Options) error {
	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		}))
	}
	logger.Info("configuration loaded", "path", path, "files", len(res.Files), "default_layout", cfg.DefaultLayout)

	reg := windows.New(windows.Config{Defaults: WindowDefaults(cfg)})

	actions, err := actionlog.NewLogger(actionlog.ConfigFrom(cfg.GetLoggingConfig()))
	if err != nil {
		logger.Warn("action log disabled", "error", err)
	} else {
		defer actions.Close()
		defer reg.Subscribe(actions.Observer())()
	}

	m := metrics.New()
	m.Sync(reg.Snapshot())
	defer reg.Subscribe(m.Observer())()

	applyConfig := func(next *config.Config) {
		reg.SetDefaults(WindowDefaults(next))
	}

	srv, err := ipc.NewServer(ipc.ServerOptions{
		SocketPath: opts.SocketPath,
		Registry:   reg,
		Config:     cfg,
		LoadConfig: func() (*config.Config, error) {
			res, err := config.LoadFromPath(path)
			if err != nil {
				return nil, err
			}
			return res.Config, nil
		},
		OnConfig: applyConfig,
	})
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}

	watcher, err := config.NewWatcher(config.WatcherConfig{
		Path:   path,
		Logger: logger,
		OnChange: func(res *config.LoadResult, err error) {
			if err != nil {
				return
			}
			srv.UpdateConfig(res.Config)
			applyConfig(res.Config)
		},
	})
	if err != nil {
		srv.Stop()
		return err
	}

	var backend platform.Backend
	if cfg.Mirror.Enabled || len(cfg.Hotkeys) > 0 {
		open := opts.OpenBackend
		if open == nil {
			open = platform.Open
		}
		backend, err = open()
		if err != nil {
			srv.Stop()
			return fmt.Errorf("failed to open window system: %w", err)
		}
		defer backend.Close()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		srv.Stop()
		return nil
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})

	if cfg.Mirror.Enabled {
		mirror := NewMirror(MirrorConfig{
			Interval:         time.Duration(cfg.Mirror.IntervalMS) * time.Millisecond,
			IncludeMinimized: cfg.Mirror.IncludeMinimized,
			Logger:           logger,
		}, backend, reg)
		g.Go(func() error {
			mirror.Run(gctx)
			return nil
		})
	}
	if len(cfg.Hotkeys) > 0 {
		startHotkeys(gctx, g, backend, reg, srv, cfg.Hotkeys, logger)
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		httpSrv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.Metrics.Listen)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("winstack daemon started", "socket", srv.SocketPath(), "mirror", cfg.Mirror.Enabled, "metrics", cfg.Metrics.Enabled)
	if opts.Ready != nil {
		opts.Ready(reg)
	}

	err = g.Wait()
	logger.Info("winstack daemon stopped")
	return err
}

// startHotkeys grabs the configured key sequences. Bindings are read once at
// startup; later reloads do not regrab.
func startHotkeys(ctx context.Context, g *errgroup.Group, backend platform.Backend, reg *windows.Registry, srv *ipc.Server, bindings map[string]string, logger *slog.Logger) {
	conn, ok := backend.(hotkeys.XConn)
	if !ok {
		logger.Warn("hotkeys need an X11 backend; none bound")
		return
	}
	arrange := func() error {
		cfg := srv.GetConfig()
		layout, err := cfg.GetDefaultLayout()
		if err != nil {
			return err
		}
		screen := tiling.RectFromConfig(cfg.Screen)
		if d, err := backend.ActiveDisplay(); err == nil && d.Usable.Width > 0 {
			screen = tiling.Rect{X: d.Usable.X, Y: d.Usable.Y, Width: d.Usable.Width, Height: d.Usable.Height}
		}
		_, err = tiling.Arrange(reg, screen, layout, cfg.GapSize)
		return err
	}

	h := hotkeys.NewHandler(conn)
	bound, err := h.Bind(bindings, hotkeys.Actions(reg, arrange, logger))
	if err != nil {
		logger.Warn("hotkey binding failed", "error", err)
	}
	if bound == 0 {
		return
	}
	g.Go(func() error {
		h.Run(ctx)
		return nil
	})
}

// WindowDefaults converts the default_window section into registry defaults.
func WindowDefaults(cfg *config.Config) windows.Defaults {
	return windows.Defaults{
		Position: windows.Point{X: cfg.DefaultWindow.Position.X, Y: cfg.DefaultWindow.Position.Y},
		Size:     windows.Size{Width: cfg.DefaultWindow.Size.Width, Height: cfg.DefaultWindow.Size.Height},
	}
}
