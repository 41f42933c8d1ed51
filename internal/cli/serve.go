package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/scanstation/modules/scanner"
	"github.com/dmitrymomot/scanstation/pkg/camera"
	"github.com/dmitrymomot/scanstation/pkg/decoder"
	"github.com/dmitrymomot/scanstation/pkg/httpserver"
	"github.com/dmitrymomot/scanstation/pkg/logger"
	"github.com/dmitrymomot/scanstation/svc/scan"
)

// NewServeCommand creates the "serve" command.
func NewServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scanner and its web page",
		Long: `Open the configured camera, decode symbols from its frames and serve the
scanner page with live status updates.

Examples:
  scanstation serve
  CAMERA_DRIVER=still CAMERA_STILL_PATH=./cards scanstation serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg Config) error {
	log := newLogger(cfg)
	logger.SetAsDefault(log)

	if err := cfg.Scan.Validate(); err != nil {
		return err
	}
	provider, err := camera.NewProvider(cfg.Camera)
	if err != nil {
		return err
	}
	loop, err := decoder.New(cfg.Scan, decoder.WithLogger(log))
	if err != nil {
		return err
	}
	session, err := scan.New(provider, loop, scan.Config{
		Facing: cfg.Scan.Facing,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
	}, scan.WithLogger(log))
	if err != nil {
		return err
	}

	svc := scanner.NewService(cfg.Page, session, nil, scanner.WithLogger(log))
	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(addr string, log *slog.Logger) {
			log.Info("scanner page available", slog.String("url", pageURL(addr, cfg.Page.BasePath)))
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, newRouter(cfg, svc, log))
	})
	if cfg.Autostart {
		g.Go(func() error {
			if err := session.Start(ctx); err != nil && !errors.Is(err, scan.ErrStopped) {
				log.WarnContext(ctx, "scan session did not start", logger.Error(err))
			}
			return nil
		})
	}

	return errors.Join(g.Wait(), session.Close())
}

func newRouter(cfg Config, svc *scanner.Service, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(log, svc.Check))

	base := cfg.Page.BasePath
	if base == "" {
		base = "/"
	}
	r.Mount(base, svc.Handle())
	return r
}

func pageURL(addr, base string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + base + "/"
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + base + "/"
}
