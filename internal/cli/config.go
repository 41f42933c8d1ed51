package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/scanstation/modules/scanner"
	"github.com/dmitrymomot/scanstation/pkg/camera"
	"github.com/dmitrymomot/scanstation/pkg/config"
	"github.com/dmitrymomot/scanstation/pkg/decoder"
	"github.com/dmitrymomot/scanstation/pkg/httpserver"
	"github.com/dmitrymomot/scanstation/pkg/logger"
)

const serviceName = "scanstation"

// Config is the complete process configuration.
type Config struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	Autostart bool   `env:"SCAN_AUTOSTART" envDefault:"true"`

	HTTP   httpserver.Config `envPrefix:"HTTP_"`
	Scan   decoder.Config    `envPrefix:"SCAN_"`
	Camera camera.Config     `envPrefix:"CAMERA_"`
	Page   scanner.Config    `envPrefix:"PAGE_"`
}

func loadConfig(flags *globalFlags) (Config, error) {
	var cfg Config
	var opts []config.Option
	if flags != nil && len(flags.envFiles) > 0 {
		opts = append(opts, config.WithEnvFiles(flags.envFiles...))
	}
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newLogger writes to stderr so command output on stdout stays parseable.
func newLogger(cfg Config) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(requestIDAttr),
	)
}

func requestIDAttr(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}
