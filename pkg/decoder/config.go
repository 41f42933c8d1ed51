package decoder

import (
	"time"

	"github.com/dmitrymomot/scanstation/pkg/camera"
)

// Config holds decoding settings loaded from SCAN_* variables.
type Config struct {
	Facing            camera.Facing `env:"FACING" envDefault:"environment"`
	AttemptsPerSecond int           `env:"ATTEMPTS_PER_SECOND" envDefault:"5"`
	Formats           []Format      `env:"FORMATS" envDefault:"qr_code" envSeparator:","`
	Region            Region        `env:"REGION" envDefault:"0.1,0.1,0.8,0.8"`
	TryHarder         bool          `env:"TRY_HARDER" envDefault:"false"`
}

// DefaultConfig matches the environment defaults.
func DefaultConfig() Config {
	return Config{
		Facing:            camera.FacingEnvironment,
		AttemptsPerSecond: 5,
		Formats:           []Format{FormatQRCode},
		Region:            Region{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8},
	}
}

// Validate reports configuration the decoder cannot run with.
func (c Config) Validate() error {
	if c.AttemptsPerSecond <= 0 {
		return ErrInvalidRate
	}
	if len(c.Formats) == 0 {
		return ErrNoFormats
	}
	for _, f := range c.Formats {
		if !f.Valid() {
			return ErrUnknownFormat
		}
	}
	return c.Region.Validate()
}

// Interval is the delay between two decode attempts.
func (c Config) Interval() time.Duration {
	if c.AttemptsPerSecond <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(c.AttemptsPerSecond)
}
