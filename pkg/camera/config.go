package camera

import (
	"fmt"
	"time"
)

// Driver selects the Provider implementation.
type Driver string

const (
	DriverV4L2  Driver = "v4l2"
	DriverStill Driver = "still"
)

// Config holds camera settings loaded from CAMERA_* variables.
type Config struct {
	Driver        Driver        `env:"DRIVER" envDefault:"v4l2"`
	RearDevice    string        `env:"REAR_DEVICE"`
	FrontDevice   string        `env:"FRONT_DEVICE"`
	DevicePattern string        `env:"DEVICE_PATTERN" envDefault:"/dev/video*"`
	Width         int           `env:"WIDTH" envDefault:"1280"`
	Height        int           `env:"HEIGHT" envDefault:"720"`
	FrameTimeout  time.Duration `env:"FRAME_TIMEOUT" envDefault:"2s"`
	StillPath     string        `env:"STILL_PATH"`
}

// NewProvider builds the provider selected by cfg.Driver.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Driver {
	case DriverV4L2, "":
		return NewV4L2(V4L2Options{
			RearDevice:   cfg.RearDevice,
			FrontDevice:  cfg.FrontDevice,
			Pattern:      cfg.DevicePattern,
			FrameTimeout: cfg.FrameTimeout,
		}), nil
	case DriverStill:
		if cfg.StillPath == "" {
			return nil, fmt.Errorf("%w: still driver requires CAMERA_STILL_PATH", ErrUnsupported)
		}
		return NewStillFromPath(cfg.StillPath)
	default:
		return nil, fmt.Errorf("%w: driver %q", ErrUnsupported, cfg.Driver)
	}
}
