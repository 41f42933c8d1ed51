package camera

import (
	"path/filepath"
	"sort"
	"time"
)

// V4L2Options configures the Linux video device provider.
type V4L2Options struct {
	// RearDevice and FrontDevice tag device paths with a facing.
	RearDevice  string
	FrontDevice string
	// Pattern is the glob used to discover devices.
	Pattern string
	// FrameTimeout bounds a single wait for a frame.
	FrameTimeout time.Duration
}

func (o V4L2Options) withDefaults() V4L2Options {
	if o.Pattern == "" {
		o.Pattern = "/dev/video*"
	}
	if o.FrameTimeout <= 0 {
		o.FrameTimeout = 2 * time.Second
	}
	return o
}

// discover lists devices matching the pattern plus any explicitly tagged
// device, each with its configured facing.
func (o V4L2Options) discover() ([]Device, error) {
	paths, err := filepath.Glob(o.Pattern)
	if err != nil {
		return nil, err
	}
	for _, p := range []string{o.RearDevice, o.FrontDevice} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	seen := make(map[string]bool, len(paths))

	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		d := Device{Name: filepath.Base(p), Path: p}
		switch p {
		case o.RearDevice:
			d.Facing = FacingEnvironment
		case o.FrontDevice:
			d.Facing = FacingUser
		}
		devices = append(devices, d)
	}
	return devices, nil
}
