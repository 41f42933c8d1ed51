//go:build !linux

package camera

import (
	"context"
	"fmt"
	"runtime"
)

// V4L2 is only functional on Linux; elsewhere Open reports ErrUnsupported.
type V4L2 struct {
	opts V4L2Options
}

func NewV4L2(opts V4L2Options) *V4L2 {
	return &V4L2{opts: opts.withDefaults()}
}

func (p *V4L2) Devices(context.Context) ([]Device, error) {
	return nil, nil
}

func (p *V4L2) Open(context.Context, Request) (Stream, error) {
	return nil, fmt.Errorf("%w: v4l2 on %s", ErrUnsupported, runtime.GOOS)
}
