package scan

import "github.com/dmitrymomot/scanstation/pkg/camera"

// Config selects the camera a session asks for.
type Config struct {
	Facing camera.Facing
	Width  int
	Height int
}

func (c Config) request() camera.Request {
	return camera.Request{Facing: c.Facing, Width: c.Width, Height: c.Height}
}
