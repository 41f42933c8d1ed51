package decoder

import (
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"
)

// Region is a region of interest expressed as fractions of the frame.
// The zero value covers the whole frame.
type Region struct {
	X, Y, Width, Height float64
}

// FullFrame is the region covering the whole frame.
var FullFrame = Region{}

// UnmarshalText parses "x,y,w,h"; an empty string or "full" means FullFrame.
func (r *Region) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || strings.EqualFold(s, "full") {
		*r = FullFrame
		return nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return fmt.Errorf("%w: want x,y,w,h, got %q", ErrInvalidRegion, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidRegion, s, err)
		}
		v[i] = f
	}
	reg := Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if err := reg.Validate(); err != nil {
		return err
	}
	*r = reg
	return nil
}

func (r Region) String() string {
	if r.IsFull() {
		return "full"
	}
	return fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.Width, r.Height)
}

// IsFull reports whether r covers the whole frame.
func (r Region) IsFull() bool {
	return r == FullFrame || (r.X == 0 && r.Y == 0 && r.Width == 1 && r.Height == 1)
}

// Validate checks that the box lies within the unit square.
func (r Region) Validate() error {
	if r == FullFrame {
		return nil
	}
	if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 || r.X+r.Width > 1 || r.Y+r.Height > 1 {
		return fmt.Errorf("%w: %s", ErrInvalidRegion, r)
	}
	return nil
}

// Rect maps the region onto bounds.
func (r Region) Rect(bounds image.Rectangle) image.Rectangle {
	if r.IsFull() {
		return bounds
	}
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	rect := image.Rect(
		bounds.Min.X+int(r.X*w),
		bounds.Min.Y+int(r.Y*h),
		bounds.Min.X+int((r.X+r.Width)*w),
		bounds.Min.Y+int((r.Y+r.Height)*h),
	)
	return rect.Intersect(bounds)
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

// Crop returns the part of img inside the region. Images that support
// SubImage share pixels with the result.
func (r Region) Crop(img image.Image) image.Image {
	rect := r.Rect(img.Bounds())
	if rect == img.Bounds() {
		return img
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}
