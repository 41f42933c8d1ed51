package camera_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scanstation/pkg/camera"
)

func TestFacing_UnmarshalText(t *testing.T) {
	t.Parallel()

	cases := map[string]camera.Facing{
		"environment": camera.FacingEnvironment,
		"Rear":        camera.FacingEnvironment,
		"back":        camera.FacingEnvironment,
		"user":        camera.FacingUser,
		"FRONT":       camera.FacingUser,
		"any":         camera.FacingAny,
		"":            camera.FacingAny,
	}
	for in, want := range cases {
		var f camera.Facing
		require.NoError(t, f.UnmarshalText([]byte(in)), in)
		assert.Equal(t, want, f, in)
	}

	var f camera.Facing
	err := f.UnmarshalText([]byte("sideways"))
	assert.ErrorIs(t, err, camera.ErrUnsupported)
	assert.Equal(t, "any", camera.FacingAny.String())
}

func TestOrder(t *testing.T) {
	t.Parallel()

	devices := []camera.Device{
		{Name: "front", Facing: camera.FacingUser},
		{Name: "usb"},
		{Name: "rear", Facing: camera.FacingEnvironment},
	}

	t.Run("prefers requested facing then unknown", func(t *testing.T) {
		t.Parallel()
		got := camera.Order(devices, camera.FacingEnvironment)
		assert.Equal(t, []string{"rear", "usb", "front"}, names(got))
	})

	t.Run("any keeps order", func(t *testing.T) {
		t.Parallel()
		got := camera.Order(devices, camera.FacingAny)
		assert.Equal(t, []string{"front", "usb", "rear"}, names(got))
	})

	t.Run("does not modify input", func(t *testing.T) {
		t.Parallel()
		_ = camera.Order(devices, camera.FacingUser)
		assert.Equal(t, "front", devices[0].Name)
	})
}

func names(devices []camera.Device) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.Name
	}
	return out
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", &fs.PathError{Op: "open", Path: "/dev/video0", Err: syscall.EACCES}, camera.ErrPermissionDenied},
		{"missing", &fs.PathError{Op: "open", Path: "/dev/video9", Err: syscall.ENOENT}, camera.ErrNoCamera},
		{"no device", syscall.ENODEV, camera.ErrNoCamera},
		{"bad ioctl", syscall.ENOTTY, camera.ErrUnsupported},
		{"already classified", camera.ErrUnsupported, camera.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := camera.Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, camera.Classify(nil))
	unknown := errors.New("boom")
	assert.Equal(t, unknown, camera.Classify(unknown))
}

func TestClassify_MessageNamesCategoryOnce(t *testing.T) {
	t.Parallel()

	err := camera.Classify(fmt.Errorf("open: %w", syscall.EACCES))
	assert.Equal(t, "permission denied", err.Error())

	err = camera.Classify(&fs.PathError{Op: "open", Path: "/dev/video0", Err: syscall.EACCES})
	assert.Equal(t, "permission denied (/dev/video0)", err.Error())
	assert.ErrorIs(t, err, camera.ErrPermissionDenied)
	assert.ErrorIs(t, err, syscall.EACCES)

	var de *camera.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "/dev/video0", de.Path)
}

func TestDecodeFrame(t *testing.T) {
	t.Parallel()

	t.Run("yuyv keeps luma", func(t *testing.T) {
		t.Parallel()
		// 2x1 frame: Y0 U Y1 V
		img, err := camera.DecodeFrame(camera.FourCCYUYV, []byte{10, 128, 200, 128}, 2, 1)
		require.NoError(t, err)
		gray, ok := img.(*image.Gray)
		require.True(t, ok)
		assert.Equal(t, []byte{10, 200}, gray.Pix)
	})

	t.Run("grey", func(t *testing.T) {
		t.Parallel()
		img, err := camera.DecodeFrame(camera.FourCCGrey, []byte{1, 2, 3, 4}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	})

	t.Run("short frame", func(t *testing.T) {
		t.Parallel()
		_, err := camera.DecodeFrame(camera.FourCCYUYV, []byte{1, 2}, 2, 2)
		assert.ErrorIs(t, err, camera.ErrBadFrame)
		_, err = camera.DecodeFrame(camera.FourCCGrey, []byte{1}, 2, 2)
		assert.ErrorIs(t, err, camera.ErrBadFrame)
	})

	t.Run("truncated mjpeg", func(t *testing.T) {
		t.Parallel()
		_, err := camera.DecodeFrame(camera.FourCCMJPEG, []byte{0xff, 0xd8, 0xff}, 640, 480)
		assert.ErrorIs(t, err, camera.ErrBadFrame)
		assert.NotErrorIs(t, err, camera.ErrUnsupported)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, err := camera.DecodeFrame(0x34325241, nil, 1, 1)
		assert.ErrorIs(t, err, camera.ErrUnsupported)
		assert.NotErrorIs(t, err, camera.ErrBadFrame)
	})

	assert.Equal(t, "MJPG", camera.FourCCName(camera.FourCCMJPEG))
}

func TestStill(t *testing.T) {
	t.Parallel()

	a := image.NewGray(image.Rect(0, 0, 4, 3))
	b := image.NewGray(image.Rect(0, 0, 4, 3))
	p := camera.NewStill([]image.Image{a, b})

	devices, err := p.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, camera.FacingEnvironment, devices[0].Facing)

	s, err := p.Open(context.Background(), camera.Request{Facing: camera.FacingEnvironment})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Info().Width)
	assert.Equal(t, 3, s.Info().Height)

	for _, want := range []image.Image{a, b, b} {
		got, err := s.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Same(t, want, got)
	}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.ReadFrame(context.Background())
	assert.ErrorIs(t, err, camera.ErrStreamClosed)
}

func TestStill_NoFrames(t *testing.T) {
	t.Parallel()

	_, err := camera.NewStill(nil).Open(context.Background(), camera.Request{})
	assert.ErrorIs(t, err, camera.ErrNoCamera)
}

func TestStill_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := camera.NewStill([]image.Image{image.NewGray(image.Rect(0, 0, 1, 1))}).Open(ctx, camera.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStillFromPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 8)
	writePNG(t, filepath.Join(dir, "a.png"), 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	p, err := camera.NewStillFromPath(dir)
	require.NoError(t, err)

	s, err := p.Open(context.Background(), camera.Request{})
	require.NoError(t, err)
	first, err := s.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, first.Bounds().Dx())

	_, err = camera.NewStillFromPath(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, camera.ErrNoCamera)

	_, err = camera.NewStillFromPath(t.TempDir())
	assert.ErrorIs(t, err, camera.ErrNoCamera)
}

func TestNewStillFromPayload(t *testing.T) {
	t.Parallel()

	p, err := camera.NewStillFromPayload("ABC123", 2)
	require.NoError(t, err)
	s, err := p.Open(context.Background(), camera.Request{})
	require.NoError(t, err)
	assert.Greater(t, s.Info().Width, 0)
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	p, err := camera.NewProvider(camera.Config{Driver: camera.DriverV4L2})
	require.NoError(t, err)
	assert.IsType(t, &camera.V4L2{}, p)

	_, err = camera.NewProvider(camera.Config{Driver: camera.DriverStill})
	assert.ErrorIs(t, err, camera.ErrUnsupported)

	_, err = camera.NewProvider(camera.Config{Driver: "gopro"})
	assert.ErrorIs(t, err, camera.ErrUnsupported)
}

func TestV4L2_NoDevices(t *testing.T) {
	t.Parallel()

	p := camera.NewV4L2(camera.V4L2Options{Pattern: filepath.Join(t.TempDir(), "video*")})
	devices, err := p.Devices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devices)

	_, err = p.Open(context.Background(), camera.Request{Facing: camera.FacingEnvironment})
	assert.True(t, errors.Is(err, camera.ErrNoCamera) || errors.Is(err, camera.ErrUnsupported))
}

func writePNG(t *testing.T, path string, size int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, size, size))))
}
