package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Pixel formats understood by the frame decoders, as V4L2 fourcc codes.
const (
	FourCCMJPEG uint32 = 'M' | 'J'<<8 | 'P'<<16 | 'G'<<24
	FourCCYUYV  uint32 = 'Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24
	FourCCGrey  uint32 = 'G' | 'R'<<8 | 'E'<<16 | 'Y'<<24
)

// preferredFourCCs is the order in which pixel formats are negotiated.
var preferredFourCCs = []uint32{FourCCMJPEG, FourCCYUYV, FourCCGrey}

// FourCCName returns the four character code as text.
func FourCCName(code uint32) string {
	return string([]byte{byte(code), byte(code >> 8), byte(code >> 16), byte(code >> 24)})
}

// DecodeFrame turns a raw frame into an image. Decoders only need luminance,
// so packed YUV frames become grayscale images. Truncated or corrupt frames
// return ErrBadFrame.
func DecodeFrame(code uint32, data []byte, width, height int) (image.Image, error) {
	switch code {
	case FourCCMJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: mjpeg: %w", ErrBadFrame, err)
		}
		return img, nil
	case FourCCYUYV:
		return yuyvToGray(data, width, height)
	case FourCCGrey:
		return greyToGray(data, width, height)
	default:
		return nil, fmt.Errorf("%w: pixel format %s", ErrUnsupported, FourCCName(code))
	}
}

func yuyvToGray(data []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 || len(data) < width*height*2 {
		return nil, fmt.Errorf("%w: short yuyv frame: %d bytes for %dx%d", ErrBadFrame, len(data), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range width * height {
		img.Pix[i] = data[i*2]
	}
	return img, nil
}

func greyToGray(data []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 || len(data) < width*height {
		return nil, fmt.Errorf("%w: short grey frame: %d bytes for %dx%d", ErrBadFrame, len(data), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, data[:width*height])
	return img, nil
}
