package decoder

import (
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
)

// Symbol is a decoded barcode.
type Symbol struct {
	Text   string
	Format Format
}

// Reader decodes single images. It is not safe for concurrent use.
type Reader struct {
	formats []Format
	readers []gozxing.Reader
	region  Region
	hints   map[gozxing.DecodeHintType]any
}

// NewReader creates a reader for formats, tried in the given order.
func NewReader(formats []Format, region Region, tryHarder bool) (*Reader, error) {
	if len(formats) == 0 {
		return nil, ErrNoFormats
	}
	if err := region.Validate(); err != nil {
		return nil, err
	}

	r := &Reader{
		region: region,
		hints:  map[gozxing.DecodeHintType]any{},
	}
	seen := make(map[Format]bool, len(formats))
	possible := make([]gozxing.BarcodeFormat, 0, len(formats))
	for _, f := range formats {
		s, ok := symbologies[f]
		if !ok {
			return nil, ErrUnknownFormat
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		r.formats = append(r.formats, f)
		r.readers = append(r.readers, s.reader())
		possible = append(possible, s.barcode)
	}
	r.hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = possible
	if tryHarder {
		r.hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return r, nil
}

// Formats returns the enabled formats.
func (r *Reader) Formats() []Format {
	return append([]Format(nil), r.formats...)
}

// Decode returns the first symbol found in the region of interest.
// ok is false when nothing readable is in the frame.
func (r *Reader) Decode(img image.Image) (Symbol, bool) {
	if img == nil {
		return Symbol{}, false
	}
	cropped := r.region.Crop(img)
	if b := cropped.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return Symbol{}, false
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(cropped)
	if err != nil {
		return Symbol{}, false
	}
	for i, reader := range r.readers {
		res, err := reader.Decode(bmp, r.hints)
		reader.Reset()
		if err != nil || res == nil {
			continue
		}
		text := res.GetText()
		if strings.TrimSpace(text) == "" {
			continue
		}
		format := r.formats[i]
		if got := formatOf(res.GetBarcodeFormat()); got.Valid() {
			format = got
		}
		return Symbol{Text: text, Format: format}, true
	}
	return Symbol{}, false
}
