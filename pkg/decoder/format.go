package decoder

import (
	"fmt"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Format is a symbology name as used in configuration.
type Format string

const (
	FormatQRCode     Format = "qr_code"
	FormatDataMatrix Format = "data_matrix"
	FormatCode128    Format = "code_128"
	FormatCode39     Format = "code_39"
	FormatCode93     Format = "code_93"
	FormatEAN13      Format = "ean_13"
	FormatEAN8       Format = "ean_8"
	FormatUPCA       Format = "upc_a"
	FormatUPCE       Format = "upc_e"
	FormatITF        Format = "itf"
	FormatCodabar    Format = "codabar"
)

type symbology struct {
	barcode gozxing.BarcodeFormat
	reader  func() gozxing.Reader
}

var symbologies = map[Format]symbology{
	FormatQRCode:     {gozxing.BarcodeFormat_QR_CODE, func() gozxing.Reader { return qrcode.NewQRCodeReader() }},
	FormatDataMatrix: {gozxing.BarcodeFormat_DATA_MATRIX, func() gozxing.Reader { return datamatrix.NewDataMatrixReader() }},
	FormatCode128:    {gozxing.BarcodeFormat_CODE_128, func() gozxing.Reader { return oned.NewCode128Reader() }},
	FormatCode39:     {gozxing.BarcodeFormat_CODE_39, func() gozxing.Reader { return oned.NewCode39Reader() }},
	FormatCode93:     {gozxing.BarcodeFormat_CODE_93, func() gozxing.Reader { return oned.NewCode93Reader() }},
	FormatEAN13:      {gozxing.BarcodeFormat_EAN_13, func() gozxing.Reader { return oned.NewEAN13Reader() }},
	FormatEAN8:       {gozxing.BarcodeFormat_EAN_8, func() gozxing.Reader { return oned.NewEAN8Reader() }},
	FormatUPCA:       {gozxing.BarcodeFormat_UPC_A, func() gozxing.Reader { return oned.NewUPCAReader() }},
	FormatUPCE:       {gozxing.BarcodeFormat_UPC_E, func() gozxing.Reader { return oned.NewUPCEReader() }},
	FormatITF:        {gozxing.BarcodeFormat_ITF, func() gozxing.Reader { return oned.NewITFReader() }},
	FormatCodabar:    {gozxing.BarcodeFormat_CODABAR, func() gozxing.Reader { return oned.NewCodaBarReader() }},
}

// UnmarshalText accepts names case-insensitively, with '-' or '_' separators
// and the common spellings without a separator ("qrcode", "ean13").
func (f *Format) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	name = strings.ReplaceAll(name, "-", "_")
	if _, ok := symbologies[Format(name)]; ok {
		*f = Format(name)
		return nil
	}
	for known := range symbologies {
		if strings.ReplaceAll(string(known), "_", "") == name {
			*f = known
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(text))
}

func (f Format) String() string { return string(f) }

// Valid reports whether the decoder can read f.
func (f Format) Valid() bool {
	_, ok := symbologies[f]
	return ok
}

// Formats returns every supported format in a stable order.
func Formats() []Format {
	return []Format{
		FormatQRCode, FormatDataMatrix,
		FormatCode128, FormatCode39, FormatCode93,
		FormatEAN13, FormatEAN8, FormatUPCA, FormatUPCE,
		FormatITF, FormatCodabar,
	}
}

// ParseFormats parses a comma separated list of format names.
func ParseFormats(list string) ([]Format, error) {
	var out []Format
	for part := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		var f Format
		if err := f.UnmarshalText([]byte(part)); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, ErrNoFormats
	}
	return out, nil
}

func formatOf(b gozxing.BarcodeFormat) Format {
	for f, s := range symbologies {
		if s.barcode == b {
			return f
		}
	}
	return Format(strings.ToLower(b.String()))
}
