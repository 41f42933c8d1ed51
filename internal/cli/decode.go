package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scanstation/pkg/decoder"
)

// ErrNoSymbol is returned when an image holds no readable symbol.
var ErrNoSymbol = errors.New("no symbol found")

type decodeFlags struct {
	formats   string
	region    string
	tryHarder bool
}

type decodeResult struct {
	File   string `json:"file"`
	Format string `json:"format,omitempty"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewDecodeCommand creates the "decode" command.
func NewDecodeCommand(global *globalFlags) *cobra.Command {
	flags := &decodeFlags{}

	cmd := &cobra.Command{
		Use:   "decode <image>...",
		Short: "Decode symbols from image files",
		Long: `Decode the first symbol found in each image, using the same reader as the
live scanner.

Examples:
  scanstation decode card.png
  scanstation decode --formats qr_code,ean_13 --region 0.1,0.1,0.8,0.8 *.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.OutOrStdout(), global, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.formats, "formats", string(decoder.FormatQRCode),
		"Comma separated symbol formats to accept")
	cmd.Flags().StringVar(&flags.region, "region", "full",
		"Region of interest as x,y,width,height fractions, or full")
	cmd.Flags().BoolVar(&flags.tryHarder, "try-harder", false, "Spend more time per image")

	return cmd
}

func runDecode(out io.Writer, global *globalFlags, flags *decodeFlags, files []string) error {
	formats, err := decoder.ParseFormats(flags.formats)
	if err != nil {
		return err
	}
	var region decoder.Region
	if err := region.UnmarshalText([]byte(flags.region)); err != nil {
		return err
	}
	reader, err := decoder.NewReader(formats, region, flags.tryHarder)
	if err != nil {
		return err
	}

	results := make([]decodeResult, 0, len(files))
	var missed int
	for _, file := range files {
		res := decodeFile(reader, file)
		if res.Error != "" {
			missed++
		}
		results = append(results, res)
	}

	if global != nil && global.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Error != "" {
				fmt.Fprintf(out, "%s\t-\t%s\n", res.File, res.Error)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", res.File, res.Format, res.Text)
		}
	}

	if missed > 0 {
		return fmt.Errorf("%w in %d of %d images", ErrNoSymbol, missed, len(files))
	}
	return nil
}

func decodeFile(reader *decoder.Reader, file string) decodeResult {
	res := decodeResult{File: file}

	f, err := os.Open(file)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	sym, ok := reader.Decode(img)
	if !ok {
		res.Error = ErrNoSymbol.Error()
		return res
	}
	res.Format = sym.Format.String()
	res.Text = sym.Text
	return res
}
