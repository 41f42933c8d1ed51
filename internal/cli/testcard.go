package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scanstation/pkg/qrcode"
)

type testCardFlags struct {
	output  string
	size    int
	dataURI bool
}

// NewTestCardCommand creates the "testcard" command.
func NewTestCardCommand(_ *globalFlags) *cobra.Command {
	flags := &testCardFlags{}

	cmd := &cobra.Command{
		Use:   "testcard <payload>",
		Short: "Write a QR code image for testing the scanner",
		Long: `Write a PNG QR code holding payload. Point the camera at it, or serve a
directory of cards with CAMERA_DRIVER=still.

Examples:
  scanstation testcard ATHLETE-0042 -o cards/0042.png
  scanstation testcard ATHLETE-0042 --data-uri`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.dataURI {
				uri, err := qrcode.GenerateBase64Image(args[0], flags.size)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), uri)
				return nil
			}
			if err := qrcode.WriteFile(args[0], flags.size, flags.output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flags.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "testcard.png", "Output PNG file")
	cmd.Flags().IntVar(&flags.size, "size", 320, "Image size in pixels")
	cmd.Flags().BoolVar(&flags.dataURI, "data-uri", false, "Print a data URI instead of writing a file")

	return cmd
}
