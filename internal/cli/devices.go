package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scanstation/pkg/camera"
)

type deviceOutput struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Facing string `json:"facing"`
}

// NewDevicesCommand creates the "devices" command.
func NewDevicesCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List cameras in the order the scanner tries them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			provider, err := camera.NewProvider(cfg.Camera)
			if err != nil {
				return err
			}
			devices, err := provider.Devices(cmd.Context())
			if err != nil {
				return err
			}
			devices = camera.Order(devices, cfg.Scan.Facing)

			out := make([]deviceOutput, 0, len(devices))
			for _, d := range devices {
				out = append(out, deviceOutput{Name: d.Name, Path: d.Path, Facing: d.Facing.String()})
			}

			if global.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if len(out) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cameras found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tNAME\tFACING")
			for _, d := range out {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Path, d.Name, d.Facing)
			}
			return w.Flush()
		},
	}
}
