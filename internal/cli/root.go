// Package cli implements the scanstation commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information, injected from main.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFiles []string
	json     bool
}

// NewRootCommand creates the root command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "scanstation",
		Short: "Camera-driven QR and barcode check-in station",
		Long: `scanstation opens a camera, decodes QR codes and barcodes from its frames
and shows the latest scanned payload on a live web page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil,
		"Load variables from these files instead of .env")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Output in JSON format")

	rootCmd.AddCommand(NewServeCommand(flags))
	rootCmd.AddCommand(NewDecodeCommand(flags))
	rootCmd.AddCommand(NewDevicesCommand(flags))
	rootCmd.AddCommand(NewTestCardCommand(flags))

	return rootCmd
}

// Execute runs rootCmd and exits with status 1 on failure.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
