// Command termdesk runs the terminal desktop environment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/desktop"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dataDir    string
		configPath string
	)

	root := &cobra.Command{
		Use:          "termdesk",
		Short:        "A desktop environment for the terminal",
		Long:         "termdesk hosts windowed apps, a taskbar, and a start menu inside a single terminal session.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			overlay := configPath
			if overlay == "" {
				if layout, err := paths.Default(); err == nil {
					overlay = layout.ConfigFile()
				}
			}
			cfg, err := config.Load(overlay)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			return desktop.Run(cfg)
		},
	}
	root.Flags().StringVar(&dataDir, "data-dir", "", "override the user data directory")
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config overlay")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})
	return root
}
