// clipwsl: paste clipboard images into WSL terminals as file paths.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipwsl",
		Short: "Paste clipboard images into WSL as file paths",
		Long: `clipwsl watches for a global hotkey. When it is pressed while the
clipboard holds a bitmap, the bitmap is converted to PNG, its WSL path
(/mnt/<drive>/...) is pasted into the focused window, and the PNG is written
to the temp directory in the background. Without a bitmap the hotkey pastes
normally.

Config file search order (first found wins):
  path supplied via --config
  clipwsl.toml next to the executable
  $HOME/.config/clipwsl/clipwsl.toml

All settings can be overridden with CLIPWSL_<KEY> env vars, e.g.
CLIPWSL_MODE=safe or CLIPWSL_SWEEP_MAX_AGE=30m.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newCaptureCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipwsl %s\n", Version)
		},
	}
}
