package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clipwsl/internal/capture"
	"clipwsl/internal/clip"
	"clipwsl/internal/saver"
	"clipwsl/internal/wslpath"
)

type captureResult struct {
	Seq    uint32 `json:"seq"`
	Bytes  int    `json:"bytes"`
	Native string `json:"native"`
	WSL    string `json:"wsl"`
}

func newCaptureCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Save the clipboard bitmap once and print its WSL path",
		Long: `Decodes the bitmap currently on the clipboard, writes it to the temp
directory and prints the WSL path (or the native one when the directory has
no drive letter). Useful from scripts and for checking that decoding works.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			src := clip.New()
			defer src.Close()

			snap, err := capture.New(src, wslpath.New(cfg.TempDir),
				capture.WithRetryDelay(cfg.RetryDelay)).Capture()
			if err != nil {
				return err
			}

			// Unlike run, wait for the file before printing its path.
			sv := saver.New(saver.OSFS{}, 1)
			done := make(chan struct{})
			go func() {
				sv.Run(context.Background())
				close(done)
			}()
			if err := sv.Submit(cmd.Context(), saver.Job{Path: snap.Paths.Native, Data: snap.PNG}); err != nil {
				return err
			}
			sv.Close()
			<-done
			if _, err := os.Stat(snap.Paths.Native); err != nil {
				return fmt.Errorf("image not written: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(captureResult{
					Seq:    snap.Seq,
					Bytes:  len(snap.PNG),
					Native: snap.Paths.Native,
					WSL:    snap.Paths.WSL,
				})
			}
			p := snap.Paths.WSL
			if p == "" {
				p = snap.Paths.Native
			}
			fmt.Fprintln(out, p)
			return nil
		},
	}
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	addSettingFlags(cmd)
	cmd.Flags().Bool("json", false, "print seq, size and both paths as JSON")
	return cmd
}
