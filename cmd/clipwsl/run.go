package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"clipwsl/internal/app"
	"clipwsl/internal/capture"
	"clipwsl/internal/clip"
	"clipwsl/internal/config"
	"clipwsl/internal/hotkey"
	"clipwsl/internal/paste"
	"clipwsl/internal/saver"
	"clipwsl/internal/sweep"
	"clipwsl/internal/wslpath"
)

func newRunCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Listen for the hotkey and paste clipboard images as paths",
		Long: `Registers the hotkey and serves it until interrupted.

SIGHUP, or saving the config file, reloads the configuration; the new mode
and hotkey apply to the next press. The temp directory needs a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), v, cfg)
		},
	}
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	addSettingFlags(cmd)
	return cmd
}

func run(ctx context.Context, v *viper.Viper, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	binding, err := hotkey.Parse(cfg.Hotkey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}

	/* clipboard thread */
	src := clip.New()
	defer src.Close()

	paths := wslpath.New(cfg.TempDir)
	capt := capture.New(src, paths, capture.WithRetryDelay(cfg.RetryDelay))
	sv := saver.New(saver.OSFS{}, cfg.QueueSize)
	kb := paste.New(src)
	a := app.New(app.Deps{
		Source:   src,
		Capturer: capt,
		Injector: kb,
		Layout:   kb,
		Saver:    sv,
	}, cfg.Mode)

	hk, err := hotkey.NewSwitcher(ctx, binding, hotkey.Listen)
	if err != nil {
		return err
	}

	/* temp sweeper */
	sw := sweep.New(cfg.TempDir, cfg.Sweep.MaxAge)
	cr := sweep.NewCron()
	if cfg.Sweep.Schedule != "" {
		if _, err := sw.Schedule(cr, cfg.Sweep.Schedule); err != nil {
			return err
		}
	}
	cr.Start()

	slog.Info("clipwsl started",
		"hotkey", binding.String(), "mode", cfg.Mode,
		"temp_dir", cfg.TempDir, "wsl_dir", paths.WSLDir(), "config", v.ConfigFileUsed())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Run returns once Close below has been called and the queue is empty.
		sv.Run(context.Background())
		return nil
	})
	g.Go(func() error {
		defer sv.Close()
		return a.Run(gctx, hk.Presses())
	})
	if cfg.Prefetch > 0 {
		g.Go(func() error { return a.Prefetch(gctx, cfg.Prefetch) })
	}
	g.Go(func() error { return watchReload(gctx, v, a, hk) })
	err = g.Wait()

	<-cr.Stop().Done()
	if cfg.Sweep.PurgeOnExit {
		if n, perr := sw.Purge(); perr != nil {
			slog.Warn("exit purge failed", "err", perr)
		} else {
			slog.Info("exit purge", "removed", n)
		}
	}
	slog.Info("clipwsl stopped")
	return err
}

// watchReload re-reads the configuration on SIGHUP or when the config file
// changes, and applies the mode and hotkey.
func watchReload(ctx context.Context, v *viper.Viper, a *app.App, hk *hotkey.Switcher) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	changed := make(chan struct{}, 1)
	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			slog.Debug("config file changed", "file", e.Name, "op", e.Op.String())
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		v.WatchConfig()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					slog.Warn("config reload failed", "err", err)
					continue
				}
			}
		case <-changed:
		}

		cfg, err := config.Load(v)
		if err != nil {
			slog.Warn("config reload rejected", "err", err)
			continue
		}
		a.SetMode(cfg.Mode)
		// Load has validated the combo.
		if b, err := hotkey.Parse(cfg.Hotkey); err == nil {
			if err := hk.Switch(b); err != nil {
				slog.Warn("hotkey not switched", "combo", cfg.Hotkey, "keeping", hk.Binding().String(), "err", err)
			}
		}
		slog.Info("config reloaded", "mode", cfg.Mode, "hotkey", hk.Binding().String())
	}
}
