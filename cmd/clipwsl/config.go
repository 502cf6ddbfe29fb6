package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clipwsl/internal/config"
	"clipwsl/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPWSL_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPWSL_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)

	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName(config.Name)
		v.SetConfigType("toml")
		v.AddConfigPath(config.ExeDir())
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", config.Name))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	config.BindEnv(v)

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	// Flags spelled with dashes feed keys spelled with underscores.
	for key, flag := range map[string]string{"temp_dir": "temp-dir", "queue_size": "queue-size"} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}
		}
	}
	return nil
}

// loadConfig binds v, configures logging and returns the validated config.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (config.Config, error) {
	if err := bindViper(cmd, v); err != nil {
		return config.Config{}, err
	}
	setupLogging(v)
	return config.Load(v)
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for background, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSettingFlags adds flags for the settings most often changed per run.
func addSettingFlags(cmd *cobra.Command) {
	cmd.Flags().String("hotkey", "", `hotkey combo, e.g. "!v", "^!v", "!Enter" (default "!v")`)
	cmd.Flags().String("mode", "", "fast, or safe to switch to the English layout while pasting (default fast)")
	cmd.Flags().String("temp-dir", "", "directory for PNG files (default: temp next to the executable)")
	cmd.Flags().Int("queue-size", 0, "pending writes before pasting blocks (default 64)")
	cmd.Flags().Duration("prefetch", 0, "poll for new clipboard bitmaps at this interval; 0 disables")
}

// setupLogging reads logging flags from viper and configures slog. Every
// record carries a short id for this process.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	format, level := logging.Resolve(interactive, v.GetString("log-format"), v.GetString("log-level"))
	logging.Setup(format, level, "run", uuid.NewString()[:8])
}

/*──────── config subcommands ──────────────────────────────────*/

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	addSettingFlags(cmd)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Long: `Writes the default settings to path, or to clipwsl.toml next to the
executable when no path is given. An existing file is left alone unless
--force is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(config.ExeDir(), config.Name+".toml")
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.WriteDefaults(path, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}
