package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openmirror/mirrorbox/internal/daemon"
	"github.com/openmirror/mirrorbox/internal/version"
)

var (
	red  = color.New(color.FgHiRed, color.Bold).SprintFunc()
	cyan = color.New(color.FgHiCyan, color.Bold).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "mirrorbox",
	Short:   "Mirrors a source folder onto a replica folder, keeping an exact copy",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &daemon.Config{
			Source:      viper.GetString("source"),
			Replica:     viper.GetString("replica"),
			LogFile:     viper.GetString("log_file"),
			Interval:    time.Duration(viper.GetInt("interval")) * time.Second,
			Detach:      viper.GetBool("detach"),
			Watch:       viper.GetBool("watch"),
			Once:        viper.GetBool("once"),
			ExcludeFile: viper.GetString("exclude"),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// config is valid, errors past this point are runtime ones
		cmd.SilenceUsage = true
		fmt.Println(cyan(version.ShortWithApp()))

		d, err := daemon.New(cfg)
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		return d.Start(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("source", "s", "", "Source folder path")
	rootCmd.Flags().StringP("replica", "r", "", "Replica folder path")
	rootCmd.Flags().StringP("log", "l", daemon.DefaultLogFile, "Activity log file path")
	rootCmd.Flags().IntP("time", "t", int(daemon.DefaultInterval/time.Second), "Sync interval (seconds)")
	rootCmd.Flags().Bool("detach", false, "Run the scheduling loop on a separate worker")
	rootCmd.Flags().Bool("watch", false, "Also sync when the source changes, not just on the interval")
	rootCmd.Flags().Bool("once", false, "Run a single sync pass and exit")
	rootCmd.Flags().String("exclude", "", "File with gitignore-style patterns to exclude from syncing")
}

func bindConfig(cmd *cobra.Command) error {
	viper.BindPFlag("source", cmd.Flags().Lookup("source"))
	viper.BindPFlag("replica", cmd.Flags().Lookup("replica"))
	viper.BindPFlag("log_file", cmd.Flags().Lookup("log"))
	viper.BindPFlag("interval", cmd.Flags().Lookup("time"))
	viper.BindPFlag("detach", cmd.Flags().Lookup("detach"))
	viper.BindPFlag("watch", cmd.Flags().Lookup("watch"))
	viper.BindPFlag("once", cmd.Flags().Lookup("once"))
	viper.BindPFlag("exclude", cmd.Flags().Lookup("exclude"))

	viper.SetEnvPrefix("MIRRORBOX")
	viper.AutomaticEnv()
	return nil
}

func main() {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}
