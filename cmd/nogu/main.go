package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/DAYGoodTime/nogu/internal/cmd/client"
	serverrun "github.com/DAYGoodTime/nogu/internal/cmd/server"
	cfgpkg "github.com/DAYGoodTime/nogu/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nogu",
		Short: "nogu tournament server CLI",
		Long:  "nogu is a single-binary osu! tournament backend. This CLI manages the server and talks to its HTTP API.",
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the nogu server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(cfgPath)
			if err != nil {
				return err
			}

			// Flags override file and environment values.
			if v, _ := cmd.Flags().GetString("http"); v != "" {
				cfg.Server.HTTPAddr = v
			}
			if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
				cfg.Storage.DataDir = v
			}
			if v, _ := cmd.Flags().GetString("fsync"); v != "" {
				cfg.Storage.Fsync = v
			}
			if cmd.Flags().Changed("fsync-interval-ms") {
				cfg.Storage.FsyncIntervalMs, _ = cmd.Flags().GetInt("fsync-interval-ms")
			}
			if v, _ := cmd.Flags().GetString("log-level"); v != "" {
				cfg.Logging.Level = v
			}
			if v, _ := cmd.Flags().GetString("log-format"); v != "" {
				cfg.Logging.Format = v
			}
			if cmd.Flags().Changed("request-interval-sec") {
				cfg.Beatmap.RequestIntervalSec, _ = cmd.Flags().GetInt("request-interval-sec")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Config file path (default: ./nogu.yaml when present)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (overrides config)")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (overrides config)")
	serverStartCmd.Flags().String("fsync", "", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 0, "When fsync=interval, group-commit window in ms")
	serverStartCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", "", "Log format: text|json")
	serverStartCmd.Flags().Int("request-interval-sec", 0, "Beatmap request cooldown in seconds")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	rootCmd.AddCommand(clientcmd.NewAuthCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewBeatmapCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewStatsCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("NOGU_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
