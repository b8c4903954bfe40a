package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaharia-lab/fileops"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := fileops.NewConfigViper()

	rootCmd := &cobra.Command{
		Use:           "fileops",
		Short:         "MCP server that saves files and creates directories over stdio",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, v)
		},
	}

	defaults := fileops.DefaultConfig()
	flags := rootCmd.Flags()
	flags.String(fileops.ConfigKeyLogLevel, defaults.LogLevel, "diagnostic log level (debug, info, warn, error)")
	flags.String(fileops.ConfigKeyLogFormat, defaults.LogFormat, "diagnostic log format (text, json)")
	flags.String(fileops.ConfigKeyLogBackend, defaults.LogBackend, "diagnostic log backend (logrus, zap, slog, std, none)")
	// Binding only fails for a nil flag.
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the server name and version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (protocol %s)\n",
				fileops.ServerName, fileops.ServerVersion, fileops.ProtocolVersion)
		},
	})

	return rootCmd
}

func runServer(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := fileops.LoadConfig(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Diagnostics go to stderr; stdout is reserved for responses.
	logger, err := fileops.NewLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := fileops.NewServer(
		fileops.UseLogger(logger),
		fileops.UseFilesystem(fileops.NewOSFilesystem()),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	stdio := fileops.NewStdIOServer(server, cmd.InOrStdin(), cmd.OutOrStdout())
	if err := stdio.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Shutting down on signal")
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
