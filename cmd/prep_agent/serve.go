package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shiyoungwoo/Resume-assistant/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the question bank, mock interview, points and self-introduction endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides APP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	port := a.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:              port,
		RateLimitRPS:      a.cfg.RateLimitRPS,
		RateLimitBurst:    a.cfg.RateLimitBurst,
		RateLimitDisabled: a.cfg.RateLimitDisabled,
		CORSOrigins:       a.cfg.CORSOrigins,
	}, a.station, a.devices, a.logger.Named("server"))

	return srv.Run(ctx, 0)
}
