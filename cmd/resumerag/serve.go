package main

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resumerag/internal/api"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API used by the browser extension",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&addrFlag, "addr", "a", "", "listen address (overrides server.address)")
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	engine, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	addr := cfg.Server.Address
	if addrFlag != "" {
		addr = addrFlag
	}
	maxBytes := int64(cfg.Server.MaxUploadMB) << 20

	// leave room for the multipart envelope around the file itself
	h := server.Default(
		server.WithHostPorts(addr),
		server.WithMaxRequestBodySize(int(maxBytes)+1<<20),
	)
	api.RegisterRoutes(h, api.NewHandler(engine, log, maxBytes))

	log.Info("starting resumerag api", zap.String("address", addr))
	h.Spin()
	return nil
}
