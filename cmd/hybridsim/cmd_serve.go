package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/daniacca/hybridchem/internal/httpserver"
)

func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Launch the hybridsim-server HTTP API in-process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := httpserver.LoadConfig(configFile)
			if err != nil {
				return err
			}

			logger := httpserver.NewLogger(cfg.LogLevel)
			srv := httpserver.NewServer(logger)

			logger.Infof("hybridsim serve: listening on %s", cfg.Addr)
			return http.ListenAndServe(cfg.Addr, srv.Routes())
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "optional path to a server config file (yaml/json/toml, read via viper)")
	return cmd
}
