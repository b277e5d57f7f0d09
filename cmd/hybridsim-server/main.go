package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/daniacca/hybridchem/internal/httpserver"
)

func main() {
	configFile := flag.String("config", "", "optional path to a server config file (yaml/json/toml, read via viper)")
	flag.Parse()

	cfg, err := httpserver.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("hybridsim-server: %v", err)
	}

	logger := httpserver.NewLogger(cfg.LogLevel)
	srv := httpserver.NewServer(logger)

	logger.Infof("hybridsim-server listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, srv.Routes()))
}
