package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
	"github.com/stevenbetancur/pipe-app/internal/config"
	"github.com/stevenbetancur/pipe-app/internal/query"
	"github.com/stevenbetancur/pipe-app/internal/session"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local overrides for development; missing file is fine.
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.APIURL == "" {
		return fmt.Errorf("falta la URL del backend: define PIPE_API_URL o api_url en config.yaml")
	}

	sesion := session.NewStore(cfg.StateDir)
	if sesion.Tema() == session.TemaClaro {
		formatter.ApplyLightTheme()
	}

	state := &cli.SharedState{
		API:    api.NewClient(cfg.APIURL, cfg.GetRequestTimeout(), sesion),
		Cache:  query.NewCache(),
		Sesion: sesion,
		Cfg:    cfg,
	}

	return cli.NewRootCmd(state, version).Execute()
}
