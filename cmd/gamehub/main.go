package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/undeconstructed/gamehub/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("bad config")
	}
	server.SetupLogging(cfg.Log)

	srv := server.NewServer(cfg)

	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	err = srv.Run(ctx)
	log.Info().Err(err).Msg("server return")
	if err != nil {
		os.Exit(1)
	}
}
