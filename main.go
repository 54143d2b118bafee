package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ryanchiang0306/chess/analysis"
	"github.com/ryanchiang0306/chess/config"
	"github.com/ryanchiang0306/chess/gamestore"
	"github.com/ryanchiang0306/chess/shell"
)

var configPath = flag.String("config", "", "path to a config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	difficulty, err := analysis.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		log.Fatal().Err(err).Msg("bad difficulty")
	}

	var store *gamestore.Store
	if cfg.StorePath != "" {
		store, err = gamestore.Open(cfg.StorePath)
		if err != nil {
			log.Fatal().Err(err).Msg("opening analysis store")
		}
		defer store.Close()
	}

	coordinator, err := analysis.NewCoordinator(analysis.Options{
		Difficulty:    difficulty,
		JitterMax:     cfg.JitterMax,
		TableCapacity: cfg.TableCapacity,
		ThinkDelay:    cfg.ThinkDelay,
		Store:         store,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("creating coordinator")
	}

	sc := shell.NewShellController(coordinator, store, cfg)
	sc.Loop()
}
