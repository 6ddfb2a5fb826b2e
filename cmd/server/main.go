// cmd/server/main.go
//
// Backend entry point: loads .env, configures logging, opens the rankings
// database, and serves the game + admin API.

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guessnumber/internal/config"
	"guessnumber/internal/live"
	"guessnumber/internal/rank"
	"guessnumber/internal/server"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := config.LoadServer()
	ranks, err := rank.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open rankings database")
	}
	defer ranks.Close()

	srv := server.New(live.NewMemoryStore(), ranks, cfg)
	log.Info().Str("port", cfg.Port).Msg("starting guessnumber server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
