// cmd/client/main.go
//
// Terminal client entry point: loads .env, configures logging, wires the
// gateway, session machine, preferences, and localization, then hands
// control to the UI event loop.

package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guessnumber/internal/api"
	"guessnumber/internal/config"
	"guessnumber/internal/i18n"
	"guessnumber/internal/prefs"
	"guessnumber/internal/session"
	"guessnumber/internal/ui"
)

func main() {
	_ = godotenv.Load()
	// Keep the terminal clean: log only warnings and above unless asked.
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "warn")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := config.LoadClient()
	prefsPath := cfg.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout)
	machine := session.New(client)
	bundle := i18n.Load()
	store := prefs.Open(prefsPath)

	app := ui.New(machine, client, bundle, store, os.Stdin, os.Stdout)
	if err := app.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("client exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
