package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iamwookie/qadir-bot/internal/bot"
	"github.com/iamwookie/qadir-bot/internal/config"
	"github.com/iamwookie/qadir-bot/internal/store"
)

func main() {

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	if cfg.App.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Info().Msg(fmt.Sprintf("Starting %s v%s", cfg.App.Name, cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewStore(ctx, cfg.MongoUri, config.Database(), cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not connect to storage: %s", err))
	}
	defer db.Close(context.Background())

	qadir, err := bot.NewBot(cfg, db)
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not create bot: %s", err))
	}

	if err := qadir.Run(ctx); err != nil {
		log.Fatal().Msg(fmt.Sprintf("Bot exited with error: %s", err))
	}
	log.Info().Msg("Shutting down")
}
