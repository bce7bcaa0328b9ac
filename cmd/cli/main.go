package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/cli"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/config"
	"github.com/dmitrijs2005/gophkeeper-session/internal/logging"
)

func main() {

	args := os.Args[1:]
	cfg := config.LoadConfig(args)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.New(os.Stderr, level)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Run(ctx, args)
	stop()

	os.Exit(code)
}
