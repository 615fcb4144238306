package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"healgenie-portal/config"
	"healgenie-portal/internal/portal/backend"
	"healgenie-portal/internal/portal/cli"
	"healgenie-portal/internal/portal/eventloop"
	"healgenie-portal/internal/portal/notify"
	"healgenie-portal/internal/portal/profile"
	"healgenie-portal/internal/portal/session"
	"healgenie-portal/pkg/validator"

	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		return 1
	}
	log := setupLogger(cfg.Portal)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := notify.NewWriterNotifier(os.Stderr)
	client := backend.NewHTTPClient(cfg.Portal, backend.NewFileStorage(cfg.Portal.SessionFile), log)

	loop := eventloop.New(log)
	go loop.Run(ctx)
	defer loop.Close()

	loader := profile.NewLoader(client, loop, notifier, log)
	defer loader.Close()

	store := session.NewStore(client, loop, loader, notifier, validator.NewValidator(), log)
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		log.Errorf("Failed to start session: %v", err)
		return 1
	}
	if err := store.Settle(ctx); err != nil {
		log.Errorf("Failed to restore session: %v", err)
		return 1
	}

	app := cli.NewApp(store, client, notifier, os.Stdin, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Debugf("Command failed: %+v", err)
		return 1
	}
	return 0
}

func setupLogger(cfg config.PortalConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)
	return log
}
