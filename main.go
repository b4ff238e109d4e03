package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"concierge/app/api"
	"concierge/app/config"
	"concierge/app/data"
	"concierge/app/mcptool"
	"concierge/app/service/account"
	"concierge/app/service/facility"
	"concierge/app/service/notes"
	"concierge/app/service/overlay"
	"concierge/app/service/reasoning"
	"concierge/app/service/session"
	"concierge/app/service/turn"
	"concierge/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.ProvideValue(di, data.NewStore())
	do.Provide(di, account.New)
	do.Provide(di, facility.New)
	do.Provide(di, notes.New)
	do.Provide(di, session.New)
	do.Provide(di, reasoning.New)
	do.Provide(di, overlay.NewExtractor)
	do.Provide(di, turn.New)
	do.Provide(di, api.New)
	do.Provide(di, mcptool.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	g, runCtx := errgroup.WithContext(appCtx)

	g.Go(func() error {
		do.MustInvoke[*api.Server](di).Run(runCtx)
		return nil
	})

	if cfg.MCP.Enabled {
		g.Go(func() error {
			do.MustInvoke[*mcptool.Service](di).Run(runCtx)
			return nil
		})
	}

	_ = g.Wait()
}
