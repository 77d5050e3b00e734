package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"trading-control/internal/api"
	"trading-control/internal/broker"
	"trading-control/internal/engine"
	"trading-control/internal/events"
	"trading-control/internal/monitor"
	"trading-control/internal/risk"
	"trading-control/internal/router"
	"trading-control/internal/scheduler"
	"trading-control/pkg/audit"
	"trading-control/pkg/config"
	"trading-control/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("port", cfg.Port).Msg("starting trading control plane")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus(cfg.BusCapacity)

	trail, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open audit trail")
	}
	defer trail.Close()

	accounts, err := config.LoadAccounts(cfg.AccountsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load accounts")
	}

	// Styles are advisory; a missing file only loses the /styles endpoints.
	styles, err := config.LoadStyles(cfg.StylesPath)
	if err != nil {
		log.Warn().Err(err).Msg("load trading styles")
	}

	// Venue registry. The simulated venue ships by default; real venue
	// clients register here as they are implemented.
	venues := broker.NewRegistry()
	venues.Register("sim", broker.NewSim("sim", 50))

	// Every configured venue must resolve before trading starts.
	risks := risk.NewRegistry()
	var accountRoutes []router.AccountRoutes
	for _, acct := range accounts {
		client, err := venues.Get(acct.Venue)
		if err != nil {
			log.Fatal().Err(err).Str("account", acct.Name).Msg("account venue not registered")
		}
		risks.Add(risk.NewManager(acct.Name, acct.Risk, client, bus, trail))
		accountRoutes = append(accountRoutes, router.AccountRoutes{
			Name:       acct.Name,
			Venue:      acct.Venue,
			Strategies: acct.Strategies,
		})
	}

	rt := router.New(accountRoutes, venues, bus, trail)

	sched := scheduler.New()
	cal := scheduler.DefaultCalendar()
	for _, symbol := range cfg.RolloverSymbols {
		sched.ScheduleRollover(symbol, cal, cfg.RolloverCalendar, func(sym string) {
			log.Info().Str("symbol", sym).Msg("contract rollover due")
			bus.Publish(events.CategoryLifecycle, map[string]any{
				"action": "rollover",
				"symbol": sym,
			})
		})
	}

	eng := &engine.Engine{
		Risks:        risks,
		Router:       rt,
		Sched:        sched,
		Bus:          bus,
		PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}
	go eng.Run(ctx)

	(&monitor.Monitor{Bus: bus}).Start(ctx)

	server := api.NewServer(bus, risks, venues, trail, cfg.JWTSecret)
	server.Styles = styles
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")
	cancel()
}
