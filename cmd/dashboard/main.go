package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridwatch/powerdash/internal/api"
	"github.com/gridwatch/powerdash/internal/config"
	"github.com/gridwatch/powerdash/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	client := api.New(config.APIBaseURL())
	srv := server.New(client, config.SampleWindow(), config.RefreshInterval(), config.AdvanceInterval())

	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)

	httpSrv := &http.Server{Addr: config.DashboardAddr(), Handler: srv}
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Str("upstream", config.APIBaseURL()).Msg("dashboard listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server exit")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	cancel()
	srv.Stop()
	httpSrv.Shutdown(context.Background())
}
