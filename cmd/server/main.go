package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/materials-admin/apiclient"
	"github.com/jrsteele09/materials-admin/internal/config"
	"github.com/jrsteele09/materials-admin/internal/logger"
	"github.com/jrsteele09/materials-admin/server"
	"github.com/jrsteele09/materials-admin/server/workspace"
	"github.com/jrsteele09/materials-admin/tokenstore/memstore"
	"github.com/jrsteele09/materials-admin/tokenstore/redisstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api, err := apiclient.New(c.GetAPIBaseURL(),
		apiclient.WithTimeout(c.GetAPITimeout()),
		apiclient.WithMetrics(apiclient.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	slots, closeSlots, err := tokenSlots(c)
	if err != nil {
		return err
	}
	defer closeSlots()

	repo := workspace.NewInMemoryRepo(api, slots, workspace.WithIdleTTL(c.GetMaxSessionAge()))
	handler, err := server.New(c, repo, server.WithRegistry(reg))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// tokenSlots uses Redis when REDIS_ADDR is set so sessions survive restarts.
func tokenSlots(c config.Config) (workspace.TokenSlots, func(), error) {
	if c.GetRedisAddr() == "" {
		return memstore.NewBucket(), func() {}, nil
	}
	client, err := redisstore.Connect(context.Background(), c.GetRedisAddr(), c.GetRedisPassword())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	log.Info().Str("addr", c.GetRedisAddr()).Msg("Session tokens stored in redis")
	return redisstore.NewSlots(client, c.GetMaxSessionAge()), func() { _ = client.Close() }, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
