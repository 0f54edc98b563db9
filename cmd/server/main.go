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
	"github.com/jrsteele09/office-roster/internal/config"
	"github.com/jrsteele09/office-roster/roster"
	"github.com/jrsteele09/office-roster/server"
	"github.com/jrsteele09/office-roster/server/authflowrepo"
	"github.com/jrsteele09/office-roster/upstream"
	"github.com/jrsteele09/office-roster/upstream/sessioncache"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "office-roster"

func main() {
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env.local file: %v\n", err)
	}

	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
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
	setupLogging(c)
	displayAppname(c.GetAppName())

	store, closeStore, err := sessionStore(c)
	if err != nil {
		return err
	}
	defer closeStore()

	authState := authflowrepo.NewTTLRepo(c.GetAuthFlowTimeout())
	defer authState.Close()

	tokens := sessioncache.New(store, sessioncache.WithTTL(c.GetUpstreamSessionTTL()))
	client := upstream.New(c.GetUpstreamBaseURL(), upstream.WithTimeout(c.GetUpstreamTimeout()))
	rosterService, err := roster.NewService(c, client, tokens)
	if err != nil {
		return fmt.Errorf("roster.NewService: %w", err)
	}

	handler, err := server.New(c, rosterService, authState)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := listenAndServe(httpServer); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// sessionStore shares the upstream session through Redis when REDIS_URL is set,
// otherwise keeps it in memory.
func sessionStore(c config.Config) (sessioncache.Store, func(), error) {
	redisURL := c.GetRedisURL()
	if redisURL == "" {
		store := sessioncache.NewMemoryStore()
		return store, func() { _ = store.Close() }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store, err := sessioncache.NewRedisStoreFromURL(ctx, redisURL, redisKeyPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("sessioncache.NewRedisStoreFromURL: %w", err)
	}
	log.Info().Msg("Sharing upstream session through Redis")
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis session store")
		}
	}, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
