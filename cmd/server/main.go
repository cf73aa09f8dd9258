/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the booking engine server. Handles
  configuration, seeding, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and optional TOML config file
  2. Initialize SQLite store (migrations run on open)
  3. Seed default opening hours on first boot
  4. Start HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: booking.db)
           Use ":memory:" for an in-memory database
  -config  optional TOML config file; flags override it

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/booking.db"

  # Run with a config file
  ./server -config=server.toml

SEE ALSO:
  - api/server.go: router and middleware
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/terrazza/booking-engine/api"
	"github.com/terrazza/booking-engine/factory"
	"github.com/terrazza/booking-engine/store/sqlite"
)

// fileConfig is the optional TOML config file shape.
type fileConfig struct {
	Port int    `toml:"port"`
	DB   string `toml:"db"`
}

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "booking.db", "SQLite database path")
	configPath := flag.String("config", "", "optional TOML config file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if *configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(*configPath, &fc); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("failed to read config file")
		}
		// Flags left at their defaults take the file's values.
		if fc.Port != 0 && *port == 8080 {
			*port = fc.Port
		}
		if fc.DB != "" && *dbPath == "booking.db" {
			*dbPath = fc.DB
		}
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	if err := seedOpeningHours(context.Background(), store); err != nil {
		log.Fatal().Err(err).Msg("failed to seed opening hours")
	}

	server := api.NewServer(store, *port, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// seedOpeningHours installs the default weekly schedule on first boot so
// a fresh database is immediately bookable.
func seedOpeningHours(ctx context.Context, store *sqlite.Store) error {
	existing, err := store.ListOpeningHours(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, oh := range factory.DefaultWeeklyHours() {
		if err := store.UpsertOpeningHours(ctx, oh); err != nil {
			return err
		}
	}
	return nil
}
