// Ship Battle Server - Main Entry Point
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ship-battle/internal/config"
	"ship-battle/internal/game"
	"ship-battle/internal/server"
	"ship-battle/internal/store"
	"ship-battle/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "dev"
	envFile   = flag.String("env", ".env", "Environment file to load (optional)")
	port      = flag.Int("port", 0, "Server port (overrides PORT)")
	host      = flag.String("host", "", "Server host (overrides HOST)")
	dataDir   = flag.String("data-dir", "", "Data directory path (overrides DATA_DIR)")
	logLevel  = flag.String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile   = flag.String("log-file", "", "Log file path (optional)")
	help      = flag.Bool("help", false, "Show help information")
	ver       = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *help {
		showHelp()
		return
	}
	if *ver {
		fmt.Printf("Ship Battle Server\nVersion: %s\nBuild Time: %s\n", version, buildTime)
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg)

	if err := initLogging(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Server.Info("Starting Ship Battle Server v%s", version)

	users, err := openStore(cfg)
	if err != nil {
		logger.Server.Fatal("Failed to open user store: %v", err)
	}
	if closer, ok := users.(io.Closer); ok {
		defer closer.Close()
	}

	world := game.NewWorld(users, game.Options{
		StartingCoin:   cfg.StartingCoin,
		MatchWinReward: cfg.MatchWinReward,
	})

	gameServer := server.NewServer(server.Config{
		Address:         cfg.Address(),
		AdminAddress:    cfg.AdminAddr,
		ReadBuffer:      cfg.ReadBuffer,
		WriteBuffer:     cfg.WriteBuffer,
		ChestInterval:   cfg.ChestInterval,
		PersistInterval: cfg.PersistInterval,
	}, world)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Server.Info("Starting server on %s", cfg.Address())
	if err := gameServer.Start(ctx); err != nil {
		logger.Server.Error("Server failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// applyFlags lets explicit command line flags win over the environment
func applyFlags(cfg *config.Config) {
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
}

func initLogging(level string) error {
	logger.SetGlobalLogLevel(logger.ParseLevel(level))

	if *logFile != "" {
		if err := logger.Server.SetFile(*logFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
		logger.Server.Info("Logging to file: %s", *logFile)
		return nil
	}

	if err := logger.InitializeFileLogging("./logs"); err != nil {
		logger.Server.Warn("Could not initialize file logging: %v", err)
	}
	return nil
}

// openStore picks postgres when DATABASE_URL is set and the JSON file otherwise
func openStore(cfg config.Config) (game.UserStore, error) {
	if cfg.DatabaseURL != "" {
		s, err := store.OpenGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Load(); err != nil {
			s.Close()
			return nil, err
		}
		logger.Server.Info("Using postgres user store")
		return s, nil
	}

	s := store.NewJSONStore(cfg.DataDir)
	if err := s.Load(); err != nil {
		return nil, err
	}
	logger.Server.Info("Using JSON user store in %s", cfg.DataDir)
	return s, nil
}

func showHelp() {
	fmt.Printf(`Ship Battle Server v%s

USAGE:
    %s [OPTIONS]

OPTIONS:
    -env string          Environment file to load (default ".env")
    -port int            Server port (default 8080, or PORT)
    -host string         Server host (default "0.0.0.0", or HOST)
    -data-dir string     Data directory path (default "./data", or DATA_DIR)
    -log-level string    Log level (DEBUG, INFO, WARN, ERROR) (default "INFO", or LOG_LEVEL)
    -log-file string     Log file path (optional)
    -help                Show this help message
    -version             Show version information

ENVIRONMENT:
    DATABASE_URL         Postgres DSN; when set users are stored in postgres
    ADMIN_ADDR           Address of the HTTP admin endpoint (disabled when empty)
    STARTING_COIN        Coin granted on registration (default 1000)
    MATCH_WIN_REWARD     Coin credited to each winner (default 100)
    CHEST_INTERVAL       Time between chest drops (default 30s)
    PERSIST_INTERVAL     Time between user saves (default 1m)
    READ_BUFFER          Longest accepted request line in bytes (default 4096)
    WRITE_BUFFER         Pending output per connection in bytes (default 65536)

EXAMPLES:
    # Start server with default settings
    %s

    # Start on specific port with debug logging
    %s -port 9000 -log-level DEBUG
`, version, os.Args[0], os.Args[0], os.Args[0])
}
