// Package config loads server settings from the environment and an optional .env file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	HostEnv            = "HOST"
	PortEnv            = "PORT"
	DataDirEnv         = "DATA_DIR"
	DatabaseURLEnv     = "DATABASE_URL"
	AdminAddrEnv       = "ADMIN_ADDR"
	StartingCoinEnv    = "STARTING_COIN"
	MatchWinRewardEnv  = "MATCH_WIN_REWARD"
	ChestIntervalEnv   = "CHEST_INTERVAL"
	PersistIntervalEnv = "PERSIST_INTERVAL"
	ReadBufferEnv      = "READ_BUFFER"
	WriteBufferEnv     = "WRITE_BUFFER"
	LogLevelEnv        = "LOG_LEVEL"
)

type Config struct {
	Host        string
	Port        int
	DataDir     string
	DatabaseURL string
	AdminAddr   string

	StartingCoin   int64
	MatchWinReward int64

	ChestInterval   time.Duration
	PersistInterval time.Duration

	ReadBuffer  int
	WriteBuffer int

	LogLevel string
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		DataDir:         "./data",
		StartingCoin:    1000,
		MatchWinReward:  100,
		ChestInterval:   30 * time.Second,
		PersistInterval: time.Minute,
		ReadBuffer:      4 * 1024,
		WriteBuffer:     64 * 1024,
		LogLevel:        "INFO",
	}
}

// Load reads envFile (if it exists) into the environment, then overlays the
// environment on the defaults. Variables already set win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var err error

	cfg.Host = getString(HostEnv, cfg.Host)
	cfg.DataDir = getString(DataDirEnv, cfg.DataDir)
	cfg.DatabaseURL = getString(DatabaseURLEnv, cfg.DatabaseURL)
	cfg.AdminAddr = getString(AdminAddrEnv, cfg.AdminAddr)
	cfg.LogLevel = strings.ToUpper(getString(LogLevelEnv, cfg.LogLevel))

	if cfg.Port, err = getInt(PortEnv, cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid %s: %d", PortEnv, cfg.Port)
	}
	if cfg.ReadBuffer, err = getInt(ReadBufferEnv, cfg.ReadBuffer); err != nil {
		return Config{}, err
	}
	if cfg.WriteBuffer, err = getInt(WriteBufferEnv, cfg.WriteBuffer); err != nil {
		return Config{}, err
	}
	if cfg.StartingCoin, err = getInt64(StartingCoinEnv, cfg.StartingCoin); err != nil {
		return Config{}, err
	}
	if cfg.MatchWinReward, err = getInt64(MatchWinRewardEnv, cfg.MatchWinReward); err != nil {
		return Config{}, err
	}
	if cfg.ChestInterval, err = getDuration(ChestIntervalEnv, cfg.ChestInterval); err != nil {
		return Config{}, err
	}
	if cfg.PersistInterval, err = getDuration(PersistIntervalEnv, cfg.PersistInterval); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Address is the host:port the game listens on
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := getString(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := getString(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// getDuration accepts Go durations ("45s") or a bare number of seconds
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getString(key, "")
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
