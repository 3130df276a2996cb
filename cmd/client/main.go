// Ship Battle Client - Main Entry Point
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ship-battle/internal/client"
	"ship-battle/pkg/logger"
)

var (
	version    = "1.0.0"
	serverAddr = flag.String("server", "localhost:8080", "Server address (host:port)")
	logLevel   = flag.String("log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile    = flag.String("log-file", "", "Log file path (optional)")
)

func main() {
	flag.Parse()

	logger.SetGlobalLogLevel(logger.ParseLevel(*logLevel))
	if *logFile != "" {
		if err := logger.Client.SetFile(*logFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set log file: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	logger.Client.Info("Starting Ship Battle Client v%s", version)

	gameClient := client.NewClient(*serverAddr, os.Stdin, os.Stdout)
	setupGracefulShutdown(gameClient)

	if err := gameClient.Start(); err != nil {
		logger.Client.Error("Client failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// setupGracefulShutdown closes the connection on interrupt; Start then returns
func setupGracefulShutdown(gameClient *client.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Client.Info("Received shutdown signal, closing client...")
		gameClient.Close()
	}()
}
