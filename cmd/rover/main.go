// rover: autonomous sample-return driver for the rover simulator.
// Receives camera frames and state over WebSocket and replies with
// throttle, brake and steering commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-rover/internal/config"
	"github.com/teslashibe/go-rover/internal/log"
	"github.com/teslashibe/go-rover/pkg/bridge"
	"github.com/teslashibe/go-rover/pkg/rover"
)

func main() {
	configPath := flag.String("config", "rover.yaml", "Config file (yaml, json or toml); empty for environment only")
	port := flag.String("port", "", "Listen port (overrides server.port)")
	debug := flag.Bool("debug", false, "Enable debug logging and the HTTP access log")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	log.Init(level)

	if *port != "" {
		cfg.Port = *port
	}

	session, err := rover.NewSession(cfg.Rover)
	if err != nil {
		log.Error("session start failed", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	srv := bridge.New(session, bridge.Options{AccessLog: *debug})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Error("server error", "error", err)
			session.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
}
