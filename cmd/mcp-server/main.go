// Standalone HTTP MCP server for symcalc.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080 -config symcalc.yaml
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/njchilds90/symcalc/internal/config"
	"github.com/njchilds90/symcalc/internal/logging"
	"github.com/njchilds90/symcalc/internal/server"
	"github.com/njchilds90/symcalc/internal/telemetry"
)

func main() {
	port := flag.Int("port", 0, "port to listen on (default from config, 8080)")
	cfgFile := flag.String("config", "", "config file (YAML)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	logger := logging.Setup(cfg.Server.LogLevel, os.Stdout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	rec := telemetry.NewRecorder(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg.Server, cfg.Engine.Symcalc(), logger, rec, reg).Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
