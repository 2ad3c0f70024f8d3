// Command lightrag-mcp fronts one or more LightRAG instances as MCP tools
// (stdio transport) or as a namespaced HTTP API (multi-instance mode).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/lightrag-gateway/internal/common"
	"github.com/bobmcallan/lightrag-gateway/internal/config"
	"github.com/bobmcallan/lightrag-gateway/internal/dispatch"
	"github.com/bobmcallan/lightrag-gateway/internal/routes"
	"github.com/bobmcallan/lightrag-gateway/internal/server"
)

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "lightrag-mcp.toml", "Path to config file")
	port := flag.Int("port", 0, "HTTP port override")
	host := flag.String("host", "", "HTTP host override")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	config.ApplyFlagOverrides(cfg, *port, *host)

	common.LoadVersionFromFile()
	logger := common.NewLoggerFromConfig(cfg.Logging)

	table, err := routes.Build(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build route table: %v", err)
	}
	defer table.Close()

	dispatcher := dispatch.New(table, logger)

	if *stdio {
		if err := runStdio(cfg, dispatcher, table); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runHTTP(cfg, dispatcher, logger)
}

// runStdio serves the MCP stdio transport against a single backend. The tool
// prefix is the configured prefix, which may be empty for bare names.
func runStdio(cfg *config.Config, dispatcher *dispatch.Dispatcher, table *routes.Table) error {
	namespaces := table.Namespaces()
	if len(namespaces) != 1 {
		return fmt.Errorf("stdio transport serves exactly one backend, %d configured", len(namespaces))
	}
	namespace := namespaces[0]

	prefix := cfg.Gateway.ToolPrefix
	if strings.TrimSpace(cfg.Gateway.Backends) != "" {
		prefix = namespace
	}

	s := mcpserver.NewMCPServer(
		cfg.Server.Name,
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)
	registerTools(s, dispatcher, namespace, prefix)

	return mcpserver.ServeStdio(s)
}

// runHTTP serves the namespaced HTTP API with graceful shutdown.
func runHTTP(cfg *config.Config, dispatcher *dispatch.Dispatcher, logger *common.Logger) {
	srv := server.New(cfg, dispatcher, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
	<-done
}
