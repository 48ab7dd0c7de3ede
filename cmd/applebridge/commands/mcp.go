// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Enables LLM agents to use macOS apps and web research via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"applebridge/internal/config"
	"applebridge/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs applebridge as an MCP (Model Context Protocol) server over stdio,
exposing web research and Messages tools to agents like Claude.

Reading messages requires Full Disk Access for the host process.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  applebridge mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "applebridge": {
  #       "command": "applebridge",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for configuration overrides)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	server := mcpserver.NewMCPServer(
		"applebridge",
		versionInfo.Version,
	)

	handlers := mcp.RegisterTools(server, cfg)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("applebridge MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, cancelling pending scheduled sends...")
		}
		handlers.Shutdown()
		if !quiet {
			log.Println("Shutdown complete")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
