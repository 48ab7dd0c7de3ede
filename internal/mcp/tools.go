// ABOUTME: MCP tool definitions and registration for the applebridge server
// ABOUTME: Exposes the web research pipeline and the Messages store to agents
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"applebridge/internal/config"
	"applebridge/internal/messages"
	"applebridge/internal/scheduler"
	"applebridge/internal/web"
)

// RegisterTools registers all MCP tools with the server and returns the
// handlers for shutdown.
func RegisterTools(server *mcpserver.MCPServer, cfg *config.Config) *Handlers {
	handlers := &Handlers{
		cfg:      cfg,
		pipeline: web.NewPipeline(cfg),
		sched:    scheduler.New(messages.Send),
	}

	// 1. webSearch - search the web and fetch page content for the top hits
	server.AddTool(mcp.Tool{
		Name:        "webSearch",
		Description: "Search the web and retrieve the main content of the top results. Returns one entry per result; entries whose page could not be fetched carry an error instead of content.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.WebSearch)

	// 2. messages - read, send, and schedule messages via the Messages app
	server.AddTool(mcp.Tool{
		Name:        "messages",
		Description: "Interact with the Messages app: read conversation history, list unread messages, send a message, schedule a message for later, or normalize a phone number.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"operation": map[string]interface{}{
					"type":        "string",
					"description": "Operation to perform: read, unread, send, schedule, or normalize",
					"enum":        []string{"read", "unread", "send", "schedule", "normalize"},
				},
				"phoneNumber": map[string]interface{}{
					"type":        "string",
					"description": "Phone number for read, send, schedule, and normalize operations",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Message text for send and schedule operations",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of messages to return (default: 10)",
				},
				"scheduledTime": map[string]interface{}{
					"type":        "string",
					"description": "RFC 3339 delivery time for the schedule operation",
				},
			},
			Required: []string{"operation"},
		},
	}, handlers.Messages)

	return handlers
}
