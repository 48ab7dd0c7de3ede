// ABOUTME: MCP tool handler implementations for the applebridge server
// ABOUTME: Validates arguments, calls the core pipelines, returns structured results
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"applebridge/internal/config"
	"applebridge/internal/messages"
	"applebridge/internal/scheduler"
	"applebridge/internal/web"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	cfg      *config.Config
	pipeline *web.Pipeline
	sched    *scheduler.Scheduler
}

// Shutdown cancels pending scheduled sends.
func (h *Handlers) Shutdown() {
	h.sched.Stop()
}

// WebSearch handles the webSearch tool
func (h *Handlers) WebSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("query argument is required and must be a non-empty string"), nil
	}

	result, err := h.pipeline.Research(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("web search failed: %v", err)), nil
	}
	return marshalResult(result)
}

// Messages handles the messages tool
func (h *Handlers) Messages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	operation, err := request.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError("operation argument is required and must be a string"), nil
	}

	switch operation {
	case "read":
		return h.readMessages(ctx, request)
	case "unread":
		return h.unreadMessages(ctx, request)
	case "send":
		return h.sendMessage(ctx, request)
	case "schedule":
		return h.scheduleMessage(request)
	case "normalize":
		return h.normalizeNumber(request)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown operation %q: expected read, unread, send, schedule, or normalize", operation)), nil
	}
}

// messagesResponse is the shared read/unread payload shape.
type messagesResponse struct {
	Messages []messages.Message `json:"messages"`
	Error    string             `json:"error,omitempty"`
}

func (h *Handlers) readMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phoneNumber, err := request.RequireString("phoneNumber")
	if err != nil || phoneNumber == "" {
		return mcp.NewToolResultError("phoneNumber argument is required for the read operation"), nil
	}
	limit := request.GetInt("limit", h.cfg.DefaultReadLimit)

	store, errResult := h.openStore()
	if errResult != nil {
		return errResult, nil
	}
	defer func() { _ = store.Close() }()

	msgs, err := store.QueryBySender(ctx, messages.NormalizePhoneNumber(phoneNumber), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read messages: %v", err)), nil
	}
	return marshalResult(messagesResponse{Messages: msgs})
}

func (h *Handlers) unreadMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", h.cfg.DefaultReadLimit)

	store, errResult := h.openStore()
	if errResult != nil {
		return errResult, nil
	}
	defer func() { _ = store.Close() }()

	msgs, err := store.QueryUnread(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read unread messages: %v", err)), nil
	}
	return marshalResult(messagesResponse{Messages: msgs})
}

// openStore opens the message store. An unavailable store is not a tool
// error: the caller gets a structurally valid empty result with an
// explanation, matching the store's empty-result failure semantics.
func (h *Handlers) openStore() (*messages.Store, *mcp.CallToolResult) {
	store, err := messages.Open(h.cfg.MessagesDBPath, messages.StoreOptions{
		Retries:    h.cfg.StoreRetries,
		RetryDelay: h.cfg.StoreRetryDelay,
	})
	if err == nil {
		return store, nil
	}

	log.Printf("Warning: message store unavailable: %v", err)
	reason := "message store is not accessible; grant Full Disk Access to enable reading messages"
	if !errors.Is(err, messages.ErrStoreUnavailable) {
		reason = err.Error()
	}
	result, marshalErr := marshalResult(messagesResponse{Messages: []messages.Message{}, Error: reason})
	if marshalErr != nil {
		return nil, mcp.NewToolResultError(reason)
	}
	return nil, result
}

func (h *Handlers) sendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phoneNumber, err := request.RequireString("phoneNumber")
	if err != nil || phoneNumber == "" {
		return mcp.NewToolResultError("phoneNumber argument is required for the send operation"), nil
	}
	text, err := request.RequireString("message")
	if err != nil || text == "" {
		return mcp.NewToolResultError("message argument is required for the send operation"), nil
	}

	if err := messages.Send(ctx, phoneNumber, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send message: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Message sent to %s", phoneNumber)), nil
}

func (h *Handlers) scheduleMessage(request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phoneNumber, err := request.RequireString("phoneNumber")
	if err != nil || phoneNumber == "" {
		return mcp.NewToolResultError("phoneNumber argument is required for the schedule operation"), nil
	}
	text, err := request.RequireString("message")
	if err != nil || text == "" {
		return mcp.NewToolResultError("message argument is required for the schedule operation"), nil
	}
	rawTime, err := request.RequireString("scheduledTime")
	if err != nil || rawTime == "" {
		return mcp.NewToolResultError("scheduledTime argument is required for the schedule operation"), nil
	}

	at, err := time.Parse(time.RFC3339, rawTime)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scheduledTime must be RFC 3339: %v", err)), nil
	}

	job, err := h.sched.Schedule(phoneNumber, text, at)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to schedule message: %v", err)), nil
	}
	return marshalResult(job)
}

func (h *Handlers) normalizeNumber(request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phoneNumber, err := request.RequireString("phoneNumber")
	if err != nil || phoneNumber == "" {
		return mcp.NewToolResultError("phoneNumber argument is required for the normalize operation"), nil
	}

	return marshalResult(map[string]any{
		"input":      phoneNumber,
		"candidates": messages.NormalizePhoneNumber(phoneNumber),
	})
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
