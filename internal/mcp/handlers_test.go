// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Exercises argument validation and degraded store behavior directly
package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"applebridge/internal/config"
	"applebridge/internal/messages"
	"applebridge/internal/scheduler"
	"applebridge/internal/web"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	// Point the store at a path that cannot exist so access checks fail fast.
	cfg.MessagesDBPath = filepath.Join(t.TempDir(), "missing", "chat.db")
	cfg.StoreRetries = 1
	cfg.StoreRetryDelay = time.Millisecond

	h := &Handlers{
		cfg:      cfg,
		pipeline: web.NewPipeline(cfg),
		sched:    scheduler.New(func(ctx context.Context, recipient, text string) error { return nil }),
	}
	t.Cleanup(h.Shutdown)
	return h
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestMessages_NormalizeOperation(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.Messages(context.Background(), newRequest(map[string]any{
		"operation":   "normalize",
		"phoneNumber": "555-123-4567",
	}))
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var payload struct {
		Input      string   `json:"input"`
		Candidates []string `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(payload.Candidates) != 1 || payload.Candidates[0] != "+15551234567" {
		t.Errorf("candidates = %v, want [+15551234567]", payload.Candidates)
	}
}

func TestMessages_UnknownOperation(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.Messages(context.Background(), newRequest(map[string]any{
		"operation": "teleport",
	}))
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if !result.IsError {
		t.Error("unknown operation should produce a tool error")
	}
}

func TestMessages_MissingArguments(t *testing.T) {
	h := newTestHandlers(t)

	tests := []map[string]any{
		{},
		{"operation": "read"},
		{"operation": "send", "phoneNumber": "5551234567"},
		{"operation": "schedule", "phoneNumber": "5551234567", "message": "hi"},
		{"operation": "normalize"},
	}
	for _, args := range tests {
		result, err := h.Messages(context.Background(), newRequest(args))
		if err != nil {
			t.Fatalf("Messages(%v) error = %v", args, err)
		}
		if !result.IsError {
			t.Errorf("Messages(%v) should produce a tool error", args)
		}
	}
}

func TestMessages_ReadWithUnavailableStore(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.Messages(context.Background(), newRequest(map[string]any{
		"operation":   "read",
		"phoneNumber": "5551234567",
	}))
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if result.IsError {
		t.Fatal("unavailable store should degrade, not error")
	}

	var payload struct {
		Messages []messages.Message `json:"messages"`
		Error    string             `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(payload.Messages) != 0 {
		t.Errorf("messages = %v, want empty", payload.Messages)
	}
	if payload.Error == "" {
		t.Error("degraded response should explain the empty result")
	}
}

func TestMessages_ScheduleValidation(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.Messages(context.Background(), newRequest(map[string]any{
		"operation":     "schedule",
		"phoneNumber":   "5551234567",
		"message":       "hi",
		"scheduledTime": "tomorrow-ish",
	}))
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if !result.IsError {
		t.Error("malformed scheduledTime should produce a tool error")
	}
	if !strings.Contains(resultText(t, result), "RFC 3339") {
		t.Errorf("error should name the expected format: %s", resultText(t, result))
	}
}

func TestMessages_ScheduleSuccess(t *testing.T) {
	h := newTestHandlers(t)

	at := time.Now().Add(time.Hour).Format(time.RFC3339)
	result, err := h.Messages(context.Background(), newRequest(map[string]any{
		"operation":     "schedule",
		"phoneNumber":   "5551234567",
		"message":       "see you",
		"scheduledTime": at,
	}))
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var job scheduler.Job
	if err := json.Unmarshal([]byte(resultText(t, result)), &job); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if job.ID == "" {
		t.Error("scheduled job should carry an ID handle")
	}
	if got := len(h.sched.Pending()); got != 1 {
		t.Errorf("Pending() = %d, want 1", got)
	}
}

func TestWebSearch_RequiresQuery(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.WebSearch(context.Background(), newRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if !result.IsError {
		t.Error("missing query should produce a tool error")
	}
}
