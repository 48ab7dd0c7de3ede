// ABOUTME: Tests for the messages command group
// ABOUTME: Uses the normalize subcommand and a fixture store via env overrides
package commands

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

func TestMessagesNormalizeCmd(t *testing.T) {
	output, err := runCommand(t, "messages", "normalize", "555-123-4567")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(output) != "+15551234567" {
		t.Errorf("output = %q, want the canonical form", output)
	}
}

func TestMessagesReadCmd_Fixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	fixture := `
		CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT);
		CREATE TABLE message (
			ROWID INTEGER PRIMARY KEY, text TEXT, attributedBody BLOB,
			date INTEGER, handle_id INTEGER, is_from_me INTEGER DEFAULT 0,
			is_read INTEGER DEFAULT 0, is_audio_message INTEGER DEFAULT 0,
			item_type INTEGER DEFAULT 0, cache_has_attachments INTEGER DEFAULT 0,
			subject TEXT
		);
		CREATE TABLE attachment (ROWID INTEGER PRIMARY KEY, filename TEXT);
		CREATE TABLE message_attachment_join (message_id INTEGER, attachment_id INTEGER);
		INSERT INTO handle (id) VALUES ('+15551234567');
		INSERT INTO message (text, date, handle_id) VALUES ('hello from the fixture', 1000000000, 1);`
	if _, err := db.Exec(fixture); err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	t.Setenv("MESSAGES_DB_PATH", path)
	t.Setenv("MESSAGES_DB_RETRIES", "1")
	t.Setenv("MESSAGES_DB_RETRY_DELAY", "1ms")

	output, err := runCommand(t, "messages", "read", "(555) 123-4567")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(output, "hello from the fixture") {
		t.Errorf("output missing fixture message:\n%s", output)
	}
	if !strings.Contains(output, "+15551234567") {
		t.Errorf("output missing sender handle:\n%s", output)
	}
}

func TestMessagesUnreadCmd_EmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT);
		CREATE TABLE message (
			ROWID INTEGER PRIMARY KEY, text TEXT, attributedBody BLOB,
			date INTEGER, handle_id INTEGER, is_from_me INTEGER DEFAULT 0,
			is_read INTEGER DEFAULT 0, is_audio_message INTEGER DEFAULT 0,
			item_type INTEGER DEFAULT 0, cache_has_attachments INTEGER DEFAULT 0,
			subject TEXT
		);
		CREATE TABLE attachment (ROWID INTEGER PRIMARY KEY, filename TEXT);
		CREATE TABLE message_attachment_join (message_id INTEGER, attachment_id INTEGER);`); err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	t.Setenv("MESSAGES_DB_PATH", path)
	t.Setenv("MESSAGES_DB_RETRIES", "1")
	t.Setenv("MESSAGES_DB_RETRY_DELAY", "1ms")

	output, err := runCommand(t, "messages", "unread")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(output, "No unread messages.") {
		t.Errorf("output = %q, want empty-store notice", output)
	}
}
