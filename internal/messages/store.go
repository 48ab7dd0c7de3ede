// ABOUTME: Read-only access to the Messages database (chat.db)
// ABOUTME: Declarative queries plus defensive per-row decoding and enrichment
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrStoreUnavailable is returned when the message store cannot be opened
// or queried after the access-check retry budget is exhausted.
var ErrStoreUnavailable = errors.New("message store unavailable")

// noTextContent is the per-row fallback when a body exists but cannot be
// decoded into anything readable.
const noTextContent = "[No text content]"

// Message is one decoded message store row.
type Message struct {
	Content     string   `json:"content"`
	Date        string   `json:"date"`
	Sender      string   `json:"sender"`
	IsFromMe    bool     `json:"is_from_me"`
	Attachments []string `json:"attachments,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Store reads the local Messages database. All queries are read-only; the
// store owns no durable state of its own.
type Store struct {
	db         *sql.DB
	path       string
	retries    int
	retryDelay time.Duration
}

// StoreOptions tunes the access-check retry policy.
type StoreOptions struct {
	Retries    int           // access-check attempts, defaults to 3
	RetryDelay time.Duration // fixed delay between attempts, defaults to 1s
}

// Open opens the message database read-only and verifies it is queryable,
// retrying the access check with a fixed delay before giving up.
func Open(path string, opts StoreOptions) (*Store, error) {
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open message store: %w", err)
	}

	s := &Store{db: db, path: path, retries: opts.Retries, retryDelay: opts.RetryDelay}
	if err := s.checkAccess(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// checkAccess verifies the store file exists and answers a trivial query.
// This precondition is retried with a fixed delay; per-row decode failures
// elsewhere are never retried.
func (s *Store) checkAccess() error {
	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		if attempt > 1 {
			time.Sleep(s.retryDelay)
		}
		if _, err := os.Stat(s.path); err != nil {
			lastErr = err
			continue
		}
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='message'").Scan(&n); err != nil {
			lastErr = err
			continue
		}
		if n == 0 {
			lastErr = fmt.Errorf("no message table in %s", s.path)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrStoreUnavailable, s.retries, lastErr)
}

// messageColumns selects the text body when present and non-empty,
// otherwise the hex-encoded legacy binary body, plus a discriminator so
// rows can be decoded accordingly. Timestamps are converted from the
// store's 2001-based nanosecond epoch to local time.
const messageColumns = `
	m.ROWID as message_id,
	CASE
		WHEN m.text IS NOT NULL AND length(m.text) > 0 THEN m.text
		WHEN m.attributedBody IS NOT NULL THEN hex(m.attributedBody)
		ELSE NULL
	END as content,
	CASE
		WHEN m.text IS NOT NULL AND length(m.text) > 0 THEN 0
		WHEN m.attributedBody IS NOT NULL THEN 1
		ELSE 0
	END as is_legacy_body,
	datetime(m.date/1000000000 + strftime('%s', '2001-01-01'), 'unixepoch', 'localtime') as date,
	h.id as sender,
	m.is_from_me,
	m.cache_has_attachments,
	m.subject`

// QueryBySender returns the most recent messages whose sender handle
// matches any of the given identifiers, newest first, bounded by limit.
func (s *Store) QueryBySender(ctx context.Context, handles []string, limit int) ([]Message, error) {
	if len(handles) == 0 {
		return []Message{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	placeholders := strings.Repeat("?,", len(handles))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`
		SELECT %s
		FROM message m
		JOIN handle h ON h.ROWID = m.handle_id
		WHERE h.id IN (%s)
			AND m.is_audio_message = 0
			AND m.item_type = 0
		ORDER BY m.date DESC
		LIMIT ?`, messageColumns, placeholders)

	args := make([]any, 0, len(handles)+1)
	for _, h := range handles {
		args = append(args, h)
	}
	args = append(args, limit)

	return s.queryMessages(ctx, query, args...)
}

// QueryUnread returns unread messages not authored by self, newest first,
// bounded by limit.
func (s *Store) QueryUnread(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM message m
		JOIN handle h ON h.ROWID = m.handle_id
		WHERE m.is_from_me = 0
			AND m.is_read = 0
			AND m.is_audio_message = 0
			AND m.item_type = 0
		ORDER BY m.date DESC
		LIMIT ?`, messageColumns)

	return s.queryMessages(ctx, query, limit)
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("message query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := []Message{}
	for rows.Next() {
		var (
			messageID      int64
			content        sql.NullString
			isLegacyBody   int
			date           sql.NullString
			sender         sql.NullString
			isFromMe       int
			hasAttachments int
			subject        sql.NullString
		)
		if err := rows.Scan(&messageID, &content, &isLegacyBody, &date, &sender, &isFromMe, &hasAttachments, &subject); err != nil {
			log.Printf("Warning: skipping unreadable message row: %v", err)
			continue
		}

		msg, ok := s.buildMessage(ctx, rowData{
			messageID:      messageID,
			content:        content,
			isLegacyBody:   isLegacyBody == 1,
			date:           date.String,
			sender:         sender.String,
			isFromMe:       isFromMe == 1,
			hasAttachments: hasAttachments == 1,
			subject:        subject.String,
		})
		if ok {
			messages = append(messages, msg)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message query failed: %w", err)
	}
	return messages, nil
}

type rowData struct {
	messageID      int64
	content        sql.NullString
	isLegacyBody   bool
	date           string
	sender         string
	isFromMe       bool
	hasAttachments bool
	subject        string
}

// buildMessage turns one row into a Message, degrading per-row failures to
// safe defaults. Rows with neither usable content nor attachments are
// dropped.
func (s *Store) buildMessage(ctx context.Context, row rowData) (Message, bool) {
	if !row.content.Valid && !row.hasAttachments {
		return Message{}, false
	}

	var content, embeddedURL string
	if row.content.Valid {
		if row.isLegacyBody {
			content, embeddedURL = DecodeLegacyBody(row.content.String)
		} else {
			content = row.content.String
			embeddedURL = findPlainURL(content)
		}
	}
	if content == "" {
		content = noTextContent
	}

	msg := Message{
		Date:     row.date,
		Sender:   row.sender,
		IsFromMe: row.isFromMe,
	}

	if row.hasAttachments {
		attachments := s.resolveAttachments(ctx, row.messageID)
		msg.Attachments = attachments
		content = fmt.Sprintf("%s [Attachments: %d]", content, len(attachments))
	}
	if row.subject != "" {
		content = fmt.Sprintf("Subject: %s\n%s", row.subject, content)
	}
	if embeddedURL != "" {
		if _, err := url.Parse(embeddedURL); err == nil {
			msg.URL = embeddedURL
			content = fmt.Sprintf("%s [URL: %s]", content, embeddedURL)
		}
	}

	msg.Content = content
	return msg, true
}

// resolveAttachments returns the attachment filenames associated with a
// message, skipping empty names. Any failure yields an empty list rather
// than failing the row.
func (s *Store) resolveAttachments(ctx context.Context, messageID int64) []string {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.filename
		FROM attachment a
		JOIN message_attachment_join maj ON maj.attachment_id = a.ROWID
		WHERE maj.message_id = ?`, messageID)
	if err != nil {
		log.Printf("Warning: attachment lookup failed for message %d: %v", messageID, err)
		return []string{}
	}
	defer func() { _ = rows.Close() }()

	filenames := []string{}
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			continue
		}
		if name.Valid && name.String != "" {
			filenames = append(filenames, name.String)
		}
	}
	return filenames
}
