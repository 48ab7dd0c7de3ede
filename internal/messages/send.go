// ABOUTME: Outbound message delivery through the Messages application
// ABOUTME: Shells out to osascript; recipients are normalized before sending
package messages

import (
	"context"
	"fmt"

	"applebridge/internal/osascript"
)

// sendScript targets the first buddy form that Messages accepts.
const sendScript = `tell application "Messages"
	set targetService to 1st account whose service type = iMessage
	set targetBuddy to participant %s of targetService
	send %s to targetBuddy
end tell`

// runScript is swappable for tests; the default shells out to osascript.
var runScript = osascript.Run

// Send delivers text to the given phone number via the Messages app. The
// number is normalized first and candidate forms are tried in order until
// one succeeds.
func Send(ctx context.Context, phoneNumber, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	var lastErr error
	for _, candidate := range NormalizePhoneNumber(phoneNumber) {
		script := fmt.Sprintf(sendScript,
			osascript.EscapeString(candidate), osascript.EscapeString(text))
		if _, err := runScript(ctx, script); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to send message to %s: %w", phoneNumber, lastErr)
}
