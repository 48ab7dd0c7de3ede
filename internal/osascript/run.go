// ABOUTME: Thin runner for osascript process invocations
// ABOUTME: One script per call with argument escaping; no script environment kept
package osascript

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Run executes an AppleScript source string via osascript and returns its
// trimmed stdout. The process inherits the caller's context for
// cancellation.
func Run(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("osascript failed: %s", msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// EscapeString quotes a value for interpolation into AppleScript source.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
