// ABOUTME: Phone number canonicalization for handle lookups in the message store
// ABOUTME: Produces candidate forms maximizing the chance of a handle match
package messages

import (
	"regexp"
	"strings"
)

var nonPhonePattern = regexp.MustCompile(`[^0-9+]`)

// NormalizePhoneNumber derives candidate handle identifiers from a raw
// phone number. US numbers collapse to a single +1XXXXXXXXXX form; anything
// else yields a small deduplicated candidate set. The result always has at
// least one element.
func NormalizePhoneNumber(raw string) []string {
	cleaned := nonPhonePattern.ReplaceAllString(raw, "")
	// A "+" is only meaningful as a prefix
	if idx := strings.Index(cleaned, "+"); idx > 0 {
		cleaned = strings.ReplaceAll(cleaned, "+", "")
	} else if strings.Count(cleaned, "+") > 1 {
		cleaned = "+" + strings.ReplaceAll(cleaned, "+", "")
	}
	if cleaned == "" {
		cleaned = raw
	}

	digits := strings.TrimPrefix(cleaned, "+")

	// Canonical US forms collapse to a single candidate.
	switch {
	case strings.HasPrefix(cleaned, "+1") && len(digits) == 11:
		return []string{cleaned}
	case !strings.HasPrefix(cleaned, "+") && strings.HasPrefix(digits, "1") && len(digits) == 11:
		return []string{"+" + digits}
	case !strings.HasPrefix(cleaned, "+") && len(digits) == 10:
		return []string{"+1" + digits}
	}

	// Otherwise build a best-effort candidate set.
	var candidate string
	switch {
	case strings.HasPrefix(cleaned, "+1"):
		candidate = cleaned
	case strings.HasPrefix(cleaned, "1"):
		candidate = "+" + cleaned
	case strings.HasPrefix(cleaned, "+"):
		candidate = cleaned
	default:
		candidate = "+1" + cleaned
	}

	return dedupe([]string{candidate, cleaned})
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		out = append(out, values[0])
	}
	return out
}
