// ABOUTME: Best-effort decoding of legacy attributed-body message payloads
// ABOUTME: Prioritized pattern chain over the raw bytes, never panics
package messages

import (
	"encoding/hex"
	"regexp"
	"strings"
)

// notReadable is the fixed placeholder used when no pattern recovers text.
const notReadable = "[Message content not readable]"

// minReadableLength is the shortest match considered real text rather than
// serialization noise.
const minReadableLength = 5

// textPatterns are tried in order against the decoded byte stream. The
// archive format is undocumented and unstable, so these are heuristics
// anchored on the NSString marker rather than a strict parser.
var textPatterns = []*regexp.Regexp{
	// streamtyped archive: NSString, type tag, then a length-prefixed run
	regexp.MustCompile(`(?s)NSString.{1,10}?\+(.+?)\x86`),
	// quoted form seen in some payload variants
	regexp.MustCompile(`(?s)NSString[^"]{0,10}"(.+?)"`),
	// everything between the string object and the attribute dictionary
	regexp.MustCompile(`(?s)NSString(.+?)NSDictionary`),
}

// urlPatterns recover an embedded link independently of the text. First
// match wins.
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://[^\s"\\\x00-\x1f\x7f-\xff]+`),
	regexp.MustCompile(`NSString[^"]*"(https?://[^"]+)"`),
	regexp.MustCompile(`"url"\s*:\s*"(https?://[^"]+)"`),
	regexp.MustCompile(`href="(https?://[^"]+)"`),
}

// plainURLPattern scans plain-text message bodies for an embedded link.
var plainURLPattern = regexp.MustCompile(`https?://[^\s]+`)

var (
	metadataTokens = []string{
		"streamtyped", "NSAttributedString", "NSMutableString", "NSString",
		"NSDictionary", "NSMutableDictionary", "NSNumber", "NSValue",
		"NSObject", "NSAttributeInfo", "__kIMMessagePartAttributeName",
		"__kIMFileTransferGUIDAttributeName", "__kIMBaseWritingDirectionAttributeName",
	}
	nonPrintablePattern = regexp.MustCompile(`[^\x20-\x7e\n\t]+`)
	bodyWhitespace      = regexp.MustCompile(`\s+`)
	trailingNoise       = regexp.MustCompile(`\s*(?:iI|\x86)+\s*$`)
)

// DecodeLegacyBody recovers human-readable text and any embedded URL from a
// hex-encoded attributed-body payload. It never panics; when nothing
// readable can be recovered it returns a fixed placeholder and an empty URL.
func DecodeLegacyBody(hexEncoded string) (text, url string) {
	defer func() {
		if r := recover(); r != nil {
			text, url = notReadable, ""
		}
	}()

	raw, err := hex.DecodeString(strings.TrimSpace(hexEncoded))
	if err != nil || len(raw) == 0 {
		return notReadable, ""
	}
	body := bytesToRunes(raw)

	for _, pattern := range textPatterns {
		m := pattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		if candidate := postProcess(m[1]); len(candidate) > minReadableLength {
			text = candidate
			break
		}
	}

	for _, pattern := range urlPatterns {
		m := pattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			url = m[1]
		} else {
			url = m[0]
		}
		break
	}

	if text == "" {
		if candidate := genericCleanup(body); len(candidate) > minReadableLength {
			text = candidate
		}
	}
	if text == "" {
		text = notReadable
	}
	return text, url
}

// postProcess strips the serialization artifacts that cling to a matched
// run: leading length-prefix bytes, a trailing noise marker, and collapsed
// whitespace.
func postProcess(s string) string {
	s = nonPrintablePattern.ReplaceAllString(s, " ")
	s = trailingNoise.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "+ \t")
	return strings.TrimSpace(bodyWhitespace.ReplaceAllString(s, " "))
}

// genericCleanup is the last-resort pass: drop known metadata tokens and
// non-printable runs, keep whatever readable residue is left.
func genericCleanup(body string) string {
	for _, token := range metadataTokens {
		body = strings.ReplaceAll(body, token, " ")
	}
	body = nonPrintablePattern.ReplaceAllString(body, " ")
	return strings.TrimSpace(bodyWhitespace.ReplaceAllString(body, " "))
}

// findPlainURL scans a plain-text body for the first embedded URL.
func findPlainURL(text string) string {
	return plainURLPattern.FindString(text)
}

// bytesToRunes maps each payload byte to the rune of the same value so the
// patterns above match raw bytes; regexp would otherwise decode the
// payload as (mostly invalid) UTF-8.
func bytesToRunes(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}
