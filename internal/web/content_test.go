// ABOUTME: Tests for main-content extraction priority and robustness
// ABOUTME: Verifies noise stripping, region priority, and never-panic behavior
package web

import (
	"strings"
	"testing"
)

func TestExtractMainContent_PrefersMain(t *testing.T) {
	fixture := `
<html><body>
<nav>Navigation junk</nav>
<main>The main region text.</main>
<article>Article text that should lose to main.</article>
<footer>Footer junk</footer>
</body></html>`

	got := ExtractMainContent(fixture)
	if got != "The main region text." {
		t.Errorf("ExtractMainContent() = %q, want main region text", got)
	}
}

func TestExtractMainContent_ConcatenatesArticles(t *testing.T) {
	fixture := `
<html><body>
<article>First article.</article>
<article>Second article.</article>
</body></html>`

	got := ExtractMainContent(fixture)
	if got != "First article. Second article." {
		t.Errorf("ExtractMainContent() = %q, want both articles concatenated", got)
	}
}

func TestExtractMainContent_ContentClassAndID(t *testing.T) {
	byClass := `<html><body><div class="sidebar">side</div><div class="post-content">Class matched.</div></body></html>`
	if got := ExtractMainContent(byClass); got != "Class matched." {
		t.Errorf("class container = %q, want %q", got, "Class matched.")
	}

	byID := `<html><body><div id="content">ID matched.</div></body></html>`
	if got := ExtractMainContent(byID); got != "ID matched." {
		t.Errorf("id container = %q, want %q", got, "ID matched.")
	}
}

func TestExtractMainContent_FallsBackToBody(t *testing.T) {
	fixture := `<html><body><p>Just a paragraph, no landmarks.</p></body></html>`
	if got := ExtractMainContent(fixture); got != "Just a paragraph, no landmarks." {
		t.Errorf("ExtractMainContent() = %q, want body text", got)
	}
}

func TestExtractMainContent_StripsNoiseBeforeSearching(t *testing.T) {
	// The script inside main must not leak into the extracted text, and
	// a nav styled as content must not be chosen over it.
	fixture := `
<html><body>
<nav class="content">Nav pretending to be content</nav>
<main>
  <script>var x = "should not appear";</script>
  <style>.hidden { display: none }</style>
  <!-- a comment -->
  Real    text with &amp; entity.
</main>
</body></html>`

	got := ExtractMainContent(fixture)
	if got != "Real text with & entity." {
		t.Errorf("ExtractMainContent() = %q, want cleaned main text", got)
	}
	if strings.Contains(got, "should not appear") {
		t.Error("script content leaked into extraction")
	}
}

func TestExtractMainContent_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"plain text, no tags",
		"<<<>>><html",
		strings.Repeat("<div>", 500),
		"<html><body><script>unterminated",
	}
	for _, input := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("ExtractMainContent(%.20q) panicked: %v", input, r)
				}
			}()
			_ = ExtractMainContent(input)
		}()
	}
}
