// ABOUTME: Tests for phone number normalization
// ABOUTME: Verifies canonical US forms, candidate sets, and idempotence
package messages

import (
	"reflect"
	"testing"
)

func TestNormalizePhoneNumber_CanonicalForms(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"+1 (555) 123-4567", []string{"+15551234567"}},
		{"5551234567", []string{"+15551234567"}},
		{"155-5123-4567", []string{"+15551234567"}},
		{"+15551234567", []string{"+15551234567"}},
		{"15551234567", []string{"+15551234567"}},
		{"(555) 123-4567", []string{"+15551234567"}},
	}

	for _, tt := range tests {
		got := NormalizePhoneNumber(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizePhoneNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizePhoneNumber_CandidateSets(t *testing.T) {
	// Numbers that don't fit the US shapes still produce a non-empty,
	// deduplicated candidate set containing a best-effort form.
	tests := []struct {
		input string
		first string
		size  int
	}{
		{"+15551234", "+15551234", 1},
		{"555123", "+1555123", 2},
		{"1555123", "+1555123", 2},
		{"+442071234567", "+442071234567", 1},
	}

	for _, tt := range tests {
		got := NormalizePhoneNumber(tt.input)
		if len(got) == 0 {
			t.Fatalf("NormalizePhoneNumber(%q) returned empty set", tt.input)
		}
		if got[0] != tt.first {
			t.Errorf("NormalizePhoneNumber(%q)[0] = %q, want %q", tt.input, got[0], tt.first)
		}
		if len(got) != tt.size {
			t.Errorf("NormalizePhoneNumber(%q) size = %d, want %d (%v)", tt.input, len(got), tt.size, got)
		}
	}
}

func TestNormalizePhoneNumber_NeverEmpty(t *testing.T) {
	inputs := []string{"", "abc", "++", "+", "()- "}
	for _, input := range inputs {
		if got := NormalizePhoneNumber(input); len(got) == 0 {
			t.Errorf("NormalizePhoneNumber(%q) = empty set, want at least one element", input)
		}
	}
}

func TestNormalizePhoneNumber_Idempotent(t *testing.T) {
	inputs := []string{"+1 (555) 123-4567", "5551234567", "+442071234567", "garbage 123"}
	for _, input := range inputs {
		first := NormalizePhoneNumber(input)
		second := NormalizePhoneNumber(input)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("NormalizePhoneNumber(%q) not deterministic: %v vs %v", input, first, second)
		}
		// Normalizing an already-canonical form is stable.
		renorm := NormalizePhoneNumber(first[0])
		if len(renorm) == 0 {
			t.Errorf("re-normalizing %q produced empty set", first[0])
		}
	}
}
