package ident

import (
	"strings"
	"testing"
)

func TestNewProducesNineLowercaseAlphanumericCharacters(t *testing.T) {
	for attempt := 0; attempt < 100; attempt++ {
		id, err := New()
		if err != nil {
			t.Fatalf("unexpected generation error: %v", err)
		}
		if len(id) != Length {
			t.Fatalf("expected %d characters, got %d (%q)", Length, len(id), id)
		}
		for _, char := range id {
			if !strings.ContainsRune(alphabet, char) {
				t.Fatalf("character %q outside alphabet in %q", char, id)
			}
		}
	}
}

func TestNewProducesDistinctIdentifiers(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for attempt := 0; attempt < 1000; attempt++ {
		id, err := New()
		if err != nil {
			t.Fatalf("unexpected generation error: %v", err)
		}
		if _, duplicate := seen[id]; duplicate {
			t.Fatalf("duplicate identifier %q after %d draws", id, attempt)
		}
		seen[id] = struct{}{}
	}
}

func TestIsValid(t *testing.T) {
	testCases := []struct {
		name      string
		candidate string
		want      bool
	}{
		{name: "lowercase alphanumeric", candidate: "abc123xyz", want: true},
		{name: "all digits", candidate: "123456789", want: true},
		{name: "all letters", candidate: "abcdefghi", want: true},
		{name: "too short", candidate: "abc123xy", want: false},
		{name: "too long", candidate: "abc123xyz0", want: false},
		{name: "empty", candidate: "", want: false},
		{name: "uppercase rejected", candidate: "ABC123XYZ", want: false},
		{name: "hyphen rejected", candidate: "abc-23xyz", want: false},
		{name: "space rejected", candidate: "abc 23xyz", want: false},
		{name: "unicode rejected", candidate: "abc123xyé", want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := IsValid(testCase.candidate); got != testCase.want {
				t.Fatalf("IsValid(%q) = %v, want %v", testCase.candidate, got, testCase.want)
			}
		})
	}
}

func TestGeneratedIdentifiersValidate(t *testing.T) {
	for attempt := 0; attempt < 100; attempt++ {
		id, err := New()
		if err != nil {
			t.Fatalf("unexpected generation error: %v", err)
		}
		if !IsValid(id) {
			t.Fatalf("generated identifier %q failed validation", id)
		}
	}
}
