package lists

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTitleValidation(t *testing.T) {
	testCases := []struct {
		name     string
		rawInput string
		expected string
		wantErr  error
	}{
		{name: "accepts plain title", rawInput: "groceries", expected: "groceries"},
		{name: "trims surrounding whitespace", rawInput: "  weekend plans  ", expected: "weekend plans"},
		{name: "accepts maximum length", rawInput: strings.Repeat("a", maxTitleLength), expected: strings.Repeat("a", maxTitleLength)},
		{name: "rejects empty input", rawInput: "", wantErr: ErrInvalidTitle},
		{name: "rejects whitespace only", rawInput: "   \t ", wantErr: ErrInvalidTitle},
		{name: "rejects overlong input", rawInput: strings.Repeat("a", maxTitleLength+1), wantErr: ErrInvalidTitle},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			title, err := NewTitle(testCase.rawInput)
			if testCase.wantErr != nil {
				if !errors.Is(err, testCase.wantErr) {
					t.Fatalf("expected %v, got %v", testCase.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if title.String() != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, title.String())
			}
		})
	}
}

func TestNewItemTextValidation(t *testing.T) {
	testCases := []struct {
		name     string
		rawInput string
		expected string
		wantErr  error
	}{
		{name: "accepts plain text", rawInput: "buy oat milk", expected: "buy oat milk"},
		{name: "trims surrounding whitespace", rawInput: " call dentist ", expected: "call dentist"},
		{name: "accepts maximum length", rawInput: strings.Repeat("x", maxTextLength), expected: strings.Repeat("x", maxTextLength)},
		{name: "rejects empty input", rawInput: "", wantErr: ErrInvalidItemText},
		{name: "rejects whitespace only", rawInput: "  ", wantErr: ErrInvalidItemText},
		{name: "rejects overlong input", rawInput: strings.Repeat("x", maxTextLength+1), wantErr: ErrInvalidItemText},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			text, err := NewItemText(testCase.rawInput)
			if testCase.wantErr != nil {
				if !errors.Is(err, testCase.wantErr) {
					t.Fatalf("expected %v, got %v", testCase.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text.String() != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, text.String())
			}
		})
	}
}

func TestPermissionOrderingAndLabels(t *testing.T) {
	ordered := []Permission{PermissionNone, PermissionView, PermissionEdit, PermissionOwner}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].AtLeast(ordered[i-1]) {
			t.Fatalf("%v should satisfy floor %v", ordered[i], ordered[i-1])
		}
		if ordered[i-1].AtLeast(ordered[i]) {
			t.Fatalf("%v should not satisfy floor %v", ordered[i-1], ordered[i])
		}
	}
	labels := map[Permission]string{
		PermissionNone:  "none",
		PermissionView:  "view",
		PermissionEdit:  "edit",
		PermissionOwner: "owner",
	}
	for permission, label := range labels {
		if permission.String() != label {
			t.Fatalf("expected label %q, got %q", label, permission.String())
		}
	}
}
