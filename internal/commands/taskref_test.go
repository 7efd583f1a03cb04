package commands

import (
	"testing"
)

func TestParseTaskRef_Numeric(t *testing.T) {
	id, rest, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 5 {
		t.Errorf("expected id 5, got %d", id)
	}
	if len(rest) != 0 {
		t.Errorf("expected no remaining args, got %v", rest)
	}
}

func TestParseTaskRef_HashPrefix(t *testing.T) {
	id, rest, err := ParseTaskRef([]string{"#12", "review"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 12 {
		t.Errorf("expected id 12, got %d", id)
	}
	if len(rest) != 1 || rest[0] != "review" {
		t.Errorf("expected remaining [review], got %v", rest)
	}
}

func TestParseTaskRef_Empty(t *testing.T) {
	_, _, err := ParseTaskRef(nil)
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_Invalid(t *testing.T) {
	tests := []string{"abc", "#", "0", "-3", "1.5", "a1", "99999999999999999999"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, _, err := ParseTaskRef([]string{input})
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
			expectedMsg := "invalid task id: " + input
			if err.Error() != expectedMsg {
				t.Errorf("expected %q, got %q", expectedMsg, err.Error())
			}
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"0", true},
		{"123", true},
		{"12a", false},
		{"-1", false},
	}

	for _, tt := range tests {
		if got := isAllDigits(tt.input); got != tt.expected {
			t.Errorf("isAllDigits(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
