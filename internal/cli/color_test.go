package cli

import (
	"strings"
	"testing"
)

func TestMessagesWithoutColor(t *testing.T) {
	ColorEnabled = false

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"success", Success("all good"), "✓ all good"},
		{"error", Error("failed"), "✗ failed"},
		{"warn", Warn("careful"), "⚠ careful"},
		{"hint", Hint("note"), "→ note"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestMessagesWithColor(t *testing.T) {
	ColorEnabled = true
	defer func() { ColorEnabled = false }()

	if !strings.Contains(Success("all good"), "✓ all good") {
		t.Error("expected ✓ prefix and message")
	}
	if !strings.Contains(Error("failed"), "✗ failed") {
		t.Error("expected ✗ prefix and message")
	}
	if !strings.Contains(Warn("careful"), "⚠ careful") {
		t.Error("expected ⚠ prefix and message")
	}
}

func TestInitColorEnabledRespectsNO_COLOR(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if initColorEnabled() {
		t.Error("expected colors disabled when NO_COLOR is set")
	}
}

func TestInitColorEnabledNonTTY(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	// In test environments stdout is not a TTY, so colors should be off
	if initColorEnabled() {
		t.Error("expected colors disabled when stdout is not a TTY")
	}
}
