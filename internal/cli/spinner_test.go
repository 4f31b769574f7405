package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWithSpinnerSuccess(t *testing.T) {
	var buf bytes.Buffer
	err := WithSpinner(&buf, "working...", func(s *Spinner) error {
		s.SetMessage("still working...")
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	// Non-TTY: the first message is printed once.
	if !strings.Contains(buf.String(), "working...") {
		t.Errorf("expected static message, got %q", buf.String())
	}
}

func TestWithSpinnerError(t *testing.T) {
	var buf bytes.Buffer
	want := errors.New("boom")
	err := WithSpinner(&buf, "working...", func(*Spinner) error {
		return want
	})
	if err != want {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if !strings.Contains(buf.String(), "✗ boom") {
		t.Errorf("expected failure line, got %q", buf.String())
	}
}

func TestWithSpinnerCtxCancel(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())

	err := WithSpinnerCtx(ctx, &buf, "working...", func(ctx context.Context, _ *Spinner) error {
		cancel()
		return ctx.Err()
	})
	// Cancellation should return nil (graceful).
	if err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
	if !strings.Contains(buf.String(), "Cancelled.") {
		t.Errorf("expected cancellation line, got %q", buf.String())
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "initial")
	s.SetMessage("updated")
	s.mu.Lock()
	got := s.message
	s.mu.Unlock()
	if got != "updated" {
		t.Fatalf("expected 'updated', got %q", got)
	}
}

func TestSpinnerShowDelay(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "test")
	if s.showDelay != 200*time.Millisecond {
		t.Fatalf("expected 200ms delay, got %v", s.showDelay)
	}
}

func TestSpinnerNonTTYPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "test")
	s.Start()
	s.Stop()
	if strings.Count(buf.String(), "test") != 1 {
		t.Errorf("expected a single static line, got %q", buf.String())
	}
}
