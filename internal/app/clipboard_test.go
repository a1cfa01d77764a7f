package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func swapClipboard(t *testing.T, system, osc func(string) error) {
	t.Helper()
	prevSystem, prevOSC := clipboardWriteAll, clipboardWriteOSC52
	clipboardWriteAll, clipboardWriteOSC52 = system, osc
	t.Cleanup(func() {
		clipboardWriteAll, clipboardWriteOSC52 = prevSystem, prevOSC
	})
}

func TestCopyPrefersSystemClipboard(t *testing.T) {
	var got string
	swapClipboard(t, func(text string) error {
		got = text
		return nil
	}, func(string) error {
		t.Fatalf("OSC52 should not be used")
		return nil
	})
	method, err := copyTextToClipboard("# Alpha")
	if err != nil || method != clipboardMethodSystem || got != "# Alpha" {
		t.Fatalf("unexpected result %v %v %q", method, err, got)
	}
}

func TestCopyFallsBackToOSC52(t *testing.T) {
	swapClipboard(t, func(string) error { return errors.New("no clipboard") }, func(string) error { return nil })
	method, err := copyTextToClipboard("x")
	if err != nil || method != clipboardMethodOSC52 {
		t.Fatalf("expected terminal fallback, got %v %v", method, err)
	}
	if method.String() != "terminal" {
		t.Fatalf("unexpected method name %q", method.String())
	}
}

func TestCopyReportsBothFailures(t *testing.T) {
	swapClipboard(t, func(string) error { return errors.New("helper missing") }, func(string) error { return errors.New("no tty") })
	if _, err := copyTextToClipboard("x"); err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Fatalf("expected combined error, got %v", err)
	}
}

func TestWriteOSC52Sequence(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "xterm-256color")
	var buf bytes.Buffer
	if err := writeOSC52Sequence(&buf, "hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b]52;c;") {
		t.Fatalf("expected OSC52 prefix, got %q", buf.String())
	}
}

func TestShouldAttemptOSC52(t *testing.T) {
	t.Setenv("TERM", "xterm")
	t.Setenv("JOTTER_DISABLE_OSC52", "yes")
	if shouldAttemptOSC52() {
		t.Fatalf("expected opt-out to disable OSC52")
	}
	t.Setenv("JOTTER_DISABLE_OSC52", "")
	if !shouldAttemptOSC52() {
		t.Fatalf("expected OSC52 for xterm")
	}
	t.Setenv("TERM", "dumb")
	if shouldAttemptOSC52() {
		t.Fatalf("expected dumb terminal to skip OSC52")
	}
}
