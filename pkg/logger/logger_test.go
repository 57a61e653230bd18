package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsSurviveIntoEntries(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithField(ctx, "order_id", "ord-9")
	log.Error(ctx, "boom", errors.New("boom"))

	for _, want := range []string{`"request_id":"req-123"`, `"order_id":"ord-9"`, `"stack"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("entry missing %s: %s", want, buf.String())
		}
	}
}

func TestWarnStackToggle(t *testing.T) {
	withStack := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: withStack, WarnStack: true})
	log.Warn(context.Background(), "warny")
	if !bytes.Contains(withStack.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack on warn when enabled: %s", withStack.String())
	}

	without := &bytes.Buffer{}
	log = New(Options{ServiceName: "test", Output: without})
	log.Warn(context.Background(), "warny")
	if bytes.Contains(without.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("stack must be absent by default: %s", without.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("empty level should default to info, got %v", lvl)
	}
	if lvl := ParseLevel("nonsense"); lvl != zerolog.InfoLevel {
		t.Fatalf("unknown level should default to info, got %v", lvl)
	}
	if lvl := ParseLevel(" DEBUG "); lvl != zerolog.DebugLevel {
		t.Fatalf("level parsing should trim and lowercase, got %v", lvl)
	}
}
