package lrucache

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("expected the default logger to be disabled")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	c := MustNew[string, int](1)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	out := buf.String()
	for _, want := range []string{"lrucache: created", "lrucache: evicted", "key=a", "lrucache: cleared"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output misses %q:\n%s", want, out)
		}
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("expected SetLogger(nil) to restore the silent logger")
	}
}

func TestConfigLoggerOverride(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewWithConfig(Config[int, int]{
		Capacity: 1,
		Logger:   slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	c.Set(1, 1)
	c.Set(2, 2)

	if !strings.Contains(buf.String(), "lrucache: evicted") {
		t.Fatalf("expected eviction to be logged to the cache logger:\n%s", buf.String())
	}
}
