package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo, false).With("run_id", int64(7))

	logger.Info("batch loaded", "table", "dim_game", "rows", 3, "error", errors.New("boom"))
	logger.Debug("hidden")

	out := buf.String()
	for _, want := range []string{`"msg":"batch loaded"`, `"run_id":7`, `"table":"dim_game"`, `"rows":3`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output: %s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered at info level: %s", out)
	}
}

func TestLogger_OddArgsKeepTrailingKey(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, LevelDebug, false).Warn("odd", "dangling")

	if !strings.Contains(buf.String(), `"dangling":null`) {
		t.Fatalf("expected dangling key with null value: %s", buf.String())
	}
}

func TestLogger_MirrorReceivesContextRecords(t *testing.T) {
	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, _ ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	var buf bytes.Buffer
	logger := New(&buf, LevelInfo, false)
	logger.InfoContext(context.Background(), "mirrored")
	logger.Info("not mirrored")
	logger.DebugContext(context.Background(), "filtered")

	if len(got) != 1 || got[0] != "info:mirrored" {
		t.Fatalf("unexpected mirrored records: %v", got)
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}
