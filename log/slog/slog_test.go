package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/autocache"
)

func TestSlogLoggerWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug})
	l := Logger{L: stdslog.New(h)}

	l.Error("cache get failed", autocache.Fields{"key": "app:k"})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["level"] != "ERROR" || rec["msg"] != "cache get failed" || rec["key"] != "app:k" {
		t.Fatalf("record: %v", rec)
	}
}

func TestSlogLoggerSkipsDisabledLevels(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, nil))}
	l.Debug("pattern delete finished", autocache.Fields{"deleted": 0})
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}
}

func TestAttrsAreSorted(t *testing.T) {
	got := attrs(autocache.Fields{"shard": "s", "err": "e", "key": "k"})
	if len(got) != 3 || got[0].Key != "err" || got[1].Key != "key" || got[2].Key != "shard" {
		t.Fatalf("attrs=%v", got)
	}
}
