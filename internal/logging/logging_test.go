package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"reel/internal/config"
	"reel/internal/services"
)

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo, false))

	ctx := services.WithRunID(context.Background(), "0b7c4b8e-1111-2222-3333-444455556666")
	ctx = services.WithStage(ctx, "render")
	ctx = services.WithClip(ctx, "/media/in.mp4")
	WithContext(ctx, logger).Info("hello")

	var entry map[string]any
	if err := sonic.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry[FieldRunID] != "0b7c4b8e-1111-2222-3333-444455556666" {
		t.Fatalf("unexpected run_id: %v", entry[FieldRunID])
	}
	if entry[FieldStage] != "render" || entry[FieldClip] != "/media/in.mp4" {
		t.Fatalf("unexpected context fields: %v", entry)
	}
	if entry["level"] != "info" || entry["msg"] != "hello" {
		t.Fatalf("unexpected level/msg: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected nop logger")
	}
	logger.Info("discarded")
}

func TestPrettyHandlerHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, slog.LevelInfo, false))
	logger = NewComponentLogger(logger, "render").With(String(FieldRunID, "0b7c4b8e-aaaa"), String(FieldStage, "render"))

	logger.Info("render progress",
		Float64(FieldProgressPercent, 50),
		Int("frames", 5),
		Int("frame_total", 10),
	)
	out := buf.String()
	for _, want := range []string{
		"INFO [render] run 0b7c4b8e · render - render progress",
		"    - Progress: 50.0%",
		"    - Frames: 5",
		"    - Of: 10",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Run Id") || strings.Contains(out, "Component") {
		t.Fatalf("subject fields should not repeat as fields:\n%s", out)
	}
}

func TestPrettyHandlerSuppressesRepeatedInfoFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, slog.LevelInfo, false)).With(String(FieldRunID, "abc"))

	logger.Info("first", Int("frame_total", 10), Int("frames", 1))
	buf.Reset()
	logger.Info("second", Int("frame_total", 10), Int("frames", 2))
	out := buf.String()
	if strings.Contains(out, "Of: 10") {
		t.Fatalf("unchanged field should be suppressed:\n%s", out)
	}
	if !strings.Contains(out, "Frames: 2") {
		t.Fatalf("sticky field should be printed:\n%s", out)
	}

	buf.Reset()
	logger.Warn("third", Int("frame_total", 10))
	if !strings.Contains(buf.String(), "Of: 10") {
		t.Fatalf("warnings keep full context:\n%s", buf.String())
	}
}

func TestPrettyHandlerDebugPrintsRawKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, slog.LevelDebug, false))
	logger.Debug("spawn", String("args", "-i in.mp4"), String("binary", "ffmpeg"))
	out := buf.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, `    args: "-i in.mp4"`) || !strings.Contains(out, "    binary: ffmpeg") {
		t.Fatalf("unexpected debug output:\n%s", out)
	}
}

func TestPrettyHandlerHidesDebugOnlyKeysAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, slog.LevelInfo, false))
	logger.Info("spawn", String("args", "-i in.mp4"), String("codec", "libx264"))
	out := buf.String()
	if strings.Contains(out, "in.mp4") {
		t.Fatalf("args should be hidden at info:\n%s", out)
	}
	if !strings.Contains(out, "Codec: libx264") || !strings.Contains(out, "+ 1 more field hidden") {
		t.Fatalf("unexpected info output:\n%s", out)
	}
}

func TestFormatSubject(t *testing.T) {
	tests := []struct {
		run, stage, want string
	}{
		{"", "", ""},
		{"", "probe", "probe"},
		{"1234567890", "", "run 12345678"},
		{"abc", "render", "run abc · render"},
	}
	for _, tc := range tests {
		if got := FormatSubject(tc.run, tc.stage); got != tc.want {
			t.Fatalf("FormatSubject(%q, %q) = %q, want %q", tc.run, tc.stage, got, tc.want)
		}
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo, false))
	WarnWithContext(logger, "encoder write failed", "encode_write_failed", String(FieldImpact, "output is incomplete"))

	var entry map[string]any
	if err := sonic.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[FieldEventType] != "encode_write_failed" {
		t.Fatalf("unexpected event type: %v", entry[FieldEventType])
	}
	if entry[FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default hint, got %v", entry[FieldErrorHint])
	}
	if entry[FieldImpact] != "output is incomplete" {
		t.Fatalf("explicit impact should win, got %v", entry[FieldImpact])
	}

	WarnWithContext(nil, "ignored", "x")
	ErrorWithContext(nil, "ignored", "x")
}

func TestErrorAttr(t *testing.T) {
	if got := Error(nil); got.Value.String() != "<nil>" {
		t.Fatalf("unexpected nil error attr: %v", got)
	}
	err := errors.New("boom")
	if got := Error(err); got.Value.Any() != err {
		t.Fatalf("unexpected error attr: %v", got)
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var info, debug bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		nil,
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("k", "v")
	logger.Debug("only debug")
	if info.Len() != 0 || debug.Len() == 0 {
		t.Fatalf("unexpected routing: info=%q debug=%q", info.String(), debug.String())
	}
	logger.Info("both")
	if !strings.Contains(info.String(), `"k":"v"`) {
		t.Fatalf("attrs not propagated: %q", info.String())
	}
}

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil handlers")
	}
	inner := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if newFanoutHandler(nil, inner) != inner {
		t.Fatal("expected single handler unwrapped")
	}
}

func TestProgressSampler(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(0, "render") {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(5, "render") {
		t.Fatal("same bucket should not log")
	}
	if !s.ShouldLog(10, "render") {
		t.Fatal("new bucket should log")
	}
	if s.ShouldLog(-1, "render") {
		t.Fatal("unknown percent should not log within the same stage")
	}
	if !s.ShouldLog(100, "render") || s.ShouldLog(150, "render") {
		t.Fatal("values past 100 share the final bucket")
	}
	if !s.ShouldLog(10, "encode") {
		t.Fatal("stage change should log")
	}
	s.Reset()
	if !s.ShouldLog(10, "encode") {
		t.Fatal("reset should clear state")
	}

	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(1, "x") {
		t.Fatal("nil sampler always logs")
	}
	if NewProgressSampler(0).bucketSize != 5 {
		t.Fatal("expected default bucket size")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "reel-2020-01-01.log")
	current := filepath.Join(dir, "reel-2020-01-02.log")
	fresh := filepath.Join(dir, "reel-2099-01-01.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, current, fresh, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := CleanupOldLogs(nil, 30, RetentionTarget{Dir: dir, Pattern: logFilePattern, Exclude: []string{current}})
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, got %v", err)
	}
	for _, path := range []string{current, fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
	if CleanupOldLogs(nil, 0, RetentionTarget{Dir: dir}) != 0 {
		t.Fatal("zero retention must not prune")
	}
}

func TestNewFromConfigWritesDailyFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "info"

	var console bytes.Buffer
	logger, closeFn, err := NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("started", String("output", "out.mp4"))
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "started") {
		t.Fatalf("expected console output, got %q", console.String())
	}
	data, err := os.ReadFile(LogFilePath(cfg.Paths.LogDir, time.Now()))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"started"`) || !strings.Contains(string(data), `"output":"out.mp4"`) {
		t.Fatalf("unexpected log file contents: %s", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("WARNING"); err != nil || lvl != slog.LevelWarn {
		t.Fatalf("unexpected: %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
}
