package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"cohort-checkin/config"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestBuildConsole(t *testing.T) {
	var buf bytes.Buffer
	l := build(&config.Config{Mode: config.ModeDebug, Log: config.Log{Level: "info"}}, &buf)
	l.With("module", "Checkin").Debug("hidden")
	l.With("module", "Checkin").Info("submitted", "student_id", "2024001")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "module=Checkin")
	assert.Contains(t, out, "student_id=2024001")
	assert.Contains(t, out, "app_name=cohort-checkin")
}

func TestFanout(t *testing.T) {
	var a, b bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	l := slog.New(h).With("k", "v")
	l.Info("info")
	l.Error("boom")

	assert.Contains(t, a.String(), "info")
	assert.Contains(t, a.String(), "boom")
	assert.NotContains(t, b.String(), "msg=info")
	assert.Contains(t, b.String(), "k=v")
}
