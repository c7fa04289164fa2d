package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tc := range tests {
		if got := parseLevel(tc.level); got != tc.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tc.level, got, tc.want)
		}
	}
}

func TestNew_Level(t *testing.T) {
	log := New(Config{Level: "warn", Format: "json", Service: "remit-server"})

	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %s, want warn", log.GetLevel())
	}
}
