package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temp dir for log file
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("SetupLogger(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}

			// Check that log file was created
			logPath := filepath.Join(tempDir, "pez", "pez.log")
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("Log file was not created at %s", logPath)
			}
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	tests := []struct {
		name         string
		logFileEnv   string
		xdgState     string
		wantContains string
	}{
		{
			name:         "with PEZ_LOG_FILE",
			logFileEnv:   "/custom/pez.log",
			wantContains: "/custom/pez.log",
		},
		{
			name:         "with XDG_STATE_HOME",
			xdgState:     "/custom/state",
			wantContains: "/custom/state/pez/pez.log",
		},
		{
			name:         "without XDG_STATE_HOME",
			xdgState:     "",
			wantContains: ".local/state/pez/pez.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logFileEnv != "" {
				t.Setenv("PEZ_LOG_FILE", tt.logFileEnv)
			}
			if tt.xdgState != "" {
				t.Setenv("XDG_STATE_HOME", tt.xdgState)
			}

			got := getLogFilePath()
			if !filepath.IsAbs(got) {
				t.Errorf("getLogFilePath() returned relative path: %s", got)
			}
			if !contains(got, tt.wantContains) {
				t.Errorf("getLogFilePath() = %s, want to contain %s", got, tt.wantContains)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	defer zerolog.SetGlobalLevel(prev)

	logger := GetLogger("test-component").Output(&buf)
	logger.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test-component") {
		t.Errorf("GetLogger() output missing component field: %s", buf.String())
	}
}

// Helper function
func contains(s, substr string) bool {
	// Clean paths to handle different OS separators
	cleanedS := filepath.ToSlash(s)
	cleanedSubstr := filepath.ToSlash(substr)
	return strings.Contains(cleanedS, cleanedSubstr)
}
