package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	t.Setenv("PEZ_JOBS", "")
	t.Setenv("PEZ_EMIT_EVENTS", "")
	os.Unsetenv("PEZ_JOBS")
	os.Unsetenv("PEZ_EMIT_EVENTS")

	settings, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultJobs, settings.Jobs)
	assert.True(t, settings.EmitEvents)
}

func TestLoadSettingsFromFile(t *testing.T) {
	t.Setenv("PEZ_JOBS", "")
	t.Setenv("PEZ_EMIT_EVENTS", "")
	os.Unsetenv("PEZ_JOBS")
	os.Unsetenv("PEZ_EMIT_EVENTS")

	dir := t.TempDir()
	content := "jobs = 8\nemit_events = false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(content), 0644))

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, settings.Jobs)
	assert.False(t, settings.EmitEvents)
}

func TestLoadSettingsEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte("jobs = 8\n"), 0644))

	t.Setenv("PEZ_JOBS", "2")

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, settings.Jobs)
}

func TestLoadSettingsClampsJobs(t *testing.T) {
	t.Setenv("PEZ_JOBS", "0")

	settings, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, settings.Jobs)
}
