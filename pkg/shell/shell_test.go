package shell

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/types"
)

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"greet_init.fish", "greet_init"},
		{"conf.d/greet_init.fish", "greet_init"},
		{"/abs/path/to/hydro.fish", "hydro"},
		{"noext", "noext"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stem(tt.in), "stem of %q", tt.in)
	}
}

func TestEmitterSuppressed(t *testing.T) {
	t.Setenv(SuppressEmitEnv, "1")

	// fish is not required here: suppression returns before spawning.
	e := NewEmitter(true)
	err := e.Emit(context.Background(), "greet_init.fish", types.EventInstall)
	require.NoError(t, err)
}

func TestEmitterDisabled(t *testing.T) {
	e := NewEmitter(false)
	err := e.Emit(context.Background(), "greet_init.fish", types.EventUninstall)
	require.NoError(t, err)
}

func TestEmitForRecordsOnlyConfD(t *testing.T) {
	t.Setenv(SuppressEmitEnv, "1")

	e := NewEmitter(true)
	records := []lockfile.FileRecord{
		{Dir: types.TargetFunctions, Name: "greet.fish"},
		{Dir: types.TargetConfD, Name: "greet_init.fish"},
	}
	require.NoError(t, e.EmitForRecords(context.Background(), records, types.EventUpdate))
}

func TestFishActivateScript(t *testing.T) {
	script := FishActivateScript("1.2.3")

	assert.Contains(t, script, `set -l __pez_version "1.2.3"`)
	assert.Contains(t, script, "__pez_activate_version")
	assert.Contains(t, script, "PEZ_SUPPRESS_EMIT=1")
	assert.Contains(t, script, "command pez files --dir conf.d --from")
	assert.Contains(t, script, "__pez_fish_split_subcmd")
	assert.Contains(t, script, "psub -f -s .pez_uninstall")

	// uninstall hooks fire before the files disappear
	segment := script[strings.Index(script, "case uninstall remove"):]
	emitPos := strings.Index(segment, "__pez_fish_source_and_emit uninstall")
	cmdPos := strings.Index(segment, "env PEZ_SUPPRESS_EMIT=1 command pez $argv")
	require.Greater(t, emitPos, -1)
	require.Greater(t, cmdPos, -1)
	assert.Less(t, emitPos, cmdPos)
}
