// Package shell is pez's bridge to the fish shell: it emits plugin lifecycle
// events for conf.d snippets and renders the activation wrapper script.
package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/types"
)

// SuppressEmitEnv, when set, disables out-of-process event emission. The
// fish wrapper installed by `pez activate` sets it and emits events
// in-process instead, so hooks do not fire twice.
const SuppressEmitEnv = "PEZ_SUPPRESS_EMIT"

// Emitter emits <stem>_<event> fish events for conf.d snippets.
type Emitter struct {
	enabled bool
}

// NewEmitter returns an emitter honoring the emit_events setting.
func NewEmitter(enabled bool) *Emitter {
	return &Emitter{enabled: enabled}
}

// Emit fires one fish event for a conf.d file name or path. Emission being
// disabled is not an error; a fish process that cannot be spawned is.
func (e *Emitter) Emit(ctx context.Context, fileName string, event types.Event) error {
	if !e.enabled || os.Getenv(SuppressEmitEnv) != "" {
		return nil
	}

	stem := Stem(fileName)
	if stem == "" {
		log.Warn().Str("file", fileName).Msg("could not extract plugin name from file name")
		return nil
	}

	cmd := exec.CommandContext(ctx, "fish", "-c", fmt.Sprintf("emit %s_%s", stem, event))
	output, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			log.Error().Str("event", fmt.Sprintf("%s_%s", stem, event)).
				Str("output", strings.TrimSpace(string(output))).
				Msg("fish event command exited with an error")
			return nil
		}
		return pezerrors.Wrap(err, pezerrors.ErrInternal, "failed to spawn fish to emit event")
	}
	log.Debug().Str("event", fmt.Sprintf("%s_%s", stem, event)).Msg("emitted event")
	return nil
}

// EmitForRecords fires the event for every conf.d file among records.
func (e *Emitter) EmitForRecords(ctx context.Context, records []lockfile.FileRecord, event types.Event) error {
	for _, record := range records {
		if record.Dir != types.TargetConfD {
			continue
		}
		if err := e.Emit(ctx, record.Name, event); err != nil {
			return err
		}
	}
	return nil
}

// Stem returns the file name without directories or its last extension,
// the part fish event names are derived from.
func Stem(fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
