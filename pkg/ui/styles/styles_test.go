package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStylesLoad(t *testing.T) {
	require.NoError(t, Load(embeddedStyles))

	for _, name := range []string{
		"Header", "Success", "Error", "Warning", "Info", "Muted",
		"Plugin", "Commit", "FilePath",
	} {
		assert.Contains(t, Names(), name)
	}
}

func TestGetUnknownStyleIsUsable(t *testing.T) {
	// Renderers call Get unconditionally; an unknown name must render
	// the text unchanged rather than panic.
	out := Get("NoSuchStyle").Render("hello")
	assert.Equal(t, "hello", out)
}

func TestLoadRejectsBadDocument(t *testing.T) {
	err := Load([]byte("styles: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse styles document")

	// Restore the embedded registry for other tests.
	require.NoError(t, Load(embeddedStyles))
}
