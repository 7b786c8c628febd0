package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/brandforge/pkg/models"
)

func TestFallbackRegistry_Defaults(t *testing.T) {
	registry := NewFallbackRegistry()

	url := registry.Resolve(models.StepSignboard, "modern")
	assert.Equal(t, "https://assets.brandforge.dev/fallbacks/signboard-modern.png", url)

	// Resolution is deterministic.
	assert.Equal(t, url, registry.Resolve(models.StepSignboard, "modern"))

	assert.Equal(t, "https://assets.brandforge.dev/fallbacks/interior-minimal.png",
		registry.Resolve(models.StepInterior, "minimal"))
}

func TestFallbackRegistry_UnknownPairUsesDefault(t *testing.T) {
	registry := NewFallbackRegistry()

	assert.Equal(t, "https://assets.brandforge.dev/fallbacks/default.png",
		registry.Resolve(models.StepAnalysis, "vaporwave"))
}

func TestFallbackRegistry_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallbacks.json")
	content := `{
		"fallbacks": [
			{"step": "signboard", "style": "modern", "url": "https://cdn.example.com/sign.png"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	registry := NewFallbackRegistry()
	require.NoError(t, registry.LoadFile(path))

	assert.Equal(t, "https://cdn.example.com/sign.png",
		registry.Resolve(models.StepSignboard, "modern"))

	// Entries not overridden keep their defaults.
	assert.Equal(t, "https://assets.brandforge.dev/fallbacks/signboard-classic.png",
		registry.Resolve(models.StepSignboard, "classic"))
}

func TestFallbackRegistry_LoadFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallbacks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fallbacks": [{"step": "signboard"}]}`), 0o644))

	registry := NewFallbackRegistry()
	assert.Error(t, registry.LoadFile(path))
}

func TestFallbackRegistry_LoadFileMissing(t *testing.T) {
	registry := NewFallbackRegistry()
	assert.Error(t, registry.LoadFile(filepath.Join(t.TempDir(), "absent.json")))
}
