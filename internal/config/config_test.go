package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/stevedore/internal/plan"
)

func TestParse_FullConfig(t *testing.T) {
	data := []byte(`
[bump]
exclude = ["pinned"]

[bump.documentation]
globs = ["README.md", "docs/**/*.md"]

[publish]
exclude = ["internal-tool"]
order = ["alpha", "beta"]
strip_patches = "all"
`)
	cfg, err := Parse(data, "stevedore.toml")
	require.NoError(t, err)

	assert.Equal(t, []string{"pinned"}, cfg.Bump.Exclude)
	assert.Equal(t, []string{"README.md", "docs/**/*.md"}, cfg.Bump.Documentation.Globs)
	assert.Equal(t, []string{"internal-tool"}, cfg.Publish.Exclude)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Publish.Order)

	strip, err := cfg.Publish.StripSetting()
	require.NoError(t, err)
	assert.Equal(t, plan.StripAll, strip)
}

func TestParse_EmptyConfig(t *testing.T) {
	cfg, err := Parse([]byte(""), "stevedore.toml")
	require.NoError(t, err)

	assert.Empty(t, cfg.Bump.Exclude)
	assert.Empty(t, cfg.Publish.Order)

	strip, err := cfg.Publish.StripSetting()
	require.NoError(t, err)
	assert.Equal(t, plan.StripUnset, strip)
}

func TestParse_StripPatchesFalse(t *testing.T) {
	cfg, err := Parse([]byte("[publish]\nstrip_patches = false\n"), "stevedore.toml")
	require.NoError(t, err)

	strip, err := cfg.Publish.StripSetting()
	require.NoError(t, err)
	assert.Equal(t, plan.StripDisabled, strip)
}

func TestParse_StripPatchesPerCrate(t *testing.T) {
	cfg, err := Parse([]byte("[publish]\nstrip_patches = \"per-crate\"\n"), "stevedore.toml")
	require.NoError(t, err)

	strip, err := cfg.Publish.StripSetting()
	require.NoError(t, err)
	assert.Equal(t, plan.StripPerCrate, strip)
}

func TestParse_StripPatchesInvalidValues(t *testing.T) {
	for _, raw := range []string{
		`strip_patches = "everything"`,
		`strip_patches = true`,
		`strip_patches = 3`,
	} {
		_, err := Parse([]byte("[publish]\n"+raw+"\n"), "stevedore.toml")
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrValidation), raw)
		assert.Contains(t, err.Error(), "strip_patches")
	}
}

func TestParse_UnknownKeysRejected(t *testing.T) {
	_, err := Parse([]byte("[publish]\nexclud = [\"typo\"]\n"), "stevedore.toml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "stevedore.toml")
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte("[publish\n"), "stevedore.toml")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissing))
	assert.Contains(t, err.Error(), FileName)
}

func TestLoad_ReadsWorkspaceFile(t *testing.T) {
	root := t.TempDir()
	content := "[publish]\nexclude = [\"xtask\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"xtask"}, cfg.Publish.Exclude)
}
