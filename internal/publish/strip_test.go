package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/stevedore/internal/plan"
)

const patchedManifest = `[workspace]
members = ["crates/*"]

[patch.crates-io]
alpha = { path = "crates/alpha" }
serde = { git = "https://github.com/serde-rs/serde" }

[profile.release]
lto = true
`

func TestStripPatches_AllRemovesEverySection(t *testing.T) {
	res, err := StripPatches(patchedManifest, plan.StripAll, []string{"alpha"})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.NotContains(t, res.Text, "[patch.crates-io]")
	assert.NotContains(t, res.Text, "serde")
	assert.Contains(t, res.Text, "[workspace]")
	assert.Contains(t, res.Text, "[profile.release]")
}

func TestStripPatches_PerCrateKeepsForeignEntries(t *testing.T) {
	res, err := StripPatches(patchedManifest, plan.StripPerCrate, []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Contains(t, res.Text, "[patch.crates-io]")
	assert.Contains(t, res.Text, "serde = ")
	assert.NotContains(t, res.Text, "alpha = ")
}

func TestStripPatches_PerCrateDropsEmptiedSection(t *testing.T) {
	in := `[patch.crates-io]
alpha = { path = "crates/alpha" }

[profile.release]
lto = true
`
	res, err := StripPatches(in, plan.StripPerCrate, []string{"alpha"})
	require.NoError(t, err)

	assert.NotContains(t, res.Text, "[patch.crates-io]")
	assert.Contains(t, res.Text, "[profile.release]")
}

func TestStripPatches_PerCrateSubTables(t *testing.T) {
	in := `[patch.crates-io.alpha]
path = "crates/alpha"

[patch.crates-io.serde]
git = "https://github.com/serde-rs/serde"
`
	res, err := StripPatches(in, plan.StripPerCrate, []string{"alpha"})
	require.NoError(t, err)

	assert.NotContains(t, res.Text, "crates/alpha")
	assert.Contains(t, res.Text, "[patch.crates-io.serde]")
}

func TestStripPatches_PerCrateResolvesRenames(t *testing.T) {
	in := `[patch.crates-io]
alias = { path = "crates/alpha", package = "alpha" }
`
	res, err := StripPatches(in, plan.StripPerCrate, []string{"alpha"})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.NotContains(t, res.Text, "alias")
}

func TestStripPatches_DisabledAndUnsetLeaveTextAlone(t *testing.T) {
	for _, strategy := range []plan.StripSetting{plan.StripDisabled, plan.StripUnset} {
		res, err := StripPatches(patchedManifest, strategy, []string{"alpha"})
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, patchedManifest, res.Text)
	}
}

func TestStripPatches_NoPatchSections(t *testing.T) {
	in := "[workspace]\nmembers = []\n"
	res, err := StripPatches(in, plan.StripAll, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, in, res.Text)
}

func TestStripPatches_InvalidToml(t *testing.T) {
	_, err := StripPatches("[patch\n", plan.StripAll, nil)
	require.Error(t, err)
}
