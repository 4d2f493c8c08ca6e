package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/stevedore/internal/workspace"
)

func TestCompute_PartitionsCrates(t *testing.T) {
	hidden := crate("hidden")
	hidden.Publishable = false
	g := graphOf(
		crate("alpha"),
		crate("beta", dep("alpha", workspace.KindNormal)),
		hidden,
		crate("tool"),
	)

	p, err := Compute(g, Options{Exclude: []string{"tool"}})
	require.NoError(t, err)

	assert.Equal(t, []Release{
		{Name: "alpha", Version: "0.1.0"},
		{Name: "beta", Version: "0.1.0"},
	}, p.Order)
	assert.Equal(t, []string{"hidden"}, p.ManifestSkipped)
	assert.Equal(t, []string{"tool"}, p.ConfigSkipped)
	assert.Empty(t, p.UnmatchedExclusions)
	assert.Equal(t, "/ws", p.WorkspaceRoot)
}

func TestCompute_UnmatchedExclusionsKeepConfigOrder(t *testing.T) {
	g := graphOf(crate("alpha"))

	p, err := Compute(g, Options{Exclude: []string{"zeta", "aardvark", "zeta"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "aardvark"}, p.UnmatchedExclusions)
}

func TestCompute_ExclusionMatchingManifestSkippedIsNotUnmatched(t *testing.T) {
	hidden := crate("hidden")
	hidden.Publishable = false
	g := graphOf(hidden)

	p, err := Compute(g, Options{Exclude: []string{"hidden"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"hidden"}, p.ManifestSkipped)
	assert.Empty(t, p.ConfigSkipped)
	assert.Empty(t, p.UnmatchedExclusions)
}

func TestCompute_ExplicitOrderValidatedAgainstPublishableSet(t *testing.T) {
	g := graphOf(crate("alpha"), crate("beta"))

	_, err := Compute(g, Options{
		Exclude:       []string{"beta"},
		ExplicitOrder: []string{"alpha", "beta"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the publishable set: beta")
}

func TestResolveStripStrategy(t *testing.T) {
	cases := []struct {
		configured StripSetting
		dryRun     bool
		want       StripSetting
	}{
		{StripUnset, true, StripAll},
		{StripUnset, false, StripPerCrate},
		{StripAll, false, StripAll},
		{StripAll, true, StripAll},
		{StripPerCrate, true, StripPerCrate},
		{StripDisabled, true, StripDisabled},
		{StripDisabled, false, StripDisabled},
	}
	for _, tc := range cases {
		got := ResolveStripStrategy(tc.configured, tc.dryRun)
		assert.Equal(t, tc.want, got, "configured=%q dryRun=%v", tc.configured, tc.dryRun)
	}
}

func TestSummary_FullPlan(t *testing.T) {
	p := Plan{
		WorkspaceRoot: "/ws",
		Order: []Release{
			{Name: "alpha", Version: "0.1.0"},
			{Name: "beta", Version: "0.2.0"},
		},
		ManifestSkipped:     []string{"hidden"},
		ConfigSkipped:       []string{"tool"},
		UnmatchedExclusions: []string{"ghost"},
		StripStrategy:       StripAll,
	}

	assert.Equal(t, []string{
		"Publish plan for /ws",
		"Strip patch strategy: all",
		"Crates to publish:",
		"- alpha @ 0.1.0",
		"- beta @ 0.2.0",
		"Skipped (publish = false):",
		"- hidden",
		"Skipped via publish.exclude:",
		"- tool",
		"Configured exclusions not found in workspace:",
		"- ghost",
	}, p.Summary())
}

func TestSummary_EmptyPlan(t *testing.T) {
	p := Plan{WorkspaceRoot: "/ws", StripStrategy: StripPerCrate}

	assert.Equal(t, []string{
		"Publish plan for /ws",
		"Strip patch strategy: per-crate",
		"Crates to publish: none",
	}, p.Summary())
}
