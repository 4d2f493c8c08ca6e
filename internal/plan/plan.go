package plan

import (
	"sort"

	"github.com/conn-castle/stevedore/internal/workspace"
)

// StripSetting selects how [patch] sections are removed from staged
// manifests before publishing.
type StripSetting string

const (
	// StripUnset means the configuration did not choose a strategy.
	StripUnset StripSetting = ""
	// StripAll removes [patch] sections from every staged manifest.
	StripAll StripSetting = "all"
	// StripPerCrate removes only [patch] entries naming workspace crates.
	StripPerCrate StripSetting = "per-crate"
	// StripDisabled leaves [patch] sections untouched.
	StripDisabled StripSetting = "disabled"
)

// ResolveStripStrategy maps the configured setting to an effective one.
// An unset configuration defaults to stripping everything during a dry
// run and only workspace entries during a live publish.
func ResolveStripStrategy(configured StripSetting, dryRun bool) StripSetting {
	if configured != StripUnset {
		return configured
	}
	if dryRun {
		return StripAll
	}
	return StripPerCrate
}

// Options control plan computation.
type Options struct {
	// Exclude lists crate names to skip, from publish.exclude.
	Exclude []string
	// ExplicitOrder overrides topological ordering when non-empty.
	ExplicitOrder []string
	// StripPatches is the configured strip setting.
	StripPatches StripSetting
	// DryRun affects the default strip strategy only.
	DryRun bool
}

// Release is one crate slated for publishing.
type Release struct {
	Name    string
	Version string
}

// Plan is the computed publish plan.
type Plan struct {
	WorkspaceRoot string
	// Order lists the crates to publish, in publish order.
	Order []Release
	// ManifestSkipped lists crates whose manifest disables publishing,
	// sorted by name.
	ManifestSkipped []string
	// ConfigSkipped lists publishable crates excluded by configuration,
	// sorted by name.
	ConfigSkipped []string
	// UnmatchedExclusions lists configured exclusions that name no
	// workspace crate, in configuration order.
	UnmatchedExclusions []string
	StripStrategy       StripSetting
}

// Compute builds the publish plan for a workspace graph.
func Compute(g workspace.Graph, opts Options) (Plan, error) {
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[name] = true
	}

	var publishable, manifestSkipped, configSkipped []string
	for _, crate := range g.Crates {
		switch {
		case !crate.Publishable:
			manifestSkipped = append(manifestSkipped, crate.Name)
		case excluded[crate.Name]:
			configSkipped = append(configSkipped, crate.Name)
		default:
			publishable = append(publishable, crate.Name)
		}
	}
	sort.Strings(manifestSkipped)
	sort.Strings(configSkipped)

	var unmatched []string
	seen := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := g.CrateByName(name); !ok {
			unmatched = append(unmatched, name)
		}
	}

	names, err := Order(g, publishable, opts.ExplicitOrder)
	if err != nil {
		return Plan{}, err
	}
	order := make([]Release, 0, len(names))
	for _, name := range names {
		crate, _ := g.CrateByName(name)
		order = append(order, Release{Name: name, Version: crate.Version})
	}

	return Plan{
		WorkspaceRoot:       g.Root,
		Order:               order,
		ManifestSkipped:     manifestSkipped,
		ConfigSkipped:       configSkipped,
		UnmatchedExclusions: unmatched,
		StripStrategy:       ResolveStripStrategy(opts.StripPatches, opts.DryRun),
	}, nil
}
