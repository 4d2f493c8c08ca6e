// Package publish stages a workspace copy and releases its crates to
// the registry in dependency order.
package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/plan"
	"github.com/conn-castle/stevedore/internal/workspace"
)

// ErrPublish wraps a failed cargo publish invocation.
var ErrPublish = errors.New(messages.PublishCrateFailedSentinel)

// Options control a publish run.
type Options struct {
	// DryRun passes --dry-run to cargo publish so nothing is uploaded.
	DryRun bool
	// AllowDirty skips the clean-working-tree preflight check.
	AllowDirty bool
	// BuildDir hosts the staged workspace copy and cargo target dir.
	BuildDir string
	// Cleanup removes the staged copy when the run finishes.
	Cleanup bool
}

// Result summarizes a publish run.
type Result struct {
	// Published counts crates actually handed to cargo publish,
	// including ones the registry already had.
	Published int
	// AlreadyPublished lists crates the registry rejected as duplicates.
	AlreadyPublished []string
	// StagingRoot is the staged workspace copy used for the run.
	StagingRoot string
	// ReadmeCopies lists staged README destinations.
	ReadmeCopies []string
}

// Run executes a publish plan. The workspace is cloned into the build
// directory, [patch] sections are stripped per the plan's strategy,
// preflight checks run against the clone, and each crate is published
// in order. A crate the registry already has is logged and skipped
// rather than failing the run, so an interrupted release can be rerun.
func Run(logger *log.Logger, runner Runner, g workspace.Graph, p plan.Plan, opts Options) (Result, error) {
	staged, err := Stage(g, opts.BuildDir)
	if err != nil {
		return Result{}, err
	}
	if opts.Cleanup {
		defer func() {
			if err := Cleanup(opts.BuildDir); err != nil {
				logger.Warn(fmt.Sprintf(messages.StagingCleanupFailedFmt, staged.Root, err))
			}
		}()
	}

	if err := stripStagedPatches(staged.Root, p.StripStrategy, g.Names()); err != nil {
		return Result{}, err
	}

	targetDir := filepath.Join(opts.BuildDir, "target")
	preflightOpts := PreflightOptions{AllowDirty: opts.AllowDirty, TargetDir: targetDir}
	if err := Preflight(runner, g.Root, staged.Root, preflightOpts); err != nil {
		return Result{}, err
	}

	result := Result{StagingRoot: staged.Root, ReadmeCopies: staged.ReadmeCopies}
	for _, release := range p.Order {
		logger.Info(fmt.Sprintf(messages.PublishCrateFmt, release.Name, release.Version))
		args := []string{"publish", "--package", release.Name, "--allow-dirty"}
		if targetDir != "" {
			args = append(args, "--target-dir="+targetDir)
		}
		if opts.DryRun {
			args = append(args, "--dry-run")
		}
		_, stderr, code, err := runner.Run("cargo", args, staged.Root)
		if err != nil {
			return result, fmt.Errorf("%w: "+messages.PreflightCargoMissingFmt, ErrPublish, "cargo publish", err)
		}
		if code != 0 {
			if alreadyPublished(stderr) {
				logger.Warn(fmt.Sprintf("%s %s: %s", release.Name, release.Version, messages.PublishAlreadyPublished))
				result.AlreadyPublished = append(result.AlreadyPublished, release.Name)
				result.Published++
				continue
			}
			return result, fmt.Errorf("%w: "+messages.PublishCrateFailedFmt, ErrPublish, release.Name, code, strings.TrimSpace(stderr))
		}
		result.Published++
	}
	return result, nil
}

// stripStagedPatches rewrites the staged root manifest in place.
func stripStagedPatches(stagedRoot string, strategy plan.StripSetting, crateNames []string) error {
	manifestPath := filepath.Join(stagedRoot, "Cargo.toml")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("%w: "+messages.WorkspaceReadManifestFmt, ErrPreparation, manifestPath, err)
	}
	res, err := StripPatches(string(data), strategy, crateNames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPreparation, err)
	}
	if !res.Changed {
		return nil
	}
	return os.WriteFile(manifestPath, []byte(res.Text), 0o644)
}

// alreadyPublished recognizes the registry's duplicate-version errors.
func alreadyPublished(stderr string) bool {
	return strings.Contains(stderr, "already uploaded") || strings.Contains(stderr, "already exists")
}
