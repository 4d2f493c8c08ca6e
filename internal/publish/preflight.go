package publish

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/stevedore/internal/messages"
)

// ErrPreflight wraps failed release readiness checks.
var ErrPreflight = errors.New(messages.PublishPreflightFailed)

// Runner executes an external command, mirroring workspace.Runner so
// the same executor serves both packages.
type Runner interface {
	Run(name string, args []string, dir string) (stdout, stderr string, exitCode int, err error)
}

// PreflightOptions tune the release readiness checks.
type PreflightOptions struct {
	// AllowDirty skips the clean-working-tree check.
	AllowDirty bool
	// TargetDir is passed to cargo so check and test artifacts land
	// outside the real workspace.
	TargetDir string
}

// Preflight verifies the workspace is ready for release: a clean git
// tree, and a workspace that compiles and passes its tests. The cargo
// commands run against the staged copy at stagedRoot.
func Preflight(runner Runner, workspaceRoot, stagedRoot string, opts PreflightOptions) error {
	if !opts.AllowDirty {
		if err := checkCleanTree(runner, workspaceRoot); err != nil {
			return err
		}
	}
	for _, subcommand := range []string{"check", "test"} {
		if err := runCargo(runner, stagedRoot, subcommand, opts.TargetDir); err != nil {
			return err
		}
	}
	return nil
}

func checkCleanTree(runner Runner, workspaceRoot string) error {
	stdout, stderr, code, err := runner.Run("git", []string{"status", "--porcelain"}, workspaceRoot)
	if err != nil {
		return fmt.Errorf("%w: "+messages.PreflightCargoMissingFmt, ErrPreflight, "git", err)
	}
	if code != 0 {
		if strings.Contains(stderr, "not a git repository") {
			return fmt.Errorf("%w: "+messages.PreflightNoRepoFmt, ErrPreflight, workspaceRoot)
		}
		return fmt.Errorf("%w: "+messages.PreflightGitStatusFmt, ErrPreflight, code, strings.TrimSpace(stderr))
	}
	if strings.TrimSpace(stdout) != "" {
		return fmt.Errorf("%w: %s", ErrPreflight, messages.PreflightDirtyTree)
	}
	return nil
}

func runCargo(runner Runner, dir, subcommand, targetDir string) error {
	args := []string{subcommand, "--workspace", "--all-targets"}
	if targetDir != "" {
		args = append(args, "--target-dir="+targetDir)
	}
	_, stderr, code, err := runner.Run("cargo", args, dir)
	if err != nil {
		return fmt.Errorf("%w: "+messages.PreflightCargoMissingFmt, ErrPreflight, "cargo "+subcommand, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: "+messages.PreflightCargoFmt, ErrPreflight, subcommand, code, strings.TrimSpace(stderr))
	}
	return nil
}
