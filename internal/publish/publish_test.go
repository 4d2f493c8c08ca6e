package publish

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/stevedore/internal/plan"
	"github.com/conn-castle/stevedore/internal/workspace"
)

// funcRunner routes each command through a test-provided handler.
type funcRunner struct {
	calls  []call
	handle func(c call) response
}

func (f *funcRunner) Run(name string, args []string, dir string) (string, string, int, error) {
	c := call{name: name, args: args, dir: dir}
	f.calls = append(f.calls, c)
	resp := f.handle(c)
	return resp.stdout, resp.stderr, resp.exitCode, resp.err
}

func okRunner() *funcRunner {
	return &funcRunner{handle: func(call) response { return response{} }}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func publishGraph(t *testing.T) workspace.Graph {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "Cargo.toml", `[workspace]
members = ["crates/alpha", "crates/beta"]

[patch.crates-io]
alpha = { path = "crates/alpha" }
serde = { git = "https://example.invalid/serde" }
`)
	alpha := writeFile(t, root, "crates/alpha/Cargo.toml", "[package]\nname = \"alpha\"\nversion = \"0.1.0\"\n")
	beta := writeFile(t, root, "crates/beta/Cargo.toml", "[package]\nname = \"beta\"\nversion = \"0.1.0\"\n")

	return workspace.Graph{
		Root: root,
		Crates: []workspace.Crate{
			{Name: "alpha", Version: "0.1.0", Path: filepath.Dir(alpha), ManifestPath: alpha, Publishable: true},
			{Name: "beta", Version: "0.1.0", Path: filepath.Dir(beta), ManifestPath: beta, Publishable: true},
		},
	}
}

func publishPlan(g workspace.Graph, strategy plan.StripSetting) plan.Plan {
	return plan.Plan{
		WorkspaceRoot: g.Root,
		Order: []plan.Release{
			{Name: "alpha", Version: "0.1.0"},
			{Name: "beta", Version: "0.1.0"},
		},
		StripStrategy: strategy,
	}
}

func publishCalls(runner *funcRunner) []call {
	var out []call
	for _, c := range runner.calls {
		if c.name == "cargo" && len(c.args) > 0 && c.args[0] == "publish" {
			out = append(out, c)
		}
	}
	return out
}

func TestRun_PublishesInOrder(t *testing.T) {
	g := publishGraph(t)
	runner := okRunner()
	buildDir := t.TempDir()

	result, err := Run(testLogger(), runner, g, publishPlan(g, plan.StripPerCrate), Options{BuildDir: buildDir})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Published)
	assert.Empty(t, result.AlreadyPublished)

	published := publishCalls(runner)
	require.Len(t, published, 2)
	assert.Contains(t, published[0].args, "alpha")
	assert.Contains(t, published[1].args, "beta")
	for _, c := range published {
		assert.Equal(t, result.StagingRoot, c.dir)
		assert.NotContains(t, c.args, "--dry-run")
	}
}

func TestRun_DryRunFlagsCargo(t *testing.T) {
	g := publishGraph(t)
	runner := okRunner()

	_, err := Run(testLogger(), runner, g, publishPlan(g, plan.StripAll), Options{BuildDir: t.TempDir(), DryRun: true})
	require.NoError(t, err)

	for _, c := range publishCalls(runner) {
		assert.Contains(t, c.args, "--dry-run")
	}
}

func TestRun_StripsStagedRootManifest(t *testing.T) {
	g := publishGraph(t)
	runner := okRunner()
	buildDir := t.TempDir()

	result, err := Run(testLogger(), runner, g, publishPlan(g, plan.StripPerCrate), Options{BuildDir: buildDir})
	require.NoError(t, err)

	staged, err := os.ReadFile(filepath.Join(result.StagingRoot, "Cargo.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(staged), "crates/alpha\" }")
	assert.Contains(t, string(staged), "serde")

	// The real workspace manifest keeps its patches.
	original, err := os.ReadFile(filepath.Join(g.Root, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(original), "alpha = { path = ")
}

func TestRun_AlreadyPublishedCrateIsSkipped(t *testing.T) {
	g := publishGraph(t)
	runner := &funcRunner{handle: func(c call) response {
		if c.name == "cargo" && len(c.args) > 0 && c.args[0] == "publish" && contains(c.args, "alpha") {
			return response{stderr: "error: crate version `0.1.0` is already uploaded", exitCode: 101}
		}
		return response{}
	}}

	result, err := Run(testLogger(), runner, g, publishPlan(g, plan.StripDisabled), Options{BuildDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Published)
	assert.Equal(t, []string{"alpha"}, result.AlreadyPublished)
	require.Len(t, publishCalls(runner), 2)
}

func TestRun_PublishFailureStopsRun(t *testing.T) {
	g := publishGraph(t)
	runner := &funcRunner{handle: func(c call) response {
		if c.name == "cargo" && len(c.args) > 0 && c.args[0] == "publish" && contains(c.args, "alpha") {
			return response{stderr: "error: the remote server responded with 503", exitCode: 101}
		}
		return response{}
	}}

	_, err := Run(testLogger(), runner, g, publishPlan(g, plan.StripDisabled), Options{BuildDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPublish))
	assert.Contains(t, err.Error(), `"alpha"`)
	require.Len(t, publishCalls(runner), 1)
}

func TestRun_PreflightFailureBlocksPublishing(t *testing.T) {
	g := publishGraph(t)
	runner := &funcRunner{handle: func(c call) response {
		if c.name == "git" {
			return response{stdout: " M dirty-file\n"}
		}
		return response{}
	}}

	_, err := Run(testLogger(), runner, g, publishPlan(g, plan.StripDisabled), Options{BuildDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPreflight))
	assert.Empty(t, publishCalls(runner))
}

func TestRun_CleanupRemovesStaging(t *testing.T) {
	g := publishGraph(t)
	runner := okRunner()
	buildDir := t.TempDir()

	result, err := Run(testLogger(), runner, g, publishPlan(g, plan.StripDisabled), Options{BuildDir: buildDir, Cleanup: true})
	require.NoError(t, err)
	assert.NoDirExists(t, result.StagingRoot)
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if strings.Contains(item, want) {
			return true
		}
	}
	return false
}
