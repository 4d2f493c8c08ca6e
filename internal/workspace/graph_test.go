package workspace

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkg(name, version string, deps ...PackageDependency) Package {
	return Package{
		ID:           "id-" + name,
		Name:         name,
		Version:      version,
		ManifestPath: "/ws/" + name + "/Cargo.toml",
		Dependencies: deps,
	}
}

func metaFor(packages ...Package) Metadata {
	meta := Metadata{WorkspaceRoot: "/ws"}
	for _, p := range packages {
		meta.WorkspaceMembers = append(meta.WorkspaceMembers, p.ID)
		meta.Packages = append(meta.Packages, p)
	}
	return meta
}

func TestBuildGraph_SortsCratesAndDependencies(t *testing.T) {
	meta := metaFor(
		pkg("beta", "0.2.0",
			PackageDependency{Name: "alpha", Kind: ""},
			PackageDependency{Name: "alpha", Kind: "dev"},
		),
		pkg("alpha", "0.1.0"),
	)

	g, err := BuildGraph(meta, nil)
	require.NoError(t, err)

	assert.Equal(t, "/ws", g.Root)
	assert.Equal(t, []string{"alpha", "beta"}, g.Names())

	beta, ok := g.CrateByName("beta")
	require.True(t, ok)
	require.Len(t, beta.Dependencies, 2)
	assert.Equal(t, KindDev, beta.Dependencies[0].Kind)
	assert.Equal(t, KindNormal, beta.Dependencies[1].Kind)
	assert.Equal(t, "/ws/beta", beta.Path)
}

func TestBuildGraph_DropsNonMemberEdges(t *testing.T) {
	meta := metaFor(
		pkg("alpha", "0.1.0", PackageDependency{Name: "serde", Kind: ""}),
	)

	g, err := BuildGraph(meta, nil)
	require.NoError(t, err)

	alpha, _ := g.CrateByName("alpha")
	assert.Empty(t, alpha.Dependencies)
}

func TestBuildGraph_RenamedDependencyKeepsManifestKey(t *testing.T) {
	meta := metaFor(
		pkg("alpha", "0.1.0"),
		pkg("beta", "0.2.0", PackageDependency{Name: "alpha", Rename: "alpha-core", Kind: ""}),
	)

	g, err := BuildGraph(meta, nil)
	require.NoError(t, err)

	beta, _ := g.CrateByName("beta")
	require.Len(t, beta.Dependencies, 1)
	assert.Equal(t, "alpha", beta.Dependencies[0].Name)
	assert.Equal(t, "alpha-core", beta.Dependencies[0].ManifestKey)
}

func TestBuildGraph_MissingMemberPackage(t *testing.T) {
	meta := Metadata{
		WorkspaceRoot:    "/ws",
		WorkspaceMembers: []string{"id-ghost"},
	}

	_, err := BuildGraph(meta, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuild))
	assert.Contains(t, err.Error(), "id-ghost")
}

func TestBuildGraph_MissingWorkspaceRoot(t *testing.T) {
	_, err := BuildGraph(Metadata{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuild))
}

func TestBuildGraph_DuplicateCrateName(t *testing.T) {
	a := pkg("alpha", "0.1.0")
	b := pkg("alpha", "0.2.0")
	b.ID = "id-alpha-2"
	meta := Metadata{
		WorkspaceRoot:    "/ws",
		WorkspaceMembers: []string{a.ID, b.ID},
		Packages:         []Package{a, b},
	}

	_, err := BuildGraph(meta, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate crate name "alpha"`)
}

func TestBuildGraph_MissingRequiredField(t *testing.T) {
	p := pkg("alpha", "")
	meta := metaFor(p)

	_, err := BuildGraph(meta, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestBuildGraph_UnknownDependencyKind(t *testing.T) {
	meta := metaFor(
		pkg("alpha", "0.1.0"),
		pkg("beta", "0.2.0", PackageDependency{Name: "alpha", Kind: "weird"}),
	)

	_, err := BuildGraph(meta, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"weird"`)
}

func TestBuildGraph_PublishField(t *testing.T) {
	cases := []struct {
		name    string
		publish string
		want    bool
	}{
		{"absent", "", true},
		{"null", "null", true},
		// cargo encodes publish = false as an empty list, but accept a
		// literal false too.
		{"false", "false", false},
		{"empty list", "[]", false},
		{"registry list", `["crates-io"]`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := pkg("alpha", "0.1.0")
			if tc.publish != "" {
				p.Publish = json.RawMessage(tc.publish)
			}
			g, err := BuildGraph(metaFor(p), nil)
			require.NoError(t, err)
			crate, _ := g.CrateByName("alpha")
			assert.Equal(t, tc.want, crate.Publishable)
		})
	}
}

func TestBuildGraph_ReadmeWorkspaceProbe(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	content := `[package]
name = "alpha"
version = "0.1.0"
readme.workspace = true
`
	require.NoError(t, os.WriteFile(manifest, []byte(content), 0o644))

	p := pkg("alpha", "0.1.0")
	p.ManifestPath = manifest

	g, err := BuildGraph(metaFor(p), os.ReadFile)
	require.NoError(t, err)

	crate, _ := g.CrateByName("alpha")
	assert.True(t, crate.ReadmeIsWorkspace)
}

func TestBuildGraph_ReadmePlainStringIsNotWorkspace(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	content := `[package]
name = "alpha"
version = "0.1.0"
readme = "README.md"
`
	require.NoError(t, os.WriteFile(manifest, []byte(content), 0o644))

	p := pkg("alpha", "0.1.0")
	p.ManifestPath = manifest

	g, err := BuildGraph(metaFor(p), os.ReadFile)
	require.NoError(t, err)

	crate, _ := g.CrateByName("alpha")
	assert.False(t, crate.ReadmeIsWorkspace)
}
