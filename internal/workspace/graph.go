// Package workspace models a cargo workspace as an immutable crate graph.
//
// The graph is built from `cargo metadata` output plus a light manifest
// probe per member crate. Only workspace members appear in the graph;
// dependency edges that point outside the workspace are dropped.
package workspace

import (
	"errors"
	"fmt"
	"sort"

	"github.com/conn-castle/stevedore/internal/messages"
)

// ErrBuild wraps any failure to assemble the workspace graph.
var ErrBuild = errors.New(messages.WorkspaceBuildFailed)

// DependencyKind classifies a dependency edge by its manifest section.
type DependencyKind string

const (
	KindNormal DependencyKind = "normal"
	KindDev    DependencyKind = "dev"
	KindBuild  DependencyKind = "build"
)

// Dependency is an edge from one workspace crate to another.
type Dependency struct {
	// Name is the target crate's package name.
	Name string
	// ManifestKey is the key under which the dependency appears in the
	// depending crate's manifest. It differs from Name when the
	// dependency is renamed via `package = "..."`.
	ManifestKey string
	Kind        DependencyKind
}

// Crate is a single workspace member.
type Crate struct {
	ID           string
	Name         string
	Version      string
	Path         string
	ManifestPath string
	// Publishable reflects the manifest `publish` field: absent or a
	// non-empty registry list means publishable, `false` or an empty
	// list means not.
	Publishable bool
	// ReadmeIsWorkspace is true when the crate's manifest declares
	// `readme.workspace = true`.
	ReadmeIsWorkspace bool
	Dependencies      []Dependency
}

// Graph is the workspace crate graph. Crates are sorted by name.
type Graph struct {
	Root   string
	Crates []Crate
}

// CrateByName returns the named crate, or false when absent.
func (g Graph) CrateByName(name string) (Crate, bool) {
	for _, c := range g.Crates {
		if c.Name == name {
			return c, true
		}
	}
	return Crate{}, false
}

// Names returns the crate names in sorted order.
func (g Graph) Names() []string {
	names := make([]string, len(g.Crates))
	for i, c := range g.Crates {
		names[i] = c.Name
	}
	return names
}

// ManifestReader loads the raw bytes of a crate manifest. The graph
// builder uses it to probe fields cargo metadata does not surface.
type ManifestReader func(path string) ([]byte, error)

// BuildGraph assembles the workspace graph from cargo metadata output.
// Dependency edges are restricted to workspace members; edges to crates
// outside the workspace do not appear in the graph.
func BuildGraph(meta Metadata, readManifest ManifestReader) (Graph, error) {
	if meta.WorkspaceRoot == "" {
		return Graph{}, fmt.Errorf("%w: %s", ErrBuild, messages.WorkspaceMissingRoot)
	}

	packagesByID := make(map[string]Package, len(meta.Packages))
	for _, pkg := range meta.Packages {
		packagesByID[pkg.ID] = pkg
	}

	memberNames := make(map[string]bool, len(meta.WorkspaceMembers))
	members := make([]Package, 0, len(meta.WorkspaceMembers))
	for _, id := range meta.WorkspaceMembers {
		pkg, ok := packagesByID[id]
		if !ok {
			return Graph{}, fmt.Errorf("%w: "+messages.WorkspaceMissingMemberFmt, ErrBuild, id)
		}
		if err := pkg.validate(); err != nil {
			return Graph{}, fmt.Errorf("%w: %v", ErrBuild, err)
		}
		if memberNames[pkg.Name] {
			return Graph{}, fmt.Errorf("%w: "+messages.WorkspaceDuplicateCrateFmt, ErrBuild, pkg.Name)
		}
		memberNames[pkg.Name] = true
		members = append(members, pkg)
	}

	crates := make([]Crate, 0, len(members))
	for _, pkg := range members {
		crate, err := buildCrate(pkg, memberNames, readManifest)
		if err != nil {
			return Graph{}, fmt.Errorf("%w: %v", ErrBuild, err)
		}
		crates = append(crates, crate)
	}
	sort.Slice(crates, func(i, j int) bool { return crates[i].Name < crates[j].Name })

	return Graph{Root: meta.WorkspaceRoot, Crates: crates}, nil
}

func buildCrate(pkg Package, members map[string]bool, readManifest ManifestReader) (Crate, error) {
	deps := make([]Dependency, 0, len(pkg.Dependencies))
	for _, dep := range pkg.Dependencies {
		if !members[dep.Name] {
			continue
		}
		kind, err := dependencyKind(dep.Kind, pkg.Name)
		if err != nil {
			return Crate{}, err
		}
		key := dep.Rename
		if key == "" {
			key = dep.Name
		}
		deps = append(deps, Dependency{Name: dep.Name, ManifestKey: key, Kind: kind})
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		return deps[i].Kind < deps[j].Kind
	})

	readmeWorkspace := false
	if readManifest != nil {
		raw, err := readManifest(pkg.ManifestPath)
		if err != nil {
			return Crate{}, fmt.Errorf(messages.WorkspaceReadManifestFmt, pkg.ManifestPath, err)
		}
		readmeWorkspace, err = manifestReadmeIsWorkspace(raw)
		if err != nil {
			return Crate{}, fmt.Errorf(messages.WorkspaceParseManifestFmt, pkg.ManifestPath, err)
		}
	}

	return Crate{
		ID:                pkg.ID,
		Name:              pkg.Name,
		Version:           pkg.Version,
		Path:              parentDir(pkg.ManifestPath),
		ManifestPath:      pkg.ManifestPath,
		Publishable:       pkg.publishable(),
		ReadmeIsWorkspace: readmeWorkspace,
		Dependencies:      deps,
	}, nil
}

func dependencyKind(kind, pkgName string) (DependencyKind, error) {
	switch kind {
	case "", "normal":
		return KindNormal, nil
	case "dev":
		return KindDev, nil
	case "build":
		return KindBuild, nil
	}
	return "", fmt.Errorf(messages.WorkspaceBadDepKindFmt, kind, pkgName)
}
