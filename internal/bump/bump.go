// Package bump propagates a new version through every manifest and
// documentation file of a cargo workspace.
package bump

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/aymanbagabas/go-udiff"
	"github.com/gobwas/glob"

	"github.com/conn-castle/stevedore/internal/config"
	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/rewrite"
	"github.com/conn-castle/stevedore/internal/workspace"
)

// ErrInvalidVersion reports a version argument that is not strict semver.
var ErrInvalidVersion = errors.New(messages.BumpVersionRejected)

// Options control a bump run.
type Options struct {
	// DryRun renders diffs instead of writing files.
	DryRun bool
}

// Change records one pending file change during a dry run.
type Change struct {
	// Path is relative to the workspace root.
	Path string
	Diff string
}

// Result summarizes a bump run.
type Result struct {
	// ManifestsChanged counts manifests that were (or would be) rewritten.
	ManifestsChanged int
	// DocsTotal and DocsUpdated count documentation snippets examined
	// and changed.
	DocsTotal   int
	DocsUpdated int
	// Changes holds pending diffs when running dry.
	Changes []Change
}

// Run sets the workspace to version. Crates listed in bump.exclude keep
// their own version but still have requirements on bumped crates
// rewritten. Documentation files matching the configured globs have
// their TOML snippets updated alongside.
func Run(g workspace.Graph, cfg *config.Config, version string, opts Options) (Result, error) {
	if _, err := semver.StrictNewVersion(version); err != nil {
		return Result{}, fmt.Errorf("%w: "+messages.BumpVersionInvalidFmt, ErrInvalidVersion, version, err)
	}

	excluded := make(map[string]bool, len(cfg.Bump.Exclude))
	for _, name := range cfg.Bump.Exclude {
		excluded[name] = true
	}
	versions := make(map[string]string, len(g.Crates))
	for _, crate := range g.Crates {
		if !excluded[crate.Name] {
			versions[crate.Name] = version
		}
	}

	var result Result
	if err := rewriteManifests(g, excluded, version, versions, opts, &result); err != nil {
		return Result{}, err
	}
	if err := rewriteDocs(g.Root, cfg.Bump.Documentation.Globs, versions, opts, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}

func rewriteManifests(g workspace.Graph, excluded map[string]bool, version string, versions map[string]string, opts Options, result *Result) error {
	type target struct {
		path       string
		newVersion string
	}
	seen := make(map[string]bool)
	var targets []target

	rootManifest := filepath.Join(g.Root, "Cargo.toml")
	targets = append(targets, target{path: rootManifest, newVersion: version})
	seen[rootManifest] = true

	for _, crate := range g.Crates {
		if seen[crate.ManifestPath] {
			continue
		}
		seen[crate.ManifestPath] = true
		newVersion := version
		if excluded[crate.Name] {
			newVersion = ""
		}
		targets = append(targets, target{path: crate.ManifestPath, newVersion: newVersion})
	}

	for _, tgt := range targets {
		data, err := os.ReadFile(tgt.path)
		if err != nil {
			return fmt.Errorf(messages.WorkspaceReadManifestFmt, tgt.path, err)
		}
		res, err := rewrite.Manifest(string(data), tgt.newVersion, versions)
		if err != nil {
			return fmt.Errorf(messages.RewriteManifestFmt, tgt.path, err)
		}
		if !res.Changed {
			continue
		}
		result.ManifestsChanged++
		if err := applyChange(g.Root, tgt.path, string(data), res.Text, opts, result); err != nil {
			return err
		}
	}
	return nil
}

func rewriteDocs(root string, globs []string, versions map[string]string, opts Options, result *Result) error {
	paths, err := matchDocs(root, globs)
	if err != nil {
		return err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res := rewrite.Documentation(string(data), versions)
		result.DocsTotal += res.Total
		result.DocsUpdated += res.Updated
		if !res.Changed {
			continue
		}
		if err := applyChange(root, path, string(data), res.Text, opts, result); err != nil {
			return err
		}
	}
	return nil
}

// matchDocs walks the workspace once and returns the sorted set of
// files matching any configured glob. Patterns match slash-separated
// paths relative to the workspace root.
func matchDocs(root string, globs []string) ([]string, error) {
	if len(globs) == 0 {
		return nil, nil
	}
	matchers := make([]glob.Glob, 0, len(globs))
	for _, pattern := range globs {
		matcher, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf(messages.BumpDocGlobFmt, pattern, err)
		}
		matchers = append(matchers, matcher)
	}

	seen := make(map[string]bool)
	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			name := entry.Name()
			if name == ".git" || name == "target" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, matcher := range matchers {
			if matcher.Match(rel) {
				if !seen[path] {
					seen[path] = true
					paths = append(paths, path)
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func applyChange(root, path, before, after string, opts Options, result *Result) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	if opts.DryRun {
		diff := udiff.Unified(rel+" (current)", rel+" (new)", before, after)
		result.Changes = append(result.Changes, Change{Path: rel, Diff: ensureTrailingNewline(diff)})
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(after), info.Mode().Perm())
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
