package publish

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/workspace"
)

// ErrPreparation wraps failures to stage the workspace copy.
var ErrPreparation = errors.New(messages.PublishPreparationFailed)

// stagingDirName is the workspace clone directory under the build dir.
const stagingDirName = "staging"

// StageResult describes a staged workspace copy.
type StageResult struct {
	// Root is the staged workspace root.
	Root string
	// ReadmeCopies lists staged README destinations, sorted by crate.
	ReadmeCopies []string
}

// Stage clones the workspace into buildDir/staging so publishing never
// touches the real tree. Crates that inherit the workspace README get
// a copy of it placed in their staged directory, since cargo packages
// a crate's directory only. A stale clone from a previous run is
// replaced.
func Stage(g workspace.Graph, buildDir string) (StageResult, error) {
	buildAbs, err := filepath.Abs(buildDir)
	if err != nil {
		return StageResult{}, fmt.Errorf("%w: %v", ErrPreparation, err)
	}
	rootAbs, err := filepath.Abs(g.Root)
	if err != nil {
		return StageResult{}, fmt.Errorf("%w: %v", ErrPreparation, err)
	}
	if isWithin(rootAbs, buildAbs) {
		return StageResult{}, fmt.Errorf("%w: %s", ErrPreparation, messages.StagingInsideWorkspace)
	}

	stagingRoot := filepath.Join(buildAbs, stagingDirName)
	if err := os.RemoveAll(stagingRoot); err != nil {
		return StageResult{}, fmt.Errorf("%w: "+messages.StagingCopyFmt, ErrPreparation, err)
	}
	if err := copyTree(rootAbs, stagingRoot); err != nil {
		return StageResult{}, fmt.Errorf("%w: "+messages.StagingCopyFmt, ErrPreparation, err)
	}

	copies, err := stageWorkspaceReadme(g, rootAbs, stagingRoot)
	if err != nil {
		return StageResult{}, err
	}
	return StageResult{Root: stagingRoot, ReadmeCopies: copies}, nil
}

func stageWorkspaceReadme(g workspace.Graph, rootAbs, stagingRoot string) ([]string, error) {
	crates := make([]workspace.Crate, 0, len(g.Crates))
	for _, crate := range g.Crates {
		if crate.ReadmeIsWorkspace {
			crates = append(crates, crate)
		}
	}
	if len(crates) == 0 {
		return nil, nil
	}
	sort.Slice(crates, func(i, j int) bool { return crates[i].Name < crates[j].Name })

	source := filepath.Join(rootAbs, "README.md")
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: "+messages.StagingReadmeRequiredFmt, ErrPreparation, crates[0].Name, source)
	}

	var copies []string
	for _, crate := range crates {
		rel, err := filepath.Rel(rootAbs, crate.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("%w: "+messages.StagingCrateOutsideFmt, ErrPreparation, crate.Name, rootAbs)
		}
		dest := filepath.Join(stagingRoot, rel, "README.md")
		if err := copyFile(source, dest); err != nil {
			return nil, fmt.Errorf("%w: "+messages.StagingCopyFmt, ErrPreparation, err)
		}
		copies = append(copies, dest)
	}
	return copies, nil
}

// Cleanup removes the staged clone under buildDir.
func Cleanup(buildDir string) error {
	return os.RemoveAll(filepath.Join(buildDir, stagingDirName))
}

// isWithin reports whether child is root or lies under it.
func isWithin(root, child string) bool {
	rel, err := filepath.Rel(root, child)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// copyTree copies src into dst, skipping build output and VCS state.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			name := entry.Name()
			if rel != "." && (name == ".git" || name == "target") {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		return copyFile(path, filepath.Join(dst, rel))
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
