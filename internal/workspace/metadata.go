package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	toml "github.com/pelletier/go-toml"

	"github.com/conn-castle/stevedore/internal/messages"
)

// ErrMetadata wraps failures to obtain or decode cargo metadata.
var ErrMetadata = errors.New(messages.CargoMetadataFailed)

// Metadata is the subset of `cargo metadata --format-version 1` output
// the graph builder needs.
type Metadata struct {
	WorkspaceRoot    string    `json:"workspace_root"`
	WorkspaceMembers []string  `json:"workspace_members"`
	Packages         []Package `json:"packages"`
}

// Package is one entry of the cargo metadata package list.
type Package struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	ManifestPath string              `json:"manifest_path"`
	Publish      json.RawMessage     `json:"publish"`
	Dependencies []PackageDependency `json:"dependencies"`
}

// PackageDependency is one declared dependency of a package.
type PackageDependency struct {
	Name   string `json:"name"`
	Rename string `json:"rename"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
}

func (p Package) validate() error {
	for field, value := range map[string]string{
		"id":            p.ID,
		"name":          p.Name,
		"version":       p.Version,
		"manifest_path": p.ManifestPath,
	} {
		if value == "" {
			return fmt.Errorf(messages.WorkspaceMissingFieldFmt, p.Name, field)
		}
	}
	if _, err := p.publishableChecked(); err != nil {
		return err
	}
	return nil
}

// publishable coerces the metadata publish field: absent/null means the
// crate may be published, false or an empty registry list means it may
// not, and a non-empty registry list means it may.
func (p Package) publishable() bool {
	ok, _ := p.publishableChecked()
	return ok
}

func (p Package) publishableChecked() (bool, error) {
	raw := bytes.TrimSpace(p.Publish)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true, nil
	}
	if bytes.Equal(raw, []byte("false")) {
		return false, nil
	}
	var registries []string
	if err := json.Unmarshal(raw, &registries); err == nil {
		return len(registries) > 0, nil
	}
	return false, fmt.Errorf(messages.WorkspaceBadPublishValueFmt, p.Name)
}

func parentDir(manifestPath string) string {
	return filepath.Dir(manifestPath)
}

// manifestReadmeIsWorkspace reports whether a manifest declares
// `readme.workspace = true` under [package].
func manifestReadmeIsWorkspace(raw []byte) (bool, error) {
	tree, err := toml.LoadBytes(raw)
	if err != nil {
		return false, err
	}
	value := tree.Get("package.readme")
	sub, ok := value.(*toml.Tree)
	if !ok {
		return false, nil
	}
	flag, ok := sub.Get("workspace").(bool)
	return ok && flag, nil
}

// Runner executes an external command and reports its output and exit
// status. A non-zero exit is not an error at this layer.
type Runner interface {
	Run(name string, args []string, dir string) (stdout, stderr string, exitCode int, err error)
}

// LoadMetadata invokes cargo metadata for the workspace rooted at dir
// and decodes the result.
func LoadMetadata(runner Runner, dir string) (Metadata, error) {
	stdout, stderr, code, err := runner.Run("cargo", []string{"metadata", "--format-version", "1", "--no-deps"}, dir)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %v", ErrMetadata, messages.CargoExecutableMissing, err)
	}
	if code != 0 {
		return Metadata{}, fmt.Errorf("%w: "+messages.CargoMetadataExitFmt, ErrMetadata, code, stderr)
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(stdout), &meta); err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %v", ErrMetadata, messages.CargoMetadataInvalidOut, err)
	}
	return meta, nil
}
