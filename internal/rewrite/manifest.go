package rewrite

import (
	"errors"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml"

	"github.com/conn-castle/stevedore/internal/messages"
)

// ErrParse reports that a rewrite target is not valid TOML.
var ErrParse = errors.New(messages.RewriteParseFailed)

// Result holds a rewritten manifest.
type Result struct {
	Text    string
	Changed bool
}

// Manifest rewrites version numbers in a Cargo.toml document.
//
// When newVersion is non-empty the version key of [package] and
// [workspace.package] is set to it. versions maps crate names to their
// new requirement versions; dependency entries in [dependencies],
// [dev-dependencies], [build-dependencies], [workspace.dependencies],
// and [target.<cfg>.*] variants that resolve to a mapped crate have
// their version requirement replaced, keeping the original operator
// prefix and quote style. Entries inheriting from the workspace via
// `workspace = true` are left alone.
func Manifest(text, newVersion string, versions map[string]string) (Result, error) {
	if _, err := toml.LoadBytes([]byte(text)); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	lines := strings.Split(text, "\n")
	out, changed := rewriteLines(lines, newVersion, versions, false)
	if !changed {
		return Result{Text: text}, nil
	}
	return Result{Text: strings.Join(out, "\n"), Changed: true}, nil
}

// renameKey builds the rename-map key for a dependency sub-table.
func renameKey(parent, depKey string) string {
	return parent + "\x00" + depKey
}

// collectRenames finds `package = "..."` declarations inside dependency
// sub-tables so rewrites can resolve renamed dependencies to their
// real crate names.
func collectRenames(lines []string) map[string]string {
	renames := make(map[string]string)
	state := stateNone
	var table tableInfo

	for _, line := range lines {
		entryState := state
		content, next := stripComment(line, state)
		state = next
		if entryState != stateNone {
			continue
		}
		if header, ok := parseTableHeader(content); ok {
			table = header
			continue
		}
		if table.kind != tableDepEntry {
			continue
		}
		kv, ok := parseKeyValue(content)
		if !ok || kv.key != "package" {
			continue
		}
		value := strings.Trim(strings.TrimSpace(content[kv.valueStart:kv.valueEnd]), `"'`)
		renames[renameKey(table.parent, table.depKey)] = value
	}
	return renames
}

func rewriteLines(lines []string, newVersion string, versions map[string]string, rootDeps bool) ([]string, bool) {
	renames := collectRenames(lines)
	out := make([]string, len(lines))
	copy(out, lines)

	state := stateNone
	table := tableInfo{kind: tableOther}
	if rootDeps {
		table = tableInfo{kind: tableDeps}
	}
	changed := false

	for i, line := range lines {
		entryState := state
		content, next := stripComment(line, state)
		state = next
		if entryState != stateNone {
			continue
		}
		if header, ok := parseTableHeader(content); ok {
			table = header
			continue
		}
		kv, ok := parseKeyValue(content)
		if !ok {
			continue
		}

		switch table.kind {
		case tablePackage:
			if newVersion == "" || kv.key != "version" {
				continue
			}
			if rewritten, ok := spliceStringValue(line, kv, newVersion); ok {
				out[i] = rewritten
				changed = true
			}
		case tableDeps:
			if rewritten, ok := rewriteDepLine(line, kv, versions, renames, table); ok {
				out[i] = rewritten
				changed = true
			}
		case tableDepEntry:
			if kv.key != "version" {
				continue
			}
			target := table.depKey
			if renamed, ok := renames[renameKey(table.parent, table.depKey)]; ok {
				target = renamed
			}
			version, ok := versions[target]
			if !ok {
				continue
			}
			if rewritten, ok := spliceStringValue(line, kv, version); ok {
				out[i] = rewritten
				changed = true
			}
		}
	}
	return out, changed
}

// rewriteDepLine handles a single `name = requirement` entry inside a
// dependency container table.
func rewriteDepLine(line string, kv keyValueLine, versions map[string]string, renames map[string]string, table tableInfo) (string, bool) {
	if inline, ok := parseInlineTable(line, kv.valueStart, kv.valueEnd); ok {
		target := kv.key
		if inline.packageName != "" {
			target = inline.packageName
		}
		version, mapped := versions[target]
		if !mapped || inline.workspaceTrue || !inline.hasVersion {
			return "", false
		}
		value := line[inline.versionStart:inline.versionEnd]
		rewritten, changed := rewriteStringValue(value, version)
		if !changed {
			return "", false
		}
		return line[:inline.versionStart] + rewritten + line[inline.versionEnd:], true
	}

	version, mapped := versions[kv.key]
	if !mapped {
		return "", false
	}
	return spliceStringValue(line, kv, version)
}

// spliceStringValue rewrites the string literal in a key/value line and
// reports whether the line changed.
func spliceStringValue(line string, kv keyValueLine, newVersion string) (string, bool) {
	value := line[kv.valueStart:kv.valueEnd]
	rewritten, changed := rewriteStringValue(value, newVersion)
	if !changed {
		return "", false
	}
	return line[:kv.valueStart] + rewritten + line[kv.valueEnd:], true
}
