package publish

import (
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml"

	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/plan"
)

// StripResult holds a manifest with [patch] sections removed.
type StripResult struct {
	Text    string
	Changed bool
}

// StripPatches removes [patch] overrides from a root manifest before
// publishing. StripAll drops every [patch.<registry>] section.
// StripPerCrate drops only entries naming workspace crates, removing a
// section entirely once it has no entries left. StripDisabled and
// StripUnset leave the text alone.
func StripPatches(text string, strategy plan.StripSetting, crateNames []string) (StripResult, error) {
	if strategy == plan.StripDisabled || strategy == plan.StripUnset {
		return StripResult{Text: text}, nil
	}
	if _, err := toml.LoadBytes([]byte(text)); err != nil {
		return StripResult{}, fmt.Errorf(messages.RewriteManifestFmt, "manifest", err)
	}

	crates := make(map[string]bool, len(crateNames))
	for _, name := range crateNames {
		crates[name] = true
	}

	lines := strings.Split(text, "\n")
	keep := make([]bool, len(lines))
	for i := range keep {
		keep[i] = true
	}

	sections := patchSections(lines)
	for _, section := range sections {
		if strategy == plan.StripAll {
			markRemoved(keep, section.start, section.end)
			continue
		}
		stripWorkspaceEntries(keep, section, crates)
	}

	var out []string
	changed := false
	for i, line := range lines {
		if keep[i] {
			out = append(out, line)
		} else {
			changed = true
		}
	}
	if !changed {
		return StripResult{Text: text}, nil
	}
	return StripResult{Text: strings.Join(out, "\n"), Changed: true}, nil
}

// patchSection is a [patch.<registry>] region of the manifest,
// including any sub-tables such as [patch.crates-io.serde].
type patchSection struct {
	// start is the header line index; end is one past the last line.
	start, end int
	// entries are the individual crate overrides within the section.
	entries []patchEntry
}

type patchEntry struct {
	// name is the effective crate name, resolving inline renames.
	name string
	// start/end bound the entry's lines (a single kv line, or a
	// sub-table header plus its body).
	start, end int
}

func patchSections(lines []string) []patchSection {
	var sections []patchSection
	current := -1
	entryStart := -1
	entryName := ""

	flushEntry := func(end int) {
		if current < 0 || entryStart < 0 {
			return
		}
		section := &sections[len(sections)-1]
		section.entries = append(section.entries, patchEntry{name: entryName, start: entryStart, end: end})
		entryStart = -1
	}
	closeSection := func(end int) {
		if current < 0 {
			return
		}
		flushEntry(end)
		sections[len(sections)-1].end = end
		current = -1
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(stripLineComment(line))
		if strings.HasPrefix(trimmed, "[") {
			segments := headerSegments(trimmed)
			switch {
			case len(segments) >= 2 && segments[0] == "patch":
				if len(segments) == 2 {
					// New [patch.<registry>] section.
					closeSection(i)
					sections = append(sections, patchSection{start: i, end: len(lines)})
					current = i
				} else {
					// Sub-table entry like [patch.crates-io.serde],
					// with or without a preceding section header.
					if current < 0 {
						sections = append(sections, patchSection{start: i, end: len(lines)})
						current = i
					}
					flushEntry(i)
					entryStart = i
					entryName = segments[len(segments)-1]
				}
			default:
				closeSection(i)
			}
			continue
		}
		if current < 0 {
			continue
		}
		if entryStart >= 0 {
			// Inside a sub-table; a package rename overrides the key.
			if kv, ok := parsePatchKeyValue(trimmed); ok && kv.key == "package" {
				entryName = kv.value
			}
			continue
		}
		if kv, ok := parsePatchKeyValue(trimmed); ok {
			name := kv.key
			if renamed := inlinePackageName(trimmed); renamed != "" {
				name = renamed
			}
			section := &sections[len(sections)-1]
			section.entries = append(section.entries, patchEntry{name: name, start: i, end: i + 1})
		}
	}
	closeSection(len(lines))
	return sections
}

func stripWorkspaceEntries(keep []bool, section patchSection, crates map[string]bool) {
	remaining := 0
	for _, entry := range section.entries {
		if crates[entry.name] {
			markRemoved(keep, entry.start, entry.end)
		} else {
			remaining++
		}
	}
	if remaining > 0 {
		return
	}
	// Nothing left to patch; drop the whole section.
	markRemoved(keep, section.start, section.end)
}

func markRemoved(keep []bool, start, end int) {
	for i := start; i < end && i < len(keep); i++ {
		keep[i] = false
	}
}

// headerSegments parses a table header into dotted segments, or nil.
func headerSegments(trimmed string) []string {
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil
	}
	inner := strings.Trim(trimmed, "[]")
	var segments []string
	var current strings.Builder
	i := 0
	for i < len(inner) {
		switch c := inner[i]; c {
		case '.':
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
			i++
		case '"', '\'':
			end := strings.IndexByte(inner[i+1:], c)
			if end < 0 {
				return nil
			}
			current.WriteString(inner[i+1 : i+1+end])
			i += end + 2
		default:
			current.WriteByte(c)
			i++
		}
	}
	segments = append(segments, strings.TrimSpace(current.String()))
	return segments
}

type patchKV struct {
	key   string
	value string
}

func parsePatchKeyValue(trimmed string) (patchKV, bool) {
	eq := strings.IndexByte(trimmed, '=')
	if eq <= 0 {
		return patchKV{}, false
	}
	key := strings.Trim(strings.TrimSpace(trimmed[:eq]), `"'`)
	if key == "" || strings.ContainsAny(key, " \t") {
		return patchKV{}, false
	}
	value := strings.Trim(strings.TrimSpace(trimmed[eq+1:]), `"'`)
	return patchKV{key: key, value: value}, true
}

// inlinePackageName extracts a `package = "name"` rename from an inline
// table entry line.
func inlinePackageName(trimmed string) string {
	idx := strings.Index(trimmed, "package")
	if idx < 0 {
		return ""
	}
	rest := trimmed[idx+len("package"):]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, "=") {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t")
	if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
		return ""
	}
	quote := rest[0]
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return ""
	}
	return rest[1 : 1+end]
}

// stripLineComment drops a trailing comment. Patch sections rarely
// carry strings containing '#', and the surrounding document has
// already been validated, so a simple scan suffices.
func stripLineComment(line string) string {
	inString := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString != 0:
			if c == inString {
				inString = 0
			}
		case c == '"' || c == '\'':
			inString = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}
