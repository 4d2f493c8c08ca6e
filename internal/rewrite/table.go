package rewrite

import "strings"

// tableKind classifies a table header for rewriting purposes.
type tableKind int

const (
	tableOther tableKind = iota
	// tablePackage is [package] or [workspace.package].
	tablePackage
	// tableDeps is a dependency container such as [dependencies],
	// [dev-dependencies], [workspace.dependencies], or a
	// [target.<cfg>.dependencies] variant.
	tableDeps
	// tableDepEntry is a single-dependency sub-table such as
	// [dependencies.serde].
	tableDepEntry
)

// tableInfo describes the table a line belongs to.
type tableInfo struct {
	kind tableKind
	// depKey is the dependency manifest key for tableDepEntry.
	depKey string
	// parent is the dotted path of the container table for
	// tableDepEntry, used to key rename lookups.
	parent string
}

// parseTableHeader interprets a content line as a table header. The
// line must already have its comment stripped.
func parseTableHeader(content string) (tableInfo, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return tableInfo{}, false
	}
	inner := strings.TrimPrefix(trimmed, "[")
	inner = strings.TrimSuffix(inner, "]")
	// Array-of-tables headers use double brackets.
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")

	segments := splitTableKey(inner)
	if segments == nil {
		return tableInfo{}, false
	}
	info := tableInfo{kind: classifyTable(segments)}
	if info.kind == tableDepEntry {
		info.depKey = segments[len(segments)-1]
		info.parent = strings.Join(segments[:len(segments)-1], ".")
	}
	return info, true
}

// splitTableKey splits a dotted table key into segments, honoring
// quoted segments such as target.'cfg(unix)'.dependencies. It returns
// nil for malformed keys.
func splitTableKey(key string) []string {
	var segments []string
	var current strings.Builder
	i := 0
	for i < len(key) {
		switch c := key[i]; c {
		case '.':
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
			i++
		case '"', '\'':
			end := strings.IndexByte(key[i+1:], c)
			if end < 0 {
				return nil
			}
			current.WriteString(key[i+1 : i+1+end])
			i += end + 2
		default:
			current.WriteByte(c)
			i++
		}
	}
	segments = append(segments, strings.TrimSpace(current.String()))
	for _, s := range segments {
		if s == "" {
			return nil
		}
	}
	return segments
}

func isDepsSegment(s string) bool {
	switch s {
	case "dependencies", "dev-dependencies", "build-dependencies":
		return true
	}
	return false
}

func classifyTable(segments []string) tableKind {
	n := len(segments)
	switch {
	case n == 1 && segments[0] == "package":
		return tablePackage
	case n == 2 && segments[0] == "workspace" && segments[1] == "package":
		return tablePackage
	case n == 1 && isDepsSegment(segments[0]):
		return tableDeps
	case n == 2 && segments[0] == "workspace" && segments[1] == "dependencies":
		return tableDeps
	case n == 3 && segments[0] == "target" && isDepsSegment(segments[2]):
		return tableDeps
	case n == 2 && isDepsSegment(segments[0]):
		return tableDepEntry
	case n == 3 && segments[0] == "workspace" && segments[1] == "dependencies":
		return tableDepEntry
	case n == 4 && segments[0] == "target" && isDepsSegment(segments[2]):
		return tableDepEntry
	}
	return tableOther
}
