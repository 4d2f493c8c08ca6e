package rewrite

import "strings"

// keyValueLine is the parsed shape of a `key = value` line. Offsets
// index into the original line so edits can splice text in place.
type keyValueLine struct {
	key string
	// valueStart is the offset of the first value byte after '='.
	valueStart int
	// valueEnd is the offset just past the value, before any comment.
	valueEnd int
}

// parseKeyValue interprets a content line (comment already stripped) as
// a key/value pair. Dotted keys are returned joined with dots, with
// quoting removed.
func parseKeyValue(content string) (keyValueLine, bool) {
	eq := -1
	i := 0
	for i < len(content) {
		switch content[i] {
		case '=':
			eq = i
		case '"', '\'':
			end := strings.IndexByte(content[i+1:], content[i])
			if end < 0 {
				return keyValueLine{}, false
			}
			i += end + 1
		}
		if eq >= 0 {
			break
		}
		i++
	}
	if eq <= 0 {
		return keyValueLine{}, false
	}

	segments := splitTableKey(strings.TrimSpace(content[:eq]))
	if segments == nil {
		return keyValueLine{}, false
	}

	valueStart := eq + 1
	for valueStart < len(content) && (content[valueStart] == ' ' || content[valueStart] == '\t') {
		valueStart++
	}
	valueEnd := len(content)
	for valueEnd > valueStart {
		c := content[valueEnd-1]
		if c != ' ' && c != '\t' && c != '\r' {
			break
		}
		valueEnd--
	}

	return keyValueLine{
		key:        strings.Join(segments, "."),
		valueStart: valueStart,
		valueEnd:   valueEnd,
	}, true
}

// rewriteStringValue replaces the content of the first string literal
// in value, preserving the quote character and any requirement
// operator prefix such as ^, ~, or =. It returns the value unchanged
// when no string literal is present.
func rewriteStringValue(value, newVersion string) (string, bool) {
	open := strings.IndexAny(value, `"'`)
	if open < 0 {
		return value, false
	}
	quote := value[open]
	closing := strings.IndexByte(value[open+1:], quote)
	if closing < 0 {
		return value, false
	}
	closing += open + 1

	old := value[open+1 : closing]
	prefix := requirementPrefix(old)
	replacement := prefix + newVersion
	if old == replacement {
		return value, false
	}
	return value[:open+1] + replacement + value[closing:], true
}

// requirementPrefix extracts the operator characters preceding the
// first digit of a version requirement, so "^1.2" keeps its caret and
// "=1.2" its equals sign.
func requirementPrefix(requirement string) string {
	for i := 0; i < len(requirement); i++ {
		c := requirement[i]
		if c >= '0' && c <= '9' {
			return requirement[:i]
		}
		if !strings.ContainsRune("^~=<> ", rune(c)) {
			return ""
		}
	}
	return ""
}

// inlineTable describes the interesting keys of an inline dependency
// table such as { version = "1.0", package = "other" }.
type inlineTable struct {
	// versionStart/versionEnd bound the version value within the line.
	versionStart int
	versionEnd   int
	hasVersion   bool
	// packageName is the rename target when a package key is present.
	packageName string
	// workspaceTrue is set for { workspace = true } style entries.
	workspaceTrue bool
}

// parseInlineTable scans an inline table value delimited by braces.
// start and end are offsets into line of the value region.
func parseInlineTable(line string, start, end int) (inlineTable, bool) {
	region := line[start:end]
	if !strings.HasPrefix(strings.TrimSpace(region), "{") {
		return inlineTable{}, false
	}

	var result inlineTable
	// Split the table body into top-level key = value items.
	body := region[strings.IndexByte(region, '{')+1:]
	bodyStart := start + strings.IndexByte(region, '{') + 1
	if closing := strings.LastIndexByte(body, '}'); closing >= 0 {
		body = body[:closing]
	}

	itemStart := 0
	depth := 0
	i := 0
	flush := func(endIdx int) {
		parseInlineItem(bodyStart+itemStart, body[itemStart:endIdx], &result)
		itemStart = endIdx + 1
	}
	for i < len(body) {
		switch body[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case '"', '\'':
			next := strings.IndexByte(body[i+1:], body[i])
			if next < 0 {
				return inlineTable{}, false
			}
			i += next + 1
		case ',':
			if depth == 0 {
				flush(i)
			}
		}
		i++
	}
	flush(len(body))
	return result, true
}

func parseInlineItem(offset int, item string, result *inlineTable) {
	kv, ok := parseKeyValue(item)
	if !ok {
		return
	}
	value := item[kv.valueStart:kv.valueEnd]
	switch kv.key {
	case "version":
		result.hasVersion = true
		result.versionStart = offset + kv.valueStart
		result.versionEnd = offset + kv.valueEnd
	case "package":
		result.packageName = strings.Trim(value, `"'`)
	case "workspace":
		result.workspaceTrue = strings.TrimSpace(value) == "true"
	}
}
