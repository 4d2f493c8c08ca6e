package rewrite

import (
	"strings"

	toml "github.com/pelletier/go-toml"
)

// DocResult holds a rewritten documentation file.
type DocResult struct {
	Text    string
	Changed bool
	// Total counts the ```toml fences examined.
	Total int
	// Updated counts the fences whose content changed.
	Updated int
	// Skipped counts fences whose body failed to parse as TOML.
	Skipped int
}

// Documentation rewrites crate version requirements inside ```toml
// code fences of a markdown document. Fences with any other language
// tag and all prose are left byte for byte intact. Within a fence,
// dependency tables are rewritten like manifests, and bare top-level
// `crate = "version"` keys are treated as dependency entries since
// snippets often elide the [dependencies] header. Fences that do not
// parse as TOML are skipped rather than failing the whole document.
func Documentation(text string, versions map[string]string) DocResult {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	copy(out, lines)

	result := DocResult{}
	i := 0
	for i < len(lines) {
		indent, lang, isFence := parseFenceOpen(lines[i])
		if !isFence {
			i++
			continue
		}
		end := findFenceClose(lines, i+1)
		if end < 0 {
			break
		}
		if lang == "toml" {
			result.Total++
			rewriteFence(lines[i+1:end], out[i+1:end], indent, versions, &result)
		}
		i = end + 1
	}

	if result.Changed {
		result.Text = strings.Join(out, "\n")
	} else {
		result.Text = text
	}
	return result
}

// parseFenceOpen recognizes a code fence opening line and returns its
// indentation and language tag.
func parseFenceOpen(line string) (indent, lang string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "```") {
		return "", "", false
	}
	indent = line[:len(line)-len(trimmed)]
	lang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	return indent, lang, true
}

// findFenceClose returns the index of the closing fence line at or
// after start, or -1 when the fence never closes.
func findFenceClose(lines []string, start int) int {
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "```" {
			return i
		}
	}
	return -1
}

// rewriteFence rewrites one ```toml fence body in place. body and out
// alias the same line range of the source and output documents.
func rewriteFence(body, out []string, indent string, versions map[string]string, result *DocResult) {
	dedented := make([]string, len(body))
	hadIndent := make([]bool, len(body))
	for i, line := range body {
		if indent != "" && strings.HasPrefix(line, indent) {
			dedented[i] = line[len(indent):]
			hadIndent[i] = true
		} else {
			dedented[i] = line
		}
	}

	snippet := strings.Join(dedented, "\n")
	if _, err := toml.LoadBytes([]byte(snippet)); err != nil {
		result.Skipped++
		return
	}

	rewritten, changed := rewriteLines(dedented, "", versions, true)
	if !changed {
		return
	}
	for i, line := range rewritten {
		if hadIndent[i] {
			out[i] = indent + line
		} else {
			out[i] = line
		}
	}
	result.Updated++
	result.Changed = true
}
