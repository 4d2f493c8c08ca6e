package messages

// Rewrite messages cover manifest and documentation rewriting.
const (
	// RewriteParseFailed is the sentinel text for unparsable rewrite targets.
	RewriteParseFailed = "manifest parse failed"

	RewriteManifestFmt = "cannot rewrite %s: %v"
)
