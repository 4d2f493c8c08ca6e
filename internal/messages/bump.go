package messages

// Bump messages cover version propagation results.
const (
	// BumpVersionRejected is the sentinel text for invalid version arguments.
	BumpVersionRejected = "invalid version"

	BumpUpdatedFmt   = "Updated version to %s in %d manifest(s)."
	BumpNoChangesFmt = "No manifest changes required; all versions already %s."
	BumpSnippetsFmt  = "Updated %d of %d documentation snippet(s)."
	BumpDocGlobFmt   = "invalid documentation glob %q: %v"
	BumpDryRunHeader = "Dry run; no files were written. Pending changes:"
)
