package messages

// Workspace messages cover metadata loading and graph construction.
const (
	// WorkspaceBuildFailed is the sentinel text for graph construction failures.
	WorkspaceBuildFailed = "workspace graph build failed"

	WorkspaceMissingRoot        = "cargo metadata payload is missing workspace_root"
	WorkspaceMissingMemberFmt   = "workspace member %q is missing from the package list"
	WorkspaceMissingFieldFmt    = "package %q is missing required field %s"
	WorkspaceDuplicateCrateFmt  = "duplicate crate name %q in workspace"
	WorkspaceReadManifestFmt    = "failed to read manifest %s: %v"
	WorkspaceParseManifestFmt   = "failed to parse manifest %s: %v"
	WorkspaceBadPublishValueFmt = "publish setting for package %q must be false, a list, or null"
	WorkspaceBadDepKindFmt      = "unsupported dependency kind %q on package %q"

	// CargoMetadataFailed is the sentinel text for cargo metadata invocation failures.
	CargoMetadataFailed = "cargo metadata failed"

	CargoExecutableMissing  = "the 'cargo' executable could not be located"
	CargoMetadataExitFmt    = "cargo metadata exited with status %d: %s"
	CargoMetadataInvalidOut = "cargo metadata produced invalid JSON output"
)
