package messages

// Publish messages cover preflight checks, staging, and the publish loop.
const (
	// PublishPreflightFailed is the sentinel text for preflight failures.
	PublishPreflightFailed = "publish preflight failed"
	// PublishPreparationFailed is the sentinel text for staging failures.
	PublishPreparationFailed = "publish preparation failed"
	// PublishCrateFailedSentinel is the sentinel text for publish loop failures.
	PublishCrateFailedSentinel = "publish failed"

	PreflightDirtyTree       = "workspace has uncommitted changes; commit them or re-run with --allow-dirty"
	PreflightNoRepoFmt       = "workspace is not inside a git repository: %s"
	PreflightGitStatusFmt    = "git status failed with exit code %d: %s"
	PreflightCargoFmt        = "cargo %s failed with exit code %d: %s"
	PreflightCargoMissingFmt = "failed to invoke %s: %v"

	StagingInsideWorkspace    = "build directory cannot reside within the workspace root"
	StagingReadmeRequiredFmt  = "workspace README.md is required by crate %q but was not found at %s"
	StagingCrateOutsideFmt    = "crate %q lives outside the workspace root %s"
	StagingCopyFmt            = "failed to stage workspace copy: %v"
	StagedWorkspaceFmt        = "Staged workspace at: %s"
	StagedReadmeHeader        = "Copied workspace README to:"
	StagedReadmeNone          = "Copied workspace README to: none required"
	StagedReadmeItemFmt       = "- %s"
	StagingCleanupFailedFmt   = "failed to clean up staging directory %s: %v"

	PublishCrateFmt          = "publishing %s %s"
	PublishCrateFailedFmt    = "cargo publish failed for crate %q with exit code %d: %s"
	PublishAlreadyPublished  = "already published; skipping"
	PublishedFmt             = "Published %d crate(s)."
	PublishedNothing         = "No crates to publish."
)
