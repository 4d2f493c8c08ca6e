package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "stevedore"
	// RootShort is the short description for the root command.
	RootShort = "Release tooling for cargo workspaces"
	RootLong  = "Stevedore discovers a cargo workspace's crate graph, propagates version bumps\nacross manifests and documentation, and publishes crates in dependency order."

	RootWorkspaceRootFlag = "Path to the cargo workspace root (env STEVEDORE_WORKSPACE_ROOT)"

	// BumpUse is the bump command usage line.
	BumpUse   = "bump <version>"
	BumpShort = "Propagate a new version across the workspace"

	BumpFlagDryRun        = "Show the manifest and documentation changes without writing them"
	BumpVersionRequired   = "bump requires a version argument"
	BumpVersionInvalidFmt = "version %q is not a valid semantic version: %v"

	// PublishUse is the publish command usage line.
	PublishUse   = "publish"
	PublishShort = "Publish workspace crates in dependency order"

	PublishFlagDryRun     = "Plan and stage the release without publishing to the registry"
	PublishFlagAllowDirty = "Skip the clean-working-tree preflight check"
	PublishFlagBuildDir   = "Directory used to stage the workspace copy (default: a temporary directory)"
	PublishFlagCleanup    = "Remove the staging directory when the command exits"
	PublishFlagYes        = "Publish without asking for confirmation"

	PublishConfirmFmt     = "Publish %d crate(s) to the registry? [y/N]: "
	PublishAborted        = "publish aborted"
	PublishNeedsTerminal  = "live publish requires an interactive terminal; re-run with --yes to skip confirmation"
	PublishDryRunComplete = "Dry run complete; nothing was published."

	// PlanUse is the plan command usage line.
	PlanUse   = "plan"
	PlanShort = "Print the publish plan without side effects"
)
