package messages

// Plan messages cover publish ordering and plan summaries.
const (
	// PlanCycleFailed is the sentinel text for dependency cycle errors.
	PlanCycleFailed = "dependency cycle detected"
	// PlanOrderInvalid is the sentinel text for publish.order validation errors.
	PlanOrderInvalid = "invalid publish order"

	PlanCycleCrateFmt      = "dependency cycle involving crate %q"
	PlanOrderDuplicatesFmt = "Duplicate publish.order entries: %s"
	PlanOrderOmitsFmt      = "publish.order omits crates: %s"
	PlanOrderUnknownFmt    = "publish.order references crates outside the publishable set: %s"

	PlanHeaderFmt          = "Publish plan for %s"
	PlanStripStrategyFmt   = "Strip patch strategy: %s"
	PlanPublishHeader      = "Crates to publish:"
	PlanPublishNone        = "Crates to publish: none"
	PlanCrateFmt           = "- %s @ %s"
	PlanManifestSkipHeader = "Skipped (publish = false):"
	PlanConfigSkipHeader   = "Skipped via publish.exclude:"
	PlanUnmatchedHeader    = "Configured exclusions not found in workspace:"
	PlanItemFmt            = "- %s"
)
