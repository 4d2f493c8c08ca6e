package plan

import (
	"fmt"

	"github.com/conn-castle/stevedore/internal/messages"
)

// Summary renders the plan as the lines shown to the user.
func (p Plan) Summary() []string {
	lines := []string{
		fmt.Sprintf(messages.PlanHeaderFmt, p.WorkspaceRoot),
		fmt.Sprintf(messages.PlanStripStrategyFmt, p.StripStrategy),
	}

	if len(p.Order) == 0 {
		lines = append(lines, messages.PlanPublishNone)
	} else {
		lines = append(lines, messages.PlanPublishHeader)
		for _, release := range p.Order {
			lines = append(lines, fmt.Sprintf(messages.PlanCrateFmt, release.Name, release.Version))
		}
	}

	if len(p.ManifestSkipped) > 0 {
		lines = append(lines, messages.PlanManifestSkipHeader)
		for _, name := range p.ManifestSkipped {
			lines = append(lines, fmt.Sprintf(messages.PlanItemFmt, name))
		}
	}
	if len(p.ConfigSkipped) > 0 {
		lines = append(lines, messages.PlanConfigSkipHeader)
		for _, name := range p.ConfigSkipped {
			lines = append(lines, fmt.Sprintf(messages.PlanItemFmt, name))
		}
	}
	if len(p.UnmatchedExclusions) > 0 {
		lines = append(lines, messages.PlanUnmatchedHeader)
		for _, name := range p.UnmatchedExclusions {
			lines = append(lines, fmt.Sprintf(messages.PlanItemFmt, name))
		}
	}
	return lines
}
