package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/stevedore/internal/config"
	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/plan"
	"github.com/conn-castle/stevedore/internal/workspace"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.PlanUse,
		Short: messages.PlanShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return err
			}
			g, cfg, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			p, err := computePlan(g, cfg, dryRun)
			if err != nil {
				return err
			}
			printPlan(cmd, p)
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, messages.PublishFlagDryRun)
	return cmd
}

func computePlan(g workspace.Graph, cfg *config.Config, dryRun bool) (plan.Plan, error) {
	strip, err := cfg.Publish.StripSetting()
	if err != nil {
		return plan.Plan{}, err
	}
	return plan.Compute(g, plan.Options{
		Exclude:       cfg.Publish.Exclude,
		ExplicitOrder: cfg.Publish.Order,
		StripPatches:  strip,
		DryRun:        dryRun,
	})
}

// printPlan renders the plan summary, bolding section headers.
func printPlan(cmd *cobra.Command, p plan.Plan) {
	bold := color.New(color.Bold)
	out := cmd.OutOrStdout()
	for _, line := range p.Summary() {
		if strings.HasPrefix(line, "- ") {
			fmt.Fprintln(out, line)
		} else {
			bold.Fprintln(out, line)
		}
	}
}
