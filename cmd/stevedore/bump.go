package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/stevedore/internal/bump"
	"github.com/conn-castle/stevedore/internal/messages"
)

func newBumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.BumpUse,
		Short: messages.BumpShort,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New(messages.BumpVersionRequired)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return err
			}
			g, cfg, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}

			version := args[0]
			result, err := bump.Run(g, cfg, version, bump.Options{DryRun: dryRun})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun && len(result.Changes) > 0 {
				fmt.Fprintln(out, messages.BumpDryRunHeader)
				for _, change := range result.Changes {
					fmt.Fprint(out, change.Diff)
				}
			}
			if result.ManifestsChanged > 0 {
				fmt.Fprintf(out, messages.BumpUpdatedFmt+"\n", version, result.ManifestsChanged)
			} else {
				fmt.Fprintf(out, messages.BumpNoChangesFmt+"\n", version)
			}
			if result.DocsTotal > 0 {
				fmt.Fprintf(out, messages.BumpSnippetsFmt+"\n", result.DocsUpdated, result.DocsTotal)
			}
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, messages.BumpFlagDryRun)
	return cmd
}
