package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/publish"
	"github.com/conn-castle/stevedore/internal/workspace"
)

// isTerminal is swapped out in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.PublishUse,
		Short: messages.PublishShort,
		RunE:  runPublish,
	}
	cmd.Flags().Bool("dry-run", false, messages.PublishFlagDryRun)
	cmd.Flags().Bool("allow-dirty", false, messages.PublishFlagAllowDirty)
	cmd.Flags().String("build-dir", "", messages.PublishFlagBuildDir)
	cmd.Flags().Bool("cleanup", false, messages.PublishFlagCleanup)
	cmd.Flags().Bool("yes", false, messages.PublishFlagYes)
	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	dryRun, _ := flags.GetBool("dry-run")
	allowDirty, _ := flags.GetBool("allow-dirty")
	buildDir, _ := flags.GetString("build-dir")
	cleanup, _ := flags.GetBool("cleanup")
	yes, _ := flags.GetBool("yes")

	g, cfg, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	p, err := computePlan(g, cfg, dryRun)
	if err != nil {
		return err
	}
	printPlan(cmd, p)

	out := cmd.OutOrStdout()
	if len(p.Order) == 0 {
		fmt.Fprintln(out, messages.PublishedNothing)
		return nil
	}

	if !dryRun && !yes {
		if err := confirmPublish(cmd, len(p.Order)); err != nil {
			return err
		}
	}

	if buildDir == "" {
		buildDir, err = os.MkdirTemp("", "stevedore-")
		if err != nil {
			return err
		}
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{ReportTimestamp: true, TimeFormat: "15:04:05"})
	result, err := publish.Run(logger, workspace.ExecRunner{}, g, p, publish.Options{
		DryRun:     dryRun,
		AllowDirty: allowDirty,
		BuildDir:   buildDir,
		Cleanup:    cleanup,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, messages.StagedWorkspaceFmt+"\n", result.StagingRoot)
	if len(result.ReadmeCopies) == 0 {
		fmt.Fprintln(out, messages.StagedReadmeNone)
	} else {
		fmt.Fprintln(out, messages.StagedReadmeHeader)
		for _, path := range result.ReadmeCopies {
			fmt.Fprintf(out, messages.StagedReadmeItemFmt+"\n", path)
		}
	}
	if dryRun {
		fmt.Fprintln(out, messages.PublishDryRunComplete)
	} else {
		fmt.Fprintf(out, messages.PublishedFmt+"\n", result.Published)
	}
	return nil
}

func confirmPublish(cmd *cobra.Command, count int) error {
	if !isTerminal() {
		return errors.New(messages.PublishNeedsTerminal)
	}
	fmt.Fprintf(cmd.OutOrStdout(), messages.PublishConfirmFmt, count)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return errors.New(messages.PublishAborted)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return errors.New(messages.PublishAborted)
}
