package main

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/conn-castle/stevedore/internal/config"
	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/workspace"
)

const workspaceRootEnv = "STEVEDORE_WORKSPACE_ROOT"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("workspace-root", "", messages.RootWorkspaceRootFlag)
	cmd.AddCommand(newBumpCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newPublishCmd())
	return cmd
}

// resolveWorkspaceRoot picks the workspace root from the flag, the
// environment, or the current directory, in that order.
func resolveWorkspaceRoot(cmd *cobra.Command) (string, error) {
	root, err := cmd.Root().PersistentFlags().GetString("workspace-root")
	if err != nil {
		return "", err
	}
	if root == "" {
		root = os.Getenv(workspaceRootEnv)
	}
	if root == "" {
		return os.Getwd()
	}
	expanded, err := homedir.Expand(root)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// loadWorkspace resolves the root, reads stevedore.toml, and builds the
// crate graph from cargo metadata. The metadata's workspace root is
// authoritative, so running from a subdirectory still works.
func loadWorkspace(cmd *cobra.Command) (workspace.Graph, *config.Config, error) {
	root, err := resolveWorkspaceRoot(cmd)
	if err != nil {
		return workspace.Graph{}, nil, err
	}
	meta, err := workspace.LoadMetadata(workspace.ExecRunner{}, root)
	if err != nil {
		return workspace.Graph{}, nil, err
	}
	g, err := workspace.BuildGraph(meta, os.ReadFile)
	if err != nil {
		return workspace.Graph{}, nil, err
	}
	cfg, err := config.Load(g.Root)
	if err != nil {
		return workspace.Graph{}, nil, err
	}
	return g, cfg, nil
}
