package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crossforge/internal/config"
	"crossforge/internal/workspace"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List configured target triplets",
	Long:  "List the configured target triplets and whether their archive has been built.",
	Args:  cobra.NoArgs,
	RunE:  runTargets,
}

func runTargets(cmd *cobra.Command, _ []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	cfg, manifestPath, err := config.Load(".")
	if err != nil {
		return err
	}
	_, distRoot, err := resolveRoots(cfg, manifestPath)
	if err != nil {
		return err
	}

	paths := workspace.New("", cfg.GCCVersion)
	built := color.New(color.FgGreen)
	missing := color.New(color.FgHiBlack)
	for _, target := range cfg.Targets {
		archivePath := paths.ArchivePath(distRoot, target)
		if _, err := os.Stat(archivePath); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", target, built.Sprint("built"))
		} else if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", target, missing.Sprint("-"))
		} else {
			return err
		}
	}
	return nil
}
