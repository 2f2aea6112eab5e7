package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crossforge/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the transient work tree",
	Long:  "Remove the work directory holding downloads, bootstrap toolchains and build trees. Output archives are kept unless --dist is given.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("dist", false, "also remove the output archives")
}

func runClean(cmd *cobra.Command, _ []string) error {
	withDist, err := cmd.Flags().GetBool("dist")
	if err != nil {
		return err
	}
	cfg, manifestPath, err := config.Load(".")
	if err != nil {
		return err
	}
	workRoot, distRoot, err := resolveRoots(cfg, manifestPath)
	if err != nil {
		return err
	}

	doomed := []string{workRoot}
	if withDist {
		doomed = append(doomed, distRoot)
	}
	for _, dir := range doomed {
		info, err := os.Stat(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to stat %q: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%q is not a directory", dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %q: %w", dir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", dir)
	}
	return nil
}
