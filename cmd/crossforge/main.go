// Package main implements the crossforge CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"crossforge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "crossforge",
	Short: "Minimal static C++ runtime distributions, cross-built",
	Long: `crossforge drives crosstool-NG and the GNU toolchain build system to
produce minimal, statically-usable distributions of libstdc++, libgcc and
libatomic for a fixed set of target triplets, repackaged as portable
tarballs.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-stage timing information")

	// An interrupt cancels the running subprocess instead of killing the
	// orchestrator outright, so per-target cleanup still runs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
