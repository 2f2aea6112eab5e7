package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crossforge/internal/config"
	"crossforge/internal/doctor"
	"crossforge/internal/fetch"
	"crossforge/internal/observ"
	"crossforge/internal/pipeline"
	"crossforge/internal/runner"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [target...]",
	Short: "Build and package the target libraries",
	Long: `Build libstdc++, libgcc and libatomic for every configured target (or
the named subset) and emit one portable tarball per target into the dist
directory. Targets are processed sequentially; the first failure aborts
the run.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("keep-work", false, "preserve transient build directories (also "+config.KeepWorkEnv+")")
	buildCmd.Flags().Int("jobs", 0, "parallel make jobs within one target's build (default: CPU count)")
	buildCmd.Flags().Bool("print-commands", false, "echo each delegated command before running it")
	buildCmd.Flags().Bool("force", false, "rebuild even when prior stage results exist")
	buildCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	keepWork, err := cmd.Flags().GetBool("keep-work")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	printCommands, err := cmd.Flags().GetBool("print-commands")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := parseUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if err := applyColorMode(cmd); err != nil {
		return err
	}

	cfg, manifestPath, err := config.Load(".")
	if err != nil {
		return err
	}
	if keepWork {
		cfg.KeepWork = true
	}
	if cmd.Flags().Changed("jobs") {
		if jobs < 1 {
			return fmt.Errorf("--jobs must be positive, got %d", jobs)
		}
		cfg.Jobs = jobs
	}
	for _, t := range args {
		if !cfg.HasTarget(t) {
			return fmt.Errorf("unknown target %q (run 'crossforge targets' for the configured list)", t)
		}
	}

	// Refuse to start a multi-hour build on a host that cannot finish it.
	if err := doctor.FirstMissingRequired(doctor.RunChecks()); err != nil {
		return err
	}

	workRoot, distRoot, err := resolveRoots(cfg, manifestPath)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	req := pipeline.Request{
		Config:   cfg,
		WorkRoot: workRoot,
		DistRoot: distRoot,
		Targets:  args,
		Force:    force,
		Runner:   &runner.ExecRunner{PrintCommands: printCommands},
		Fetcher:  &fetch.HTTPFetcher{},
		Timer:    timer,
	}

	targets := args
	if len(targets) == 0 {
		targets = cfg.Targets
	}

	var res *pipeline.Result
	if uiModeValue.interactive() && !quiet {
		res, err = runPipelineWithUI(cmd.Context(), "crossforge "+cfg.GCCVersion, targets, req)
	} else {
		req.Sink = newConsoleSink(cmd.OutOrStdout(), quiet)
		res, err = pipeline.Run(cmd.Context(), req)
	}

	if showTimings {
		fmt.Fprint(cmd.OutOrStdout(), timer.Summary())
	}
	if err != nil {
		return err
	}

	if !quiet {
		bold := color.New(color.Bold)
		for _, target := range targets {
			if path, ok := res.Archives[target]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold.Sprint(target), path)
			}
		}
	}
	return nil
}

// resolveRoots anchors the work and dist directories at the manifest root
// when a crossforge.toml was found, at the working directory otherwise.
func resolveRoots(cfg config.Config, manifestPath string) (string, string, error) {
	base := ""
	if manifestPath != "" {
		base = filepath.Dir(manifestPath)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		base = cwd
	}
	work := cfg.WorkDir
	if !filepath.IsAbs(work) {
		work = filepath.Join(base, work)
	}
	dist := cfg.DistDir
	if !filepath.IsAbs(dist) {
		dist = filepath.Join(base, dist)
	}
	return work, dist, nil
}

// applyColorMode translates the persistent --color flag into the global
// color switch.
func applyColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		// fatih/color's own terminal detection decides.
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}
