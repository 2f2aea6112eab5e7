package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crossforge/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check host prerequisites",
	Long:  "Check that the host has everything crosstool-NG and the GNU build system need, and explain how to fix what is missing.",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed, color.Bold)

	results := doctor.RunChecks()
	for _, r := range results {
		switch {
		case r.OK:
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-14s %s\n", ok.Sprint(" ok"), r.Check.Name, r.Path)
		case r.Check.Required:
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-14s %s\n", bad.Sprint("BAD"), r.Check.Name, r.Check.Remediation)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-14s %s\n", warn.Sprint("  ?"), r.Check.Name, r.Check.Remediation)
		}
	}
	return doctor.FirstMissingRequired(results)
}
