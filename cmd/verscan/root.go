package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/verscan/internal/config"
	"github.com/nao1215/verscan/internal/search"
)

// Exit codes. Scripts distinguish "the scan worked and found nothing"
// from "the scan could not run".
const (
	exitFailure = 1 // enumeration or probe infrastructure failed
	exitUsage   = 2 // no base URL given and none could be prompted for
	exitNoHits  = 3 // enumeration succeeded but no candidate matched
)

// NewRootCmd creates the root command for verscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verscan",
		Short: "Version fingerprinting tool for web deployments",
		Long: `verscan identifies the deployed version of a web application.

It fetches the release tags published by the application's upstream
repository, then probes the target for the version-stamped static asset
each tag would ship. A candidate whose asset exists on the target is
reported as the deployed version.

Exit codes:
  0  a version was confirmed on the target
  1  the scan could not run (enumeration or probing failed)
  2  no base URL was given and standard input is not a terminal
  3  the scan ran to completion but no candidate matched`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewTagsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a command error to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrNoTarget):
		return exitUsage
	case errors.Is(err, search.ErrNoHits):
		return exitNoHits
	default:
		return exitFailure
	}
}
