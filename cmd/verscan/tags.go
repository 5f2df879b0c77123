package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/verscan/internal/client"
	"github.com/nao1215/verscan/internal/config"
	"github.com/nao1215/verscan/internal/release"
)

// tagList is the JSON shape of the tags command output.
type tagList struct {
	Repository string   `json:"repository"`
	Count      int      `json:"count"`
	Candidates []string `json:"candidates"`
}

// NewTagsCmd creates the tags command.
func NewTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the candidate versions a repository publishes",
		Long: `List the candidate versions a repository publishes, newest first.

This runs only the enumeration phase: the release index is paged
through, tag names are normalized to bare versions, and duplicates are
dropped. No target is contacted. Useful for checking what a scan would
probe before pointing it at a deployment.`,
		Args: cobra.NoArgs,
		RunE: runTagsCmd,
	}

	cmd.Flags().StringP("repo", "r", config.DefaultRepository, "repository whose releases to list (owner/name)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "HTTP timeout per request")
	cmd.Flags().IntP("per-page", "p", config.DefaultPerPage, "release index page size")
	cmd.Flags().BoolP("json", "j", false, "write the list as JSON")

	return cmd
}

// runTagsCmd is the entry point for the tags command.
func runTagsCmd(cmd *cobra.Command, _ []string) error {
	repo, err := cmd.Flags().GetString("repo")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	perPage, err := cmd.Flags().GetInt("per-page")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))

	// Token and index base come from the environment-backed defaults.
	cfg := config.NewConfig()

	opts := []release.EnumeratorOption{
		release.WithUserAgent(cfg.UserAgent),
		release.WithPerPage(perPage),
		release.WithLogger(logger),
	}
	if cfg.Token != "" {
		opts = append(opts, release.WithToken(cfg.Token))
	}
	enumerator := release.NewEnumerator(client.NewIndexClient(timeout), cfg.IndexBase, repo, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	candidates, err := enumerator.Enumerate(ctx)
	if err != nil {
		return fmt.Errorf("enumerate release tags: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(tagList{
			Repository: repo,
			Count:      len(candidates),
			Candidates: candidates,
		})
	}

	fmt.Fprintf(out, "Candidate versions for %s (%d):\n\n", repo, len(candidates))
	for i, candidate := range candidates {
		if i == 0 {
			fmt.Fprintf(out, "  %s (latest)\n", candidate)
			continue
		}
		fmt.Fprintf(out, "  %s\n", candidate)
	}
	return nil
}
