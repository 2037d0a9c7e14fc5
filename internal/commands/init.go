package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/accounts"
	"github.com/tallybooks/tally/internal/audit"
	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/gitops"
)

func newInitCommand(a *app) *cobra.Command {
	var name string
	var entityType string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new books directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.repo
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(cmd.Context(), absDir, name, entityType, a.actor, !noGit)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized books for %s at %s (%s)\n", name, absDir, hash)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized books for %s at %s\n", name, absDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&entityType, "entity-type", "small_business", "entity type (small_business or retail)")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(ctx context.Context, dir, name, entityType, actor string, withGit bool) (string, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return "", fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	for _, d := range []string{"accounts", "journal", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, entityType)
	if err := config.Save(cfgPath, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	chart := accounts.NewRegistry(accounts.DefaultChart(entityType))
	if err := chart.Save(dir); err != nil {
		return "", fmt.Errorf("writing chart of accounts: %w", err)
	}

	// .env carries database and cache credentials.
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".env\nexports/\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "journal", ".gitkeep"), []byte{}, 0o644); err != nil {
		return "", fmt.Errorf("writing .gitkeep: %w", err)
	}

	event := audit.NewEvent(actor, audit.ActionBooksInitialized, name, fmt.Sprintf("entity type %s, %d accounts", entityType, len(chart.All())))
	if err := audit.Append(dir, event); err != nil {
		return "", err
	}

	if !withGit {
		return "", nil
	}
	if err := gitops.Init(ctx, dir); err != nil {
		return "", err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(ctx, dir, "init: Initialize "+name, author)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
