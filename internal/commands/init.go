package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bagelcount/bagelcount/internal/budgetfile"
	"github.com/bagelcount/bagelcount/internal/config"
	"github.com/bagelcount/bagelcount/internal/gitops"
	"github.com/bagelcount/bagelcount/internal/output"
)

// ErrAlreadyInitialized is returned when init finds an existing bagel.yaml.
var ErrAlreadyInitialized = errors.New("project already initialized")

func newInitCommand() *cobra.Command {
	var force, git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new budget project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, force, git)
			if err != nil {
				return err
			}
			msg := "Initialized budget project at " + absDir
			if hash != "" {
				msg += " (" + hash + ")"
			}
			output.New(cmd.OutOrStdout()).Success(msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing bagel.yaml")
	cmd.Flags().BoolVar(&git, "git", false, "initialize a git repository and commit the new files")

	return cmd
}

func runInit(dir string, force, git bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrAlreadyInitialized, cfgPath)
	}

	// Write bagel.yaml.
	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	// Write an empty budget file unless one is already there.
	budgetPath := cfg.BudgetPath(dir)
	if _, err := os.Stat(budgetPath); errors.Is(err, os.ErrNotExist) {
		if err := budgetfile.Save(budgetPath, nil); err != nil {
			return "", err
		}
	}

	// Write .gitignore.
	gitignore := "logs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	if !git {
		return "", nil
	}

	// Initialize git and create initial commit.
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return "", err
		}
	}
	hash, err := gitops.Commit(dir, "init: budget project", cfg.Git.Author(), config.FileName, cfg.BudgetFile, ".gitignore")
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
