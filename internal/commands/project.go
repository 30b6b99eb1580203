package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bagelcount/bagelcount/internal/budgetfile"
	"github.com/bagelcount/bagelcount/internal/config"
	"github.com/bagelcount/bagelcount/internal/facade"
	"github.com/bagelcount/bagelcount/internal/output"
)

// project is a loaded bagel directory with a seeded facade.
type project struct {
	dir        string
	cfg        *config.Config
	budgetPath string
	set        *budgetfile.Set
	facade     *facade.Facade
	log        *slog.Logger
	out        *output.Printer
}

func openProject(cmd *cobra.Command, opts *globalOptions) (*project, error) {
	cfgPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	dir := filepath.Dir(cfgPath)
	p := &project{
		dir:        dir,
		cfg:        cfg,
		budgetPath: cfg.BudgetPath(dir),
		log:        logger,
		out:        output.New(cmd.OutOrStdout()),
	}

	p.set, err = budgetfile.Load(p.budgetPath, nil)
	if err != nil {
		return nil, err
	}
	for _, s := range p.set.Skipped {
		logger.Warn("skipped budget entry", "file", p.budgetPath, "index", s.Index, "line", s.Line, "reason", s.Reason)
	}
	for _, b := range p.set.Superseded {
		logger.Debug("superseded budget record", "id", b.ID, "account", b.Account.String())
	}

	p.facade = facade.New(facade.WithLogger(logger))
	if _, err := p.facade.InitializeBudgets(p.set.Budgets, cfg.ConstraintConfig()); err != nil {
		return nil, fmt.Errorf("seeding budgets from %s: %w", p.budgetPath, err)
	}
	return p, nil
}
