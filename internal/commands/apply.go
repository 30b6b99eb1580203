package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bagelcount/bagelcount/internal/budgetfile"
	"github.com/bagelcount/bagelcount/internal/facade"
	"github.com/bagelcount/bagelcount/internal/gitops"
	"github.com/bagelcount/bagelcount/internal/model"
	"github.com/bagelcount/bagelcount/internal/oplog"
)

// ErrOperationsFailed is returned by apply when at least one operation did not succeed.
var ErrOperationsFailed = errors.New("operations failed")

type applyOptions struct {
	write  bool
	commit bool
	log    bool
	now    func() time.Time
}

func newApplyCommand(opts *globalOptions) *cobra.Command {
	aopts := applyOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "apply <operations.yaml>",
		Short: "Replay add, update and remove operations against the budget set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if aopts.commit && !aopts.write {
				return errors.New("--commit requires --write")
			}
			ops, err := budgetfile.LoadOperations(args[0])
			if err != nil {
				return err
			}
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			return runApply(p, filepath.Base(args[0]), ops, aopts)
		},
	}

	cmd.Flags().BoolVar(&aopts.write, "write", false, "save the resulting budgets back to the budget file")
	cmd.Flags().BoolVar(&aopts.commit, "commit", false, "commit the written budget file to git")
	cmd.Flags().BoolVar(&aopts.log, "log", false, "append outcomes to logs/operation-log.csv")

	return cmd
}

func runApply(p *project, script string, ops []budgetfile.Operation, opts applyOptions) error {
	var entries []oplog.Entry
	failed := 0
	for i, op := range ops {
		p.out.Step(i+1, len(ops), string(op.Kind)+" "+op.ID)

		var res facade.OperationResult
		switch op.Kind {
		case budgetfile.OpAdd:
			b := op.Budget
			if opts.write && b.CreatedAt == nil {
				ts := opts.now().Unix()
				b.CreatedAt = &ts
			}
			res = p.facade.AddBudget(b)
			op.ID = res.BudgetID
		case budgetfile.OpUpdate:
			res = p.facade.UpdateBudget(op.ID, op.Patch)
		case budgetfile.OpRemove:
			res = p.facade.RemoveBudget(op.ID)
		}

		p.out.Result(string(op.Kind), op.ID, res)
		if !res.Success {
			failed++
		}
		entries = append(entries, entryOf(opts.now(), op, res))
	}

	if opts.log {
		if err := oplog.Append(p.dir, entries); err != nil {
			return err
		}
	}
	if opts.write {
		current := rawBudgets(p.facade.Budgets())
		history := budgetfile.Retain(current, p.set.Superseded)
		if err := budgetfile.Save(p.budgetPath, append(current, history...)); err != nil {
			return err
		}
		p.out.Success("wrote " + p.budgetPath)
	}
	if opts.commit {
		if err := commitBudgets(p, script, len(ops)-failed); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrOperationsFailed, failed, len(ops))
	}
	return nil
}

func commitBudgets(p *project, script string, applied int) error {
	rel, err := filepath.Rel(p.dir, p.budgetPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("budget file %s is outside %s", p.budgetPath, p.dir)
	}
	msg := fmt.Sprintf("apply: %d operation(s) from %s", applied, script)
	hash, err := gitops.Commit(p.dir, msg, p.cfg.Git.Author(), rel)
	if err != nil {
		return err
	}
	if hash == "" {
		p.out.Info("budget file unchanged, nothing to commit")
		return nil
	}
	p.out.Success("committed " + hash)
	return nil
}

func entryOf(ts time.Time, op budgetfile.Operation, res facade.OperationResult) oplog.Entry {
	e := oplog.Entry{
		Timestamp: ts,
		Op:        string(op.Kind),
		BudgetID:  op.ID,
		Errors:    res.ErrorCount(),
		Warnings:  res.WarningCount(),
	}
	switch {
	case res.Success:
		e.Outcome = oplog.OutcomeApplied
	case errors.Is(res.Err, facade.ErrBlocked):
		e.Outcome = oplog.OutcomeRejected
	default:
		e.Outcome = oplog.OutcomeFailed
	}
	if res.Err != nil {
		e.Details = res.Err.Error()
	}
	bids := make([]string, 0, len(res.Errors))
	for bid := range res.Errors {
		bids = append(bids, bid)
	}
	sort.Strings(bids)
	msgs := []string{e.Details}
	for _, bid := range bids {
		blocking, _ := res.Errors[bid].Split()
		for _, vs := range blocking {
			for _, v := range vs {
				msgs = append(msgs, v.Message)
			}
		}
	}
	e.Details = strings.Join(msgs, "; ")
	return e
}

func rawBudgets(in []model.ExtendedBudget) []model.Budget {
	out := make([]model.Budget, len(in))
	for i, b := range in {
		out[i] = b.Budget
	}
	return out
}
