package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrWarnings is returned by check --strict when any budget carries a violation.
var ErrWarnings = errors.New("budgets have constraint warnings")

func newCheckCommand(opts *globalOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load every budget and report constraint violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			return runCheck(p, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any warning is reported")

	return cmd
}

func runCheck(p *project, strict bool) error {
	budgets := p.facade.Budgets()
	p.out.Header("Budget check")

	warned, violations := 0, 0
	for _, b := range budgets {
		if b.Warnings.Len() == 0 {
			continue
		}
		warned++
		violations += b.Warnings.Len()
		p.out.Budget(b)
	}
	for _, s := range p.set.Skipped {
		p.out.Warning(fmt.Sprintf("entry %d (line %d) skipped: %s", s.Index, s.Line, s.Reason))
	}

	if warned == 0 {
		p.out.Success(fmt.Sprintf("%d budget(s), no violations", len(budgets)))
		return nil
	}
	p.out.Info(fmt.Sprintf("%d budget(s), %d with %d violation(s)", len(budgets), warned, violations))
	if strict {
		return fmt.Errorf("%w: %d", ErrWarnings, violations)
	}
	return nil
}
