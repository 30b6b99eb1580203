package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bagelcount/bagelcount/internal/calendar"
)

func newListCommand(opts *globalOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets in effect during a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			return runList(p, r)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default unbounded)")

	return cmd
}

func parseRange(from, to string) (calendar.Range, error) {
	start, err := calendar.ParseDate(from)
	if err != nil {
		return calendar.Range{}, fmt.Errorf("--from: %w", err)
	}
	if to == "" {
		return calendar.From(start), nil
	}
	end, err := calendar.ParseDate(to)
	if err != nil {
		return calendar.Range{}, fmt.Errorf("--to: %w", err)
	}
	return calendar.NewRange(start, end)
}

func runList(p *project, r calendar.Range) error {
	budgets := p.facade.GetBudgetList(r)
	if len(budgets) == 0 {
		p.out.Info("no budgets in " + r.String())
		return nil
	}
	for _, b := range budgets {
		p.out.Budget(b)
	}
	return nil
}
