// Package output renders CLI messages, budgets and operation results.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/bagelcount/bagelcount/internal/facade"
	"github.com/bagelcount/bagelcount/internal/model"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	blue   = color.New(color.FgBlue)
	red    = color.New(color.FgRed)
)

// Printer writes formatted output to w.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Header prints a formatted header
func (p *Printer) Header(text string) {
	line := strings.Repeat("=", 60)
	green.Fprintf(p.w, "\n%s\n", line)
	green.Fprintf(p.w, "%-60s\n", center(text, 60))
	green.Fprintf(p.w, "%s\n\n", line)
}

// Step prints a step indicator
func (p *Printer) Step(stepNum, totalSteps int, text string) {
	yellow.Fprintf(p.w, "[%d/%d] %s\n", stepNum, totalSteps, text)
}

// Success prints a success message
func (p *Printer) Success(text string) {
	green.Fprintf(p.w, "  → %s\n", text)
}

// Info prints an info message
func (p *Printer) Info(text string) {
	fmt.Fprintf(p.w, "  → %s\n", text)
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	yellow.Fprintf(p.w, "  ⚠ %s\n", text)
}

// Error prints an error message
func (p *Printer) Error(text string) {
	red.Fprintf(p.w, "Error: %s\n", text)
}

// Budget prints one line for b followed by its warnings.
func (p *Printer) Budget(b model.ExtendedBudget) {
	blue.Fprintf(p.w, "%s", b.ID)
	fmt.Fprintf(p.w, "  %s  %s %s  %s  %s", b.Account, b.Amount.StringFixed(2), b.Currency, schedule(b.Budget), b.EffectiveRange)
	if len(b.Tags) > 0 {
		fmt.Fprintf(p.w, "  [%s]", strings.Join(b.Tags, ", "))
	}
	fmt.Fprintln(p.w)
	p.violations(b.Warnings, false)
}

// Result prints the outcome of one facade mutation.
func (p *Printer) Result(op, budgetID string, r facade.OperationResult) {
	if r.Success {
		p.Success(fmt.Sprintf("%s %s: %d budget(s) updated", op, budgetID, len(r.Updates)))
		for _, bid := range sortedKeys(r.Updates) {
			p.violations(r.Updates[bid].Warnings, false)
		}
		return
	}
	p.Error(fmt.Sprintf("%s %s: %v", op, budgetID, r.Err))
	for _, bid := range sortedKeys(r.Errors) {
		p.violations(r.Errors[bid], true)
	}
	for _, bid := range sortedKeys(r.Warnings) {
		p.violations(r.Warnings[bid], false)
	}
}

func (p *Printer) violations(vm model.ViolationMap, blocking bool) {
	names := make([]string, 0, len(vm))
	for name := range vm {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range vm[model.ConstraintName(name)] {
			msg := fmt.Sprintf("%s/%s: %s", v.Role, v.Check, v.Message)
			if blocking {
				red.Fprintf(p.w, "    ✗ %s\n", msg)
			} else {
				p.Warning(msg)
			}
		}
	}
}

func schedule(b model.Budget) string {
	switch s := b.Schedule.(type) {
	case model.Recurring:
		return string(s.Frequency)
	case model.Fixed:
		return "until " + s.EndDate.String()
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// center centers text within a given width
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
