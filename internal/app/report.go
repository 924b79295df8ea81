package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/bindforge/internal/dag"
	"github.com/specialistvlad/bindforge/internal/executor"
	"github.com/specialistvlad/bindforge/internal/invoke"
)

// writeReport prints one line per task, then failures with their diagnostics,
// then the tasks that were not attempted.
func writeReport(w io.Writer, rep *executor.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSTATE\tDURATION")
	for _, r := range rep.Results {
		d := "-"
		if r.Duration > 0 {
			d = r.Duration.Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.State, d)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range rep.Failed() {
		fmt.Fprintf(w, "\nFAILED %s: %v\n", r.Name, r.Err)
		var pe *invoke.ProcessError
		if errors.As(r.Err, &pe) && pe.StderrTail != "" {
			fmt.Fprintln(w, "  stderr (tail):")
			for _, line := range strings.Split(strings.TrimRight(pe.StderrTail, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	if skipped := rep.NotAttempted(); len(skipped) > 0 {
		fmt.Fprintln(w, "\nNot attempted:")
		for _, r := range skipped {
			switch {
			case r.Cause != "":
				fmt.Fprintf(w, "  %s (%s by %s)\n", r.Name, r.State, r.Cause)
			case r.Err != nil:
				fmt.Fprintf(w, "  %s (%s: %v)\n", r.Name, r.State, r.Err)
			default:
				fmt.Fprintf(w, "  %s (%s)\n", r.Name, r.State)
			}
		}
	}

	counts := rep.Counts()
	_, err := fmt.Fprintf(w, "\n%d succeeded, %d skipped, %d failed, %d not attempted in %s\n",
		counts[executor.Succeeded], counts[executor.Skipped], counts[executor.Failed],
		counts[executor.Blocked]+counts[executor.Canceled], rep.Duration.Round(time.Millisecond))
	return err
}

func writePlan(w io.Writer, plan *dag.Plan) error {
	for i, t := range plan.Order {
		line := fmt.Sprintf("%2d. %s", i+1, t.Name)
		if preds := plan.Predecessors(t.Name); len(preds) > 0 {
			line += " (after " + strings.Join(preds, ", ") + ")"
		}
		if t.SkipPath != "" {
			line += " [skip if " + t.SkipPath + " exists]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeTasks(w io.Writer, g *dag.Graph) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tGROUP\tDEPENDS ON\tMUST RUN AFTER\tDESCRIPTION")
	for _, t := range g.Tasks() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Name, orDash(t.Group),
			orDash(strings.Join(t.DependsOn, ", ")), orDash(strings.Join(t.MustRunAfter, ", ")), t.Description)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
