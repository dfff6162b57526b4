package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/queue"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect or assign the daily lesson queue",
}

var queueEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Assign today's lessons unless the daily quota is already covered",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		r := queue.NewReconciler(d.store, d.mirror, d.log, d.cfg.OffsetHours)
		res, err := r.EnsureDailyQueue(cmd.Context(), userID(cmd), queue.Options{Range: d.cfg.Range, PerDay: d.cfg.PerDay}, d.session.Today())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, res)
		}
		switch {
		case res.Reason == queue.ReasonQuotaMet:
			fmt.Fprintln(w, "Daily quota already covered.")
		case res.Wrote:
			fmt.Fprintf(w, "Queue: %s\n", lessonList(res.Current))
		default:
			fmt.Fprintln(w, "Queue unchanged.")
		}
		if res.Exhausted {
			fmt.Fprintf(w, "Level range %s exhausted.\n", d.cfg.Range)
		}
		return nil
	},
}

var queueShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		doc, err := d.session.Load(cmd.Context(), userID(cmd))
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, doc.Current)
		}
		fmt.Fprintf(w, "Assigned: %s\n", orDash(doc.CurrentAssignedDay))
		fmt.Fprintf(w, "Lessons:  %s\n", lessonList(doc.Current))
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Collapse a queue left over from an earlier day into failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		id := userID(cmd)
		doc, err := d.session.Load(ctx, id)
		if err != nil {
			return err
		}

		c := queue.NewCollapser(d.store, d.mirror, d.log, d.cfg.OffsetHours)
		collapsed, err := c.ReconcileIfStale(ctx, id, doc, d.cfg.Range, d.session.Today(), d.cfg.PerDay)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, map[string]bool{"collapsed": collapsed})
		}
		if collapsed {
			fmt.Fprintln(w, "Stale queue collapsed.")
		} else {
			fmt.Fprintln(w, "Nothing to collapse.")
		}
		return nil
	},
}

func init() {
	queueCmd.AddCommand(queueEnsureCmd)
	queueCmd.AddCommand(queueShowCmd)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
