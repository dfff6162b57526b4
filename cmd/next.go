package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/spacedrep"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/stage"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Roll over, assign today's lessons and show what to do next",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.session.Next(cmd.Context(), userID(cmd))
		if err != nil {
			return err
		}
		return printPlan(cmd, p)
	},
}

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Resolve the current stage from stored progress without writing",
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
		dec := stage.Resolve(doc, d.session.Today(), d.cfg.PerDay, d.cfg.OffsetHours)

		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, dec)
		}
		fmt.Fprintf(w, "%s (%s)\n", dec.Stage, dec.Reason)
		if dec.HasPair {
			fmt.Fprintf(w, "exam pair: %d, %d\n", dec.Pair[0], dec.Pair[1])
		}
		return nil
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "List completed lessons due for review",
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
		today := d.session.Today()
		w := cmd.OutOrStdout()

		if upcoming, _ := cmd.Flags().GetBool("upcoming"); upcoming {
			sched := spacedrep.Schedule(doc.Completed, today, d.cfg.OffsetHours)
			if wantJSON(cmd) {
				return printJSON(w, sched)
			}
			if len(sched) == 0 {
				fmt.Fprintln(w, "No upcoming reviews.")
			}
			for _, u := range sched {
				fmt.Fprintf(w, "%s  lesson %d  (stage %d)\n", u.Day, u.LessonNumber, u.Stage)
			}
			return nil
		}

		due := spacedrep.DueReviews(doc.Completed, today, d.cfg.OffsetHours)
		if wantJSON(cmd) {
			return printJSON(w, due)
		}
		if len(due) == 0 {
			fmt.Fprintln(w, "No reviews due today.")
		}
		for _, r := range due {
			fmt.Fprintf(w, "lesson %d  completed %s  (%d days, stage %d)\n", r.LessonNumber, r.CompletedDay, r.DaysSince, r.Stage)
		}
		return nil
	},
}

func init() {
	reviewsCmd.Flags().Bool("upcoming", false, "Show the upcoming review schedule instead of today's reviews")
}
