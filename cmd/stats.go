package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/session"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
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

		day, _ := cmd.Flags().GetString("day")
		if day == "" {
			day = d.session.Today()
		} else if err := daykey.Validate(day); err != nil {
			return fmt.Errorf("--day: %w", err)
		}
		sum := session.BuildSummary(doc, day, d.cfg.OffsetHours)

		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, map[string]any{
				"day":       sum,
				"completed": len(doc.Completed),
				"failed":    len(doc.Failed),
				"exams":     len(doc.ExamRecords),
			})
		}
		fmt.Fprintf(w, "Level:     %s (%s)\n", d.cfg.Level, d.cfg.Range)
		fmt.Fprintf(w, "Completed: %d\n", len(doc.Completed))
		fmt.Fprintf(w, "Failed:    %d\n", len(doc.Failed))
		fmt.Fprintf(w, "Exams:     %d\n", len(doc.ExamRecords))
		fmt.Fprintf(w, "\n%s: %d completed, %d failed, %d queued", sum.Day, sum.Completed, sum.Failed, sum.Queued)
		if sum.Exam != nil {
			fmt.Fprintf(w, ", exam %d/%d", sum.Exam.Stats.Correct, sum.Exam.Stats.Total)
		}
		fmt.Fprintln(w)
		return nil
	},
}

func init() {
	statsCmd.Flags().String("day", "", "Day to summarize as YYYY-MM-DD (default today)")
}
