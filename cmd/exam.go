package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/exam"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Record daily exam results",
}

var examAppendCmd = &cobra.Command{
	Use:   "append [file]",
	Short: "Append an exam entry read from a JSON file or stdin",
	Long: `Append the day's exam entry. The entry is a JSON object:

  {"examDay": "2025-03-10", "lessonNumberPair": [1, 2],
   "examStats": {"correct": 18, "total": 20, "score": 0.9}}

A second entry for a day that already has one is ignored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if len(args) == 1 && args[0] != "-" {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("read entry: %w", err)
		}

		entry, err := exam.ParseEntry(raw)
		if err != nil {
			return err
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := exam.NewAppender(d.store, d.mirror, d.log).AppendWithResult(cmd.Context(), userID(cmd), entry)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, res)
		}
		if !res.Appended {
			fmt.Fprintf(w, "Exam for %s already recorded.\n", entry.ExamDay)
			return nil
		}
		fmt.Fprintf(w, "Exam for %s recorded (%s).\n", res.Record.ExamDay, res.Record.ID)
		return nil
	},
}

func init() {
	examCmd.AddCommand(examAppendCmd)
}
