package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/session"
)

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func lessonList(items []progress.CurrentQueueItem) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = strconv.Itoa(it.LessonNumber)
	}
	return strings.Join(parts, ", ")
}

func printPlan(cmd *cobra.Command, p session.Plan) error {
	w := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(w, p)
	}

	fmt.Fprintf(w, "Day:     %s\n", p.Day)
	fmt.Fprintf(w, "Stage:   %s (%s)\n", p.Stage.Stage, p.Stage.Reason)
	if p.Stage.HasPair {
		fmt.Fprintf(w, "Exam:    lessons %d and %d\n", p.Stage.Pair[0], p.Stage.Pair[1])
	}
	fmt.Fprintf(w, "Queue:   %s\n", lessonList(p.Current))
	fmt.Fprintf(w, "Today:   %d completed, %d failed, %d queued\n", p.Summary.Completed, p.Summary.Failed, p.Summary.Queued)
	if len(p.Reviews) > 0 {
		fmt.Fprintf(w, "Reviews: %d due\n", len(p.Reviews))
	}

	var notes []string
	if p.Collapsed {
		notes = append(notes, "unfinished lessons from an earlier day were marked failed")
	}
	if p.QueueWritten {
		notes = append(notes, "new lessons assigned")
	}
	if p.Exhausted {
		notes = append(notes, "level range exhausted")
	}
	if p.FromCache {
		notes = append(notes, "from mirror")
	}
	for _, n := range notes {
		fmt.Fprintf(w, "  * %s\n", n)
	}
	return nil
}
