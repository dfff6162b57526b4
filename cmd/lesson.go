package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Record lesson outcomes",
}

var lessonCompleteCmd = &cobra.Command{
	Use:   "complete <lesson>",
	Short: "Record a passed quiz for a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lesson, quiz, at, err := lessonArgs(cmd, args)
		if err != nil {
			return err
		}
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.session.CompleteLesson(cmd.Context(), userID(cmd), lesson, quiz, at); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Lesson %d completed.\n", lesson)
		return nil
	},
}

var lessonFailCmd = &cobra.Command{
	Use:   "fail <lesson>",
	Short: "Record a failed quiz for a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lesson, quiz, at, err := lessonArgs(cmd, args)
		if err != nil {
			return err
		}
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ok, err := d.session.FailLesson(cmd.Context(), userID(cmd), lesson, quiz, at)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Lesson %d is already completed; nothing recorded.\n", lesson)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Lesson %d failed.\n", lesson)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{lessonCompleteCmd, lessonFailCmd} {
		c.Flags().String("quiz", "", "Quiz snapshot as a JSON document")
		c.Flags().String("at", "", "Outcome time in RFC 3339 (default now)")
		lessonCmd.AddCommand(c)
	}
}

func lessonArgs(cmd *cobra.Command, args []string) (int, json.RawMessage, time.Time, error) {
	lesson, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, nil, time.Time{}, fmt.Errorf("lesson number %q: %w", args[0], err)
	}

	var quiz json.RawMessage
	if s, _ := cmd.Flags().GetString("quiz"); s != "" {
		if !json.Valid([]byte(s)) {
			return 0, nil, time.Time{}, fmt.Errorf("--quiz is not valid JSON")
		}
		quiz = json.RawMessage(s)
	}

	var at time.Time
	if s, _ := cmd.Flags().GetString("at"); s != "" {
		if at, err = time.Parse(time.RFC3339, s); err != nil {
			return 0, nil, time.Time{}, fmt.Errorf("--at: %w", err)
		}
	}
	return lesson, quiz, at, nil
}
