package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("reset erases all progress for the learner; pass --yes to confirm")
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		id := userID(cmd)
		if err := d.store.Set(ctx, id, progress.Document{}); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		d.mirror.Publish(ctx, id, progress.Document{})
		fmt.Fprintf(cmd.OutOrStdout(), "Progress for %s reset.\n", id)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
