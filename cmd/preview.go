package cmd

import (
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what to do next without writing anything",
	Long: `Resolve the learner's stage without collapsing or assigning queues.

Answers from the Redis mirror when FLASHCARD_REDIS_ADDR is set and holds a
snapshot, otherwise from the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.session.Preview(cmd.Context(), userID(cmd))
		if err != nil {
			return err
		}
		return printPlan(cmd, p)
	},
}
