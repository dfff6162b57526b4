package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Roll every stored learner over to today",
	Long: `Collapse stale queues and assign today's lessons for every learner in
the store. With --daemon the sweep runs once a day at FLASHCARD_SWEEP_AT in
the learner time zone until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s := sweep.New(d.store, d.mirror, d.log, sweep.Config{
			Range:       d.cfg.Range,
			PerDay:      d.cfg.PerDay,
			OffsetHours: d.cfg.OffsetHours,
			At:          d.cfg.SweepAt,
			Concurrency: d.cfg.SweepConcurrency,
		})

		if daemon, _ := cmd.Flags().GetBool("daemon"); daemon {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := s.Start(); err != nil {
				return err
			}
			defer s.Stop()
			if next, ok := s.NextRun(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Next sweep at %s\n", next.Format("2006-01-02 15:04 MST"))
			}
			<-ctx.Done()
			return nil
		}

		sum, err := s.RunOnce(cmd.Context(), d.session.Today())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, sum)
		}
		fmt.Fprintf(w, "Swept %d learners: %d collapsed, %d queues written, %d failed\n", sum.Users, sum.Collapsed, sum.Written, sum.Failed)
		return nil
	},
}

func init() {
	sweepCmd.Flags().Bool("daemon", false, "Keep running and sweep daily")
}
