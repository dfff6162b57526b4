package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/config"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "flashcard",
	Short: "JLPT lesson progression engine",
	Long:  "flashcard assigns daily JLPT lessons, rolls unfinished days over into failures and tells the learner what to do next.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("env-file")
		return config.LoadEnvFile(path)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Database file or DSN (overrides FLASHCARD_DB env var)")
	pf.String("driver", "", "Store driver: sqlite or postgres (overrides FLASHCARD_DRIVER)")
	pf.String("env-file", "", "Load environment variables from this file (default ./.env if present)")
	pf.String("user", "local", "Learner ID")
	pf.String("level", "", "Level name (A-E) or start-end lesson range (overrides FLASHCARD_LEVEL)")
	pf.Bool("json", false, "Print JSON instead of text")

	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig reads the environment and applies flag overrides. Flags
// win over env vars, which win over defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.Driver = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DSN = v
	}
	if v, _ := cmd.Flags().GetString("level"); v != "" {
		if err := cfg.SetLevel(v); err != nil {
			return cfg, err
		}
	}
	if cfg.Driver == store.DriverSQLite && cfg.DSN == "" {
		if cfg.DSN, err = store.DefaultDBPath(); err != nil {
			return cfg, err
		}
	} else if cfg.Driver == store.DriverSQLite {
		if err := store.EnsureDir(cfg.DSN); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func userID(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("user")
	return id
}
