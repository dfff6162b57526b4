package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace a learner's progress with a JSON document",
	Long: `Import a progress document from a file or stdin. Legacy field names and
shapes are normalized before the document is stored, and the stored document
is replaced wholesale.`,
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
			return fmt.Errorf("read document: %w", err)
		}

		doc, err := store.Normalize(raw)
		if err != nil {
			return err
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		id := userID(cmd)
		if err := d.store.Set(ctx, id, doc); err != nil {
			return fmt.Errorf("import progress: %w", err)
		}
		d.mirror.Publish(ctx, id, doc)

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d completed, %d failed, %d queued, %d exams.\n",
			len(doc.Completed), len(doc.Failed), len(doc.Current), len(doc.ExamRecords))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print a learner's progress as JSON",
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
		return printJSON(cmd.OutOrStdout(), doc)
	},
}
