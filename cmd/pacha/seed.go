package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pacha/internal/datasync"
	"github.com/at-ishikawa/pacha/internal/dictionary"
)

func newSeedCommand() *cobra.Command {
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "seed <file.yml>",
		Short: "Import dictionary entries from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			entries, err := datasync.ReadSeedFile(args[0])
			if err != nil {
				return fmt.Errorf("datasync.ReadSeedFile() > %w", err)
			}

			db, err := openStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			importer := datasync.NewImporter(dictionary.NewDBEntryRepository(db), out)
			opts := datasync.ImportOptions{
				DryRun:         dryRun,
				UpdateExisting: updateExisting,
			}
			result, err := importer.ImportEntries(ctx, entries, opts)
			if err != nil {
				return fmt.Errorf("import entries: %w", err)
			}

			fmt.Fprintln(out, "\nImport Summary:")
			if opts.DryRun {
				fmt.Fprintln(out, "  (dry-run mode: no changes made)")
			}
			fmt.Fprintf(out, "  Entries:  %d new, %d skipped, %d updated, %d invalid\n",
				result.New, result.Skipped, result.Updated, result.Invalid)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing entries with new data")
	return cmd
}
