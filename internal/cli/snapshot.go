package cli

import (
	"os"

	"github.com/spf13/cobra"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the watch-list as a CSV snapshot",
		Long: `Write the watch-list to a portable CSV snapshot. Without an argument
the configured snapshot path is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrStoreClosed
			}

			path := app.Config.Store.SnapshotPath
			if len(args) == 1 {
				path = args[0]
			}

			records, err := app.Store.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return apperrors.Wrapf(err, "creating snapshot %s", path)
			}
			defer f.Close()

			if err := store.ExportSnapshot(f, records); err != nil {
				return err
			}
			output.Success("Exported %d records to %s", len(records), path)
			return nil
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore the watch-list from a CSV snapshot",
		Long: `Replace the watch-list with the contents of a CSV snapshot. Expired
records in the snapshot are evicted on the next sync.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrStoreClosed
			}

			f, err := os.Open(args[0])
			if err != nil {
				return apperrors.Wrapf(err, "opening snapshot %s", args[0])
			}
			defer f.Close()

			records, err := store.ImportSnapshot(f)
			if err != nil {
				return err
			}
			if err := app.Store.ReplaceAll(cmd.Context(), records); err != nil {
				return err
			}
			output.Success("Imported %d records from %s", len(records), args[0])
			return nil
		},
	}
}
