package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
	"disposal-watch/internal/rocdate"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <file>...",
		Short: "Merge disposal CSV exports into the watch-list",
		Long: `Parse one or more official disposal CSV exports (listed-market,
over-the-counter, or generic backups) and reconcile them into the
watch-list in a single pass. Already-released entries are evicted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Syncer == nil {
				return apperrors.ErrStoreClosed
			}

			docs := make([]models.RawDocument, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					// One unreadable file must not block the rest.
					output.Warning("Skipping %s: %v", path, err)
					continue
				}
				docs = append(docs, models.RawDocument{
					Name:    filepath.Base(path),
					Content: content,
				})
			}

			report, err := app.Syncer.Sync(cmd.Context(), docs, app.Today())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(report)
			}
			output.Success("Sync completed")
			output.Printf("  Documents: %d processed, %d failed\n", report.DocumentsProcessed, report.DocumentsFailed)
			output.Printf("  Rows:      %d extracted, %d skipped\n", report.RowsExtracted, report.RowsSkipped)
			output.Printf("  Store:     %d upserted, %d evicted\n", report.Upserted, report.Evicted)
			return nil
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add one security from pasted bulletin text",
		Long: `Extract a single disposal record from free-form pasted text, such as a
bulletin paragraph containing a security code and a restriction period,
and reconcile it into the watch-list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Syncer == nil {
				return apperrors.ErrStoreClosed
			}

			text := strings.Join(args, " ")
			rec, _, err := app.Syncer.AddFragment(cmd.Context(), text, app.Today())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(newRecordView(rec))
			}
			output.Success("Added %s, releases %s", rec.DisplayName, rocdate.FormatShort(rec.ReleaseDate))
			return nil
		},
	}
}

func newRecordStatusCmd(app *App) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "record-status <code:status>...",
		Short: "Record today's attention/disposal statuses",
		Long: `Record the day's observed security statuses into the history table,
replacing anything already recorded for that date. Status is either
"attention" or "disposal".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Syncer == nil {
				return apperrors.ErrStoreClosed
			}
			if date == "" {
				date = app.Today().Format(rocdate.DateLayout)
			}

			statuses := make([]models.StatusRecord, 0, len(args))
			for _, arg := range args {
				code, status, ok := strings.Cut(arg, ":")
				if !ok {
					return fmt.Errorf("invalid status %q, want code:status", arg)
				}
				var st models.SecurityStatus
				switch status {
				case "attention":
					st = models.StatusAttention
				case "disposal":
					st = models.StatusDisposal
				default:
					return fmt.Errorf("unknown status %q, want attention or disposal", status)
				}
				statuses = append(statuses, models.StatusRecord{Date: date, Code: code, Status: st})
			}

			if err := app.Syncer.RecordDailyStatuses(cmd.Context(), date, statuses); err != nil {
				return err
			}
			output.Success("Recorded %d statuses for %s", len(statuses), date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to record (default: logical today)")
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe the watch-list",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrStoreClosed
			}
			if !confirmed {
				output.Warning("Pass --yes to confirm wiping the watch-list")
				return nil
			}
			if err := app.Store.Reset(cmd.Context()); err != nil {
				return err
			}
			output.Success("Watch-list wiped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the wipe")
	return cmd
}
