package cli

import (
	"github.com/spf13/cobra"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
	"disposal-watch/internal/rocdate"
)

// recordView is the JSON/table projection of one watch-list record.
type recordView struct {
	DisplayName string `json:"display_name"`
	Code        string `json:"code"`
	MatchTier   string `json:"match_tier"`
	PeriodStart string `json:"period_start,omitempty"`
	ReleaseDate string `json:"release_date"`
	Reason      string `json:"reason,omitempty"`
	Note        string `json:"note"`
}

func newListCmd(app *App) *cobra.Command {
	var tier string
	var upcoming bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the watch-list",
		Long: `Show all securities currently under disposal, sorted by release date.
--tier filters by matching interval; --upcoming shows only securities
whose disposal period has not yet begun.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrStoreClosed
			}

			var records []models.DisposalRecord
			var err error
			switch tier {
			case "":
				records, err = app.Store.GetActiveRecords(cmd.Context())
			case string(models.TierFiveMinute):
				records, err = app.Store.GetByTier(cmd.Context(), models.TierFiveMinute)
			case string(models.TierTwentyMinute):
				records, err = app.Store.GetByTier(cmd.Context(), models.TierTwentyMinute)
			default:
				return apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown tier %q, want 5 or 20", tier)
			}
			if err != nil {
				return err
			}

			if upcoming {
				today := app.Today()
				filtered := records[:0]
				for _, rec := range records {
					if rec.EntersAfter(today) {
						filtered = append(filtered, rec)
					}
				}
				records = filtered
			}

			if output.IsJSON() {
				views := make([]recordView, 0, len(records))
				for _, rec := range records {
					views = append(views, newRecordView(rec))
				}
				return output.JSON(views)
			}
			printRecords(output, records)
			return nil
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "filter by matching tier (5 or 20)")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "only securities entering disposal after today")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <code>",
		Short: "Show a security's status history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrStoreClosed
			}

			history, err := app.Store.GetStatusHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(history)
			}
			if len(history) == 0 {
				output.Dim("No status history for %s", args[0])
				return nil
			}
			for _, st := range history {
				output.Printf("%s  %s\n", st.Date, st.Status)
			}
			return nil
		},
	}
}

func newRecordView(rec models.DisposalRecord) recordView {
	view := recordView{
		DisplayName: rec.DisplayName,
		Code:        rec.Code,
		MatchTier:   string(rec.MatchTier),
		ReleaseDate: rec.ReleaseDate.Format(rocdate.DateLayout),
		Reason:      rec.Reason,
		Note:        Annotate(rec),
	}
	if !rec.PeriodStart.IsZero() {
		view.PeriodStart = rec.PeriodStart.Format(rocdate.DateLayout)
	}
	return view
}

func printRecords(output *Output, records []models.DisposalRecord) {
	if len(records) == 0 {
		output.Dim("Watch-list is empty")
		return
	}
	output.Bold("%-24s %-6s %-10s %s", "Security", "Tier", "Release", "Note")
	for _, rec := range records {
		output.Printf("%-24s %-6s %-10s %s\n",
			rec.DisplayName,
			rec.MatchTier,
			rocdate.FormatShort(rec.ReleaseDate),
			Annotate(rec),
		)
	}
	output.Dim("%d securities under disposal", len(records))
}
