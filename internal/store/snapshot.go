package store

import (
	"io"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
	"disposal-watch/internal/rocdate"
)

// periodStartSentinel stands in for an unknown period start on import, far
// enough in the past that the record can never read as "not yet started".
var periodStartSentinel = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// snapshotRow is the CSV interchange form of one watch-list record, with
// textual dates in canonical YYYY-MM-DD form.
type snapshotRow struct {
	DisplayName string `csv:"display_name"`
	Code        string `csv:"code"`
	MatchTier   string `csv:"match_tier"`
	PeriodStart string `csv:"period_start"`
	ReleaseDate string `csv:"release_date"`
	Reason      string `csv:"reason"`
}

// ExportSnapshot writes the watch-list as a portable CSV snapshot, ordered
// by code so successive exports diff cleanly.
func ExportSnapshot(w io.Writer, records map[string]models.DisposalRecord) error {
	rows := make([]snapshotRow, 0, len(records))
	for _, rec := range records {
		start := ""
		if !rec.PeriodStart.IsZero() {
			start = rec.PeriodStart.Format(rocdate.DateLayout)
		}
		rows = append(rows, snapshotRow{
			DisplayName: rec.DisplayName,
			Code:        rec.Code,
			MatchTier:   string(rec.MatchTier),
			PeriodStart: start,
			ReleaseDate: rec.ReleaseDate.Format(rocdate.DateLayout),
			Reason:      rec.Reason,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return gocsv.Marshal(&rows, w)
}

// ImportSnapshot reads a CSV snapshot back into a watch-list map. Missing
// optional columns are synthesized with safe defaults: an empty reason and
// the past-date sentinel for period_start. Rows without a code or a valid
// release date are rejected.
func ImportSnapshot(r io.Reader) (map[string]models.DisposalRecord, error) {
	var rows []snapshotRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, apperrors.Wrap(err, "reading snapshot")
	}

	records := make(map[string]models.DisposalRecord, len(rows))
	for _, row := range rows {
		if row.Code == "" {
			return nil, apperrors.NewRowError("code", "", apperrors.ErrMissingCode)
		}
		release, err := time.Parse(rocdate.DateLayout, row.ReleaseDate)
		if err != nil {
			return nil, apperrors.NewRowError("release_date", row.ReleaseDate, err)
		}
		start := periodStartSentinel
		if row.PeriodStart != "" {
			start, err = time.Parse(rocdate.DateLayout, row.PeriodStart)
			if err != nil {
				return nil, apperrors.NewRowError("period_start", row.PeriodStart, err)
			}
		}
		tier := models.MatchTier(row.MatchTier)
		if tier != models.TierTwentyMinute {
			tier = models.TierFiveMinute
		}
		records[row.Code] = models.DisposalRecord{
			Code:        row.Code,
			DisplayName: row.DisplayName,
			MatchTier:   tier,
			PeriodStart: start,
			ReleaseDate: release,
			Reason:      row.Reason,
		}
	}
	return records, nil
}
