// Package reconcile merges normalized disposal records into the watch-list.
package reconcile

import (
	"time"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
)

// Result summarizes one reconciliation pass.
type Result struct {
	Upserted int
	Evicted  int
}

// Reconcile merges incoming records into the current watch-list and evicts
// everything already released on the given logical date.
//
// It is a pure function over its inputs: the current map is never mutated,
// so a returned error leaves the caller's state exactly as it was. Upserts
// are last-write-wins per code; incoming order only matters between records
// sharing a code, where the later one in the sequence wins.
func Reconcile(current map[string]models.DisposalRecord, incoming []models.DisposalRecord, today time.Time) (map[string]models.DisposalRecord, Result, error) {
	updated := make(map[string]models.DisposalRecord, len(current)+len(incoming))
	for code, rec := range current {
		updated[code] = rec
	}

	var res Result
	for _, rec := range incoming {
		if rec.Code == "" {
			return nil, Result{}, apperrors.NewReconciliationError(rec.Code, "record without security code", apperrors.ErrMissingCode)
		}
		if rec.ReleaseDate.IsZero() {
			return nil, Result{}, apperrors.NewReconciliationError(rec.Code, "record without release date", apperrors.ErrMissingRelease)
		}
		updated[rec.Code] = rec
		res.Upserted++
	}

	for code, rec := range updated {
		if !rec.Active(today) {
			delete(updated, code)
			res.Evicted++
		}
	}
	return updated, res, nil
}
