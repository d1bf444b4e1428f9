// Package watch orchestrates document normalization and watch-list
// reconciliation.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
	"disposal-watch/internal/normalize"
	"disposal-watch/internal/reconcile"
	"disposal-watch/internal/store"
)

// Report summarizes one sync cycle. Counts are reported even when some
// inputs were partially unusable.
type Report struct {
	DocumentsProcessed int `json:"documents_processed"`
	DocumentsFailed    int `json:"documents_failed"`
	RowsExtracted      int `json:"rows_extracted"`
	RowsSkipped        int `json:"rows_skipped"`
	Upserted           int `json:"upserted"`
	Evicted            int `json:"evicted"`
}

// Syncer runs sync cycles against the watch store. The reconciler performs a
// read-modify-write over the whole store, so cycles are serialized by an
// internal mutex: one reconciliation in flight at a time.
type Syncer struct {
	store      store.WatchStore
	normalizer *normalize.Normalizer
	logger     zerolog.Logger
	mu         sync.Mutex
}

// NewSyncer creates a Syncer.
func NewSyncer(s store.WatchStore, logger zerolog.Logger) *Syncer {
	return &Syncer{
		store:      s,
		normalizer: normalize.New(logger),
		logger:     logger,
	}
}

// Sync normalizes the given documents and reconciles the results into the
// store in one pass. Documents are processed independently: a document that
// fails to decode is reported and skipped without blocking the others.
func (s *Syncer) Sync(ctx context.Context, docs []models.RawDocument, today time.Time) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report Report
	var incoming []models.DisposalRecord
	for _, doc := range docs {
		records, stats, err := s.normalizer.Normalize(doc, today)
		if err != nil {
			report.DocumentsFailed++
			s.logger.Warn().Str("document", doc.Name).Err(err).Msg("Document skipped")
			continue
		}
		report.DocumentsProcessed++
		report.RowsExtracted += stats.RowsExtracted
		report.RowsSkipped += stats.RowsSkipped
		incoming = append(incoming, records...)
	}

	if err := s.apply(ctx, incoming, today, &report); err != nil {
		return report, err
	}

	s.logger.Info().
		Int("documents_processed", report.DocumentsProcessed).
		Int("documents_failed", report.DocumentsFailed).
		Int("rows_extracted", report.RowsExtracted).
		Int("rows_skipped", report.RowsSkipped).
		Int("upserted", report.Upserted).
		Int("evicted", report.Evicted).
		Msg("Sync completed")
	return report, nil
}

// AddFragment extracts one record from pasted free text and reconciles it
// into the store.
func (s *Syncer) AddFragment(ctx context.Context, text string, today time.Time) (models.DisposalRecord, Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report Report
	rec, err := normalize.ExtractFragment(text)
	if err != nil {
		return models.DisposalRecord{}, report, err
	}
	if !rec.Active(today) {
		return models.DisposalRecord{}, report, apperrors.Wrapf(apperrors.ErrAlreadyReleased, "security %s released %s", rec.Code, rec.ReleaseDate.Format("2006-01-02"))
	}
	report.RowsExtracted = 1
	if err := s.apply(ctx, []models.DisposalRecord{rec}, today, &report); err != nil {
		return models.DisposalRecord{}, report, err
	}
	return rec, report, nil
}

// RecordDailyStatuses persists one day's attention/disposal observations,
// replacing any rows already recorded for that date.
func (s *Syncer) RecordDailyStatuses(ctx context.Context, date string, statuses []models.StatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.RecordStatuses(ctx, date, statuses)
}

// apply loads the store, reconciles, and persists the result atomically.
func (s *Syncer) apply(ctx context.Context, incoming []models.DisposalRecord, today time.Time, report *Report) error {
	current, err := s.store.LoadAll(ctx)
	if err != nil {
		return apperrors.Wrap(err, "loading watch-list")
	}
	updated, result, err := reconcile.Reconcile(current, incoming, today)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceAll(ctx, updated); err != nil {
		return apperrors.Wrap(err, "persisting watch-list")
	}
	report.Upserted = result.Upserted
	report.Evicted = result.Evicted
	return nil
}
