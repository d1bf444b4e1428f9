// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"disposal-watch/internal/models"
)

// WatchStore defines the interface for watch-list persistence.
type WatchStore interface {
	// Watch-list
	LoadAll(ctx context.Context) (map[string]models.DisposalRecord, error)
	ReplaceAll(ctx context.Context, records map[string]models.DisposalRecord) error
	GetActiveRecords(ctx context.Context) ([]models.DisposalRecord, error)
	GetByTier(ctx context.Context, tier models.MatchTier) ([]models.DisposalRecord, error)
	Reset(ctx context.Context) error

	// Daily status history
	RecordStatuses(ctx context.Context, date string, statuses []models.StatusRecord) error
	GetStatusHistory(ctx context.Context, code string) ([]models.StatusRecord, error)

	// Lifecycle
	Close() error
}
