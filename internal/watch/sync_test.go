package watch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
	"disposal-watch/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const listedDoc = `公布處置有價證券資訊
編號,證券代號,證券名稱,處置起迄時間,處置條件,處置內容
1,4931.0,新唐,114/12/24~114/12/31,連續三次達注意標準,約每20分鐘撮合一次
2,ABC,雜訊列,不是日期,無,
`

const otcDoc = `上櫃處置股票資訊
期間:114/12/01~114/12/31
證券代號,證券名稱,處置起訖時間,處置原因,處置內容
6488,環球晶,114/12/20~114/12/27,當日沖銷比率過高,約每5分鐘撮合一次
`

func newTestSyncer(t *testing.T) (*Syncer, store.WatchStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "watch.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewSyncer(s, zerolog.Nop()), s
}

func TestSyncMergesDocuments(t *testing.T) {
	syncer, watchStore := newTestSyncer(t)
	ctx := context.Background()
	today := date(2025, time.December, 20)

	docs := []models.RawDocument{
		{Name: "listed.csv", Content: []byte(listedDoc)},
		{Name: "otc.csv", Content: []byte(otcDoc)},
		{Name: "junk.bin", Content: []byte{0xFF, 0xFF, 0xFF}},
	}
	report, err := syncer.Sync(ctx, docs, today)
	if err != nil {
		t.Fatalf("Sync error = %v", err)
	}
	if report.DocumentsProcessed != 2 || report.DocumentsFailed != 1 {
		t.Errorf("documents = %d processed %d failed, want 2/1",
			report.DocumentsProcessed, report.DocumentsFailed)
	}
	if report.RowsExtracted != 2 || report.RowsSkipped != 1 {
		t.Errorf("rows = %d extracted %d skipped, want 2/1",
			report.RowsExtracted, report.RowsSkipped)
	}
	if report.Upserted != 2 {
		t.Errorf("Upserted = %d, want 2", report.Upserted)
	}

	records, err := watchStore.GetActiveRecords(ctx)
	if err != nil {
		t.Fatalf("GetActiveRecords error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("store has %d records, want 2", len(records))
	}
	// Sorted by release date: 6488 releases 2025-12-28, 4931 on 2026-01-01.
	if records[0].Code != "6488" || records[1].Code != "4931" {
		t.Errorf("order = [%s %s]", records[0].Code, records[1].Code)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	syncer, watchStore := newTestSyncer(t)
	ctx := context.Background()
	today := date(2025, time.December, 20)
	docs := []models.RawDocument{{Name: "listed.csv", Content: []byte(listedDoc)}}

	if _, err := syncer.Sync(ctx, docs, today); err != nil {
		t.Fatalf("first Sync error = %v", err)
	}
	first, err := watchStore.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error = %v", err)
	}

	if _, err := syncer.Sync(ctx, docs, today); err != nil {
		t.Fatalf("second Sync error = %v", err)
	}
	second, err := watchStore.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("store size changed: %d then %d", len(first), len(second))
	}
	for code, f := range first {
		s := second[code]
		if f.DisplayName != s.DisplayName || !f.ReleaseDate.Equal(s.ReleaseDate) {
			t.Errorf("record %s changed between identical syncs", code)
		}
	}
}

func TestSyncEvictsReleased(t *testing.T) {
	syncer, watchStore := newTestSyncer(t)
	ctx := context.Background()

	docs := []models.RawDocument{{Name: "listed.csv", Content: []byte(listedDoc)}}
	if _, err := syncer.Sync(ctx, docs, date(2025, time.December, 20)); err != nil {
		t.Fatalf("Sync error = %v", err)
	}

	// A later empty sync after the release date sweeps the record out.
	report, err := syncer.Sync(ctx, nil, date(2026, time.January, 5))
	if err != nil {
		t.Fatalf("Sync error = %v", err)
	}
	if report.Evicted != 1 {
		t.Errorf("Evicted = %d, want 1", report.Evicted)
	}
	records, err := watchStore.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("store has %d records, want 0", len(records))
	}
}

func TestAddFragment(t *testing.T) {
	syncer, watchStore := newTestSyncer(t)
	ctx := context.Background()
	today := date(2025, time.December, 20)

	rec, _, err := syncer.AddFragment(ctx, "2330 台積電 處置期間至114年12月31日 約每20分鐘撮合一次", today)
	if err != nil {
		t.Fatalf("AddFragment error = %v", err)
	}
	if rec.Code != "2330" || rec.MatchTier != models.TierTwentyMinute {
		t.Errorf("record = %+v", rec)
	}
	records, err := watchStore.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("store has %d records, want 1", len(records))
	}

	// Already-released fragments are rejected, not stored.
	_, _, err = syncer.AddFragment(ctx, "6488 處置期間至114年12月10日", today)
	if !apperrors.Is(err, apperrors.ErrAlreadyReleased) {
		t.Errorf("expired fragment error = %v", err)
	}
}

func TestRecordDailyStatuses(t *testing.T) {
	syncer, watchStore := newTestSyncer(t)
	ctx := context.Background()

	statuses := []models.StatusRecord{
		{Date: "2025-12-20", Code: "2330", Status: models.StatusAttention},
	}
	if err := syncer.RecordDailyStatuses(ctx, "2025-12-20", statuses); err != nil {
		t.Fatalf("RecordDailyStatuses error = %v", err)
	}
	history, err := watchStore.GetStatusHistory(ctx, "2330")
	if err != nil {
		t.Fatalf("GetStatusHistory error = %v", err)
	}
	if len(history) != 1 || history[0].Status != models.StatusAttention {
		t.Errorf("history = %+v", history)
	}
}
