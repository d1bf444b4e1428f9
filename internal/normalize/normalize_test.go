package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/traditionalchinese"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
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

const genericDoc = `證券代號,證券名稱,處置起迄時間,原因
2330,台積電,114/12/22~114/12/29,股價波動過大
`

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		kind       models.LayoutKind
		headerSkip int
		periodCol  string
		reasonCol  string
	}{
		{"exchange listed", listedDoc, models.LayoutExchangeListed, 1, "處置起迄時間", "處置條件"},
		{"over the counter", otcDoc, models.LayoutOverCounter, 2, "處置起訖時間", "處置原因"},
		{"generic", genericDoc, models.LayoutGeneric, 0, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := DetectLayout(splitLines(tt.doc))
			if layout.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", layout.Kind, tt.kind)
			}
			if layout.HeaderSkip != tt.headerSkip {
				t.Errorf("HeaderSkip = %d, want %d", layout.HeaderSkip, tt.headerSkip)
			}
			if layout.PeriodColumn != tt.periodCol {
				t.Errorf("PeriodColumn = %q, want %q", layout.PeriodColumn, tt.periodCol)
			}
			if layout.ReasonColumn != tt.reasonCol {
				t.Errorf("ReasonColumn = %q, want %q", layout.ReasonColumn, tt.reasonCol)
			}
		})
	}
}

func TestDetectLayoutNeverFails(t *testing.T) {
	layout := DetectLayout([]string{"some random text", "more text"})
	if layout.Kind != models.LayoutGeneric {
		t.Errorf("Kind = %s, want generic", layout.Kind)
	}
	layout = DetectLayout(nil)
	if layout.Kind != models.LayoutGeneric {
		t.Errorf("Kind for empty input = %s, want generic", layout.Kind)
	}
}

func TestResolveColumns(t *testing.T) {
	header := []string{"證券代號", "證券名稱", "處置起訖時間", "處置原因"}
	layout := ResolveColumns(header, models.SourceLayout{Kind: models.LayoutGeneric})
	if layout.PeriodColumn != "處置起訖時間" {
		t.Errorf("PeriodColumn = %q", layout.PeriodColumn)
	}
	if layout.ReasonColumn != "處置原因" {
		t.Errorf("ReasonColumn = %q", layout.ReasonColumn)
	}

	// Marker layouts keep their fixed columns.
	fixed := models.SourceLayout{Kind: models.LayoutExchangeListed, PeriodColumn: "處置起迄時間", ReasonColumn: "處置條件"}
	if got := ResolveColumns(header, fixed); got != fixed {
		t.Errorf("ResolveColumns changed a fixed layout: %+v", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"4931.0", "4931"},
		{" 2330 ", "2330"},
		{"2330 台積電", "2330"},
		{"6488", "6488"},
		{"", ""},
		{"無", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.raw); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestExtractRecordTier(t *testing.T) {
	layout := models.SourceLayout{Kind: models.LayoutExchangeListed, PeriodColumn: "處置起迄時間", ReasonColumn: "處置條件"}
	base := Row{
		"證券代號":   "2330",
		"證券名稱":   "台積電",
		"處置起迄時間": "114/12/24~114/12/31",
	}

	base["處置內容"] = "約每20分鐘撮合一次"
	rec, err := ExtractRecord(base, layout)
	if err != nil {
		t.Fatalf("ExtractRecord error = %v", err)
	}
	if rec.MatchTier != models.TierTwentyMinute {
		t.Errorf("MatchTier = %s, want 20", rec.MatchTier)
	}

	base["處置內容"] = "約每5分鐘撮合一次"
	rec, err = ExtractRecord(base, layout)
	if err != nil {
		t.Fatalf("ExtractRecord error = %v", err)
	}
	if rec.MatchTier != models.TierFiveMinute {
		t.Errorf("MatchTier = %s, want 5", rec.MatchTier)
	}

	base["處置內容"] = "約每二十分鐘撮合一次"
	rec, _ = ExtractRecord(base, layout)
	if rec.MatchTier != models.TierTwentyMinute {
		t.Errorf("MatchTier for spelled-out form = %s, want 20", rec.MatchTier)
	}
}

func TestExtractRecordDefaults(t *testing.T) {
	layout := models.SourceLayout{Kind: models.LayoutGeneric, PeriodColumn: "處置起迄時間"}
	rec, err := ExtractRecord(Row{
		"證券代號":   "4931.0",
		"處置起迄時間": "至114年12月31日",
	}, layout)
	if err != nil {
		t.Fatalf("ExtractRecord error = %v", err)
	}
	if rec.Code != "4931" {
		t.Errorf("Code = %q, want 4931", rec.Code)
	}
	if rec.DisplayName != "未知 (4931)" {
		t.Errorf("DisplayName = %q", rec.DisplayName)
	}
	if !rec.PeriodStart.IsZero() {
		t.Errorf("PeriodStart = %v, want zero", rec.PeriodStart)
	}
	if !rec.ReleaseDate.Equal(date(2026, time.January, 1)) {
		t.Errorf("ReleaseDate = %v", rec.ReleaseDate)
	}
	if rec.Reason != "" {
		t.Errorf("Reason = %q, want empty", rec.Reason)
	}
}

func TestExtractRecordSkips(t *testing.T) {
	layout := models.SourceLayout{PeriodColumn: "處置起迄時間"}
	if _, err := ExtractRecord(Row{"證券代號": "", "處置起迄時間": "114/12/24~114/12/31"}, layout); !apperrors.Is(err, apperrors.ErrMissingCode) {
		t.Errorf("missing code error = %v", err)
	}
	if _, err := ExtractRecord(Row{"證券代號": "2330", "處置起迄時間": "無期間"}, layout); !apperrors.Is(err, apperrors.ErrUnparseableDate) {
		t.Errorf("unparseable period error = %v", err)
	}
	// A layout without a period column cannot produce a release date.
	if _, err := ExtractRecord(Row{"證券代號": "2330"}, models.SourceLayout{}); !apperrors.Is(err, apperrors.ErrUnparseableDate) {
		t.Errorf("missing period column error = %v", err)
	}
}

func TestExtractFragment(t *testing.T) {
	rec, err := ExtractFragment("2330 台積電 處置期間至114年12月31日 約每20分鐘撮合一次")
	if err != nil {
		t.Fatalf("ExtractFragment error = %v", err)
	}
	if rec.Code != "2330" {
		t.Errorf("Code = %q", rec.Code)
	}
	if rec.MatchTier != models.TierTwentyMinute {
		t.Errorf("MatchTier = %s", rec.MatchTier)
	}
	if !rec.ReleaseDate.Equal(date(2026, time.January, 1)) {
		t.Errorf("ReleaseDate = %v", rec.ReleaseDate)
	}

	if _, err := ExtractFragment("no code here"); !apperrors.Is(err, apperrors.ErrMissingCode) {
		t.Errorf("fragment without code error = %v", err)
	}
}

func TestNormalizeNoiseTolerance(t *testing.T) {
	n := New(zerolog.Nop())
	doc := models.RawDocument{Name: "listed.csv", Content: []byte(listedDoc)}

	records, stats, err := n.Normalize(doc, date(2025, time.December, 20))
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Code != "4931" {
		t.Errorf("Code = %q, want 4931", rec.Code)
	}
	if rec.DisplayName != "新唐 (4931)" {
		t.Errorf("DisplayName = %q", rec.DisplayName)
	}
	if rec.MatchTier != models.TierTwentyMinute {
		t.Errorf("MatchTier = %s, want 20", rec.MatchTier)
	}
	if !rec.PeriodStart.Equal(date(2025, time.December, 24)) {
		t.Errorf("PeriodStart = %v", rec.PeriodStart)
	}
	if !rec.ReleaseDate.Equal(date(2026, time.January, 1)) {
		t.Errorf("ReleaseDate = %v", rec.ReleaseDate)
	}
	if rec.Reason != "連續三次達注意標準" {
		t.Errorf("Reason = %q", rec.Reason)
	}
	if stats.RowsExtracted != 1 || stats.RowsSkipped != 1 {
		t.Errorf("stats = %+v, want 1 extracted, 1 skipped", stats)
	}
}

func TestNormalizeDropsExpired(t *testing.T) {
	n := New(zerolog.Nop())
	doc := models.RawDocument{Name: "listed.csv", Content: []byte(listedDoc)}

	// Release date 2026-01-01 is not after 2026-01-05.
	records, stats, err := n.Normalize(doc, date(2026, time.January, 5))
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
	if stats.RowsSkipped != 2 {
		t.Errorf("RowsSkipped = %d, want 2", stats.RowsSkipped)
	}

	// Release date boundary: still active the day before.
	records, _, err = n.Normalize(doc, date(2025, time.December, 31))
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records on boundary eve, want 1", len(records))
	}
}

func TestNormalizeOverCounterLayout(t *testing.T) {
	n := New(zerolog.Nop())
	doc := models.RawDocument{Name: "otc.csv", Content: []byte(otcDoc)}

	records, _, err := n.Normalize(doc, date(2025, time.December, 20))
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Reason != "當日沖銷比率過高" {
		t.Errorf("Reason = %q", records[0].Reason)
	}
	if records[0].MatchTier != models.TierFiveMinute {
		t.Errorf("MatchTier = %s, want 5", records[0].MatchTier)
	}
}

func TestNormalizeGenericLayout(t *testing.T) {
	n := New(zerolog.Nop())
	doc := models.RawDocument{Name: "backup.csv", Content: []byte(genericDoc)}

	records, _, err := n.Normalize(doc, date(2025, time.December, 20))
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Reason != "股價波動過大" {
		t.Errorf("Reason = %q", records[0].Reason)
	}
	if !records[0].ReleaseDate.Equal(date(2025, time.December, 30)) {
		t.Errorf("ReleaseDate = %v", records[0].ReleaseDate)
	}
}

func TestDecodeDocumentBig5(t *testing.T) {
	encoded, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(listedDoc))
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	text, err := DecodeDocument(models.RawDocument{Name: "cp950.csv", Content: encoded})
	if err != nil {
		t.Fatalf("DecodeDocument error = %v", err)
	}
	if !strings.Contains(text, "公布處置有價證券資訊") {
		t.Errorf("decoded text lost the marker line")
	}

	n := New(zerolog.Nop())
	records, _, err := n.Normalize(models.RawDocument{Name: "cp950.csv", Content: encoded}, date(2025, time.December, 20))
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records from cp950 document, want 1", len(records))
	}
}

func TestDecodeDocumentBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(listedDoc)...)
	text, err := DecodeDocument(models.RawDocument{Name: "bom.csv", Content: raw})
	if err != nil {
		t.Fatalf("DecodeDocument error = %v", err)
	}
	if strings.HasPrefix(text, "\uFEFF") {
		t.Errorf("BOM survived decoding")
	}
	if !strings.Contains(text, "公布處置有價證券資訊") {
		t.Errorf("decoded text lost the marker line")
	}
}

func TestDecodeDocumentFailure(t *testing.T) {
	_, err := DecodeDocument(models.RawDocument{Name: "junk.bin", Content: []byte{0xFF, 0xFF, 0xFF}})
	var decodeErr *apperrors.DecodeError
	if !apperrors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want DecodeError", err)
	}

	_, err = DecodeDocument(models.RawDocument{Name: "empty.csv", Content: nil})
	if !apperrors.Is(err, apperrors.ErrEmptyDocument) {
		t.Fatalf("empty document error = %v", err)
	}
}
