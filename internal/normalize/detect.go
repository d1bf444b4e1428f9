package normalize

import (
	"strings"

	"disposal-watch/internal/models"
)

// Marker strings and canonical column names used by the official exports.
const (
	markerExchangeListed = "公布處置有價證券資訊"
	markerOverCounter    = "上櫃處置股票資訊"
	markerPeriodPrefix   = "期間:"

	codeColumn    = "證券代號"
	nameColumn    = "證券名稱"
	contentColumn = "處置內容"
)

// headerScanLimit bounds how deep the generic fallback looks for a header row.
const headerScanLimit = 5

// DetectLayout classifies a decoded document into a known source layout by
// its leading marker lines. It never fails: unrecognized documents get the
// generic layout, whose period/reason columns are resolved later from the
// actual header via ResolveColumns.
func DetectLayout(lines []string) models.SourceLayout {
	if len(lines) > 0 {
		first := lines[0]
		if strings.Contains(first, markerExchangeListed) {
			return models.SourceLayout{
				Kind:         models.LayoutExchangeListed,
				HeaderSkip:   1,
				PeriodColumn: "處置起迄時間",
				ReasonColumn: "處置條件",
			}
		}
		if strings.Contains(first, markerOverCounter) || strings.Contains(first, markerPeriodPrefix) {
			return models.SourceLayout{
				Kind:         models.LayoutOverCounter,
				HeaderSkip:   2,
				PeriodColumn: "處置起訖時間",
				ReasonColumn: "處置原因",
			}
		}
	}

	layout := models.SourceLayout{Kind: models.LayoutGeneric}
	limit := len(lines)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		if strings.Contains(lines[i], codeColumn) {
			layout.HeaderSkip = i
			break
		}
	}
	return layout
}

// ResolveColumns fills in the generic layout's period and reason columns by
// substring search over the actual header names. Columns that cannot be
// resolved stay empty and downstream treats those fields as unavailable.
func ResolveColumns(header []string, layout models.SourceLayout) models.SourceLayout {
	if layout.Kind != models.LayoutGeneric {
		return layout
	}
	for _, name := range header {
		name = strings.TrimSpace(name)
		if layout.PeriodColumn == "" && strings.Contains(name, "處置起") {
			layout.PeriodColumn = name
			continue
		}
		if layout.ReasonColumn == "" && (strings.Contains(name, "原因") || strings.Contains(name, "條件")) {
			layout.ReasonColumn = name
		}
	}
	return layout
}
