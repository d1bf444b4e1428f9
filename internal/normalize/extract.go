package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
	"disposal-watch/internal/rocdate"
)

// unknownName labels records whose source row carries no security name.
const unknownName = "未知"

// slowTierMarkers identify the 20-minute matching tier in the restriction
// content, including the spelled-out form some bulletins use.
var slowTierMarkers = []string{"20", "二十"}

// codePattern locates a security code inside a free-text fragment.
var codePattern = regexp.MustCompile(`\b(\d{4,6})\b`)

// Row is one parsed tabular row keyed by header column name.
type Row map[string]string

// ExtractRecord turns one tabular row into a canonical DisposalRecord. Rows
// without a usable code or a parseable period are rejected with a RowError;
// callers treat that as "skip this row".
func ExtractRecord(row Row, layout models.SourceLayout) (models.DisposalRecord, error) {
	code := NormalizeCode(row[codeColumn])
	if code == "" {
		return models.DisposalRecord{}, apperrors.NewRowError(codeColumn, row[codeColumn], apperrors.ErrMissingCode)
	}

	if layout.PeriodColumn == "" {
		return models.DisposalRecord{}, apperrors.NewRowError("period", "", apperrors.ErrUnparseableDate)
	}
	periodText := row[layout.PeriodColumn]
	start, release, err := rocdate.ToReleaseDate(periodText)
	if err != nil {
		return models.DisposalRecord{}, apperrors.NewRowError(layout.PeriodColumn, periodText, err)
	}

	name := strings.TrimSpace(row[nameColumn])
	if name == "" {
		name = unknownName
	}

	reason := ""
	if layout.ReasonColumn != "" {
		reason = strings.TrimSpace(row[layout.ReasonColumn])
	}

	return models.DisposalRecord{
		Code:        code,
		DisplayName: fmt.Sprintf("%s (%s)", name, code),
		MatchTier:   detectTier(row[contentColumn]),
		PeriodStart: start,
		ReleaseDate: release,
		Reason:      reason,
	}, nil
}

// ExtractFragment extracts a record from free-form pasted text, such as a
// bulletin paragraph. The whole fragment serves as the restriction content.
func ExtractFragment(text string) (models.DisposalRecord, error) {
	m := codePattern.FindStringSubmatch(text)
	if m == nil {
		return models.DisposalRecord{}, apperrors.NewRowError("code", text, apperrors.ErrMissingCode)
	}
	code := m[1]

	start, release, err := rocdate.ToReleaseDate(text)
	if err != nil {
		return models.DisposalRecord{}, apperrors.NewRowError("period", text, err)
	}

	return models.DisposalRecord{
		Code:        code,
		DisplayName: fmt.Sprintf("%s (%s)", unknownName, code),
		MatchTier:   detectTier(text),
		PeriodStart: start,
		ReleaseDate: release,
	}, nil
}

// detectTier classifies the matching tier from the restriction content only.
// Dates and counts elsewhere in a row routinely contain "20", so the search
// never widens beyond the content field.
func detectTier(content string) models.MatchTier {
	for _, marker := range slowTierMarkers {
		if strings.Contains(content, marker) {
			return models.TierTwentyMinute
		}
	}
	return models.TierFiveMinute
}

// NormalizeCode reduces a raw security-code cell to its digits, dropping
// whitespace, appended names, and ".0"-style numeric coercion artifacts.
func NormalizeCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// expired reports whether a record's release date has already passed on the
// given logical date.
func expired(rec models.DisposalRecord, today time.Time) bool {
	return !rec.ReleaseDate.After(today)
}
