// Package models provides domain models for the disposal watch-list.
package models

import (
	"time"
)

// MatchTier represents the order-matching interval a disposal imposes.
// The stored values mirror the official announcements ("5" and "20" minutes).
type MatchTier string

const (
	// TierFiveMinute is the standard disposal tier (5-minute matching).
	TierFiveMinute MatchTier = "5"
	// TierTwentyMinute is the strict tier applied on repeat violations
	// (20-minute matching, usually with prepaid collateral).
	TierTwentyMinute MatchTier = "20"
)

// SecurityStatus classifies a security in the daily status history.
type SecurityStatus string

const (
	StatusAttention SecurityStatus = "注意股"
	StatusDisposal  SecurityStatus = "處置股"
)

// LayoutKind identifies a known source document layout.
type LayoutKind string

const (
	// LayoutExchangeListed is the listed-market official disposal export.
	LayoutExchangeListed LayoutKind = "EXCHANGE_LISTED"
	// LayoutOverCounter is the over-the-counter official disposal export.
	LayoutOverCounter LayoutKind = "OVER_COUNTER"
	// LayoutGeneric is the fallback for unrecognized documents.
	LayoutGeneric LayoutKind = "GENERIC"
)

// SourceLayout describes how to read one raw document: how many lines to
// skip before the header row and which columns carry the restriction period
// and reason. Empty column names mean the field is unavailable.
type SourceLayout struct {
	Kind         LayoutKind
	HeaderSkip   int
	PeriodColumn string
	ReasonColumn string
}

// RawDocument is one uploaded, scraped, or pasted byte blob. It is never
// persisted; the name is only an origin hint for logs and reports.
type RawDocument struct {
	Name    string
	Content []byte
}

// DisposalRecord is the canonical watch-list entry for one security under a
// regulatory disposal measure. Dates are calendar dates at midnight UTC.
type DisposalRecord struct {
	Code        string
	DisplayName string
	MatchTier   MatchTier
	PeriodStart time.Time // zero when the source layout omits the start
	ReleaseDate time.Time
	Reason      string
}

// Active reports whether the record is still under disposal on the given
// logical date. The boundary is exclusive: a record releases on its release
// date, so it survives only while ReleaseDate is strictly after today.
func (r DisposalRecord) Active(today time.Time) bool {
	return r.ReleaseDate.After(today)
}

// EntersAfter reports whether the disposal period has not yet begun on the
// given logical date. Records without a known start never qualify.
func (r DisposalRecord) EntersAfter(today time.Time) bool {
	return !r.PeriodStart.IsZero() && r.PeriodStart.After(today)
}

// StatusRecord is one daily status observation for a security.
type StatusRecord struct {
	Date   string // YYYY-MM-DD
	Code   string
	Status SecurityStatus
}
