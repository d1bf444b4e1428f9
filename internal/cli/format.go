package cli

import (
	"strings"

	"disposal-watch/internal/models"
)

// Annotation labels shown next to watch-list entries, in the wording the
// official bulletins imply.
const (
	labelDayTradeLock = "當沖加關"
	labelStrictTier   = "重刑犯(預收)"
	labelDefault      = "一般冷卻"
)

// dayTradeMarker flags disposals that also suspend day trading.
const dayTradeMarker = "沖銷"

// Annotate renders the plain-language reading of one record: a day-trade
// lock when the reason mentions offset restrictions, the strict-tier note
// for 20-minute matching, and a default cooling label otherwise.
func Annotate(rec models.DisposalRecord) string {
	var notes []string
	if strings.Contains(rec.Reason, dayTradeMarker) {
		notes = append(notes, labelDayTradeLock)
	}
	if rec.MatchTier == models.TierTwentyMinute {
		notes = append(notes, labelStrictTier)
	}
	if len(notes) == 0 {
		return labelDefault
	}
	return strings.Join(notes, " / ")
}
