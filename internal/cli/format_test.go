package cli

import (
	"testing"
	"time"

	"disposal-watch/internal/models"
)

func TestAnnotate(t *testing.T) {
	release := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		rec  models.DisposalRecord
		want string
	}{
		{
			name: "plain disposal",
			rec:  models.DisposalRecord{MatchTier: models.TierFiveMinute, ReleaseDate: release},
			want: "一般冷卻",
		},
		{
			name: "strict tier",
			rec:  models.DisposalRecord{MatchTier: models.TierTwentyMinute, ReleaseDate: release},
			want: "重刑犯(預收)",
		},
		{
			name: "day trade lock",
			rec: models.DisposalRecord{
				MatchTier:   models.TierFiveMinute,
				ReleaseDate: release,
				Reason:      "當日沖銷比率過高",
			},
			want: "當沖加關",
		},
		{
			name: "both notes",
			rec: models.DisposalRecord{
				MatchTier:   models.TierTwentyMinute,
				ReleaseDate: release,
				Reason:      "當日沖銷比率過高",
			},
			want: "當沖加關 / 重刑犯(預收)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Annotate(tt.rec); got != tt.want {
				t.Errorf("Annotate = %q, want %q", got, tt.want)
			}
		})
	}
}
