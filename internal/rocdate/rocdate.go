// Package rocdate converts ROC (Minguo) and Gregorian date expressions found
// in disposal announcements into canonical calendar dates.
package rocdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "disposal-watch/internal/errors"
)

// rocEpochOffset is the difference between ROC and Gregorian year numbers.
const rocEpochOffset = 1911

// DateLayout is the canonical textual date form used across the store.
const DateLayout = "2006-01-02"

// dateToken matches one date expression: either slash/dash separated
// (114/12/24, 2025-12-24) or the 年月日 form (114年12月24日). A 3-digit year
// component is a ROC year; a 4-digit one is Gregorian.
var dateToken = regexp.MustCompile(`(\d{3,4})[/\-年](\d{1,2})[/\-月](\d{1,2})日?`)

var zhWeekdays = [7]string{"日", "一", "二", "三", "四", "五", "六"}

// ParsePeriod extracts the restriction period boundaries from free-form
// period text. Ranges ("114/12/24~114/12/31") yield both boundaries; a lone
// date (commonly "至114年12月31日") yields only the end. The returned start
// is zero when the text carries no start boundary.
func ParsePeriod(text string) (start, end time.Time, err error) {
	clean := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	matches := dateToken.FindAllStringSubmatch(clean, -1)
	switch len(matches) {
	case 0:
		return time.Time{}, time.Time{}, apperrors.ErrUnparseableDate
	case 1:
		end, err = parseToken(matches[0])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return time.Time{}, end, nil
	default:
		// Two or more dates: the first is the start, the last is the end.
		start, err = parseToken(matches[0])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err = parseToken(matches[len(matches)-1])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}
}

// ToReleaseDate resolves period text to the restriction start (zero when
// unstated) and the release date: the day after the stated end date, the
// first day the security trades unrestricted again.
func ToReleaseDate(text string) (start, release time.Time, err error) {
	start, end, err := ParsePeriod(text)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end.AddDate(0, 0, 1), nil
}

func parseToken(m []string) (time.Time, error) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if len(m[1]) == 3 {
		// The ROC epoch offset applies only to 3-digit year components.
		year += rocEpochOffset
	}
	return makeDate(year, month, day)
}

// makeDate builds a calendar date, rejecting triples time.Date would silently
// normalize (month 13, day 32).
func makeDate(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, apperrors.Wrapf(apperrors.ErrUnparseableDate, "invalid calendar date %d/%d/%d", year, month, day)
	}
	return t, nil
}

// DefaultCutoverHour is the hour before which the prior calendar day still
// counts as "today" for expiry purposes.
const DefaultCutoverHour = 6

// LogicalToday maps wall-clock time to the operator's trading date using the
// default cutover hour.
func LogicalToday(now time.Time) time.Time {
	return LogicalTodayAt(now, DefaultCutoverHour)
}

// LogicalTodayAt maps wall-clock time to the operator's trading date: before
// the cutover hour the prior calendar day still counts as "today".
func LogicalTodayAt(now time.Time, cutoverHour int) time.Time {
	if now.Hour() < cutoverHour {
		now = now.AddDate(0, 0, -1)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatShort renders a date in the compact dashboard form "12/24(三)".
func FormatShort(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d(%s)", int(t.Month()), t.Day(), zhWeekdays[t.Weekday()])
}
