package utils

import (
	"errors"
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate accepts "2006-01-02" or RFC3339 (frontends send both).
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("invalid date format, want YYYY-MM-DD")
}

// Nights returns ceil((checkOut - checkIn) / 24h). Zero when the range is
// empty or inverted; callers validate ordering before pricing.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// RangesOverlap tests two half-open intervals [aStart,aEnd) and
// [bStart,bEnd). Touching endpoints do not conflict.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// RoundMoney rounds to 2 decimal places, half away from zero.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
