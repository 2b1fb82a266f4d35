package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders milliseconds as H:MM:SS. Hours are not padded.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// ParseDuration parses H:MM:SS or MM:SS into milliseconds
func ParseDuration(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q: expected H:MM:SS or MM:SS", s)
	}

	values := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		// Minutes and seconds must stay below 60; the leading field is unbounded
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("invalid duration %q: field out of range", s)
		}
		values[i] = v
	}

	unit := time.Minute
	if len(values) == 3 {
		unit = time.Hour
	}

	// Scale the unbounded leading field first; the bounded tail can then
	// only overflow if the head is within an hour of the limit
	total, err := ScaleMs(values[0], unit)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDuration, s)
	}
	tail := values[len(values)-1] * 1000
	if len(values) == 3 {
		tail += values[1] * 60000
	}
	total, err = AddMs(total, tail)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDuration, s)
	}
	return total, nil
}

// ScaleMs converts n units to milliseconds. It returns ErrInvalidDuration
// instead of wrapping around when the result does not fit in an int64.
func ScaleMs(n int64, unit time.Duration) (int64, error) {
	per := int64(unit / time.Millisecond)
	if n < 0 || per <= 0 || n > math.MaxInt64/per {
		return 0, ErrInvalidDuration
	}
	return n * per, nil
}

// AddMs sums two non-negative millisecond counts, failing with
// ErrInvalidDuration on overflow
func AddMs(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, ErrInvalidDuration
	}
	return a + b, nil
}
