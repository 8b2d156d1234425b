package attendance

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const secondsPerDay = 24 * 60 * 60

// clockPattern matches H:MM or HH:MM with optional :SS. Minutes must be two digits.
var clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?`)

// ParseTimeValue normalizes a spreadsheet time cell into canonical "HH:mm".
// It accepts a day fraction as written by spreadsheet tools (0.5 is noon) or a
// clock string; anything else yields nil, meaning no time was recorded.
func ParseTimeValue(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	if fraction, err := strconv.ParseFloat(value, 64); err == nil {
		return parseDayFraction(fraction)
	}

	m := clockPattern.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours > 23 || minutes > 59 {
		return nil
	}
	return canonicalTime(hours, minutes)
}

func parseDayFraction(fraction float64) *string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) || fraction < 0 {
		return nil
	}
	// A full date-time serial carries the day in its integer part.
	_, frac := math.Modf(fraction)

	totalSeconds := int(math.Round(frac*secondsPerDay)) % secondsPerDay
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	return canonicalTime(hours, minutes)
}

func canonicalTime(hours, minutes int) *string {
	s := fmt.Sprintf("%02d:%02d", hours, minutes)
	return &s
}

// minutesSinceMidnight reads a canonical "HH:mm" value.
func minutesSinceMidnight(canonical string) (int, bool) {
	h, m, ok := strings.Cut(canonical, ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return hours*60 + minutes, true
}
