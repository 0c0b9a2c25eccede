package provider

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// yearRegex matches 4-digit years between 1900-2100
var yearRegex = regexp.MustCompile(`(19[0-9]{2}|20[0-9]{2}|2100)`)

// ParseYear extracts the first plausible year from a string
func ParseYear(s string) string {
	return yearRegex.FindString(s)
}

// DateYear returns the first four characters of a release date, or "" when
// the value is too short to hold a year.
func DateYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// RoundRating trims float32 noise from provider vote averages
func RoundRating(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Round(v*1000) / 1000
}

// Finalize enforces the record invariants on a provider's raw results: rows
// without a title are dropped and rows without an id get one from their
// position. The returned slice is never nil.
func Finalize(movies []Movie, source Source) []Movie {
	out := make([]Movie, 0, len(movies))
	for i, m := range movies {
		m.Title = strings.TrimSpace(m.Title)
		if m.Title == "" {
			continue
		}
		if strings.TrimSpace(m.ID) == "" {
			m.ID = string(source) + "-" + strconv.Itoa(i)
		}
		m.Source = source
		out = append(out, m)
	}
	return out
}
