package dates

import (
	"strconv"
	"strings"
	"time"
)

// monthAbbrev holds the French compact month forms used when rendering
// day lists. Extract understands every one of them, so a formatted list
// survives a format -> parse -> format round trip.
var monthAbbrev = [13]string{
	"", "janv.", "févr.", "mars", "avril", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// FormatDay renders one ISO date as "14 mars" style French text.
// Invalid input is returned unchanged.
func FormatDay(iso string) string {
	t, err := ParseISO(iso)
	if err != nil {
		return iso
	}
	return joinDayMonth([]int{t.Day()}, t.Month())
}

// FormatCompactList renders ISO dates as a compact French enumeration,
// grouping consecutive same-month mentions: "26, 27 et 28 janv.".
// Months change mid-list as "30 janv. et 1 févr.". Invalid dates are
// skipped.
func FormatCompactList(isoDates []string) string {
	type group struct {
		month time.Month
		days  []int
	}
	var groups []group
	for _, iso := range isoDates {
		t, err := ParseISO(iso)
		if err != nil {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].month == t.Month() {
			groups[n-1].days = append(groups[n-1].days, t.Day())
			continue
		}
		groups = append(groups, group{month: t.Month(), days: []int{t.Day()}})
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, joinDayMonth(g.days, g.month))
	}
	return joinFrench(parts)
}

func joinDayMonth(days []int, m time.Month) string {
	nums := make([]string, len(days))
	for i, d := range days {
		nums[i] = strconv.Itoa(d)
	}
	return joinFrench(nums) + " " + monthAbbrev[m]
}

// joinFrench joins items with commas and a final "et".
func joinFrench(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " et " + items[len(items)-1]
	}
}
