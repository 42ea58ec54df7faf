// Package dates extracts literal calendar dates from free-text French
// questions. It recognizes ISO dates, slash forms and month-name
// expressions (single days, day lists sharing one month, omitted years)
// and reports tokens that look like dates but cannot be resolved, so the
// caller can ask for clarification instead of silently ignoring them.
//
// Extraction is a pure function of (text, anchor): same inputs always
// yield the same result.
package dates

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ziadkadry99/venue-scout/internal/textnorm"
)

// Extraction is the result of scanning one question for date mentions.
type Extraction struct {
	// Dates are the resolved ISO dates, de-duplicated, in order of first
	// occurrence in the text.
	Dates []string
	// HasDateToken is true when anything date-like was found, resolved
	// or not.
	HasDateToken bool
	// UnparsedDateToken is true when a date-like token was found but
	// could not be resolved to a calendar day.
	UnparsedDateToken bool
}

// ISO calendar day layout used across the engine.
const Layout = "2006-01-02"

// monthNumbers maps folded French month names and their abbreviations to
// month numbers. Full names must stay ahead of their abbreviations in
// monthAlternation below so the regexp prefers the longer match.
var monthNumbers = map[string]time.Month{
	"janvier": time.January, "janv": time.January,
	"fevrier": time.February, "fevr": time.February,
	"mars":    time.March,
	"avril":   time.April,
	"mai":     time.May,
	"juin":    time.June,
	"juillet": time.July, "juil": time.July,
	"aout":      time.August,
	"septembre": time.September, "sept": time.September,
	"octobre": time.October, "oct": time.October,
	"novembre": time.November, "nov": time.November,
	"decembre": time.December, "dec": time.December,
}

const monthAlternation = `janvier|fevrier|juillet|septembre|octobre|novembre|decembre|avril|mars|juin|aout|janv|fevr|juil|sept|oct|nov|dec|mai`

var (
	reISO      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	reSlashYMD = regexp.MustCompile(`\b(\d{4})/(\d{1,2})/(\d{1,2})\b`)
	reSlashDMY = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	// Slash forms with a 2-digit year or no year at all are detected but
	// ambiguous: they only ever produce an unparsed-token report.
	reSlashLoose = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{1,2})?\b`)
	// Day lists sharing one month: "26, 27 et 28 janv. 2026", "le 14 mars".
	reFrench = regexp.MustCompile(`\b(\d{1,2}(?:(?:\s*,\s*|\s+et\s+)\d{1,2})*)\s+(` + monthAlternation + `)(?:\.|\b)(?:\s*(\d{4}))?`)
	// Standalone year mention, used for year inference when the date
	// expression itself omits the year.
	reBareYear = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	reDayNumber = regexp.MustCompile(`\d{1,2}`)
)

type span struct{ start, end int }

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

type mention struct {
	pos  int
	date string
}

// Extract scans text for date mentions. The anchor date drives year
// inference for mentions that omit the year: a bare "day month" whose
// month is chronologically before the anchor's month is assumed to be
// next year, any other month is assumed to be the anchor's year. An
// explicit 4-digit year in the text always wins.
func Extract(text string, anchor time.Time) Extraction {
	folded := textnorm.Fold(text)

	var (
		out      Extraction
		mentions []mention
		consumed []span
	)

	add := func(pos, y int, m time.Month, d int) {
		out.HasDateToken = true
		iso, ok := makeISO(y, m, d)
		if !ok {
			out.UnparsedDateToken = true
			return
		}
		mentions = append(mentions, mention{pos: pos, date: iso})
	}

	for _, loc := range reISO.FindAllStringSubmatchIndex(folded, -1) {
		consumed = append(consumed, span{loc[0], loc[1]})
		y, m, d := atoi(folded[loc[2]:loc[3]]), atoi(folded[loc[4]:loc[5]]), atoi(folded[loc[6]:loc[7]])
		add(loc[0], y, time.Month(m), d)
	}
	for _, loc := range reSlashYMD.FindAllStringSubmatchIndex(folded, -1) {
		if overlaps(consumed, loc[0], loc[1]) {
			continue
		}
		consumed = append(consumed, span{loc[0], loc[1]})
		y, m, d := atoi(folded[loc[2]:loc[3]]), atoi(folded[loc[4]:loc[5]]), atoi(folded[loc[6]:loc[7]])
		add(loc[0], y, time.Month(m), d)
	}
	for _, loc := range reSlashDMY.FindAllStringSubmatchIndex(folded, -1) {
		if overlaps(consumed, loc[0], loc[1]) {
			continue
		}
		consumed = append(consumed, span{loc[0], loc[1]})
		d, m, y := atoi(folded[loc[2]:loc[3]]), atoi(folded[loc[4]:loc[5]]), atoi(folded[loc[6]:loc[7]])
		add(loc[0], y, time.Month(m), d)
	}
	for _, loc := range reSlashLoose.FindAllStringIndex(folded, -1) {
		if overlaps(consumed, loc[0], loc[1]) {
			continue
		}
		consumed = append(consumed, span{loc[0], loc[1]})
		out.HasDateToken = true
		out.UnparsedDateToken = true
	}

	bareYear := inferBareYear(folded, consumed)

	for _, loc := range reFrench.FindAllStringSubmatchIndex(folded, -1) {
		if overlaps(consumed, loc[0], loc[1]) {
			continue
		}
		consumed = append(consumed, span{loc[0], loc[1]})

		monthName := folded[loc[4]:loc[5]]
		m, ok := monthNumbers[monthName]
		if !ok {
			out.HasDateToken = true
			out.UnparsedDateToken = true
			continue
		}

		year := 0
		switch {
		case loc[6] >= 0:
			year = atoi(folded[loc[6]:loc[7]])
		case bareYear != 0:
			year = bareYear
		case m < anchor.Month():
			year = anchor.Year() + 1
		default:
			year = anchor.Year()
		}

		for _, dayTok := range reDayNumber.FindAllString(folded[loc[2]:loc[3]], -1) {
			add(loc[0], year, m, atoi(dayTok))
		}
	}

	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].pos < mentions[j].pos })

	seen := make(map[string]bool, len(mentions))
	for _, m := range mentions {
		if seen[m.date] {
			continue
		}
		seen[m.date] = true
		out.Dates = append(out.Dates, m.date)
	}
	return out
}

// inferBareYear finds a standalone 4-digit year outside already consumed
// date tokens. Returns 0 when none exists.
func inferBareYear(folded string, consumed []span) int {
	for _, loc := range reBareYear.FindAllStringIndex(folded, -1) {
		if overlaps(consumed, loc[0], loc[1]) {
			continue
		}
		return atoi(folded[loc[0]:loc[1]])
	}
	return 0
}

// makeISO validates the calendar day and formats it. Out-of-range
// components (Feb 30, month 13) are rejected rather than normalized.
func makeISO(y int, m time.Month, d int) (string, bool) {
	if y < 1900 || y > 2200 || m < time.January || m > time.December || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Month() != m || t.Day() != d {
		return "", false
	}
	return t.Format(Layout), true
}

// ParseISO parses an engine-internal ISO calendar day.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// AddDays shifts an ISO date by n calendar days.
func AddDays(iso string, n int) (string, error) {
	t, err := ParseISO(iso)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
