// Package ranking orders candidate days under the engine's fixed
// lexicographic comparator. The order is total and replayable: regime,
// then opportunity score, then weather alert, then local competition,
// then the date itself. A field absent on a record always sorts after
// any present value, in both directions.
package ranking

import (
	"sort"
	"strings"

	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/signal"
)

// Mode selects which end of the order comes first.
type Mode string

const (
	BestFirst  Mode = "best_first"
	WorstFirst Mode = "worst_first"
)

// MaxShortlist is the hard cap on returned records.
const MaxShortlist = 7

// Result is one ranking pass.
type Result struct {
	Days []forecast.DayRecord
	// Tie is set when the top two results are equivalent on every
	// comparator field except the date itself.
	Tie bool
	// ExcludedDates lists days removed by the hard pre-filter, for
	// caveat rendering.
	ExcludedDates []string
}

// HardExcluded reports whether the record fails the hard pre-filter:
// regime C or a blocking weather alert.
func HardExcluded(rec forecast.DayRecord) bool {
	if rec.Regime == forecast.RegimeC {
		return true
	}
	return rec.WeatherAlert != nil && *rec.WeatherAlert >= signal.BlockingAlertLevel
}

// Rank filters, orders and truncates the given days. topN is clamped to
// [1, MaxShortlist]. The input slice is not mutated.
func Rank(days []forecast.DayRecord, mode Mode, hardOnly bool, topN int) Result {
	if topN < 1 {
		topN = 1
	}
	if topN > MaxShortlist {
		topN = MaxShortlist
	}

	var res Result
	kept := make([]forecast.DayRecord, 0, len(days))
	for _, d := range days {
		if hardOnly && HardExcluded(d) {
			res.ExcludedDates = append(res.ExcludedDates, d.Date)
			continue
		}
		kept = append(kept, d)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return Compare(kept[i], kept[j], mode) < 0
	})

	res.Tie = len(kept) >= 2 && Equivalent(kept[0], kept[1])

	if len(kept) > topN {
		kept = kept[:topN]
	}
	res.Days = kept
	return res
}

// Compare defines the total order: negative when a comes before b under
// the given mode. Worst-first swaps better and worse on every value
// comparison but keeps absent-sorts-last and the ascending-date final
// tie-break.
func Compare(a, b forecast.DayRecord, mode Mode) int {
	if c := compareCore(a, b, mode); c != 0 {
		return c
	}
	return strings.Compare(a.Date, b.Date)
}

// Equivalent reports whether the comparator cannot separate the two
// records by anything but their dates.
func Equivalent(a, b forecast.DayRecord) bool {
	return compareCore(a, b, BestFirst) == 0
}

// compareCore runs the four value fields of the comparator.
func compareCore(a, b forecast.DayRecord, mode Mode) int {
	inv := 1
	if mode == WorstFirst {
		inv = -1
	}

	// 1. Regime rank ascending, unknown last.
	if c, decided := presenceOrder(a.Regime != forecast.RegimeUnknown, b.Regime != forecast.RegimeUnknown); decided {
		if c != 0 {
			return c
		}
	} else if c := cmpInt(a.Regime.Rank(), b.Regime.Rank()); c != 0 {
		return c * inv
	}

	// 2. Opportunity score descending, missing last.
	if c, decided := presenceOrder(a.Score != nil, b.Score != nil); decided {
		if c != 0 {
			return c
		}
	} else if c := cmpFloat(*b.Score, *a.Score); c != 0 {
		return c * inv
	}

	// 3. Weather alert ascending, missing last.
	if c, decided := presenceOrder(a.WeatherAlert != nil, b.WeatherAlert != nil); decided {
		if c != 0 {
			return c
		}
	} else if c := cmpInt(*a.WeatherAlert, *b.WeatherAlert); c != 0 {
		return c * inv
	}

	// 4. Local competition ascending, missing last.
	la, lb := signal.LocalCount(a), signal.LocalCount(b)
	if c, decided := presenceOrder(la != nil, lb != nil); decided {
		if c != 0 {
			return c
		}
	} else if c := cmpInt(*la, *lb); c != 0 {
		return c * inv
	}

	return 0
}

// presenceOrder settles a field when at least one side is missing:
// decided is true when no value comparison should run, and c orders the
// present side first.
func presenceOrder(aPresent, bPresent bool) (c int, decided bool) {
	switch {
	case aPresent && bPresent:
		return 0, false
	case aPresent:
		return -1, true
	case bPresent:
		return 1, true
	default:
		return 0, true
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
