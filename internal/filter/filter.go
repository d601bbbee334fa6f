// Package filter narrows a trade sequence to the user's instrument and
// strategy selection.
package filter

import "trading-journal-go/internal/models"

// Selection holds the allowed values per dimension. An empty set on a
// dimension means "no filtering" on it, not "exclude everything".
type Selection struct {
	Instruments []string `json:"instruments,omitempty"`
	Strategies  []string `json:"strategies,omitempty"`
}

// Empty reports whether the selection lets every trade through.
func (s Selection) Empty() bool {
	return len(s.Instruments) == 0 && len(s.Strategies) == 0
}

// Apply returns the trades matching sel, keeping their relative order.
// The input slice is never modified.
func Apply(trades []models.Trade, sel Selection) []models.Trade {
	instruments := toSet(sel.Instruments)
	strategies := toSet(sel.Strategies)

	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if !allowed(instruments, t.Instrument) || !allowed(strategies, t.Strategy) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Distinct returns the distinct instruments and strategies present in trades,
// in first-seen order. These are the choices a selection can be made from.
func Distinct(trades []models.Trade) (instruments, strategies []string) {
	seenI := make(map[string]struct{})
	seenS := make(map[string]struct{})
	instruments, strategies = make([]string, 0), make([]string, 0)
	for _, t := range trades {
		if _, ok := seenI[t.Instrument]; !ok {
			seenI[t.Instrument] = struct{}{}
			instruments = append(instruments, t.Instrument)
		}
		if _, ok := seenS[t.Strategy]; !ok {
			seenS[t.Strategy] = struct{}{}
			strategies = append(strategies, t.Strategy)
		}
	}
	return instruments, strategies
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func allowed(set map[string]struct{}, v string) bool {
	if set == nil {
		return true
	}
	_, ok := set[v]
	return ok
}
