package analytics

import (
	"sort"

	"trading-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

// NotAvailable marks an undefined best/worst entry on an empty trade set.
const NotAvailable = "N/A"

// GroupTotal is the summed net result of the trades sharing a key.
type GroupTotal struct {
	Key    string          `json:"key"`
	Net    decimal.Decimal `json:"net"`
	Trades int             `json:"trades"`
}

// HourTotal is the summed net result of the trades entered in one hour of day.
type HourTotal struct {
	Hour   int             `json:"hour"`
	Net    decimal.Decimal `json:"net"`
	Trades int             `json:"trades"`
}

// LabelCount is one row of a frequency table. Share is a percentage.
type LabelCount struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Extreme names the best or worst group and its net result.
type Extreme struct {
	Key string          `json:"key"`
	Net decimal.Decimal `json:"net"`
}

// GroupBy sums net results per key in first-seen order.
func GroupBy(trades []models.Trade, key func(models.Trade) string) []GroupTotal {
	index := make(map[string]int)
	groups := make([]GroupTotal, 0)
	for _, t := range trades {
		k := key(t)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupTotal{Key: k, Net: decimal.Zero})
		}
		groups[i].Net = groups[i].Net.Add(t.NetResult)
		groups[i].Trades++
	}
	return groups
}

// Extremes returns the groups with the highest and lowest net. The first group
// wins ties. Both are NotAvailable when groups is empty.
func Extremes(groups []GroupTotal) (best, worst Extreme) {
	if len(groups) == 0 {
		na := Extreme{Key: NotAvailable, Net: decimal.Zero}
		return na, na
	}
	b, w := groups[0], groups[0]
	for _, g := range groups[1:] {
		if g.Net.GreaterThan(b.Net) {
			b = g
		}
		if g.Net.LessThan(w.Net) {
			w = g
		}
	}
	return Extreme{Key: b.Key, Net: b.Net}, Extreme{Key: w.Key, Net: w.Net}
}

// byNetDesc returns a copy of groups ordered from most to least profitable.
func byNetDesc(groups []GroupTotal) []GroupTotal {
	out := make([]GroupTotal, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Net.GreaterThan(out[j].Net)
	})
	return out
}

// Hourly buckets trades by entry hour, ascending. Trades without an entry time
// are skipped.
func Hourly(trades []models.Trade) []HourTotal {
	var buckets [24]*HourTotal
	for _, t := range trades {
		h, ok := t.Hour()
		if !ok || h < 0 || h > 23 {
			continue
		}
		if buckets[h] == nil {
			buckets[h] = &HourTotal{Hour: h, Net: decimal.Zero}
		}
		buckets[h].Net = buckets[h].Net.Add(t.NetResult)
		buckets[h].Trades++
	}

	out := make([]HourTotal, 0)
	for _, b := range buckets {
		if b != nil {
			out = append(out, *b)
		}
	}
	return out
}

func hourExtremes(hours []HourTotal) (best, worst *HourTotal) {
	for i := range hours {
		h := hours[i]
		if best == nil || h.Net.GreaterThan(best.Net) {
			best = &h
		}
		if worst == nil || h.Net.LessThan(worst.Net) {
			worst = &h
		}
	}
	return best, worst
}

// Frequencies counts trades per label, most frequent first.
func Frequencies(trades []models.Trade, label func(models.Trade) string) []LabelCount {
	index := make(map[string]int)
	out := make([]LabelCount, 0)
	for _, t := range trades {
		l := label(t)
		i, ok := index[l]
		if !ok {
			i = len(out)
			index[l] = i
			out = append(out, LabelCount{Label: l})
		}
		out[i].Count++
	}
	for i := range out {
		out[i].Share = float64(out[i].Count) / float64(len(trades)) * 100
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
