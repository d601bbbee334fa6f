package store

import (
	"strings"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/models"
)

// Vocabulary maps the free-text list columns between their stored form and
// the configured master lists. Instruments are written by display label, as
// rows from earlier clients are, and read back as instrument ids. Strategies,
// emotions and sessions resolve to the configured entry, ignoring case and a
// leading emoji. Unknown values pass through trimmed. The zero Vocabulary
// translates nothing.
type Vocabulary struct {
	labels      map[string]string // instrument id -> label
	instruments map[string]string // folded id or label -> id
	strategies  map[string]string
	emotions    map[string]string
	sessions    map[string]string
}

// NewVocabulary indexes the journal's master lists.
func NewVocabulary(j config.Journal) Vocabulary {
	v := Vocabulary{
		labels:      make(map[string]string, len(j.Instruments)),
		instruments: make(map[string]string, 2*len(j.Instruments)),
		strategies:  index(j.Strategies),
		emotions:    index(j.Emotions),
		sessions:    index(j.Sessions),
	}
	for _, in := range j.Instruments {
		label := in.Label
		if label == "" {
			label = in.ID
		}
		v.labels[in.ID] = label
		v.instruments[models.LabelKey(in.ID)] = in.ID
		v.instruments[models.LabelKey(label)] = in.ID
	}
	return v
}

func index(list []string) map[string]string {
	out := make(map[string]string, len(list))
	for _, item := range list {
		out[models.LabelKey(item)] = item
	}
	return out
}

func (v Vocabulary) instrumentLabel(id string) string {
	if label, ok := v.labels[id]; ok {
		return label
	}
	return id
}

func (v Vocabulary) instrumentID(stored string) string {
	return lookup(v.instruments, stored)
}

func lookup(m map[string]string, stored string) string {
	if canonical, ok := m[models.LabelKey(stored)]; ok {
		return canonical
	}
	return strings.TrimSpace(stored)
}
