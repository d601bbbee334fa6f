package models

import (
	"fmt"
	"strings"
	"unicode"
)

// Direction is the side of a trade.
type Direction string

const (
	DirectionBuy       Direction = "BUY"
	DirectionSell      Direction = "SELL"
	DirectionBuyLimit  Direction = "BUY_LIMIT"
	DirectionSellLimit Direction = "SELL_LIMIT"
)

// Directions lists every accepted direction in display order.
var Directions = []Direction{DirectionBuy, DirectionSell, DirectionBuyLimit, DirectionSellLimit}

// IsBuy reports whether the direction profits from a rising price.
func (d Direction) IsBuy() bool {
	return d == DirectionBuy || d == DirectionBuyLimit
}

func (d Direction) Valid() bool {
	switch d {
	case DirectionBuy, DirectionSell, DirectionBuyLimit, DirectionSellLimit:
		return true
	}
	return false
}

// ParseDirection accepts "BUY LIMIT", "buy-limit" and "BUY_LIMIT" alike.
func ParseDirection(s string) (Direction, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	d := Direction(norm)
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// Origin records where the trade idea came from.
type Origin string

const (
	OriginOwn        Origin = "OWN"
	OriginSignal     Origin = "SIGNAL"
	OriginMentorship Origin = "MENTORSHIP"
	OriginBot        Origin = "BOT"
)

var Origins = []Origin{OriginOwn, OriginSignal, OriginMentorship, OriginBot}

func (o Origin) Valid() bool {
	switch o {
	case OriginOwn, OriginSignal, OriginMentorship, OriginBot:
		return true
	}
	return false
}

func ParseOrigin(s string) (Origin, error) {
	o := Origin(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("unknown origin %q", s)
	}
	return o, nil
}

// Outcome is the won/lost label derived from a trade's net result.
type Outcome string

const (
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
)

// LabelKey folds a list label for matching. Leading symbols such as an emoji
// prefix are dropped and case is ignored, so "🎯 Confiado" and "confiado"
// share a key.
func LabelKey(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(strings.TrimSpace(s))
}
