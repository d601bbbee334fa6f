package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	testCases := []struct {
		in       string
		expected Clock
		wantErr  bool
	}{
		{in: "09:30", expected: Clock{Hour: 9, Minute: 30}},
		{in: "14:05:59", expected: Clock{Hour: 14, Minute: 5, Second: 59}},
		{in: " 23:59:01.123456 ", expected: Clock{Hour: 23, Minute: 59, Second: 1}},
		{in: "25:00", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClock_JSON(t *testing.T) {
	c := Clock{Hour: 7, Minute: 3, Second: 9}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"07:03:09"`, string(b))

	var back Clock
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)

	assert.Error(t, json.Unmarshal([]byte(`"7 o'clock"`), &back))
}

func TestClock_Scan(t *testing.T) {
	var c Clock
	require.NoError(t, c.Scan("10:15:00"))
	assert.Equal(t, Clock{Hour: 10, Minute: 15}, c)

	require.NoError(t, c.Scan([]byte("11:00")))
	assert.Equal(t, 11, c.Hour)

	require.NoError(t, c.Scan(time.Date(2000, 1, 1, 16, 45, 30, 0, time.UTC)))
	assert.Equal(t, Clock{Hour: 16, Minute: 45, Second: 30}, c)

	assert.Error(t, c.Scan(42))
	assert.True(t, Clock{Hour: 9}.Before(Clock{Hour: 9, Second: 1}))
}

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		in       string
		expected Direction
	}{
		{in: "BUY", expected: DirectionBuy},
		{in: "sell", expected: DirectionSell},
		{in: "BUY LIMIT", expected: DirectionBuyLimit},
		{in: "sell-limit", expected: DirectionSellLimit},
		{in: "SELL_LIMIT", expected: DirectionSellLimit},
	}
	for _, tc := range testCases {
		got, err := ParseDirection(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.expected, got)
	}

	_, err := ParseDirection("HOLD")
	assert.Error(t, err)
}

func TestDirection_IsBuy(t *testing.T) {
	assert.True(t, DirectionBuy.IsBuy())
	assert.True(t, DirectionBuyLimit.IsBuy())
	assert.False(t, DirectionSell.IsBuy())
	assert.False(t, DirectionSellLimit.IsBuy())
}

func TestParseOrigin(t *testing.T) {
	o, err := ParseOrigin(" signal ")
	require.NoError(t, err)
	assert.Equal(t, OriginSignal, o)

	_, err = ParseOrigin("rumour")
	assert.Error(t, err)
}

func TestTrade_Derived(t *testing.T) {
	tr := Trade{ExitPrice: decimal.Zero, NetResult: decimal.Zero}
	assert.True(t, tr.IsOpen())
	assert.Equal(t, OutcomeLost, tr.Outcome())
	_, ok := tr.Hour()
	assert.False(t, ok)

	tr.ExitPrice = decimal.NewFromInt(2)
	tr.NetResult = decimal.NewFromFloat(0.01)
	tr.EntryTime = &Clock{Hour: 13}
	assert.False(t, tr.IsOpen())
	assert.Equal(t, OutcomeWon, tr.Outcome())
	h, ok := tr.Hour()
	assert.True(t, ok)
	assert.Equal(t, 13, h)
}
