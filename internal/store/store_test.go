package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trading-journal-go/internal/analytics"
	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/database"
	"trading-journal-go/internal/filter"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/supabase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var journalVocab = NewVocabulary(config.DefaultJournal())

var alice = auth.Session{User: auth.User{ID: "alice", Email: "alice@example.com"}, AccessToken: "alice-token"}
var bob = auth.Session{User: auth.User{ID: "bob", Email: "bob@example.com"}, AccessToken: "bob-token"}

func sampleTrade(id string, date time.Time) models.Trade {
	return models.Trade{
		ID:          id,
		Date:        date,
		EntryTime:   &models.Clock{Hour: 9, Minute: 30},
		ExitTime:    &models.Clock{Hour: 11},
		Instrument:  "XAUUSD",
		Direction:   models.DirectionBuyLimit,
		Strategy:    "Pullback",
		Origin:      models.OriginMentorship,
		EntryPrice:  d("2000.50"),
		ExitPrice:   d("2005.25"),
		StopLoss:    d("1995"),
		TakeProfit:  d("2010"),
		LotSize:     d("0.1"),
		Commission:  d("1.5"),
		Swap:        d("-0.3"),
		GrossResult: d("47.5"),
		NetResult:   d("45.7"),
		PlannedRR:   d("1.73"),
		Emotion:     "Confiado",
		Session:     "Londres",
	}
}

func assertSameTrade(t *testing.T, want, got models.Trade) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Owner, got.Owner)
	assert.True(t, want.Date.Equal(got.Date), "date %s != %s", want.Date, got.Date)
	assert.Equal(t, want.EntryTime, got.EntryTime)
	assert.Equal(t, want.ExitTime, got.ExitTime)
	assert.Equal(t, want.Instrument, got.Instrument)
	assert.Equal(t, want.Direction, got.Direction)
	assert.Equal(t, want.Origin, got.Origin)
	for name, pair := range map[string][2]decimal.Decimal{
		"entry":      {want.EntryPrice, got.EntryPrice},
		"exit":       {want.ExitPrice, got.ExitPrice},
		"stop":       {want.StopLoss, got.StopLoss},
		"take":       {want.TakeProfit, got.TakeProfit},
		"lot":        {want.LotSize, got.LotSize},
		"commission": {want.Commission, got.Commission},
		"swap":       {want.Swap, got.Swap},
		"gross":      {want.GrossResult, got.GrossResult},
		"net":        {want.NetResult, got.NetResult},
		"rr":         {want.PlannedRR, got.PlannedRR},
	} {
		assert.True(t, pair[0].Equal(pair[1]), "%s: %s != %s", name, pair[0], pair[1])
	}
	assert.Equal(t, want.Emotion, got.Emotion)
	assert.Equal(t, want.Session, got.Session)
}

func TestSchema_WireLabels(t *testing.T) {
	tr := sampleTrade("t1", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	tr.Owner = "alice"

	row := journalVocab.toRow(tr)

	assert.Equal(t, "2024-03-05", row.Fecha)
	assert.Equal(t, "09:30:00", *row.Hora)
	assert.Equal(t, "BUY LIMIT", row.Direccion)
	assert.Equal(t, "Mentoría", row.Origen)
	assert.Equal(t, "alice", row.UserID)

	back, err := journalVocab.fromRow(row)
	require.NoError(t, err)
	assertSameTrade(t, tr, back)
}

func TestVocabulary(t *testing.T) {
	tr := sampleTrade("t1", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	tr.Instrument = "BOOM300"

	row := journalVocab.toRow(tr)
	assert.Equal(t, "Boom 300", row.Activo)

	testCases := []struct {
		name   string
		stored string
		list   map[string]string
		want   string
	}{
		{name: "Instrument label", stored: "Boom 300", list: journalVocab.instruments, want: "BOOM300"},
		{name: "Instrument id", stored: "BOOM300", list: journalVocab.instruments, want: "BOOM300"},
		{name: "Instrument case", stored: "volatility 75", list: journalVocab.instruments, want: "VOL75"},
		{name: "Unknown instrument", stored: " GBPJPY ", list: journalVocab.instruments, want: "GBPJPY"},
		{name: "Emoji emotion", stored: "🎯 Confiado", list: journalVocab.emotions, want: "Confiado"},
		{name: "Plain emotion", stored: "miedo", list: journalVocab.emotions, want: "Miedo"},
		{name: "Strategy case", stored: "smart money", list: journalVocab.strategies, want: "Smart Money"},
		{name: "Session", stored: "Nueva York", list: journalVocab.sessions, want: "Nueva York"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, lookup(tc.list, tc.stored))
		})
	}

	assert.Equal(t, "BOOM300", Vocabulary{}.toRow(tr).Activo, "zero vocabulary keeps ids")
}

func TestSchema_LenientNumbers(t *testing.T) {
	raw := `{"id":"x","user_id":"u","fecha":"2024-01-02","hora":"08:15:00","activo":"US30",
		"direccion":"SELL","origen":"Señal","precio_entrada":"39000.5","precio_salida":null,
		"lotaje":0.5,"comision":"","resultado_neto":"abc","swap":-1.25}`

	var row tradeRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))
	tr, err := Vocabulary{}.fromRow(row)
	require.NoError(t, err)

	assert.True(t, d("39000.5").Equal(tr.EntryPrice))
	assert.True(t, tr.ExitPrice.IsZero())
	assert.True(t, d("0.5").Equal(tr.LotSize))
	assert.True(t, tr.Commission.IsZero())
	assert.True(t, tr.NetResult.IsZero())
	assert.True(t, d("-1.25").Equal(tr.Swap))
	assert.True(t, tr.TakeProfit.IsZero(), "missing column")
	assert.Equal(t, models.DirectionSell, tr.Direction)
	assert.Equal(t, models.OriginSignal, tr.Origin)
	assert.Equal(t, &models.Clock{Hour: 8, Minute: 15}, tr.EntryTime)
	assert.Nil(t, tr.ExitTime)
}

func TestSchema_Dates(t *testing.T) {
	got, err := parseDate("2024-02-29T13:45:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("yesterday")
	assert.Error(t, err)
}

func TestNumber_Scan(t *testing.T) {
	var n number
	require.NoError(t, n.Scan("12.34"))
	assert.True(t, d("12.34").Equal(n.Decimal))
	require.NoError(t, n.Scan(nil))
	assert.True(t, n.IsZero())
	require.NoError(t, n.Scan("garbage"))
	assert.True(t, n.IsZero())
	require.NoError(t, n.Scan(2.5))
	assert.True(t, d("2.5").Equal(n.Decimal))
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.NewDatabase("file::memory:", zap.NewNop())
	require.NoError(t, err)
	s, err := NewSQLiteStore(db, "trades", journalVocab, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	older := sampleTrade("t1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	newer := sampleTrade("t2", time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	newer.EntryTime = nil
	other := sampleTrade("t3", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.AppendTrade(ctx, alice, older))
	require.NoError(t, s.AppendTrade(ctx, alice, newer))
	require.NoError(t, s.AppendTrade(ctx, bob, other))

	trades, err := s.ListTrades(ctx, alice)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	older.Owner, newer.Owner = "alice", "alice"
	assertSameTrade(t, newer, trades[0])
	assertSameTrade(t, older, trades[1])

	bobs, err := s.ListTrades(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "t3", bobs[0].ID)
}

func TestSQLiteStore_Failures(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	tr := sampleTrade("dup", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.AppendTrade(ctx, alice, tr))
	assert.ErrorIs(t, s.AppendTrade(ctx, alice, tr), ErrRejected)

	assert.ErrorIs(t, s.AppendTrade(ctx, auth.Session{}, tr), auth.ErrNotAuthenticated)
	_, err := s.ListTrades(ctx, auth.Session{})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	stolen := sampleTrade("other", tr.Date)
	stolen.Owner = "bob"
	assert.ErrorIs(t, s.AppendTrade(ctx, alice, stolen), ErrRejected)

	noID := sampleTrade("", tr.Date)
	assert.ErrorIs(t, s.AppendTrade(ctx, alice, noID), ErrRejected)
}

func newRestStore(t *testing.T, handler http.HandlerFunc) *RestStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := supabase.NewClient(&config.Backend{URL: server.URL, APIKey: "anon", Timeout: 5 * time.Second}, zap.NewNop())
	return NewRestStore(client, "trades", journalVocab, zap.NewNop())
}

func TestRestStore_ListTrades(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/trades", r.URL.Path)
		assert.Equal(t, "eq.alice", r.URL.Query().Get("user_id"))
		assert.Equal(t, "fecha.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "Bearer alice-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"b","user_id":"alice","fecha":"2024-03-02","activo":"US30","direccion":"SELL","origen":"Propio","resultado_neto":"-12.5"},
			{"id":"broken","user_id":"alice","fecha":"","activo":"US30"},
			{"id":"a","user_id":"alice","fecha":"2024-03-01","activo":"EURUSD","direccion":"BUY","origen":"Bot","resultado_neto":30}
		]`))
	})

	trades, err := s.ListTrades(context.Background(), alice)

	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "b", trades[0].ID)
	assert.True(t, d("-12.5").Equal(trades[0].NetResult))
	assert.Equal(t, models.OriginOwn, trades[0].Origin)
	assert.Equal(t, models.OriginBot, trades[1].Origin)
}

func TestRestStore_ListTrades_LegacyLabels(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"new","user_id":"alice","fecha":"2024-03-02","activo":"BOOM300","estrategia":"Pullback",
			 "direccion":"BUY","origen":"Propio","resultado_neto":10,"emocion":"Confiado","sesion":"Londres"},
			{"id":"old","user_id":"alice","fecha":"2024-03-01","activo":"Boom 300","estrategia":"pullback",
			 "direccion":"BUY","origen":"Propio","resultado_neto":20,"emocion":"🎯 Confiado","sesion":"Londres"}
		]`))
	})

	trades, err := s.ListTrades(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	instruments := analytics.GroupBy(trades, func(tr models.Trade) string { return tr.Instrument })
	require.Len(t, instruments, 1)
	assert.Equal(t, "BOOM300", instruments[0].Key)
	assert.True(t, d("30").Equal(instruments[0].Net))

	emotions := analytics.Frequencies(trades, func(tr models.Trade) string { return tr.Emotion })
	require.Len(t, emotions, 1)
	assert.Equal(t, analytics.LabelCount{Label: "Confiado", Count: 2, Share: 100}, emotions[0])

	for _, tr := range trades {
		assert.Equal(t, "Pullback", tr.Strategy)
	}
	kept := filter.Apply(trades, filter.Selection{Instruments: []string{"BOOM300"}})
	assert.Len(t, kept, 2)
}

func TestRestStore_AppendTrade(t *testing.T) {
	var received []map[string]any
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
	})

	tr := sampleTrade("t1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.AppendTrade(context.Background(), alice, tr))

	require.Len(t, received, 1)
	assert.Equal(t, "alice", received[0]["user_id"])
	assert.Equal(t, "2024-03-01", received[0]["fecha"])
	assert.Equal(t, "XAUUSD", received[0]["activo"])
	assert.Equal(t, "BUY LIMIT", received[0]["direccion"])
	assert.Equal(t, "45.7", received[0]["resultado_neto"])
}

func TestRestStore_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		expected error
	}{
		{name: "Rejected", status: http.StatusConflict, expected: ErrRejected},
		{name: "Unauthorized", status: http.StatusUnauthorized, expected: ErrUnauthorized},
		{name: "Unavailable", status: http.StatusServiceUnavailable, expected: ErrUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			err := s.AppendTrade(context.Background(), alice, sampleTrade("t1", time.Now()))
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	t.Run("Requires a token", func(t *testing.T) {
		s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := s.ListTrades(context.Background(), auth.Session{User: auth.User{ID: "alice"}})
		assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	})
}
