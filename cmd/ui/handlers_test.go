package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trading-journal-go/internal/app"
	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Store:   config.Store{Driver: config.StoreDriverSQLite, Table: "trades", DSN: "file::memory:"},
		Auth:    config.Auth{Driver: config.AuthDriverLocal, JWTSecret: "secret", TokenTTL: time.Hour},
		Journal: config.DefaultJournal(),
	}
	a, err := app.New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	server := httptest.NewServer(NewAPIHandler(zap.NewNop(), a.Auth, a.Journal).SetupRouter())
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func register(t *testing.T, server *httptest.Server, email string) auth.Session {
	t.Helper()
	resp := call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session auth.Session
	decodeBody(t, resp, &session)
	return session
}

func tradeBody(instrument, exit string) map[string]any {
	return map[string]any{
		"date":        "2024-03-01",
		"entry_time":  "10:15",
		"instrument":  instrument,
		"direction":   "BUY",
		"strategy":    "Pullback",
		"origin":      "OWN",
		"entry_price": "100",
		"exit_price":  exit,
		"stop_loss":   "95",
		"take_profit": "110",
		"lot_size":    "1",
		"commission":  "0",
		"swap":        "0",
		"emotion":     "Confiado",
		"session":     "Londres",
	}
}

func TestHealthAndLists(t *testing.T) {
	server := setupTestServer(t)

	resp := call(t, server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, server, http.MethodGet, "/api/lists", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lists struct {
		Instruments []config.Instrument `json:"instruments"`
		Directions  []string            `json:"directions"`
	}
	decodeBody(t, resp, &lists)
	assert.Len(t, lists.Instruments, 11)
	assert.Equal(t, []string{"BUY", "SELL", "BUY_LIMIT", "SELL_LIMIT"}, lists.Directions)
}

func TestAuthFlow(t *testing.T) {
	server := setupTestServer(t)
	session := register(t, server, "trader@example.com")
	assert.NotEmpty(t, session.AccessToken)

	resp := call(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "trader@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "trader@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "trader@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = call(t, server, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": session.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshed auth.Session
	decodeBody(t, resp, &refreshed)

	resp = call(t, server, http.MethodPost, "/api/auth/logout", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = call(t, server, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": refreshed.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := setupTestServer(t)

	resp := call(t, server, http.MethodGet, "/api/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, server, http.MethodGet, "/api/trades", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTradesAndSummary(t *testing.T) {
	server := setupTestServer(t)
	session := register(t, server, "trader@example.com")
	other := register(t, server, "other@example.com")

	resp := call(t, server, http.MethodPost, "/api/trades", session.AccessToken, tradeBody("EURUSD", "110"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	decodeBody(t, resp, &created)
	assert.Equal(t, "10", created["net_result"])
	assert.Equal(t, "2", created["planned_rr"])

	resp = call(t, server, http.MethodPost, "/api/trades", session.AccessToken, tradeBody("US30", "95"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, server, http.MethodPost, "/api/trades", other.AccessToken, tradeBody("BTCUSD", "200"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, server, http.MethodGet, "/api/summary?capital=500", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		Summary struct {
			Trades         int    `json:"trades"`
			TotalNet       string `json:"total_net"`
			CurrentBalance string `json:"current_balance"`
			BestInstrument struct {
				Key string `json:"key"`
			} `json:"best_instrument"`
		} `json:"summary"`
		Available struct {
			Instruments []string `json:"instruments"`
		} `json:"available"`
	}
	decodeBody(t, resp, &summary)
	assert.Equal(t, 2, summary.Summary.Trades)
	assert.Equal(t, "-40", summary.Summary.TotalNet, "10 on EURUSD, -50 on US30")
	assert.Equal(t, "460", summary.Summary.CurrentBalance)
	assert.Equal(t, "EURUSD", summary.Summary.BestInstrument.Key)
	assert.ElementsMatch(t, []string{"EURUSD", "US30"}, summary.Available.Instruments)

	resp = call(t, server, http.MethodGet, "/api/trades?instrument=US30", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var log []map[string]any
	decodeBody(t, resp, &log)
	require.Len(t, log, 1)
	assert.Equal(t, "US30", log[0]["instrument"])
	assert.Equal(t, "LOST", log[0]["outcome"])
	assert.Equal(t, "950", log[0]["balance"])
}

func TestTradeErrors(t *testing.T) {
	server := setupTestServer(t)
	session := register(t, server, "trader@example.com")

	body := tradeBody("EURUSD", "110")
	body["lot_size"] = "0"
	resp := call(t, server, http.MethodPost, "/api/trades", session.AccessToken, body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Equal(t, "lot_size", errResp.Field)

	resp = call(t, server, http.MethodGet, "/api/summary?capital=lots", session.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, server, http.MethodGet, "/api/trades?order=random", session.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, server, http.MethodPost, "/api/trades/preview", session.AccessToken, tradeBody("XAUUSD", "101"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview map[string]any
	decodeBody(t, resp, &preview)
	assert.Equal(t, "100", preview["gross_result"])
	assert.Empty(t, preview["id"])
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}
