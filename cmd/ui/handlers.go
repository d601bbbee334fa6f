package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"trading-journal-go/internal/analytics"
	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/filter"
	"trading-journal-go/internal/journal"
	"trading-journal-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	auth    auth.Provider
	journal *journal.Service
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, provider auth.Provider, svc *journal.Service) *APIHandler {
	return &APIHandler{log: log.Named("api"), auth: provider, journal: svc}
}

type contextKey string

const sessionKey contextKey = "session"

func sessionFrom(ctx context.Context) auth.Session {
	s, _ := ctx.Value(sessionKey).(auth.Session)
	return s
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *APIHandler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("Failed to encode response", zap.Error(err))
	}
}

// respondError maps domain errors to HTTP statuses.
func (h *APIHandler) respondError(w http.ResponseWriter, err error) {
	var vErr *journal.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Error(), Field: vErr.Field})
	case errors.Is(err, auth.ErrNotAuthenticated),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, store.ErrUnauthorized):
		h.respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrSignUpRejected), errors.Is(err, store.ErrRejected):
		h.respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		h.respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "trade store unavailable, try again"})
	default:
		h.log.Error("Request failed", zap.Error(err))
		h.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed JSON body"})
		return false
	}
	return true
}

// HandleHealth reports liveness.
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleRegister creates an account. A pending email confirmation answers 202
// without tokens.
func (h *APIHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.auth.SignUp(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrConfirmationPending) {
		h.respondJSON(w, http.StatusAccepted, map[string]any{"status": "confirmation_pending", "user": session.User})
		return
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, session)
}

func (h *APIHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

func (h *APIHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

func (h *APIHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), sessionFrom(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLists returns the master values for the trade form.
func (h *APIHandler) HandleLists(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.journal.Lists())
}

// HandlePreview returns the stamped trade without storing it.
func (h *APIHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var in journal.TradeInput
	if !h.decode(w, r, &in) {
		return
	}
	trade, err := h.journal.Preview(in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, trade)
}

func (h *APIHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var in journal.TradeInput
	if !h.decode(w, r, &in) {
		return
	}
	trade, err := h.journal.Submit(r.Context(), sessionFrom(r.Context()), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, trade)
}

// HandleGetTrades returns the trade log with the running balance column.
func (h *APIHandler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, snap.Log)
}

// SummaryResponse is the dashboard payload.
type SummaryResponse struct {
	Summary   analytics.Summary `json:"summary"`
	Available journal.Available `json:"available"`
}

func (h *APIHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, SummaryResponse{Summary: snap.Summary, Available: snap.Available})
}

func (h *APIHandler) snapshot(w http.ResponseWriter, r *http.Request) (journal.Snapshot, bool) {
	q, err := parseQuery(r)
	if err != nil {
		h.respondError(w, err)
		return journal.Snapshot{}, false
	}
	snap, err := h.journal.Dashboard(r.Context(), sessionFrom(r.Context()), q)
	if err != nil {
		h.respondError(w, err)
		return journal.Snapshot{}, false
	}
	return snap, true
}

// parseQuery reads ?instrument=&strategy= (repeatable), ?capital= and ?order=.
func parseQuery(r *http.Request) (journal.Query, error) {
	values := r.URL.Query()
	q := journal.Query{
		Selection: filter.Selection{
			Instruments: values["instrument"],
			Strategies:  values["strategy"],
		},
		Order: analytics.Order(values.Get("order")),
	}
	if raw := values.Get("capital"); raw != "" {
		capital, err := decimal.NewFromString(raw)
		if err != nil {
			return q, &journal.ValidationError{Field: "capital", Reason: "must be a number"}
		}
		q.InitialCapital = &capital
	}
	return q, nil
}
