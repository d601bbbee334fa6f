package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"trading-journal-go/internal/auth"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SetupRouter registers the public and the authenticated routes.
func (h *APIHandler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/register", h.HandleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh", h.HandleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/lists", h.HandleLists).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.requireSession)

	api.HandleFunc("/auth/logout", h.HandleLogout).Methods(http.MethodPost)
	api.HandleFunc("/trades", h.HandleGetTrades).Methods(http.MethodGet)
	api.HandleFunc("/trades", h.HandleCreateTrade).Methods(http.MethodPost)
	api.HandleFunc("/trades/preview", h.HandlePreview).Methods(http.MethodPost)
	api.HandleFunc("/summary", h.HandleGetSummary).Methods(http.MethodGet)

	return r
}

// requireSession resolves the bearer token to a session through the identity
// provider.
func (h *APIHandler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			h.respondError(w, auth.ErrNotAuthenticated)
			return
		}
		user, err := h.auth.User(r.Context(), token)
		if err != nil {
			h.respondError(w, err)
			return
		}
		session := auth.Session{User: user, AccessToken: token}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *APIHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
