package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"expensedash/internal/api"
	"expensedash/internal/core"
	applog "expensedash/internal/log"
	"expensedash/internal/report"
	"expensedash/internal/session"
)

// viewResponse wraps the derived view with the filter it answers and a
// staleness marker set when the newest fetch failed and the previous view is
// being served instead.
type viewResponse struct {
	View     report.ViewState `json:"view"`
	From     string           `json:"from,omitempty"`
	To       string           `json:"to,omitempty"`
	Currency string           `json:"currency"`
	Stale    bool             `json:"stale"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// redirectToLogin sends the caller to the unauthenticated entry point. XHR
// callers get the location in the body; navigations get a real redirect.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": LoginPath})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// handleView runs the guarded pipeline for the submitted filter and returns
// the derived view.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := core.NormalizeRange(q.Get("from"), q.Get("to"))

	view, err := s.reports.Refresh(r.Context(), filter)
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		s.redirectToLogin(w, r)
		return
	case errors.Is(err, report.ErrFetchFailed):
		// The failure stays at this boundary: the previous view is served
		// unchanged and the user can retry by resubmitting the filter.
		slog.ErrorContext(r.Context(), "View refresh failed",
			applog.FieldError, err.Error(),
			applog.FieldFilter, filter.Key())
		if !s.reports.HasView() {
			writeError(w, http.StatusBadGateway, "expense service unavailable")
			return
		}
		writeJSON(w, http.StatusOK, viewResponse{
			View:     view,
			From:     filter.From,
			To:       filter.To,
			Currency: s.currency,
			Stale:    true,
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{
		View:     view,
		From:     filter.From,
		To:       filter.To,
		Currency: s.currency,
	})
}

// handleCreateExpense submits a draft and reports the outcome. The caller
// keeps the form open and the draft intact on any failure.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var draft core.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	draft.Header = strings.TrimSpace(draft.Header)
	draft.Description = strings.TrimSpace(draft.Description)

	err := s.reports.Submit(r.Context(), draft)
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		s.redirectToLogin(w, r)
	case errors.Is(err, report.ErrValidationRejected):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, report.ErrMutationFailed):
		writeError(w, http.StatusBadGateway, "could not save expense")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
	}
}

// handleLogin exchanges credentials for a token and persists it.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	token, err := s.auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, api.ErrLoginRejected) {
			writeError(w, http.StatusUnauthorized, "login failed")
			return
		}
		slog.ErrorContext(r.Context(), "Login request failed", applog.FieldError, err.Error())
		writeError(w, http.StatusBadGateway, "authentication service unavailable")
		return
	}

	if err := s.provider.SetToken(r.Context(), token); err != nil {
		slog.ErrorContext(r.Context(), "Failed to persist token", applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "could not store session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLogout drops the stored token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.provider.Clear(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to clear token", applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "could not clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport appends the current view to the configured spreadsheet.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}
	if _, err := s.provider.Token(r.Context()); err != nil {
		s.redirectToLogin(w, r)
		return
	}
	if !s.reports.HasView() {
		writeError(w, http.StatusConflict, "nothing to export yet")
		return
	}

	filter := s.reports.ActiveFilter()
	if err := s.exporter.Export(r.Context(), filter, s.reports.View()); err != nil {
		slog.ErrorContext(r.Context(), "Report export failed",
			applog.FieldError, err.Error(),
			applog.FieldFilter, filter.Key())
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "exported"})
}

// handleWebsocket upgrades the connection and feeds it view updates until
// the client goes away.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket feed is not configured", http.StatusNotImplemented)
		return
	}
	// The feed carries the same data as the view endpoint and is guarded the
	// same way.
	if _, err := s.provider.Token(r.Context()); err != nil {
		s.redirectToLogin(w, r)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "Websocket upgrade failed", applog.FieldError, err.Error())
		return
	}
	s.hub.RegisterClient(conn)

	// Drain the connection; the first read error means the client is gone.
	go func() {
		defer s.hub.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
