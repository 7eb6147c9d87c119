package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"review-transformer/internal/domain"
	"review-transformer/internal/session"
)

// StartRequest is the JSON body accepted by the start-session endpoint.
type StartRequest struct {
	Items   []domain.Item  `json:"items"`
	Options domain.Options `json:"options"`
}

// StartAck acknowledges a start request that required no work.
type StartAck struct {
	Message string `json:"message"`
}

// CloseResponse reports how a close request was handled.
type CloseResponse struct {
	Outcome session.CloseOutcome `json:"outcome"`
	Message string               `json:"message,omitempty"`
}

// errorResponse is the uniform JSON error shape.
type errorResponse struct {
	Error string `json:"error"`
}

// shutdownTimeout bounds how long teardown waits for in-flight work.
const shutdownTimeout = 10 * time.Second

// Run starts the HTTP server that exposes the orchestrator to the
// presentation layer. It blocks until the listener fails or ctx is
// cancelled; on cancellation the server drains, the in-flight session is
// cancelled, and the record store is released.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.Settings.ListenAddr,
		Handler: a.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.log.Info().Str("addr", a.Settings.ListenAddr).Msg("listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		a.log.Warn().Err(err).Msg("server drain failed")
	}
	return a.Shutdown(drainCtx)
}

// Handler builds the API routing table.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", a.handleStartSession)
	mux.HandleFunc("/api/sessions/close", a.handleRequestClose)
	mux.HandleFunc("/api/sessions/current", a.handleCurrentSession)
	mux.HandleFunc("/api/events", a.handleEvents)
	mux.HandleFunc("/api/settings", a.handleSettings)
	mux.HandleFunc("/api/health", a.handleHealth)
	return mux
}

// handleStartSession starts a new transformation session.
func (a *App) handleStartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}

	sess, err := a.StartSession(req.Items, req.Options)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyItems):
			// Nothing to do is a no-op, not a failure.
			writeJSON(w, http.StatusOK, StartAck{Message: "nothing to do"})
		case errors.Is(err, session.ErrSessionActive):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusAccepted, sess)
}

// handleRequestClose applies the user's close intent to the session.
func (a *App) handleRequestClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	outcome, err := a.RequestClose()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeJSON(w, http.StatusOK, CloseResponse{Message: "no active session"})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := CloseResponse{Outcome: outcome}
	if outcome == session.CloseDeferred {
		resp.Message = "transformation in progress; close deferred until the run ends"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCurrentSession returns the observable session snapshot.
func (a *App) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, a.CurrentSession())
}

// handleEvents returns events newer than the since parameter.
func (a *App) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since parameter")
			return
		}
		since = parsed
	}

	events := a.SessionEvents(since)
	if events == nil {
		events = []session.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleSettings reads or replaces persisted settings.
func (a *App) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := a.GetSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var settings domain.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "decode settings: "+err.Error())
			return
		}
		saved, err := a.SaveSettings(settings)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, saved)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleHealth reruns collaborator diagnostics and reports the result.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report, err := a.RefreshDiagnostics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if report.HasFailures {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a uniform JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
