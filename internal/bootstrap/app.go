// Package bootstrap wires configuration, the session controller, the batch
// scheduler, and the HTTP surface exposed to the presentation layer.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"review-transformer/internal/batch"
	"review-transformer/internal/config"
	"review-transformer/internal/diagnostics"
	"review-transformer/internal/domain"
	"review-transformer/internal/logging"
	"review-transformer/internal/session"
	"review-transformer/internal/store"
	"review-transformer/internal/transform"
)

// App wires configuration, sessions, the scheduler, and API handlers.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Sessions    *session.Controller
	Records     store.RecordStore
	Diagnostics domain.DiagnosticReport

	client   transform.Client
	estimate transform.TokenEstimator
	checker  *diagnostics.Checker
	events   *session.EventBus
	log      zerolog.Logger

	mu              sync.Mutex
	activeSessionID string
	cancel          context.CancelFunc
	done            chan struct{}
}

// New builds the application with persisted settings and startup
// diagnostics.
func New() (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	cfgStore := config.NewJSONStore(filepath.Join(homeDir, ".review-transformer", "settings.json"))
	settings, err := cfgStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	records, err := store.Open(settings)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	app := &App{
		Settings:    settings,
		Store:       cfgStore,
		Records:     records,
		Diagnostics: report,
		client:      transform.NewHTTPClient(settings.ServiceURL, time.Duration(settings.RequestTimeoutMs)*time.Millisecond),
		estimate:    transform.NewTokenEstimator(),
		checker:     checker,
		events:      session.NewEventBus(1000),
		log:         *logging.L(),
	}
	app.Sessions = session.NewController(app.onSessionEnded)
	return app, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings persists settings and refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	a.client = transform.NewHTTPClient(normalized.ServiceURL, time.Duration(normalized.RequestTimeoutMs)*time.Millisecond)
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// RefreshDiagnostics reloads settings and reruns collaborator checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	report := a.Diagnostics
	a.mu.Unlock()
	return report, nil
}

// StartSession validates the request, claims the controller, and runs the
// batches asynchronously. Rejects empty item sets and overlapping sessions.
func (a *App) StartSession(items []domain.Item, opts domain.Options) (domain.Session, error) {
	if !domain.ValidKind(opts.Kind) {
		return domain.Session{}, fmt.Errorf("unknown transform kind %q", opts.Kind)
	}
	if !domain.ValidStyle(opts.Style) {
		return domain.Session{}, fmt.Errorf("unknown style %q", opts.Style)
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Session{}, fmt.Errorf("load settings: %w", err)
	}

	limit := batch.Limit{
		MaxItems:  settings.MaxBatchSize,
		MaxTokens: settings.MaxBatchTokens,
		Estimate:  a.estimate,
	}
	batches := batch.Split(items, limit)

	sessionID := uuid.NewString()
	if err := a.Sessions.Start(sessionID, len(items), len(batches)); err != nil {
		return domain.Session{}, err
	}

	if opts.TargetLanguage == "" {
		opts.TargetLanguage = settings.TargetLanguage
	}
	if opts.Style == "" {
		opts.Style = settings.Style
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.mu.Lock()
	a.Settings = settings
	a.activeSessionID = sessionID
	a.cancel = cancel
	a.done = done
	client := a.client
	a.mu.Unlock()

	a.publishStatus(sessionID, domain.SessionStateRunning, fmt.Sprintf("session started: %d items in %d batches", len(items), len(batches)))

	go a.runSession(ctx, done, client, sessionID, items, opts, settings, limit)
	return a.Sessions.Snapshot().Session, nil
}

// RequestClose forwards the close intent to the controller and surfaces a
// warning event when the session is still in flight.
func (a *App) RequestClose() (session.CloseOutcome, error) {
	outcome, err := a.Sessions.RequestClose()
	if err != nil {
		return outcome, err
	}

	a.mu.Lock()
	sessionID := a.activeSessionID
	a.mu.Unlock()

	switch outcome {
	case session.CloseDeferred:
		a.publishEvent(session.Event{
			SessionID: sessionID,
			Type:      session.EventTypeWarning,
			Message:   "transformation in progress; the dialog will close when the run ends",
		})
	case session.CloseCompleted:
		a.publishStatus(sessionID, domain.SessionStateIdle, "session closed")
	}
	return outcome, nil
}

// CurrentSession returns the observable session snapshot.
func (a *App) CurrentSession() session.Snapshot {
	return a.Sessions.Snapshot()
}

// SessionEvents returns all events with sequence greater than sinceSeq.
func (a *App) SessionEvents(sinceSeq int64) []session.Event {
	return a.events.Since(sinceSeq)
}

// Shutdown cancels any in-flight session and waits for its goroutine, then
// releases the record store.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return a.Records.Close()
}

// runSession drives the scheduler and finalizes the session when every
// batch has been attempted.
func (a *App) runSession(ctx context.Context, done chan struct{}, client transform.Client, sessionID string, items []domain.Item, opts domain.Options, settings domain.Settings, limit batch.Limit) {
	defer close(done)

	log := logging.WithSession(sessionID)
	scheduler := batch.NewScheduler(
		client,
		a.Records,
		time.Duration(settings.InterBatchDelayMs)*time.Millisecond,
		log,
	)

	req := batch.Request{
		SessionID: sessionID,
		Items:     items,
		Options:   opts,
		Limit:     limit,
		OnBatchStart: func(index, total int) {
			a.Sessions.BatchStarted(index)
			a.publishProgress(sessionID, index, total)
		},
		OnBatchDone: func(index, total int, stats domain.BatchStats) {
			a.Sessions.BatchCompleted(stats)
			a.publishProgress(sessionID, index, total)
		},
		OnSuccess: func(id string) {
			a.Sessions.RecordSuccess(id)
		},
	}

	if _, err := scheduler.Run(ctx, req); err != nil {
		log.Warn().Err(err).Msg("session interrupted")
		a.publishEvent(session.Event{
			SessionID: sessionID,
			Type:      session.EventTypeError,
			Message:   "session interrupted: " + err.Error(),
		})
	}

	report := a.Sessions.Finish()
	log.Info().
		Str("state", string(report.State)).
		Int("success", report.Stats.SuccessCount).
		Int("errors", report.Stats.ErrorCount).
		Msg("session finished")

	a.clearActiveSession(sessionID)
}

// onSessionEnded is the controller's one-time consumer notification: the
// presentation layer reloads the listed records once, not per batch.
func (a *App) onSessionEnded(report session.EndReport) {
	stats := report.Stats
	a.publishEvent(session.Event{
		SessionID:  report.SessionID,
		Type:       session.EventTypeResult,
		State:      report.State,
		Percent:    100,
		Message:    fmt.Sprintf("%d of %d succeeded", stats.SuccessCount, stats.Total),
		Stats:      &stats,
		UpdatedIDs: report.UpdatedIDs,
	})
}

// publishProgress sends a progress event from the current snapshot.
func (a *App) publishProgress(sessionID string, index, total int) {
	snap := a.Sessions.Snapshot()
	stats := snap.Session.Stats
	a.publishEvent(session.Event{
		SessionID:  sessionID,
		Type:       session.EventTypeProgress,
		State:      snap.Session.State,
		Percent:    snap.Percent,
		Message:    snap.Message,
		BatchIndex: index,
		BatchCount: total,
		Stats:      &stats,
	})
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(sessionID string, state domain.SessionState, message string) {
	a.publishEvent(session.Event{
		SessionID: sessionID,
		Type:      session.EventTypeStatus,
		State:     state,
		Message:   message,
	})
}

// publishEvent stores event history for incremental reads.
func (a *App) publishEvent(event session.Event) {
	a.events.Publish(event)
}

// clearActiveSession clears cancellation handles for finished session ids.
func (a *App) clearActiveSession(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeSessionID == sessionID {
		a.activeSessionID = ""
		a.cancel = nil
	}
}
