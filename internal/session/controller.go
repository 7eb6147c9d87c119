// Package session owns the lifecycle of one batch transformation run: the
// state machine, progress accounting, and the one-time flush/notify that
// ends a session.
package session

import (
	"errors"
	"sync"

	"review-transformer/internal/domain"
)

// ErrSessionActive is returned when starting a second session mid-flight.
var ErrSessionActive = errors.New("session already running")

// ErrNoSession is returned when close is requested with no session to close.
var ErrNoSession = errors.New("no active session")

// ErrEmptyItems is returned when start is invoked with nothing to transform.
var ErrEmptyItems = errors.New("no items to transform")

// CloseOutcome describes how a close request was handled.
type CloseOutcome string

const (
	// CloseDeferred means the session is in flight; the request is recorded
	// and honored once the run ends.
	CloseDeferred CloseOutcome = "deferred"
	// CloseIgnored means the request duplicated an earlier deferred close.
	CloseIgnored CloseOutcome = "ignored"
	// CloseCompleted means the session was torn down to idle.
	CloseCompleted CloseOutcome = "completed"
)

// EndReport is handed to the consumer notification exactly once per session.
type EndReport struct {
	SessionID  string               `json:"sessionId"`
	State      domain.SessionState  `json:"state"`
	Stats      domain.SessionStats  `json:"stats"`
	UpdatedIDs []string             `json:"updatedIds"`
}

// Snapshot is the observable view the presentation layer renders from.
type Snapshot struct {
	Session        domain.Session `json:"session"`
	Percent        int            `json:"percent"`
	Message        string         `json:"message"`
	CloseRequested bool           `json:"closeRequested"`
}

// Controller is the session state machine. It enforces single-session
// occupancy, defers close requests while batches are in flight, and
// guarantees the end-of-session flush and notification fire exactly once.
type Controller struct {
	mu             sync.Mutex
	session        domain.Session
	progress       *ProgressAggregator
	buffer         *PersistenceBuffer
	closeRequested bool
	finalized      bool
	onEnded        func(EndReport)
}

// NewController creates an idle controller. onEnded, if non-nil, receives
// the end report exactly once per session.
func NewController(onEnded func(EndReport)) *Controller {
	return &Controller{
		session:  domain.Session{State: domain.SessionStateIdle},
		progress: NewProgressAggregator(0, 0),
		buffer:   NewPersistenceBuffer(),
		onEnded:  onEnded,
	}
}

// Start moves idle to running for a new session over totalItems items in
// totalBatches batches. An in-flight session or empty input is rejected.
func (c *Controller) Start(sessionID string, totalItems, totalBatches int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if isActive(c.session.State) {
		return ErrSessionActive
	}
	if totalItems <= 0 {
		return ErrEmptyItems
	}

	c.session = domain.Session{ID: sessionID, State: domain.SessionStateRunning}
	c.progress = NewProgressAggregator(totalItems, totalBatches)
	c.buffer = NewPersistenceBuffer()
	c.closeRequested = false
	c.finalized = false
	return nil
}

// BatchStarted records that batch index (1-based) is now in flight.
func (c *Controller) BatchStarted(index int) {
	c.progress.BatchStarted(index)
}

// BatchCompleted merges one batch's outcome into the session totals.
func (c *Controller) BatchCompleted(stats domain.BatchStats) {
	c.progress.Merge(stats)

	c.mu.Lock()
	c.session.Stats = c.progress.Stats()
	c.mu.Unlock()
}

// RecordSuccess buffers one durably written item id for the end-of-session
// consumer notification.
func (c *Controller) RecordSuccess(id string) {
	c.buffer.RecordSuccess(id)
}

// Finish moves running to finalizing, flushes the buffer, notifies the
// consumer once, and settles on completed or failed. Failed is reached only
// when zero items succeeded; partial success is success. A close that was
// deferred mid-run is honored here by tearing down to idle.
func (c *Controller) Finish() EndReport {
	c.mu.Lock()
	if c.session.State != domain.SessionStateRunning {
		report := EndReport{SessionID: c.session.ID, State: c.session.State, Stats: c.session.Stats}
		c.mu.Unlock()
		return report
	}
	c.session.State = domain.SessionStateFinalizing

	report := c.finalizeLocked()
	honorClose := c.closeRequested
	if honorClose {
		c.session.State = domain.SessionStateIdle
		c.closeRequested = false
	}
	cb := c.onEnded
	c.mu.Unlock()

	if cb != nil {
		cb(report)
	}
	return report
}

// RequestClose applies the close intent for the current state: deferred
// while in flight, ignored when already deferred, and honored in terminal
// states. Closing with no session is a no-op reported via ErrNoSession.
func (c *Controller) RequestClose() (CloseOutcome, error) {
	c.mu.Lock()

	switch c.session.State {
	case domain.SessionStateRunning, domain.SessionStateFinalizing:
		if c.closeRequested {
			c.mu.Unlock()
			return CloseIgnored, nil
		}
		c.closeRequested = true
		c.mu.Unlock()
		return CloseDeferred, nil

	case domain.SessionStateCompleted, domain.SessionStateFailed:
		// Covers the completion/close race: if completion already flushed
		// and notified, finalizeLocked is a no-op here.
		var report EndReport
		var cb func(EndReport)
		if !c.finalized {
			report = c.finalizeLocked()
			cb = c.onEnded
		}
		c.session.State = domain.SessionStateIdle
		c.closeRequested = false
		c.mu.Unlock()

		if cb != nil {
			cb(report)
		}
		return CloseCompleted, nil

	default:
		c.mu.Unlock()
		return "", ErrNoSession
	}
}

// Snapshot returns the observable session view for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Session:        c.session,
		Percent:        c.progress.Percent(),
		Message:        c.progress.Message(),
		CloseRequested: c.closeRequested,
	}
}

// CloseRequested reports whether a deferred close is pending.
func (c *Controller) CloseRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeRequested
}

// finalizeLocked performs the one-time flush, settles the terminal state,
// and builds the end report. Caller holds c.mu.
func (c *Controller) finalizeLocked() EndReport {
	stats := c.progress.Stats()
	updated := c.buffer.Flush()
	c.progress.MarkDone()

	state := domain.SessionStateCompleted
	if stats.SuccessCount == 0 {
		state = domain.SessionStateFailed
	}
	c.session.State = state
	c.session.Stats = stats
	c.finalized = true

	return EndReport{
		SessionID:  c.session.ID,
		State:      state,
		Stats:      stats,
		UpdatedIDs: updated,
	}
}

// isActive reports whether the state still owns in-flight work.
func isActive(state domain.SessionState) bool {
	switch state {
	case domain.SessionStateRunning, domain.SessionStateFinalizing:
		return true
	default:
		return false
	}
}
