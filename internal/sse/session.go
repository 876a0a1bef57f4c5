// The per-connection state machine that bridges one sync job to one SSE
// client. Each HTTP connection gets its own Session running in the handler's
// goroutine; sessions for the same job are fully independent, so N browser
// tabs watching one job simply cost N polls per interval.

package sse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
)

// Mode selects the stream dialect.
type Mode int

const (
	// ModeSimple emits one untyped data record per tick; payloads carry a
	// "type" discriminator field.
	ModeSimple Mode = iota
	// ModeGranular emits named SSE events (connected, progress, completed,
	// failed, cancelled, error) so clients can use addEventListener.
	ModeGranular
)

// JobStore is the read-only view of sync jobs a session polls. The store
// returns models.ErrJobNotFound when the job record has vanished; any other
// error is treated as transient.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*models.SyncJob, error)
}

// Options configures a Session. Zero intervals fall back to defaults.
type Options struct {
	Mode              Mode
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

const (
	defaultPollInterval      = time.Second
	defaultHeartbeatInterval = 30 * time.Second
)

// Event is the JSON payload of every non-comment record on the stream.
// Fields are populated per event type; absent ones are omitted.
type Event struct {
	Type      string              `json:"type"`
	JobID     string              `json:"jobId"`
	Status    models.JobState     `json:"status,omitempty"`
	Progress  *models.JobProgress `json:"progress,omitempty"`
	Result    *models.SyncResult  `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp string              `json:"timestamp,omitempty"`
}

// Session streams one job's progress to one client until the job reaches a
// terminal state or the client disconnects, whichever comes first.
type Session struct {
	jobID             string
	userID            int64
	store             JobStore
	mode              Mode
	pollInterval      time.Duration
	heartbeatInterval time.Duration

	w       io.Writer
	flusher http.Flusher
}

// NewSession creates a session bound to an already-authorized transport.
// The caller must have set the event-stream response headers and verified
// ownership of the job before calling this.
func NewSession(w io.Writer, flusher http.Flusher, store JobStore, jobID string, userID int64, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = defaultHeartbeatInterval
	}
	return &Session{
		jobID:             jobID,
		userID:            userID,
		store:             store,
		mode:              opts.Mode,
		pollInterval:      opts.PollInterval,
		heartbeatInterval: opts.HeartbeatInterval,
		w:                 w,
		flusher:           flusher,
	}
}

// Serve runs the poll and heartbeat loops until the stream ends. It blocks,
// and returning from it is what releases the underlying transport, so the
// HTTP handler calls it last. ctx is the request context; its cancellation
// is the transport-close signal, and since Serve returns at most once,
// repeated or late close signals have no further effect.
func (s *Session) Serve(ctx context.Context) {
	// Confirm the stream is open before any data tick. Emitted exactly once.
	if err := s.emit("connected", Event{Type: "connected", JobID: s.jobID}); err != nil {
		return
	}

	// First read right away so clients don't wait a full poll interval for
	// the initial snapshot.
	if done := s.pollOnce(ctx); done {
		return
	}

	// The two tickers are independent: a heartbeat never substitutes for a
	// poll and vice versa.
	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(s.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			if done := s.pollOnce(ctx); done {
				return
			}
		case <-heartbeat.C:
			if _, err := s.w.Write(FormatComment("heartbeat")); err != nil {
				return
			}
			s.flusher.Flush()
		}
	}
}

// pollOnce reads the job and emits the matching event. It reports true when
// the session should end (terminal job state, vanished job, or a dead
// transport).
func (s *Session) pollOnce(ctx context.Context) bool {
	job, err := s.store.GetJob(ctx, s.jobID)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			// The record itself is gone; nothing further to stream.
			s.emit("error", Event{Type: "error", JobID: s.jobID, Error: "Job no longer exists"})
			return true
		}
		// Transient store hiccup: tell the client, keep polling. A live
		// dashboard should degrade instead of dropping the connection on a
		// single flaky read.
		s.emit("error", Event{Type: "error", JobID: s.jobID, Error: "Failed to get progress"})
		return false
	}

	ev := Event{
		Type:      "progress",
		JobID:     job.ID,
		Status:    job.State,
		Progress:  &job.Progress,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	switch job.State {
	case models.JobCompleted:
		ev.Result = job.Result
	case models.JobFailed:
		ev.Error = job.FailedReason
	}

	name := "progress"
	if job.State.IsTerminal() && s.mode == ModeGranular {
		// Named terminal events mirror the terminal status.
		name = string(job.State)
		ev.Type = name
	}

	if err := s.emit(name, ev); err != nil {
		return true
	}
	// Terminal emission is followed by closing the transport from our side;
	// we do not wait for the client to hang up.
	return job.State.IsTerminal()
}

// emit writes one event record and flushes it so it leaves the process
// immediately. In simple mode the event name is dropped and clients rely on
// the payload's "type" field.
func (s *Session) emit(name string, ev Event) error {
	eventName := ""
	if s.mode == ModeGranular {
		eventName = name
	}
	frame, err := FormatEvent(eventName, ev)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
