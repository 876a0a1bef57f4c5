package jobs

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/suiren/x-bookmarker/internal/config"
	"github.com/suiren/x-bookmarker/internal/websocket"
)

// JobContext is an interface that provides the necessary dependencies for a
// maintenance job to run. The core.App struct implements this interface.
type JobContext interface {
	DB() *sql.DB
	Config() *config.Config
	WsHub() *websocket.Hub
	JobManager() *Manager
}

// The task function signature uses the interface so jobs stay testable.
type jobTask func(ctx JobContext)

// JobStatus is the admin-visible state of one registered maintenance job.
type JobStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "idle", "running", "success", "failed"
	Message   string    `json:"message"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// Manager runs registered maintenance jobs one at a time. These are
// app-level chores (session purge, favicon refresh, scheduled syncs), not
// the per-user sync jobs tracked in the sync_jobs table.
type Manager struct {
	mu      sync.Mutex
	jobs    map[string]jobTask
	status  map[string]*JobStatus
	running bool
	appCtx  JobContext // Stored for scheduled jobs
}

func NewManager(appCtx JobContext) *Manager {
	return &Manager{
		jobs:   make(map[string]jobTask),
		status: make(map[string]*JobStatus),
		appCtx: appCtx,
	}
}

func (jm *Manager) Register(id, name string, task jobTask) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.jobs[id] = task
	jm.status[id] = &JobStatus{ID: id, Name: name, Status: "idle"}
}

// RunJob starts the named job in a new goroutine. Only one maintenance job
// may run at a time; a second request is rejected rather than queued.
func (jm *Manager) RunJob(id string, ctx JobContext) error {
	jm.mu.Lock()
	if jm.running {
		jm.mu.Unlock()
		return fmt.Errorf("a job is already running")
	}

	task, ok := jm.jobs[id]
	if !ok {
		jm.mu.Unlock()
		return fmt.Errorf("job '%s' not found", id)
	}

	jm.running = true
	status := jm.status[id]
	status.Status = "running"
	status.StartTime = time.Now()
	status.Message = "Job started..."
	jm.mu.Unlock()

	log.Printf("Starting job: %s", id)
	go func() {
		defer func() {
			// Ensure we always update the status and unlock the manager
			if r := recover(); r != nil {
				log.Printf("Job '%s' panicked: %v", id, r)
				status.Status = "failed"
				status.Message = fmt.Sprintf("Job panicked: %v", r)
			}

			jm.mu.Lock()
			status.EndTime = time.Now()
			if status.Status == "running" { // If not already set to "failed"
				status.Status = "success"
				status.Message = "Job completed successfully."
			}
			jm.running = false
			jm.mu.Unlock()
			log.Printf("Finished job: %s", id)
		}()

		task(ctx)
	}()
	return nil
}

// Fail marks the currently running job as failed with a message. Tasks call
// this before returning when they hit an unrecoverable error.
func (jm *Manager) Fail(id, message string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	if status, ok := jm.status[id]; ok {
		status.Status = "failed"
		status.Message = message
	}
}

func (jm *Manager) GetStatus() []*JobStatus {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	var statuses []*JobStatus
	for _, s := range jm.status {
		statuses = append(statuses, s)
	}
	return statuses
}
