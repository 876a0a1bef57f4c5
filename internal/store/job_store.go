package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suiren/x-bookmarker/internal/models"
)

// Sync job rows are append-then-update: progress changes while the job is
// live, and the terminal transition writes state plus result/failed_reason in
// a single UPDATE. Every mutation is guarded by a non-terminal state check so
// a finished job can never change again.

// CreateSyncJob inserts a new queued sync job for the user and returns it.
func (s *Store) CreateSyncJob(userID int64) (*models.SyncJob, error) {
	job := &models.SyncJob{
		ID:     uuid.NewString(),
		UserID: userID,
		State:  models.JobQueued,
	}
	progressJSON, err := json.Marshal(job.Progress)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_, err = s.db.Exec(`
		INSERT INTO sync_jobs (id, user_id, state, progress, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, job.UserID, job.State, string(progressJSON), now, now)
	if err != nil {
		return nil, err
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	return job, nil
}

// GetJob retrieves a sync job by id. Returns models.ErrJobNotFound when no
// such row exists; the SSE session layer relies on that distinction to tell
// a vanished job apart from a transient read failure.
func (s *Store) GetJob(ctx context.Context, id string) (*models.SyncJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, state, progress, result, failed_reason, created_at, updated_at
		FROM sync_jobs WHERE id = ?`, id)
	return scanSyncJob(row)
}

func scanSyncJob(row interface{ Scan(...interface{}) error }) (*models.SyncJob, error) {
	var job models.SyncJob
	var progressJSON string
	var resultJSON, failedReason sql.NullString
	err := row.Scan(&job.ID, &job.UserID, &job.State, &progressJSON, &resultJSON, &failedReason, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(progressJSON), &job.Progress); err != nil {
		return nil, fmt.Errorf("corrupt progress for job %s: %w", job.ID, err)
	}
	if resultJSON.Valid {
		var result models.SyncResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("corrupt result for job %s: %w", job.ID, err)
		}
		job.Result = &result
	}
	if failedReason.Valid {
		job.FailedReason = failedReason.String
	}
	return &job, nil
}

// ListSyncJobs returns the user's most recent sync jobs.
func (s *Store) ListSyncJobs(userID int64, limit int) ([]*models.SyncJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, user_id, state, progress, result, failed_reason, created_at, updated_at
		FROM sync_jobs WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.SyncJob
	for rows.Next() {
		job, err := scanSyncJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// HasActiveSyncJob reports whether the user already has a queued or running
// sync job. Used to reject duplicate sync requests.
func (s *Store) HasActiveSyncJob(userID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sync_jobs
		WHERE user_id = ? AND state IN ('queued', 'running')`, userID).Scan(&count)
	return count > 0, err
}

// MarkJobRunning transitions a queued job to running.
func (s *Store) MarkJobRunning(id string) error {
	res, err := s.db.Exec(`
		UPDATE sync_jobs SET state = 'running', updated_at = ?
		WHERE id = ? AND state = 'queued'`, time.Now(), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("job %s is not queued", id)
	}
	return nil
}

// UpdateJobProgress replaces the progress snapshot of a live job. Updates to
// terminal jobs are silently dropped, which makes the runner's final progress
// write racing a cancellation harmless.
func (s *Store) UpdateJobProgress(id string, progress models.JobProgress) error {
	progressJSON, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE sync_jobs SET progress = ?, updated_at = ?
		WHERE id = ? AND state IN ('queued', 'running')`,
		string(progressJSON), time.Now(), id)
	return err
}

// CompleteSyncJob transitions a job to completed, writing the result in the
// same statement as the state change.
func (s *Store) CompleteSyncJob(id string, progress models.JobProgress, result *models.SyncResult) error {
	progressJSON, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE sync_jobs SET state = 'completed', progress = ?, result = ?, updated_at = ?
		WHERE id = ? AND state IN ('queued', 'running')`,
		string(progressJSON), string(resultJSON), time.Now(), id)
	return err
}

// FailSyncJob transitions a job to failed with a human-readable reason.
func (s *Store) FailSyncJob(id string, reason string) error {
	_, err := s.db.Exec(`
		UPDATE sync_jobs SET state = 'failed', failed_reason = ?, updated_at = ?
		WHERE id = ? AND state IN ('queued', 'running')`,
		reason, time.Now(), id)
	return err
}

// CancelSyncJob marks a queued or running job cancelled. The runner notices
// the terminal state between batches and stops fetching. Reports whether the
// job was actually cancelled (false when it was already terminal).
func (s *Store) CancelSyncJob(userID int64, id string) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE sync_jobs SET state = 'cancelled', updated_at = ?
		WHERE id = ? AND user_id = ? AND state IN ('queued', 'running')`,
		time.Now(), id, userID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
