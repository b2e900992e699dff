package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Run struct {
	ID          int64           `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Recorder keeps the history of job runs.
type Recorder interface {
	Start(ctx context.Context, jobType string) (int64, error)
	Finish(ctx context.Context, id int64, status string, details []byte) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// MemoryRecorder keeps the most recent runs in process memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	limit  int
	nextID int64
	runs   []Run
}

func NewMemoryRecorder(limit int) *MemoryRecorder {
	if limit <= 0 {
		limit = 100
	}
	return &MemoryRecorder{limit: limit}
}

func (m *MemoryRecorder) Start(ctx context.Context, jobType string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.runs = append(m.runs, Run{ID: m.nextID, JobType: jobType, Status: StatusRunning, StartedAt: time.Now().UTC()})
	if len(m.runs) > m.limit {
		m.runs = m.runs[len(m.runs)-m.limit:]
	}
	return m.nextID, nil
}

func (m *MemoryRecorder) Finish(ctx context.Context, id int64, status string, details []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == id {
			now := time.Now().UTC()
			m.runs[i].Status = status
			m.runs[i].Details = append(json.RawMessage(nil), details...)
			m.runs[i].CompletedAt = &now
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrRunMissing, id)
}

// Recent returns up to limit runs, newest first.
func (m *MemoryRecorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Run{}
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// PostgresRecorder stores runs in the job_runs table.
type PostgresRecorder struct {
	DB *pgxpool.Pool
}

func NewPostgresRecorder(db *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{DB: db}
}

func (p *PostgresRecorder) Start(ctx context.Context, jobType string) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, jobType, StatusRunning).Scan(&id)
	return id, err
}

func (p *PostgresRecorder) Finish(ctx context.Context, id int64, status string, details []byte) error {
	_, err := p.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return err
}

func (p *PostgresRecorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT id, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    ORDER BY started_at DESC, id DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Run{}
	for rows.Next() {
		var r Run
		var details []byte
		if err := rows.Scan(&r.ID, &r.JobType, &r.Status, &details, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		r.Details = details
		out = append(out, r)
	}
	return out, rows.Err()
}
