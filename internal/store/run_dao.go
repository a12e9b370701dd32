package store

import (
	"context"
	"time"

	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/types"
)

// RunRecord is one row of the run index.
type RunRecord struct {
	ID        types.ID  `json:"id"`
	Subject   string    `json:"subject"`
	RowCount  int       `json:"row_count"`
	Valid     bool      `json:"valid"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RunDAO provides database access for the run index.
type RunDAO struct {
	db *DB
}

// NewRunDAO creates a new RunDAO instance.
func NewRunDAO(db *DB) *RunDAO {
	return &RunDAO{db: db}
}

// Record indexes a completed run.
func (dao *RunDAO) Record(ctx context.Context, run *pipeline.Run) error {
	return dao.insert(ctx, RunRecord{
		ID:        run.ID,
		Subject:   run.Subject,
		RowCount:  run.Validation.RowCount,
		Valid:     run.Validation.IsValid,
		CreatedAt: run.CompletedAt,
	})
}

// RecordFailure indexes a run that ended in an error.
func (dao *RunDAO) RecordFailure(ctx context.Context, subject, errMsg string) error {
	return dao.insert(ctx, RunRecord{
		ID:        types.NewID(),
		Subject:   subject,
		Error:     errMsg,
		CreatedAt: time.Now().UTC(),
	})
}

func (dao *RunDAO) insert(ctx context.Context, rec RunRecord) error {
	query := `
		INSERT INTO runs (id, subject, row_count, valid, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := dao.db.conn.ExecContext(ctx, query,
		rec.ID.String(), rec.Subject, rec.RowCount, boolToInt(rec.Valid), rec.Error, created)
	if err != nil {
		return types.WrapError(types.STORE_WRITE_FAILED, "failed to index run", err)
	}
	return nil
}

// History returns the most recent runs, newest first. A non-positive limit
// defaults to 20.
func (dao *RunDAO) History(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, subject, row_count, valid, error, created_at
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := dao.db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to query run history", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var id string
		var valid int
		if err := rows.Scan(&id, &rec.Subject, &rec.RowCount, &valid, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to scan run record", err)
		}
		parsed, err := types.ParseID(id)
		if err != nil {
			return nil, types.WrapError(types.STORE_QUERY_FAILED, "malformed run id in index", err)
		}
		rec.ID = parsed
		rec.Valid = valid != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to iterate run history", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
