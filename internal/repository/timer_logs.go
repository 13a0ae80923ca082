package repository

import (
	"context"
	"database/sql"
	"errors"

	"checklist-api/internal/models"
	"checklist-api/pkg/logger"

	"github.com/google/uuid"
)

type TimerLogStore struct {
	db *sql.DB
}

func NewTimerLogStore(db *sql.DB) *TimerLogStore {
	return &TimerLogStore{db: db}
}

// Append inserts a timer log. Re-appending an existing id is a no-op, so
// redelivered queue messages are harmless.
func (s *TimerLogStore) Append(ctx context.Context, l *models.TimerLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO timer_logs (id, checklist_id, elapsed_seconds) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING RETURNING created_at`,
		l.ID, l.ChecklistID, l.ElapsedSeconds).Scan(&l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Debug(ctx, "Timer log already recorded", "id", l.ID)
		return nil
	}
	if err != nil {
		logger.Error(ctx, "Repository AppendTimerLog failed", "error", err, "checklist_id", l.ChecklistID)
		return err
	}
	return nil
}

// ListByChecklist returns the checklist's timer logs, newest first.
func (s *TimerLogStore) ListByChecklist(ctx context.Context, checklistID string) ([]models.TimerLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, checklist_id, elapsed_seconds, created_at FROM timer_logs
		  WHERE checklist_id = $1 ORDER BY created_at DESC`, checklistID)
	if err != nil {
		logger.Error(ctx, "Repository ListTimerLogs failed", "error", err, "checklist_id", checklistID)
		return nil, err
	}
	defer rows.Close()
	out := []models.TimerLog{}
	for rows.Next() {
		var l models.TimerLog
		if err := rows.Scan(&l.ID, &l.ChecklistID, &l.ElapsedSeconds, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
