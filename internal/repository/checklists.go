package repository

import (
	"context"
	"database/sql"

	"checklist-api/internal/models"
	"checklist-api/pkg/logger"

	"github.com/google/uuid"
)

const checklistColumns = `id, profile_id, title, is_shared_copy, created_at`

type ChecklistStore struct {
	db *sql.DB
}

func NewChecklistStore(db *sql.DB) *ChecklistStore {
	return &ChecklistStore{db: db}
}

func scanChecklist(row rowScanner) (*models.Checklist, error) {
	var c models.Checklist
	if err := row.Scan(&c.ID, &c.ProfileID, &c.Title, &c.IsSharedCopy, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChecklistStore) Create(ctx context.Context, c *models.Checklist) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO checklists (id, profile_id, title, is_shared_copy) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		c.ID, c.ProfileID, c.Title, c.IsSharedCopy).Scan(&c.CreatedAt)
	if err != nil {
		logger.Error(ctx, "Repository CreateChecklist failed", "error", err)
		return classify(err, "checklist")
	}
	return nil
}

func (s *ChecklistStore) ListByOwner(ctx context.Context, profileID string) ([]models.Checklist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checklistColumns+` FROM checklists WHERE profile_id = $1 ORDER BY created_at ASC`, profileID)
	if err != nil {
		logger.Error(ctx, "Repository ListChecklists failed", "error", err, "profile_id", profileID)
		return nil, err
	}
	defer rows.Close()
	out := []models.Checklist{}
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *ChecklistStore) Get(ctx context.Context, id string) (*models.Checklist, error) {
	c, err := scanChecklist(s.db.QueryRowContext(ctx,
		`SELECT `+checklistColumns+` FROM checklists WHERE id = $1`, id))
	return c, classify(err, "checklist")
}

func (s *ChecklistStore) UpdateTitle(ctx context.Context, id, title string) (*models.Checklist, error) {
	c, err := scanChecklist(s.db.QueryRowContext(ctx,
		`UPDATE checklists SET title = $1 WHERE id = $2 RETURNING `+checklistColumns, title, id))
	return c, classify(err, "checklist")
}

// Delete removes only the checklist row; its tasks and timer logs stay.
func (s *ChecklistStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checklists WHERE id = $1`, id)
	if err != nil {
		logger.Error(ctx, "Repository DeleteChecklist failed", "error", err, "id", id)
		return err
	}
	return expectOne(res, "checklist")
}
