package repository

import (
	"context"
	"database/sql"
	"errors"

	"checklist-api/internal/models"
	"checklist-api/pkg/logger"

	"github.com/google/uuid"
)

const shareColumns = `id, checklist_id, sender_id, receiver_id, status, created_at`

type ShareStore struct {
	db *sql.DB
}

func NewShareStore(db *sql.DB) *ShareStore {
	return &ShareStore{db: db}
}

func scanShare(row rowScanner) (*models.ShareRequest, error) {
	var r models.ShareRequest
	if err := row.Scan(&r.ID, &r.ChecklistID, &r.SenderID, &r.ReceiverID, &r.Status, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a pending share request.
func (s *ShareStore) Create(ctx context.Context, r *models.ShareRequest) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.Status = models.SharePending
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO share_requests (id, checklist_id, sender_id, receiver_id, status) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		r.ID, r.ChecklistID, r.SenderID, r.ReceiverID, r.Status).Scan(&r.CreatedAt)
	if err != nil {
		logger.Error(ctx, "Repository CreateShareRequest failed", "error", err)
		return classify(err, "share request")
	}
	return nil
}

func (s *ShareStore) Get(ctx context.Context, id string) (*models.ShareRequest, error) {
	r, err := scanShare(s.db.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM share_requests WHERE id = $1`, id))
	return r, classify(err, "share request")
}

// ListPending returns the receiver's pending requests, newest first, joined with
// the checklist title and the sender's name and avatar.
func (s *ShareStore) ListPending(ctx context.Context, receiverID string) ([]models.PendingShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.checklist_id, r.sender_id, r.receiver_id, r.status, r.created_at,
		        c.title, p.name, p.avatar_url
		   FROM share_requests r
		   JOIN checklists c ON c.id = r.checklist_id
		   JOIN profiles p ON p.id = r.sender_id
		  WHERE r.receiver_id = $1 AND r.status = $2
		  ORDER BY r.created_at DESC`, receiverID, models.SharePending)
	if err != nil {
		logger.Error(ctx, "Repository ListPendingShares failed", "error", err, "receiver_id", receiverID)
		return nil, err
	}
	defer rows.Close()
	out := []models.PendingShare{}
	for rows.Next() {
		var ps models.PendingShare
		if err := rows.Scan(&ps.ID, &ps.ChecklistID, &ps.SenderID, &ps.ReceiverID, &ps.Status, &ps.CreatedAt,
			&ps.ChecklistTitle, &ps.SenderName, &ps.SenderAvatar); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// Transition moves a request from one status to another in a single conditional
// statement. ok is false when no request with that id is in the from state.
func (s *ShareStore) Transition(ctx context.Context, id string, from, to models.ShareStatus) (*models.ShareRequest, bool, error) {
	r, err := scanShare(s.db.QueryRowContext(ctx,
		`UPDATE share_requests SET status = $1 WHERE id = $2 AND status = $3 RETURNING `+shareColumns,
		to, id, from))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		logger.Error(ctx, "Repository TransitionShareRequest failed", "error", err, "id", id)
		return nil, false, err
	}
	return r, true, nil
}
