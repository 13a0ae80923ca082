package repository

import (
	"context"
	"database/sql"
	"strings"

	"checklist-api/internal/apperr"
	"checklist-api/internal/models"
	"checklist-api/pkg/logger"

	"github.com/google/uuid"
)

const profileColumns = `id, name, password_hash, avatar_url, created_at`

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.PasswordHash, &p.AvatarURL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a profile. A duplicate name yields a conflict error.
func (s *ProfileStore) Create(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO profiles (id, name, password_hash, avatar_url) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		p.ID, p.Name, p.PasswordHash, p.AvatarURL).Scan(&p.CreatedAt)
	if err != nil {
		if err = classify(err, "profile"); apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("profile name already taken", err)
		}
		logger.Error(ctx, "Repository CreateProfile failed", "error", err)
		return err
	}
	return nil
}

func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		logger.Error(ctx, "Repository ListProfiles failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			logger.Error(ctx, "Repository scan profile failed", "error", err)
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *ProfileStore) Get(ctx context.Context, id string) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	return p, classify(err, "profile")
}

func (s *ProfileStore) GetByName(ctx context.Context, name string) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE name = $1`, name))
	return p, classify(err, "profile")
}

// Update applies the non-nil fields of upd and returns the updated row.
func (s *ProfileStore) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Profile, error) {
	if upd.Empty() {
		return s.Get(ctx, id)
	}
	var set setList
	if upd.Name != nil {
		set.add("name", *upd.Name)
	}
	if upd.PasswordHash != nil {
		set.add("password_hash", *upd.PasswordHash)
	}
	if upd.AvatarURL.Set {
		set.add("avatar_url", upd.AvatarURL.Value)
	}
	q := `UPDATE profiles SET ` + strings.Join(set.cols, ", ") +
		` WHERE id = ` + set.next(id) + ` RETURNING ` + profileColumns
	p, err := scanProfile(s.db.QueryRowContext(ctx, q, set.args...))
	if err != nil {
		if err = classify(err, "profile"); apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("profile name already taken", err)
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			logger.Error(ctx, "Repository UpdateProfile failed", "error", err, "id", id)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProfileStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		logger.Error(ctx, "Repository DeleteProfile failed", "error", err, "id", id)
		return err
	}
	return expectOne(res, "profile")
}
