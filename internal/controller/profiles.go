package controller

import (
	"errors"
	"net/http"
	"strings"

	"checklist-api/internal/apperr"
	"checklist-api/internal/cache"
	"checklist-api/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// hashPassword refuses passwords bcrypt cannot hash in full (over 72 bytes).
func (h *Handler) hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// checkPassword returns an auth error when password does not match p's hash.
func checkPassword(p *models.Profile, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return apperr.Auth("invalid password")
	}
	return err
}

// CreateProfile registers a profile and returns it without the password hash.
func (h *Handler) CreateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Name      string  `json:"name" binding:"required"`
		Password  string  `json:"password" binding:"required"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		respondError(c, apperr.Validation("name is required"))
		return
	}
	hash, err := h.hashPassword(body.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	p := &models.Profile{Name: name, PasswordHash: hash, AvatarURL: body.AvatarURL}
	if err := h.Profiles.Create(ctx, p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.Profiles.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Login checks a password against the profile named by profile_id or name.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		ProfileID string `json:"profile_id"`
		Name      string `json:"name"`
		Password  string `json:"password" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	var (
		p   *models.Profile
		err error
	)
	switch {
	case body.ProfileID != "":
		p, err = h.Profiles.Get(ctx, body.ProfileID)
	case body.Name != "":
		p, err = h.Profiles.GetByName(ctx, body.Name)
	default:
		err = apperr.Validation("profile_id or name is required")
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := checkPassword(p, body.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfile changes any of name, password and avatar_url.
func (h *Handler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Name      *string                 `json:"name"`
		Password  *string                 `json:"password"`
		AvatarURL models.Nullable[string] `json:"avatar_url"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	upd := models.ProfileUpdate{AvatarURL: body.AvatarURL}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			respondError(c, apperr.Validation("name must not be empty"))
			return
		}
		upd.Name = &name
	}
	if body.Password != nil {
		if *body.Password == "" {
			respondError(c, apperr.Validation("password must not be empty"))
			return
		}
		hash, err := h.hashPassword(*body.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		upd.PasswordHash = &hash
	}
	p, err := h.Profiles.Update(ctx, c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProfile removes the profile row only; its checklists are kept.
func (h *Handler) DeleteProfile(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.Profiles.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	h.Cache.Invalidate(ctx, cache.ChecklistsKey(id))
	c.Status(http.StatusNoContent)
}
