package models

import "time"

// Profile is a local account. PasswordHash is never serialized.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileUpdate carries the fields of a partial profile update; nil means unchanged.
type ProfileUpdate struct {
	Name         *string
	PasswordHash *string
	AvatarURL    Nullable[string]
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.PasswordHash == nil && !u.AvatarURL.Set
}
