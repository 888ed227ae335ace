package profiles

import (
	"time"

	"storefront/internal/backend"
)

const DefaultPlaceholderAvatar = "https://placehold.co/40?text=A"

type Profile struct {
	ID        string     `json:"id"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone"`
	AvatarURL string     `json:"avatar_url"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Source tells whether a profile was read from the backend or synthesized
// because the user has not saved one yet.
type Source string

const (
	SourceStored      Source = "stored"
	SourceSynthesized Source = "synthesized"
)

// Lookup is the get-or-default result of Current.
type Lookup struct {
	Profile
	Source Source `json:"source"`
}

// UpdateInput carries the profile form. File is nil when the avatar is kept.
type UpdateInput struct {
	FullName string        `validate:"required"`
	Phone    string        `validate:"omitempty,brphone"`
	File     *backend.File `validate:"-"`
}

// UpdateResult is the written profile. CleanupWarning is set when the new
// avatar was linked but the previous object could not be deleted.
type UpdateResult struct {
	Profile
	CleanupWarning error `json:"-"`
}
