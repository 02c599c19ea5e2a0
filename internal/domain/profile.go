package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	MinAge = 18
	MaxAge = 99
)

// Filters narrows the candidate pool when browsing.
type Filters struct {
	MinAge       int    `json:"minAge"`
	MaxAge       int    `json:"maxAge"`
	Location     string `json:"location,omitempty"`
	VerifiedOnly bool   `json:"verifiedOnly"`
	Gender       string `json:"gender,omitempty"`
}

// DefaultFilters returns the filters used when a profile has none stored.
func DefaultFilters() Filters {
	return Filters{MinAge: MinAge, MaxAge: MaxAge}
}

// Validate checks the age bounds.
func (f Filters) Validate() error {
	if f.MinAge < MinAge || f.MinAge > MaxAge || f.MaxAge < MinAge || f.MaxAge > MaxAge {
		return ErrInvalidAge
	}
	if f.MinAge > f.MaxAge {
		return ErrInvalidAgeRange
	}
	return nil
}

// Normalize fills zero age bounds with defaults and canonicalizes strings.
func (f Filters) Normalize() Filters {
	if f.MinAge == 0 {
		f.MinAge = MinAge
	}
	if f.MaxAge == 0 {
		f.MaxAge = MaxAge
	}
	f.Location = strings.TrimSpace(f.Location)
	f.Gender = strings.ToLower(strings.TrimSpace(f.Gender))
	return f
}

// Profile is a user's public identity on the service. Profiles are never
// deleted; Banned suppresses them from every candidate pool.
type Profile struct {
	UserID      int64                       `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	Username    string                      `json:"username,omitempty" gorm:"size:64"`
	Name        string                      `json:"name" gorm:"size:100;not null"`
	Age         int                         `json:"age" gorm:"not null;index"`
	Location    string                      `json:"location" gorm:"size:100;not null;index"`
	University  *string                     `json:"university,omitempty" gorm:"size:200"`
	Bio         *string                     `json:"bio,omitempty" gorm:"type:text"`
	Gender      string                      `json:"gender,omitempty" gorm:"size:20"`
	Verified    bool                        `json:"verified" gorm:"not null;default:false"`
	VerifiedAt  *time.Time                  `json:"verifiedAt,omitempty"`
	Banned      bool                        `json:"banned" gorm:"not null;default:false;index"`
	Preferences datatypes.JSONType[Filters] `json:"preferences"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// IsComplete reports whether onboarding has filled in the required fields.
func (p *Profile) IsComplete() bool {
	return p.Name != "" && p.Age != 0 && p.Location != ""
}

// ContactHandle is how the counterpart reaches this user on the external
// channel once a session starts.
func (p *Profile) ContactHandle() string {
	if p.Username != "" {
		return "@" + strings.TrimPrefix(p.Username, "@")
	}
	return fmt.Sprintf("user_%d", p.UserID)
}

// Filters returns the stored browse preferences, falling back to defaults.
func (p *Profile) Filters() Filters {
	f := p.Preferences.Data()
	if f.MinAge == 0 && f.MaxAge == 0 {
		return DefaultFilters()
	}
	return f.Normalize()
}

// AgeInYears returns how long the profile has existed, in fractional years.
func (p *Profile) AgeInYears(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Hours() / (24 * 365)
}

// ValidateAge checks an age against the allowed range.
func ValidateAge(age int) error {
	if age < MinAge || age > MaxAge {
		return ErrInvalidAge
	}
	return nil
}
