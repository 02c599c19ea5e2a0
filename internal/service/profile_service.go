package service

import (
	"context"
	"strings"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
)

const (
	maxNameLength  = 100
	maxFieldLength = 500
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewProfileService(profileRepo repository.ProfileRepository, now func() time.Time) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		now:         now,
	}
}

// ProfileInput carries the fields collected during onboarding.
type ProfileInput struct {
	UserID   int64
	Username string
	Name     string
	Age      int
	Location string
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	return s.profileRepo.GetByID(ctx, userID)
}

// Save creates the profile or refreshes the onboarding fields of an existing one.
func (s *ProfileService) Save(ctx context.Context, input ProfileInput) (*domain.Profile, error) {
	if input.UserID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	name := truncate(strings.TrimSpace(input.Name), maxNameLength)
	if name == "" {
		return nil, domain.ErrMissingName
	}
	if err := domain.ValidateAge(input.Age); err != nil {
		return nil, err
	}
	location := truncate(strings.TrimSpace(input.Location), maxNameLength)
	if location == "" {
		return nil, domain.ErrMissingLocation
	}

	now := s.now()
	profile := &domain.Profile{
		UserID:    input.UserID,
		Username:  strings.TrimPrefix(strings.TrimSpace(input.Username), "@"),
		Name:      name,
		Age:       input.Age,
		Location:  location,
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := s.profileRepo.GetByID(ctx, input.UserID)
	switch {
	case err == nil:
		profile.University = existing.University
		profile.Bio = existing.Bio
		profile.Gender = existing.Gender
		if profile.Username == "" {
			profile.Username = existing.Username
		}
	case !isNotFound(err):
		return nil, err
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, input.UserID)
}

// UpdateField sets one of the optional free-text fields.
func (s *ProfileService) UpdateField(ctx context.Context, userID int64, field domain.EditField, value string) (*domain.Profile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	value = truncate(strings.TrimSpace(value), maxFieldLength)
	var ptr *string
	if value != "" {
		ptr = &value
	}

	switch domain.EditField(strings.ToLower(string(field))) {
	case domain.EditFieldBio:
		profile.Bio = ptr
	case domain.EditFieldUniversity:
		profile.University = ptr
	default:
		return nil, domain.ErrInvalidEditField
	}

	profile.UpdatedAt = s.now()
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
