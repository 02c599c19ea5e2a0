package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dom/donutdot/internal/domain"
)

// OnboardingService drives the chat conversation that builds a profile:
// name, then age, then location. Edit steps reuse the same state slot.
type OnboardingService struct {
	profiles *ProfileService
	store    OnboardingStore
	now      func() time.Time
}

func NewOnboardingService(profiles *ProfileService, store OnboardingStore, now func() time.Time) *OnboardingService {
	return &OnboardingService{
		profiles: profiles,
		store:    store,
		now:      now,
	}
}

// Start greets a returning user or begins onboarding at the name step.
func (s *OnboardingService) Start(ctx context.Context, userID int64, username string) (*domain.OnboardingReply, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if profile != nil && profile.IsComplete() {
		if err := s.store.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return &domain.OnboardingReply{
			Prompt:   fmt.Sprintf("👋 Welcome back, %s!", profile.Name),
			Complete: true,
			Profile:  profile,
		}, nil
	}

	state := &domain.OnboardingState{
		UserID:   userID,
		Username: username,
		Step:     domain.OnboardingStepName,
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return &domain.OnboardingReply{
		Prompt: "🍩 Welcome to DonutDot!\n\nLet's set up your profile. First, what's your name?",
		Step:   state.Step,
	}, nil
}

// Reply feeds the user's answer to the current step. Invalid answers re-prompt
// and leave the step unchanged.
func (s *OnboardingService) Reply(ctx context.Context, userID int64, text string) (*domain.OnboardingReply, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}

	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, domain.ErrNoOnboardingStep
	}

	text = strings.TrimSpace(text)

	switch state.Step {
	case domain.OnboardingStepName:
		if text == "" {
			return reprompt(state, "Please tell me your name.")
		}
		state.Name = truncate(text, maxNameLength)
		state.Step = domain.OnboardingStepAge
		if err := s.store.Save(ctx, state); err != nil {
			return nil, err
		}
		return &domain.OnboardingReply{
			Prompt: fmt.Sprintf("Nice to meet you, %s! 👋\n\nHow old are you?", state.Name),
			Step:   state.Step,
		}, nil

	case domain.OnboardingStepAge:
		age, err := strconv.Atoi(text)
		if err != nil || domain.ValidateAge(age) != nil {
			return reprompt(state, fmt.Sprintf("Please enter a valid age (%d-%d).", domain.MinAge, domain.MaxAge))
		}
		state.Age = age
		state.Step = domain.OnboardingStepLocation
		if err := s.store.Save(ctx, state); err != nil {
			return nil, err
		}
		return &domain.OnboardingReply{
			Prompt: "Got it! Where are you located? (City name)",
			Step:   state.Step,
		}, nil

	case domain.OnboardingStepLocation:
		if text == "" {
			return reprompt(state, "Please tell me your city.")
		}
		profile, err := s.profiles.Save(ctx, ProfileInput{
			UserID:   userID,
			Username: state.Username,
			Name:     state.Name,
			Age:      state.Age,
			Location: text,
		})
		if err != nil {
			return nil, err
		}
		if err := s.store.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return &domain.OnboardingReply{
			Prompt:   "✅ Profile created! You can start browsing now.",
			Complete: true,
			Profile:  profile,
		}, nil

	case domain.OnboardingStepEditBio, domain.OnboardingStepEditUniversity:
		field := domain.EditFieldBio
		label := "Bio"
		if state.Step == domain.OnboardingStepEditUniversity {
			field = domain.EditFieldUniversity
			label = "University"
		}
		profile, err := s.profiles.UpdateField(ctx, userID, field, text)
		if err != nil {
			return nil, err
		}
		if err := s.store.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return &domain.OnboardingReply{
			Prompt:   fmt.Sprintf("✅ %s updated!", label),
			Complete: true,
			Profile:  profile,
		}, nil
	}

	// Unknown step left over from an older deployment.
	if err := s.store.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return nil, domain.ErrNoOnboardingStep
}

// BeginEdit asks the user for a new value of field.
func (s *OnboardingService) BeginEdit(ctx context.Context, userID int64, field domain.EditField) (*domain.OnboardingReply, error) {
	step, err := field.Step()
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.Get(ctx, userID); err != nil {
		return nil, err
	}

	state := &domain.OnboardingState{UserID: userID, Step: step}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	prompt := "Send your new bio:"
	if step == domain.OnboardingStepEditUniversity {
		prompt = "Send your university name:"
	}
	return &domain.OnboardingReply{Prompt: prompt, Step: step}, nil
}

func reprompt(state *domain.OnboardingState, prompt string) (*domain.OnboardingReply, error) {
	return &domain.OnboardingReply{Prompt: prompt, Step: state.Step}, nil
}
