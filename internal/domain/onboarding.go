package domain

import "strings"

// OnboardingStep is where a user currently is in the chat-driven profile flow.
type OnboardingStep string

const (
	OnboardingStepName           OnboardingStep = "name"
	OnboardingStepAge            OnboardingStep = "age"
	OnboardingStepLocation       OnboardingStep = "location"
	OnboardingStepEditBio        OnboardingStep = "edit_bio"
	OnboardingStepEditUniversity OnboardingStep = "edit_university"
)

// EditField names a profile field that can be edited after onboarding.
type EditField string

const (
	EditFieldBio        EditField = "bio"
	EditFieldUniversity EditField = "university"
)

// Step returns the onboarding step that collects the field.
func (f EditField) Step() (OnboardingStep, error) {
	switch EditField(strings.ToLower(string(f))) {
	case EditFieldBio:
		return OnboardingStepEditBio, nil
	case EditFieldUniversity:
		return OnboardingStepEditUniversity, nil
	}
	return "", ErrInvalidEditField
}

// OnboardingState is the ephemeral, per-user progress of the flow. Answers
// collected so far ride along until the profile is written.
type OnboardingState struct {
	UserID   int64          `json:"userId"`
	Username string         `json:"username,omitempty"`
	Step     OnboardingStep `json:"step"`
	Name     string         `json:"name,omitempty"`
	Age      int            `json:"age,omitempty"`
}

// OnboardingReply is what the flow says back to the user after a step.
type OnboardingReply struct {
	Prompt   string         `json:"prompt"`
	Step     OnboardingStep `json:"step,omitempty"`
	Complete bool           `json:"complete"`
	Profile  *Profile       `json:"profile,omitempty"`
}
