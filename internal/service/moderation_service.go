package service

import (
	"context"
	"strings"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxReportsListed = 100

type ModerationService struct {
	profileRepo repository.ProfileRepository
	reportRepo  repository.ReportRepository
	verify      VerificationStore
	passes      *PassService
	sessions    *SessionService
	now         func() time.Time
}

func NewModerationService(
	profileRepo repository.ProfileRepository,
	reportRepo repository.ReportRepository,
	verify VerificationStore,
	passes *PassService,
	sessions *SessionService,
	now func() time.Time,
) *ModerationService {
	return &ModerationService{
		profileRepo: profileRepo,
		reportRepo:  reportRepo,
		verify:      verify,
		passes:      passes,
		sessions:    sessions,
		now:         now,
	}
}

// Report files a complaint by reporterID against reportedID.
func (s *ModerationService) Report(ctx context.Context, reporterID, reportedID int64, reason string) (*domain.Report, error) {
	if reporterID == 0 || reportedID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	if reporterID == reportedID {
		return nil, domain.ErrSelfReport
	}
	reason = truncate(strings.TrimSpace(reason), maxFieldLength)
	if reason == "" {
		return nil, domain.ErrMissingReason
	}
	if _, err := s.profileRepo.GetByID(ctx, reportedID); err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:         uuid.New(),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Status:     domain.ReportStatusPending,
		CreatedAt:  s.now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	log.Info().
		Int64("reporter_id", reporterID).
		Int64("reported_id", reportedID).
		Str("report_id", report.ID.String()).
		Msg("profile reported")
	return report, nil
}

// Reports lists reports, optionally filtered by status.
func (s *ModerationService) Reports(ctx context.Context, status string) ([]*domain.Report, error) {
	if status == "" {
		return s.reportRepo.List(ctx, nil, maxReportsListed)
	}
	st := domain.ReportStatus(status)
	if !st.IsValid() {
		return nil, domain.ErrInvalidReportStatus
	}
	return s.reportRepo.List(ctx, &st, maxReportsListed)
}

func (s *ModerationService) ResolveReport(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidReportStatus
	}
	if err := s.reportRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.reportRepo.GetByID(ctx, id)
}

func (s *ModerationService) Ban(ctx context.Context, userID int64) error {
	return s.setBanned(ctx, userID, true)
}

func (s *ModerationService) Unban(ctx context.Context, userID int64) error {
	return s.setBanned(ctx, userID, false)
}

func (s *ModerationService) setBanned(ctx context.Context, userID int64, banned bool) error {
	if userID == 0 {
		return domain.ErrInvalidUserID
	}
	if err := s.profileRepo.SetBanned(ctx, userID, banned); err != nil {
		return err
	}
	log.Info().Int64("user_id", userID).Bool("banned", banned).Msg("ban status changed")
	return nil
}

func (s *ModerationService) MarkVerified(ctx context.Context, userID int64) error {
	if userID == 0 {
		return domain.ErrInvalidUserID
	}
	return s.profileRepo.MarkVerified(ctx, userID, s.now())
}

// GrantPass gives userID a free pass under an admin_grant reference.
func (s *ModerationService) GrantPass(ctx context.Context, userID int64) (*domain.Pass, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	if _, err := s.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	ref := domain.NewReference(domain.ReferenceAdminGrant, userID, s.now())
	pass, err := s.passes.Grant(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	s.sessions.Notify(ctx, userID, adminPassMessage)
	return pass, nil
}

// RequestVerification records a pending verification of email for userID
// and returns it. The caller delivers the token to the address.
func (s *ModerationService) RequestVerification(ctx context.Context, userID int64, email string) (*domain.EmailVerification, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	if _, err := domain.EmailDomain(email); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.Banned {
		return nil, domain.ErrUserBanned
	}

	v := &domain.EmailVerification{
		Token:     uuid.NewString(),
		UserID:    userID,
		Email:     strings.TrimSpace(email),
		CreatedAt: s.now(),
	}
	if err := s.verify.SaveVerification(ctx, v); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", userID).Msg("email verification requested")
	return v, nil
}

// ConfirmVerification spends token, marks its profile verified and stores
// the address's domain as the university.
func (s *ModerationService) ConfirmVerification(ctx context.Context, token string) (*domain.Profile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrVerificationNotFound
	}
	v, err := s.verify.TakeVerification(ctx, token)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrVerificationNotFound
	}

	university, err := domain.EmailDomain(v.Email)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByID(ctx, v.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	profile.University = &university
	profile.UpdatedAt = now
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.profileRepo.MarkVerified(ctx, v.UserID, now); err != nil {
		return nil, err
	}
	profile.Verified = true
	profile.VerifiedAt = &now

	s.sessions.Notify(ctx, v.UserID, emailVerifiedMessage)
	log.Info().Int64("user_id", v.UserID).Str("university", university).Msg("email verified")
	return profile, nil
}
