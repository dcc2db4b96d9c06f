package activities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/ports/out/activityrepo"
)

type Service struct {
	repo activityrepo.Repository
	log  *zap.Logger
}

func NewService(repo activityrepo.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	return s.repo.List(ctx)
}

func (s *Service) Signup(ctx context.Context, name domain.ActivityName, in SignupInput) (SignupResult, error) {
	if _, err := s.repo.Get(ctx, name); err != nil {
		if errors.Is(err, activityrepo.ErrNotFound) {
			return SignupResult{}, errActivityNotFound()
		}
		return SignupResult{}, err
	}

	email := domain.NormalizeEmail(in.Email)
	if !strings.Contains(email, "@") || !domain.HasSchoolDomain(email) {
		return SignupResult{}, &Error{
			Status:  400,
			Code:    "INVALID_EMAIL_DOMAIN",
			Message: "Email must be a Merginton account ending with " + domain.SchoolEmailDomain,
			Details: map[string]any{"email": "must end with " + domain.SchoolEmailDomain},
		}
	}
	firstName := domain.NormalizeHumanName(in.FirstName)
	if firstName == "" {
		return SignupResult{}, &Error{
			Status:  400,
			Code:    "VALIDATION_ERROR",
			Message: "First name is required",
			Details: map[string]any{"first_name": "must be non-empty"},
		}
	}
	lastName := domain.NormalizeHumanName(in.LastName)
	if lastName == "" {
		return SignupResult{}, &Error{
			Status:  400,
			Code:    "VALIDATION_ERROR",
			Message: "Last name is required",
			Details: map[string]any{"last_name": "must be non-empty"},
		}
	}

	p := domain.Participant{Email: email, FirstName: firstName, LastName: lastName}
	if err := s.repo.AddParticipant(ctx, name, p); err != nil {
		switch {
		case errors.Is(err, activityrepo.ErrAlreadyRegistered):
			return SignupResult{}, &Error{Status: 400, Code: "ALREADY_SIGNED_UP", Message: "Student already signed up for this activity"}
		case errors.Is(err, activityrepo.ErrNotFound):
			// Removed between the lookup and the write.
			return SignupResult{}, errActivityNotFound()
		default:
			return SignupResult{}, err
		}
	}

	s.log.Info("participant signed up",
		zap.String("activity", string(name)),
		zap.String("email", email),
	)
	return SignupResult{
		Activity:    name,
		Participant: p,
		Message:     fmt.Sprintf("Signed up %s %s <%s> for %s", firstName, lastName, email, name),
	}, nil
}

func (s *Service) Unregister(ctx context.Context, name domain.ActivityName, email string) (UnregisterResult, error) {
	removed, err := s.repo.RemoveParticipant(ctx, name, domain.NormalizeEmail(email))
	if err != nil {
		switch {
		case errors.Is(err, activityrepo.ErrNotFound):
			return UnregisterResult{}, errActivityNotFound()
		case errors.Is(err, activityrepo.ErrNotRegistered):
			return UnregisterResult{}, &Error{Status: 404, Code: "NOT_REGISTERED", Message: "Student not registered for this activity"}
		default:
			return UnregisterResult{}, err
		}
	}

	s.log.Info("participant unregistered",
		zap.String("activity", string(name)),
		zap.String("email", removed.Email),
	)
	return UnregisterResult{
		Activity:    name,
		Participant: removed,
		Message:     fmt.Sprintf("Unregistered %s from %s", removed.Email, name),
	}, nil
}
