package activityrepo

import (
	"context"

	"github.com/mergington/activities/internal/domain"
)

// Repository provides access to persisted activities and their participants.
//
// Result ordering expectations:
// - List returns activities in insertion (seed) order.
// - Participants are returned in registration order.
//
// Email matching is case-insensitive in every implementation.
type Repository interface {
	List(ctx context.Context) ([]domain.Activity, error)
	Get(ctx context.Context, name domain.ActivityName) (domain.Activity, error)

	// AddParticipant appends p to the activity. It returns ErrNotFound for an unknown
	// activity and ErrAlreadyRegistered when p.Email is already present.
	AddParticipant(ctx context.Context, name domain.ActivityName, p domain.Participant) error

	// RemoveParticipant removes and returns the participant matching email. It returns
	// ErrNotFound for an unknown activity and ErrNotRegistered when email is absent.
	RemoveParticipant(ctx context.Context, name domain.ActivityName, email string) (domain.Participant, error)

	// Seed inserts activities that do not exist yet; existing ones are left untouched.
	Seed(ctx context.Context, activities []domain.Activity) error
}
