package activities

import "github.com/mergington/activities/internal/domain"

// SignupInput carries the raw query values of a signup request.
// Values are trimmed and validated by the service.
type SignupInput struct {
	Email     string
	FirstName string
	LastName  string
}

type SignupResult struct {
	Activity    domain.ActivityName
	Participant domain.Participant
	Message     string
}

type UnregisterResult struct {
	Activity    domain.ActivityName
	Participant domain.Participant
	Message     string
}
