package activitiesapi

import (
	"context"
	"fmt"

	"github.com/mergington/activities/internal/domain"
)

// Client is the view's access to the activities API. It is always a remote call:
// implementations must not read repositories directly.
type Client interface {
	ListActivities(ctx context.Context) ([]domain.Activity, error)

	// Signup returns the server's success message.
	Signup(ctx context.Context, activity domain.ActivityName, email, firstName, lastName string) (string, error)

	// Unregister returns the server's success message.
	Unregister(ctx context.Context, activity domain.ActivityName, email string) (string, error)
}

// StatusError is a non-2xx API response. Detail and Message are the `detail` and
// `message` fields of the body; either may be empty.
type StatusError struct {
	StatusCode int
	Detail     string
	Message    string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return fmt.Sprintf("activities api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("activities api: status %d", e.StatusCode)
}
