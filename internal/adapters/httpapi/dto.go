package httpapi

import (
	"github.com/oapi-codegen/nullable"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mergington/activities/internal/domain"
)

// ParticipantDTO is the wire shape of a participant. Legacy bare-email entries are
// always normalised to this object form on output.
type ParticipantDTO struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ActivityDTO struct {
	Description     string           `json:"description"`
	Schedule        string           `json:"schedule"`
	MaxParticipants int              `json:"max_participants"`
	Participants    []ParticipantDTO `json:"participants"`
}

// ActivitiesResponse is a JSON object keyed by activity name whose key order follows
// the repository order.
type ActivitiesResponse = *orderedmap.OrderedMap[string, ActivityDTO]

func activitiesResponseFromDomain(as []domain.Activity) ActivitiesResponse {
	out := orderedmap.New[string, ActivityDTO](len(as))
	for _, a := range as {
		ps := make([]ParticipantDTO, 0, len(a.Participants))
		for _, p := range a.Participants {
			ps = append(ps, ParticipantDTO{Email: p.Email, FirstName: p.FirstName, LastName: p.LastName})
		}
		out.Set(string(a.Name), ActivityDTO{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    ps,
		})
	}
	return out
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries the error text in `detail`, the field clients read.
type ErrorResponse struct {
	Detail    string                            `json:"detail"`
	Code      string                            `json:"code"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"request_id,omitempty"`
}
