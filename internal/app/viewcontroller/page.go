package viewcontroller

import (
	"fmt"
	"strings"
	"time"

	"github.com/mergington/activities/internal/domain"
)

const (
	SelectPlaceholder     = "-- Select an activity --"
	NoParticipantsText    = "No participants yet"
	LoadFailedText        = "Failed to load activities. Please try again later."
	spotsLeftFormat       = "%d spots left"
	participantTextFormat = "%s — %s"
)

type MessageClass string

const (
	ClassSuccess MessageClass = "success"
	ClassError   MessageClass = "error"
)

// Message is the shared transient message area. HideAfter is how long it stays visible.
type Message struct {
	Text      string
	Class     MessageClass
	HideAfter time.Duration
}

// State is the implicit UI state of the activity list.
type State string

const (
	StateIdle     State = "idle"
	StateRendered State = "rendered"
	StateError    State = "error"
)

// SignupForm holds the raw form field values.
type SignupForm struct {
	FirstName string
	LastName  string
	Email     string
	Activity  string
}

type Option struct {
	Value string
	Label string
}

type ParticipantRow struct {
	Activity       domain.ActivityName
	Email          string
	Badge          string
	Text           string
	RemoveDisabled bool
}

type Card struct {
	Name         domain.ActivityName
	Description  string
	Schedule     string
	SpotsLeft    int
	Availability string
	Participants []ParticipantRow
	// Empty is set when the card shows the NoParticipantsText row instead of participants.
	Empty bool
}

type Page struct {
	State   State
	Cards   []Card
	Options []Option
	// LoadError replaces the list area when set.
	LoadError string
	Message   *Message
	Form      SignupForm
}

func placeholderOptions() []Option {
	return []Option{{Value: "", Label: SelectPlaceholder}}
}

func buildOptions(as []domain.Activity) []Option {
	opts := placeholderOptions()
	for _, a := range as {
		opts = append(opts, Option{Value: string(a.Name), Label: string(a.Name)})
	}
	return opts
}

func buildCards(as []domain.Activity, inFlight func(domain.ActivityName, string) bool) []Card {
	cards := make([]Card, 0, len(as))
	for _, a := range as {
		spots := a.SpotsLeft()
		c := Card{
			Name:         a.Name,
			Description:  a.Description,
			Schedule:     a.Schedule,
			SpotsLeft:    spots,
			Availability: fmt.Sprintf(spotsLeftFormat, spots),
			Empty:        len(a.Participants) == 0,
		}
		for _, p := range a.Participants {
			c.Participants = append(c.Participants, ParticipantRow{
				Activity:       a.Name,
				Email:          p.Email,
				Badge:          participantBadge(p),
				Text:           participantText(p),
				RemoveDisabled: inFlight(a.Name, p.Email),
			})
		}
		cards = append(cards, c)
	}
	return cards
}

func participantBadge(p domain.Participant) string {
	if first := strings.TrimSpace(p.FirstName); first != "" {
		return first
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}

func participantText(p domain.Participant) string {
	full := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if full == "" {
		return p.Email
	}
	return fmt.Sprintf(participantTextFormat, full, p.Email)
}
