package domain

import "strings"

// SchoolEmailDomain is the only email domain accepted for signups.
const SchoolEmailDomain = "@mergington.com"

// Participant is a student registered for an activity.
// Email is unique within an activity (case-insensitive).
type Participant struct {
	Email     string
	FirstName string
	LastName  string
}

// ParticipantFromLegacyEmail builds a Participant from a bare email entry.
// The first name is the local part of the email; the last name is empty.
func ParticipantFromLegacyEmail(email string) Participant {
	local, _, _ := strings.Cut(email, "@")
	return Participant{Email: email, FirstName: local}
}

// Activity is a named signup-able offering with a capacity and schedule.
type Activity struct {
	Name            ActivityName
	Description     string
	Schedule        string
	MaxParticipants int

	// Participants are kept in registration order.
	Participants []Participant
}

// SpotsLeft is capacity minus current participant count. It is derived, never stored,
// and may be negative because capacity is not enforced on signup.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// HasParticipant reports whether email is registered, ignoring case.
func (a Activity) HasParticipant(email string) bool {
	return a.IndexOfParticipant(email) >= 0
}

// IndexOfParticipant returns the position of email in Participants (case-insensitive) or -1.
func (a Activity) IndexOfParticipant(email string) int {
	for i, p := range a.Participants {
		if strings.EqualFold(p.Email, email) {
			return i
		}
	}
	return -1
}

// HasSchoolDomain reports whether email ends with SchoolEmailDomain after trimming,
// ignoring case.
func HasSchoolDomain(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), SchoolEmailDomain)
}
