package activities

import "github.com/mergington/activities/internal/domain"

// DefaultCatalog returns the activities offered at startup. Participants are legacy
// bare-email registrations.
func DefaultCatalog() []domain.Activity {
	type entry struct {
		name        string
		description string
		schedule    string
		max         int
		emails      []string
	}
	entries := []entry{
		{"Chess Club", "Learn strategies and compete in chess tournaments", "Fridays, 3:30 PM - 5:00 PM", 12, []string{"michael@mergington.edu", "daniel@mergington.edu"}},
		{"Programming Class", "Learn programming fundamentals and build software projects", "Tuesdays and Thursdays, 3:30 PM - 4:30 PM", 20, []string{"emma@mergington.edu", "sophia@mergington.edu"}},
		{"Gym Class", "Physical education and sports activities", "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM", 30, []string{"john@mergington.edu", "olivia@mergington.edu"}},
		{"Soccer Team", "Competitive soccer practices and matches", "Mondays, Wednesdays, 4:00 PM - 6:00 PM", 22, []string{"noah@mergington.edu", "liam@mergington.edu"}},
		{"Basketball Team", "Team practices and inter-school games", "Tuesdays, Thursdays, 5:00 PM - 7:00 PM", 15, []string{"lucas@mergington.edu", "jack@mergington.edu"}},
		{"Drama Club", "Acting, stagecraft, and school productions", "Wednesdays, 3:30 PM - 5:30 PM", 25, []string{"mia@mergington.edu", "isabella@mergington.edu"}},
		{"Art Club", "Drawing, painting, and mixed-media projects", "Fridays, 3:30 PM - 5:00 PM", 20, []string{"ava@mergington.edu", "charlotte@mergington.edu"}},
		{"Debate Team", "Prepare for and compete in debate tournaments", "Mondays, Thursdays, 4:00 PM - 5:30 PM", 18, []string{"ethan@mergington.edu", "harper@mergington.edu"}},
		{"Robotics Club", "Design, build, and program robots for competitions", "Tuesdays, Fridays, 4:00 PM - 6:00 PM", 16, []string{"oliver@mergington.edu", "amelia@mergington.edu"}},
	}

	out := make([]domain.Activity, 0, len(entries))
	for _, e := range entries {
		ps := make([]domain.Participant, 0, len(e.emails))
		for _, email := range e.emails {
			ps = append(ps, domain.ParticipantFromLegacyEmail(email))
		}
		out = append(out, domain.Activity{
			Name:            domain.ActivityName(e.name),
			Description:     e.description,
			Schedule:        e.schedule,
			MaxParticipants: e.max,
			Participants:    ps,
		})
	}
	return out
}
