package activities_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	memactivityrepo "github.com/mergington/activities/internal/adapters/memory/activityrepo"
	"github.com/mergington/activities/internal/app/activities"
	"github.com/mergington/activities/internal/domain"
)

const chess = domain.ActivityName("Chess Club")

func newSeededService(t *testing.T) (*activities.Service, *memactivityrepo.Repo) {
	t.Helper()
	repo := memactivityrepo.NewRepo()
	if err := repo.Seed(context.Background(), activities.DefaultCatalog()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return activities.NewService(repo, nil), repo
}

func requireAppError(t *testing.T, err error, wantStatus int, wantMessage string) {
	t.Helper()
	var ae *activities.Error
	if !errors.As(err, &ae) {
		t.Fatalf("err=%v (%T), want *activities.Error", err, err)
	}
	if ae.Status != wantStatus || ae.Message != wantMessage {
		t.Fatalf("err=%d %q, want %d %q", ae.Status, ae.Message, wantStatus, wantMessage)
	}
}

func TestService_ListActivities_NormalizesLegacyParticipants(t *testing.T) {
	t.Parallel()

	svc, _ := newSeededService(t)
	list, err := svc.ListActivities(context.Background())
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(list) != 9 || list[0].Name != chess {
		t.Fatalf("unexpected catalog: len=%d first=%q", len(list), list[0].Name)
	}
	p := list[0].Participants[0]
	if p.Email != "michael@mergington.edu" || p.FirstName != "michael" || p.LastName != "" {
		t.Fatalf("participant=%+v", p)
	}
}

func TestService_Signup_TrimsAndStores(t *testing.T) {
	t.Parallel()

	svc, repo := newSeededService(t)
	res, err := svc.Signup(context.Background(), chess, activities.SignupInput{
		Email:     "  teststudent@mergington.com ",
		FirstName: " Test ",
		LastName:  "Student",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.Message != "Signed up Test Student <teststudent@mergington.com> for Chess Club" {
		t.Fatalf("message=%q", res.Message)
	}

	a, _ := repo.Get(context.Background(), chess)
	last := a.Participants[len(a.Participants)-1]
	if last != (domain.Participant{Email: "teststudent@mergington.com", FirstName: "Test", LastName: "Student"}) {
		t.Fatalf("stored=%+v", last)
	}
}

func TestService_Signup_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		activity domain.ActivityName
		in       activities.SignupInput
		status   int
		message  string
	}{
		{"unknown activity", "Knitting", activities.SignupInput{Email: "a@mergington.com", FirstName: "A", LastName: "B"}, 404, "Activity not found"},
		{"bad domain", chess, activities.SignupInput{Email: "baduser@example.com", FirstName: "Bad", LastName: "User"}, 400, "Email must be a Merginton account ending with @mergington.com"},
		{"no at sign", chess, activities.SignupInput{Email: "mergington.com", FirstName: "A", LastName: "B"}, 400, "Email must be a Merginton account ending with @mergington.com"},
		{"missing first name", chess, activities.SignupInput{Email: "a@mergington.com", FirstName: "  ", LastName: "B"}, 400, "First name is required"},
		{"missing last name", chess, activities.SignupInput{Email: "a@mergington.com", FirstName: "A"}, 400, "Last name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newSeededService(t)
			_, err := svc.Signup(context.Background(), tc.activity, tc.in)
			requireAppError(t, err, tc.status, tc.message)
		})
	}
}

func TestService_Signup_DuplicateIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, _ := newSeededService(t)
	in := activities.SignupInput{Email: "Dup@Mergington.com", FirstName: "Dup", LastName: "Licate"}
	if _, err := svc.Signup(context.Background(), chess, in); err != nil {
		t.Fatalf("first Signup: %v", err)
	}
	in.Email = "dup@mergington.COM"
	_, err := svc.Signup(context.Background(), chess, in)
	requireAppError(t, err, 400, "Student already signed up for this activity")
}

func TestService_Unregister(t *testing.T) {
	t.Parallel()

	svc, repo := newSeededService(t)
	res, err := svc.Unregister(context.Background(), chess, "MICHAEL@mergington.edu")
	if err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if res.Message != "Unregistered michael@mergington.edu from Chess Club" {
		t.Fatalf("message=%q", res.Message)
	}
	a, _ := repo.Get(context.Background(), chess)
	for _, p := range a.Participants {
		if strings.EqualFold(p.Email, "michael@mergington.edu") {
			t.Fatalf("participant still present: %+v", a.Participants)
		}
	}

	_, err = svc.Unregister(context.Background(), chess, "michael@mergington.edu")
	requireAppError(t, err, 404, "Student not registered for this activity")

	_, err = svc.Unregister(context.Background(), "Knitting", "michael@mergington.edu")
	requireAppError(t, err, 404, "Activity not found")
}
