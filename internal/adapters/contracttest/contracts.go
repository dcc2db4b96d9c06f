package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mergington/activities/internal/domain"
	activityrepoport "github.com/mergington/activities/internal/ports/out/activityrepo"
	idempotencyport "github.com/mergington/activities/internal/ports/out/idempotency"
)

type CleanupFunc = func()

type ActivityRepoFactory func(t *testing.T) (activityrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Method:   "POST",
		Route:    "/activities/{activity_name}/signup",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  200,
		ContentType: "application/json",
		Body:        []byte(`{"message":"hash-abc"}`),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{"message":"hash-abc"}` || got.ContentType != "application/json" || got.StatusCode != 200 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Different body hash is a different fingerprint.
	other := fp
	other.BodyHash = "different"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get other fingerprint: ok=%v err=%v", ok, err)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte(`{"message":"hash-def"}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != `{"message":"hash-def"}` {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
}

func RunActivityRepo(t *testing.T, newRepo ActivityRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Unique names keep shared databases isolated between runs.
	suffix := " " + uuid.NewString()[:8]
	chess := domain.ActivityName("Chess Club" + suffix)
	drama := domain.ActivityName("Drama Club" + suffix)

	if err := repo.Seed(ctx, []domain.Activity{
		{
			Name:            chess,
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants: []domain.Participant{
				domain.ParticipantFromLegacyEmail("michael@mergington.edu"),
				domain.ParticipantFromLegacyEmail("daniel@mergington.edu"),
			},
		},
		{
			Name:            drama,
			Description:     "Acting, stagecraft, and school productions",
			Schedule:        "Wednesdays, 3:30 PM - 5:30 PM",
			MaxParticipants: 25,
		},
	}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	got, err := repo.Get(ctx, chess)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MaxParticipants != 12 || got.Schedule != "Fridays, 3:30 PM - 5:00 PM" {
		t.Fatalf("unexpected activity: %#v", got)
	}
	if len(got.Participants) != 2 || got.Participants[0].Email != "michael@mergington.edu" || got.Participants[0].FirstName != "michael" {
		t.Fatalf("unexpected participants: %#v", got.Participants)
	}

	if _, err := repo.Get(ctx, domain.ActivityName("Missing"+suffix)); !errors.Is(err, activityrepoport.ErrNotFound) {
		t.Fatalf("Get missing err=%v, want ErrNotFound", err)
	}

	// Seed order is preserved by List.
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	ci, di := -1, -1
	for i, a := range list {
		switch a.Name {
		case chess:
			ci = i
		case drama:
			di = i
		}
	}
	if ci < 0 || di < 0 || ci > di {
		t.Fatalf("unexpected list order: chess=%d drama=%d", ci, di)
	}

	// Append keeps registration order.
	alice := domain.Participant{Email: "Alice@Mergington.com", FirstName: "Alice", LastName: "Smith"}
	if err := repo.AddParticipant(ctx, chess, alice); err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}
	got, _ = repo.Get(ctx, chess)
	if len(got.Participants) != 3 || got.Participants[2] != alice {
		t.Fatalf("unexpected participants after add: %#v", got.Participants)
	}

	// Case-insensitive uniqueness.
	if err := repo.AddParticipant(ctx, chess, domain.Participant{Email: "alice@mergington.com", FirstName: "A", LastName: "S"}); !errors.Is(err, activityrepoport.ErrAlreadyRegistered) {
		t.Fatalf("duplicate AddParticipant err=%v, want ErrAlreadyRegistered", err)
	}
	if err := repo.AddParticipant(ctx, domain.ActivityName("Missing"+suffix), alice); !errors.Is(err, activityrepoport.ErrNotFound) {
		t.Fatalf("AddParticipant missing activity err=%v, want ErrNotFound", err)
	}

	// Case-insensitive removal returns the stored entry.
	removed, err := repo.RemoveParticipant(ctx, chess, "ALICE@mergington.com")
	if err != nil {
		t.Fatalf("RemoveParticipant: %v", err)
	}
	if removed.Email != "Alice@Mergington.com" {
		t.Fatalf("removed=%#v", removed)
	}
	if _, err := repo.RemoveParticipant(ctx, chess, "alice@mergington.com"); !errors.Is(err, activityrepoport.ErrNotRegistered) {
		t.Fatalf("second RemoveParticipant err=%v, want ErrNotRegistered", err)
	}
	if _, err := repo.RemoveParticipant(ctx, domain.ActivityName("Missing"+suffix), "x@mergington.com"); !errors.Is(err, activityrepoport.ErrNotFound) {
		t.Fatalf("RemoveParticipant missing activity err=%v, want ErrNotFound", err)
	}

	got, _ = repo.Get(ctx, chess)
	if len(got.Participants) != 2 {
		t.Fatalf("participants after remove: %#v", got.Participants)
	}

	// Re-seeding does not reset existing activities.
	if err := repo.AddParticipant(ctx, drama, alice); err != nil {
		t.Fatalf("AddParticipant drama: %v", err)
	}
	if err := repo.Seed(ctx, []domain.Activity{{Name: drama, MaxParticipants: 1}}); err != nil {
		t.Fatalf("re-Seed: %v", err)
	}
	got, _ = repo.Get(ctx, drama)
	if got.MaxParticipants != 25 || len(got.Participants) != 1 {
		t.Fatalf("re-seed modified existing activity: %#v", got)
	}
}
