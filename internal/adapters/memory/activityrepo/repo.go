package activityrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/ports/out/activityrepo"
)

// Repo is an in-memory implementation of activityrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	order  []domain.ActivityName
	byName map[domain.ActivityName]domain.Activity
}

func NewRepo() *Repo {
	return &Repo{byName: make(map[domain.ActivityName]domain.Activity)}
}

func (r *Repo) List(ctx context.Context) ([]domain.Activity, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Activity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, cloneActivity(r.byName[name]))
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, name domain.ActivityName) (domain.Activity, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	if !ok {
		return domain.Activity{}, activityrepo.ErrNotFound
	}
	return cloneActivity(a), nil
}

func (r *Repo) AddParticipant(ctx context.Context, name domain.ActivityName, p domain.Participant) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byName[name]
	if !ok {
		return activityrepo.ErrNotFound
	}
	if a.HasParticipant(p.Email) {
		return activityrepo.ErrAlreadyRegistered
	}
	a.Participants = append(cloneParticipants(a.Participants), p)
	r.byName[name] = a
	return nil
}

func (r *Repo) RemoveParticipant(ctx context.Context, name domain.ActivityName, email string) (domain.Participant, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byName[name]
	if !ok {
		return domain.Participant{}, activityrepo.ErrNotFound
	}
	idx := a.IndexOfParticipant(strings.TrimSpace(email))
	if idx < 0 {
		return domain.Participant{}, activityrepo.ErrNotRegistered
	}
	removed := a.Participants[idx]
	ps := make([]domain.Participant, 0, len(a.Participants)-1)
	ps = append(ps, a.Participants[:idx]...)
	ps = append(ps, a.Participants[idx+1:]...)
	a.Participants = ps
	r.byName[name] = a
	return removed, nil
}

func (r *Repo) Seed(ctx context.Context, activities []domain.Activity) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range activities {
		if _, ok := r.byName[a.Name]; ok {
			continue
		}
		r.byName[a.Name] = cloneActivity(a)
		r.order = append(r.order, a.Name)
	}
	return nil
}

func cloneActivity(a domain.Activity) domain.Activity {
	out := a
	out.Participants = cloneParticipants(a.Participants)
	return out
}

func cloneParticipants(ps []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, len(ps))
	copy(out, ps)
	return out
}
