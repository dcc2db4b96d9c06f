package activityrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mergington/activities/internal/adapters/postgres"
	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/ports/out/activityrepo"
)

// Repo is a Postgres implementation of activityrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) List(ctx context.Context) ([]domain.Activity, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, schedule, max_participants
		FROM activities
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0)
	byID := make(map[int64]int)
	for rows.Next() {
		var id int64
		var a domain.Activity
		var name string
		if err := rows.Scan(&id, &name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			rows.Close()
			return nil, err
		}
		a.Name = domain.ActivityName(name)
		a.Participants = []domain.Participant{}
		byID[id] = len(out)
		out = append(out, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.pool.Query(ctx, `
		SELECT activity_id, email, first_name, last_name
		FROM activity_participants
		ORDER BY activity_id ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var activityID int64
		var p domain.Participant
		if err := prows.Scan(&activityID, &p.Email, &p.FirstName, &p.LastName); err != nil {
			return nil, err
		}
		if i, ok := byID[activityID]; ok {
			out[i].Participants = append(out[i].Participants, p)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, name domain.ActivityName) (domain.Activity, error) {
	if r.pool == nil {
		return domain.Activity{}, errors.New("nil postgres pool")
	}
	var id int64
	a := domain.Activity{Name: name}
	row := r.pool.QueryRow(ctx, `
		SELECT id, description, schedule, max_participants
		FROM activities
		WHERE name = $1
	`, string(name))
	if err := row.Scan(&id, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, activityrepo.ErrNotFound
		}
		return domain.Activity{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT email, first_name, last_name
		FROM activity_participants
		WHERE activity_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return domain.Activity{}, err
	}
	defer rows.Close()
	a.Participants = []domain.Participant{}
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.Email, &p.FirstName, &p.LastName); err != nil {
			return domain.Activity{}, err
		}
		a.Participants = append(a.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}

func (r *Repo) AddParticipant(ctx context.Context, name domain.ActivityName, p domain.Participant) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `
		INSERT INTO activity_participants (activity_id, email, first_name, last_name)
		SELECT id, $2, $3, $4
		FROM activities
		WHERE name = $1
	`, string(name), p.Email, p.FirstName, p.LastName)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return activityrepo.ErrAlreadyRegistered
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return activityrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) RemoveParticipant(ctx context.Context, name domain.ActivityName, email string) (domain.Participant, error) {
	if r.pool == nil {
		return domain.Participant{}, errors.New("nil postgres pool")
	}
	var removed domain.Participant
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var activityID int64
		if err := tx.QueryRow(ctx, `SELECT id FROM activities WHERE name = $1`, string(name)).Scan(&activityID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return activityrepo.ErrNotFound
			}
			return err
		}
		row := tx.QueryRow(ctx, `
			DELETE FROM activity_participants
			WHERE activity_id = $1 AND lower(email) = lower($2)
			RETURNING email, first_name, last_name
		`, activityID, strings.TrimSpace(email))
		if err := row.Scan(&removed.Email, &removed.FirstName, &removed.LastName); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return activityrepo.ErrNotRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Participant{}, err
	}
	return removed, nil
}

func (r *Repo) Seed(ctx context.Context, activities []domain.Activity) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, a := range activities {
			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO activities (external_id, name, description, schedule, max_participants)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (name) DO NOTHING
				RETURNING id
			`, uuid.New(), string(a.Name), a.Description, a.Schedule, a.MaxParticipants).Scan(&id)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					// Already seeded.
					continue
				}
				return fmt.Errorf("seed %q: %w", a.Name, err)
			}
			for _, p := range a.Participants {
				if _, err := tx.Exec(ctx, `
					INSERT INTO activity_participants (activity_id, email, first_name, last_name)
					VALUES ($1, $2, $3, $4)
				`, id, p.Email, p.FirstName, p.LastName); err != nil {
					return fmt.Errorf("seed %q participant %q: %w", a.Name, p.Email, err)
				}
			}
		}
		return nil
	})
}
