package users

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

var ErrMissingUID = errors.New("firebase_uid required")

// Querier is the part of *pgxpool.Pool the repo needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo keeps one users row per identity seen by the api. Projects reference
// users by firebase uid.
type Repo struct {
	db Querier
}

func NewRepo(db Querier) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
	PhotoURL    string
}

const ensureUserSQL = `
insert into users (firebase_uid, email, display_name, photo_url, last_seen_at, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now(), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  last_seen_at = now(),
  updated_at = now()
returning id::text;
`

// EnsureUser upserts the user and returns its row id. Empty profile fields
// never overwrite stored ones.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	uid := strings.TrimSpace(u.FirebaseUID)
	if uid == "" {
		return "", ErrMissingUID
	}

	var id string
	if err := r.db.QueryRow(ctx, ensureUserSQL, uid,
		strings.TrimSpace(u.Email), strings.TrimSpace(u.DisplayName), strings.TrimSpace(u.PhotoURL),
	).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
