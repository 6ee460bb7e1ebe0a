package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Statements are idempotent so every startup
// can run them.
//
// The two partial unique indexes are the engine's real concurrency
// guarantees: one active seat per (outing, email) and one active waitlist
// entry per (outing, email). Scoping them to status = 'active' is what
// allows re-registration after cancellation.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS outings (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			format           TEXT NOT NULL DEFAULT '',
			start_date       TIMESTAMPTZ NOT NULL,
			end_date         TIMESTAMPTZ NOT NULL,
			signup_opens_at  TIMESTAMPTZ,
			signup_closes_at TIMESTAMPTZ,
			status           TEXT NOT NULL DEFAULT 'draft',
			team_size_min    INT NOT NULL DEFAULT 1,
			team_size_max    INT NOT NULL DEFAULT 4,
			team_size_exact  INT NOT NULL DEFAULT 0,
			max_teams        INT NOT NULL DEFAULT 0,
			max_players      INT NOT NULL DEFAULT 0,
			allowed_modes    TEXT[] NOT NULL DEFAULT '{}',
			member_only      BOOLEAN NOT NULL DEFAULT FALSE,
			allow_guests     BOOLEAN NOT NULL DEFAULT TRUE,
			require_partner  BOOLEAN NOT NULL DEFAULT FALSE,
			require_handicap BOOLEAN NOT NULL DEFAULT FALSE,
			handicap_min     DOUBLE PRECISION NOT NULL DEFAULT 0,
			handicap_max     DOUBLE PRECISION NOT NULL DEFAULT 54,
			auto_waitlist    BOOLEAN NOT NULL DEFAULT FALSE,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS teams (
			id            TEXT PRIMARY KEY,
			outing_id     TEXT NOT NULL REFERENCES outings(id),
			name          TEXT NOT NULL,
			captain_name  TEXT NOT NULL DEFAULT '',
			captain_email TEXT NOT NULL DEFAULT '',
			target_size   INT NOT NULL DEFAULT 4,
			status        TEXT NOT NULL DEFAULT 'incomplete',
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS teams_name_per_outing
			ON teams (outing_id, name)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id             TEXT PRIMARY KEY,
			outing_id      TEXT NOT NULL REFERENCES outings(id),
			mode           TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'registered',
			contact_name   TEXT NOT NULL,
			contact_email  TEXT NOT NULL,
			contact_phone  TEXT NOT NULL DEFAULT '',
			notes          TEXT NOT NULL DEFAULT '',
			team_id        TEXT REFERENCES teams(id),
			payment_status TEXT NOT NULL DEFAULT 'unpaid',
			cancelled_at   TIMESTAMPTZ,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS registrations_outing
			ON registrations (outing_id)`,
		`CREATE TABLE IF NOT EXISTS team_members (
			id              TEXT PRIMARY KEY,
			outing_id       TEXT NOT NULL REFERENCES outings(id),
			registration_id TEXT NOT NULL REFERENCES registrations(id),
			team_id         TEXT REFERENCES teams(id),
			name            TEXT NOT NULL,
			email           TEXT NOT NULL,
			email_key       TEXT NOT NULL,
			is_guest        BOOLEAN NOT NULL DEFAULT FALSE,
			is_captain      BOOLEAN NOT NULL DEFAULT FALSE,
			handicap        DOUBLE PRECISION,
			status          TEXT NOT NULL DEFAULT 'active',
			created_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS team_members_one_active_seat
			ON team_members (outing_id, email_key) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS team_members_team
			ON team_members (team_id)`,
		`CREATE TABLE IF NOT EXISTS waitlist_entries (
			id         TEXT PRIMARY KEY,
			outing_id  TEXT NOT NULL REFERENCES outings(id),
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			email_key  TEXT NOT NULL,
			phone      TEXT NOT NULL DEFAULT '',
			mode       TEXT NOT NULL DEFAULT '',
			notes      TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS waitlist_one_active_entry
			ON waitlist_entries (outing_id, email_key) WHERE status = 'active'`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
