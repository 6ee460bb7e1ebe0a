// Package repository implements all database queries for the outing signup
// system. It uses pgx directly (no ORM), following the store-constraint-as-
// source-of-truth approach: partial unique indexes are what actually prevent
// double bookings; application pre-checks only exist for friendlier messages.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateMember is returned when inserting a team member collides with
// the one-active-seat-per-email constraint.
var ErrDuplicateMember = errors.New("a player in this batch is already registered for this outing")

// ErrDuplicateTeamName is returned when a team name is already taken for
// the outing.
var ErrDuplicateTeamName = errors.New("team name is already taken for this outing")

// ErrDuplicateWaitlist is returned when the email already holds an active
// waitlist entry for the outing.
var ErrDuplicateWaitlist = errors.New("email is already on the waitlist for this outing")

// Constraint names declared in database.Migrate.
const (
	constraintOneActiveSeat     = "team_members_one_active_seat"
	constraintTeamNamePerOuting = "teams_name_per_outing"
	constraintOneActiveWaitlist = "waitlist_one_active_entry"
)

// isUniqueViolation reports whether err is a postgres unique violation on
// the named constraint ("" matches any).
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
