package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/outings/internal/model"
)

const outingColumns = `id, name, format, start_date, end_date, signup_opens_at,
	signup_closes_at, status, team_size_min, team_size_max, team_size_exact,
	max_teams, max_players, allowed_modes, member_only, allow_guests,
	require_partner, require_handicap, handicap_min, handicap_max,
	auto_waitlist, created_at, updated_at`

// OutingRepository handles persistence for outings.
type OutingRepository struct {
	db *pgxpool.Pool
}

// NewOutingRepository constructs an OutingRepository.
func NewOutingRepository(db *pgxpool.Pool) *OutingRepository {
	return &OutingRepository{db: db}
}

func scanOuting(row pgx.Row) (*model.Outing, error) {
	var o model.Outing
	var modes []string
	err := row.Scan(
		&o.ID, &o.Name, &o.Format, &o.StartDate, &o.EndDate, &o.SignupOpensAt,
		&o.SignupClosesAt, &o.Status, &o.TeamSizeMin, &o.TeamSizeMax, &o.TeamSizeExact,
		&o.MaxTeams, &o.MaxPlayers, &modes, &o.MemberOnly, &o.AllowGuests,
		&o.RequirePartner, &o.RequireHandicap, &o.HandicapMin, &o.HandicapMax,
		&o.AutoWaitlist, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.AllowedModes = make([]model.Mode, len(modes))
	for i, m := range modes {
		o.AllowedModes[i] = model.Mode(m)
	}
	return &o, nil
}

func modesToStrings(modes []model.Mode) []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = string(m)
	}
	return out
}

// Create inserts a new outing.
func (r *OutingRepository) Create(ctx context.Context, o *model.Outing) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO outings (`+outingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		o.ID, o.Name, o.Format, o.StartDate, o.EndDate, o.SignupOpensAt,
		o.SignupClosesAt, o.Status, o.TeamSizeMin, o.TeamSizeMax, o.TeamSizeExact,
		o.MaxTeams, o.MaxPlayers, modesToStrings(o.AllowedModes), o.MemberOnly,
		o.AllowGuests, o.RequirePartner, o.RequireHandicap, o.HandicapMin,
		o.HandicapMax, o.AutoWaitlist, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outing: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of an outing.
func (r *OutingRepository) Update(ctx context.Context, o *model.Outing) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE outings SET name = $2, format = $3, start_date = $4, end_date = $5,
		   signup_opens_at = $6, signup_closes_at = $7, status = $8,
		   team_size_min = $9, team_size_max = $10, team_size_exact = $11,
		   max_teams = $12, max_players = $13, allowed_modes = $14,
		   member_only = $15, allow_guests = $16, require_partner = $17,
		   require_handicap = $18, handicap_min = $19, handicap_max = $20,
		   auto_waitlist = $21, updated_at = $22
		 WHERE id = $1`,
		o.ID, o.Name, o.Format, o.StartDate, o.EndDate, o.SignupOpensAt,
		o.SignupClosesAt, o.Status, o.TeamSizeMin, o.TeamSizeMax, o.TeamSizeExact,
		o.MaxTeams, o.MaxPlayers, modesToStrings(o.AllowedModes), o.MemberOnly,
		o.AllowGuests, o.RequirePartner, o.RequireHandicap, o.HandicapMin,
		o.HandicapMax, o.AutoWaitlist, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update outing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single outing or ErrNotFound.
func (r *OutingRepository) GetByID(ctx context.Context, id string) (*model.Outing, error) {
	o, err := scanOuting(r.db.QueryRow(ctx,
		`SELECT `+outingColumns+` FROM outings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get outing: %w", err)
	}
	return o, nil
}

// List returns all outings ordered by start date.
func (r *OutingRepository) List(ctx context.Context) ([]model.Outing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+outingColumns+` FROM outings ORDER BY start_date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list outings: %w", err)
	}
	defer rows.Close()

	var outings []model.Outing
	for rows.Next() {
		o, err := scanOuting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outing: %w", err)
		}
		outings = append(outings, *o)
	}
	return outings, rows.Err()
}
