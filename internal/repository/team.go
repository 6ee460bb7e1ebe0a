package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/outings/internal/model"
)

const teamColumns = `id, outing_id, name, captain_name, captain_email,
	target_size, status, created_at, updated_at`

// TeamRepository handles persistence for teams.
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository constructs a TeamRepository.
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

func scanTeam(row pgx.Row) (*model.Team, error) {
	var t model.Team
	err := row.Scan(&t.ID, &t.OutingID, &t.Name, &t.CaptainName, &t.CaptainEmail,
		&t.TargetSize, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a team. A name collision within the outing surfaces as
// ErrDuplicateTeamName; the caller owns the rename-and-retry loop.
func (r *TeamRepository) Create(ctx context.Context, t *model.Team) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO teams (`+teamColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.OutingID, t.Name, t.CaptainName, t.CaptainEmail,
		t.TargetSize, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintTeamNamePerOuting) {
			return ErrDuplicateTeamName
		}
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

// GetByID returns a single team or ErrNotFound.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*model.Team, error) {
	t, err := scanTeam(r.db.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

// UpdateStatus sets a team's lifecycle status.
func (r *TeamRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE teams SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update team status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a team row. Only used to clean up a freshly created team
// when the signup it belonged to is rejected before any member attached.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

// ListByOuting returns every non-cancelled team for an outing.
func (r *TeamRepository) ListByOuting(ctx context.Context, outingID string) ([]model.Team, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+teamColumns+` FROM teams
		 WHERE outing_id = $1 AND status <> $2
		 ORDER BY created_at ASC`,
		outingID, model.TeamCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// CountActive returns the number of teams counting against maxTeams,
// i.e. those with status active or incomplete.
func (r *TeamRepository) CountActive(ctx context.Context, outingID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM teams WHERE outing_id = $1 AND status IN ($2, $3)`,
		outingID, model.TeamActive, model.TeamIncomplete,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return n, nil
}
