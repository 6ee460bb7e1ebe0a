package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/outings/internal/model"
)

const memberColumns = `id, outing_id, registration_id, team_id, name, email,
	email_key, is_guest, is_captain, handicap, status, created_at`

// MemberRepository handles persistence for team members.
type MemberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository constructs a MemberRepository.
func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

func scanMember(row pgx.Row) (*model.TeamMember, error) {
	var m model.TeamMember
	var teamID *string
	err := row.Scan(&m.ID, &m.OutingID, &m.RegistrationID, &teamID, &m.Name, &m.Email,
		&m.EmailKey, &m.IsGuest, &m.IsCaptain, &m.Handicap, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if teamID != nil {
		m.TeamID = *teamID
	}
	return &m, nil
}

// insertMember writes one member row inside tx, mapping the one-active-seat
// constraint to ErrDuplicateMember.
func insertMember(ctx context.Context, tx pgx.Tx, m *model.TeamMember) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO team_members (`+memberColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.OutingID, m.RegistrationID, nullableID(m.TeamID), m.Name, m.Email,
		m.EmailKey, m.IsGuest, m.IsCaptain, m.Handicap, m.Status, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintOneActiveSeat) {
			return ErrDuplicateMember
		}
		return fmt.Errorf("insert team member: %w", err)
	}
	return nil
}

// AddMembers inserts a batch of members atomically; used by the owner-edit
// path. The same all-or-nothing and conflict semantics as the initial
// registration write apply.
func (r *MemberRepository) AddMembers(ctx context.Context, members []*model.TeamMember) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, m := range members {
		if err = insertMember(ctx, tx, m); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit members: %w", err)
	}
	return nil
}

// GetByID returns a single member or ErrNotFound.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*model.TeamMember, error) {
	m, err := scanMember(r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM team_members WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get team member: %w", err)
	}
	return m, nil
}

// Cancel flips one member to cancelled.
func (r *MemberRepository) Cancel(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE team_members SET status = $2 WHERE id = $1`,
		id, model.MemberCancelled,
	)
	if err != nil {
		return fmt.Errorf("cancel team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelByRegistration cancels every member owned by a registration.
func (r *MemberRepository) CancelByRegistration(ctx context.Context, registrationID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE team_members SET status = $2 WHERE registration_id = $1`,
		registrationID, model.MemberCancelled,
	)
	if err != nil {
		return fmt.Errorf("cancel members: %w", err)
	}
	return nil
}

// ListByRegistration returns every member owned by a registration.
func (r *MemberRepository) ListByRegistration(ctx context.Context, registrationID string) ([]model.TeamMember, error) {
	return r.list(ctx,
		`SELECT `+memberColumns+` FROM team_members
		 WHERE registration_id = $1 ORDER BY created_at ASC`,
		registrationID)
}

// ListByTeam returns a team's active members.
func (r *MemberRepository) ListByTeam(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	return r.list(ctx,
		`SELECT `+memberColumns+` FROM team_members
		 WHERE team_id = $1 AND status = $2 ORDER BY created_at ASC`,
		teamID, model.MemberActive)
}

func (r *MemberRepository) list(ctx context.Context, sql string, args ...any) ([]model.TeamMember, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// FindActiveByEmailKeys is the duplicate guard query: it returns the active
// members of an outing whose email key is in keys.
func (r *MemberRepository) FindActiveByEmailKeys(ctx context.Context, outingID string, keys []string) ([]model.TeamMember, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT `+memberColumns+` FROM team_members
		 WHERE outing_id = $1 AND status = $2 AND email_key = ANY($3)
		 ORDER BY created_at ASC`,
		outingID, model.MemberActive, keys)
}

// FindActiveByEmail returns the one active member for (outing, key), or
// ErrNotFound.
func (r *MemberRepository) FindActiveByEmail(ctx context.Context, outingID, key string) (*model.TeamMember, error) {
	m, err := scanMember(r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM team_members
		 WHERE outing_id = $1 AND status = $2 AND email_key = $3`,
		outingID, model.MemberActive, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find team member: %w", err)
	}
	return m, nil
}

// CountActiveByOuting returns the outing's active player count.
func (r *MemberRepository) CountActiveByOuting(ctx context.Context, outingID string) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM team_members WHERE outing_id = $1 AND status = $2`,
		outingID, model.MemberActive)
}

// CountActiveByTeam returns a team's active member count.
func (r *MemberRepository) CountActiveByTeam(ctx context.Context, teamID string) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND status = $2`,
		teamID, model.MemberActive)
}

func (r *MemberRepository) count(ctx context.Context, sql string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count team members: %w", err)
	}
	return n, nil
}
