package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/outings/internal/model"
)

const registrationColumns = `id, outing_id, mode, status, contact_name,
	contact_email, contact_phone, notes, team_id, payment_status,
	cancelled_at, created_at, updated_at`

// RegistrationRepository handles persistence for registrations and the
// atomic registration+members write.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	var teamID *string
	err := row.Scan(&reg.ID, &reg.OutingID, &reg.Mode, &reg.Status, &reg.ContactName,
		&reg.ContactEmail, &reg.ContactPhone, &reg.Notes, &teamID, &reg.PaymentStatus,
		&reg.CancelledAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if teamID != nil {
		reg.TeamID = *teamID
	}
	return &reg, nil
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// CreateWithMembers persists a registration and all of its members as one
// transaction: either everything lands or nothing does. A collision with
// the one-active-seat index rolls the whole batch back and surfaces as
// ErrDuplicateMember; the index, not the advisory pre-check, is what
// actually prevents a double booking under concurrent submissions.
func (r *RegistrationRepository) CreateWithMembers(ctx context.Context, reg *model.Registration, members []*model.TeamMember) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (`+registrationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		reg.ID, reg.OutingID, reg.Mode, reg.Status, reg.ContactName,
		reg.ContactEmail, reg.ContactPhone, reg.Notes, nullableID(reg.TeamID),
		reg.PaymentStatus, reg.CancelledAt, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}

	for _, m := range members {
		if err = insertMember(ctx, tx, m); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// Update rewrites a registration's mutable fields (status, notes,
// payment status, cancellation timestamp).
func (r *RegistrationRepository) Update(ctx context.Context, reg *model.Registration) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE registrations SET status = $2, notes = $3, payment_status = $4,
		   cancelled_at = $5, updated_at = $6
		 WHERE id = $1`,
		reg.ID, reg.Status, reg.Notes, reg.PaymentStatus, reg.CancelledAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOuting returns every registration for an outing, newest last.
func (r *RegistrationRepository) ListByOuting(ctx context.Context, outingID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE outing_id = $1 ORDER BY created_at ASC`,
		outingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// CountByStatus returns the number of registrations in one status.
func (r *RegistrationRepository) CountByStatus(ctx context.Context, outingID, status string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE outing_id = $1 AND status = $2`,
		outingID, status,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}
