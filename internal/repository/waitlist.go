package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/outings/internal/model"
)

const waitlistColumns = `id, outing_id, name, email, email_key, phone, mode,
	notes, status, created_at`

// WaitlistRepository handles persistence for waitlist entries.
type WaitlistRepository struct {
	db *pgxpool.Pool
}

// NewWaitlistRepository constructs a WaitlistRepository.
func NewWaitlistRepository(db *pgxpool.Pool) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func scanWaitlistEntry(row pgx.Row) (*model.WaitlistEntry, error) {
	var e model.WaitlistEntry
	err := row.Scan(&e.ID, &e.OutingID, &e.Name, &e.Email, &e.EmailKey, &e.Phone,
		&e.Mode, &e.Notes, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a waitlist entry. A second active entry for the same
// (outing, email) surfaces as ErrDuplicateWaitlist.
func (r *WaitlistRepository) Create(ctx context.Context, e *model.WaitlistEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO waitlist_entries (`+waitlistColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.OutingID, e.Name, e.Email, e.EmailKey, e.Phone, e.Mode,
		e.Notes, e.Status, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintOneActiveWaitlist) {
			return ErrDuplicateWaitlist
		}
		return fmt.Errorf("insert waitlist entry: %w", err)
	}
	return nil
}

// FindActiveByEmail returns the active entry for (outing, key), or ErrNotFound.
func (r *WaitlistRepository) FindActiveByEmail(ctx context.Context, outingID, key string) (*model.WaitlistEntry, error) {
	e, err := scanWaitlistEntry(r.db.QueryRow(ctx,
		`SELECT `+waitlistColumns+` FROM waitlist_entries
		 WHERE outing_id = $1 AND status = $2 AND email_key = $3`,
		outingID, model.WaitlistActive, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find waitlist entry: %w", err)
	}
	return e, nil
}

// ListByOuting returns every waitlist entry for an outing.
func (r *WaitlistRepository) ListByOuting(ctx context.Context, outingID string) ([]model.WaitlistEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+waitlistColumns+` FROM waitlist_entries
		 WHERE outing_id = $1 ORDER BY created_at ASC`,
		outingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	defer rows.Close()

	var entries []model.WaitlistEntry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// CountActive returns the outing's active waitlist size.
func (r *WaitlistRepository) CountActive(ctx context.Context, outingID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM waitlist_entries WHERE outing_id = $1 AND status = $2`,
		outingID, model.WaitlistActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count waitlist: %w", err)
	}
	return n, nil
}
