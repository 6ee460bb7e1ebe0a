package service

import (
	"context"

	"github.com/fairwaylabs/outings/internal/model"
)

// Store interfaces consumed by the service. The pgx repositories in
// internal/repository satisfy them; tests substitute an in-memory store
// with the same uniqueness semantics.

// OutingStore persists outing configuration.
type OutingStore interface {
	Create(ctx context.Context, o *model.Outing) error
	Update(ctx context.Context, o *model.Outing) error
	GetByID(ctx context.Context, id string) (*model.Outing, error)
	List(ctx context.Context) ([]model.Outing, error)
}

// TeamStore persists teams.
type TeamStore interface {
	Create(ctx context.Context, t *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	ListByOuting(ctx context.Context, outingID string) ([]model.Team, error)
	CountActive(ctx context.Context, outingID string) (int, error)
}

// RegistrationStore persists registrations, including the atomic
// registration-plus-members write.
type RegistrationStore interface {
	CreateWithMembers(ctx context.Context, reg *model.Registration, members []*model.TeamMember) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	Update(ctx context.Context, reg *model.Registration) error
	ListByOuting(ctx context.Context, outingID string) ([]model.Registration, error)
	CountByStatus(ctx context.Context, outingID, status string) (int, error)
}

// MemberStore persists team members.
type MemberStore interface {
	AddMembers(ctx context.Context, members []*model.TeamMember) error
	GetByID(ctx context.Context, id string) (*model.TeamMember, error)
	Cancel(ctx context.Context, id string) error
	CancelByRegistration(ctx context.Context, registrationID string) error
	ListByRegistration(ctx context.Context, registrationID string) ([]model.TeamMember, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.TeamMember, error)
	FindActiveByEmailKeys(ctx context.Context, outingID string, keys []string) ([]model.TeamMember, error)
	FindActiveByEmail(ctx context.Context, outingID, key string) (*model.TeamMember, error)
	CountActiveByOuting(ctx context.Context, outingID string) (int, error)
	CountActiveByTeam(ctx context.Context, teamID string) (int, error)
}

// WaitlistStore persists waitlist entries.
type WaitlistStore interface {
	Create(ctx context.Context, e *model.WaitlistEntry) error
	FindActiveByEmail(ctx context.Context, outingID, key string) (*model.WaitlistEntry, error)
	ListByOuting(ctx context.Context, outingID string) ([]model.WaitlistEntry, error)
	CountActive(ctx context.Context, outingID string) (int, error)
}
