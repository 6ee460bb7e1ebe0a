// Package service implements the outing registration and team-formation
// engine: signup admission, team allocation, capacity accounting,
// cancellation/edit and the waitlist path. It orchestrates pure rule checks
// from internal/rules with the store interfaces declared in this package.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/outings/internal/metrics"
	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/repository"
	"github.com/fairwaylabs/outings/internal/rules"
)

// ErrNotOwner is returned when a registration edit or cancellation comes
// from an email that does not match the submitter.
var ErrNotOwner = errors.New("email does not match the registration's submitter")

// OutingService orchestrates all signup operations for outings.
type OutingService struct {
	outings       OutingStore
	teams         TeamStore
	registrations RegistrationStore
	members       MemberStore
	waitlist      WaitlistStore

	now func() time.Time
}

// NewOutingService constructs an OutingService with its dependencies.
func NewOutingService(
	outings OutingStore,
	teams TeamStore,
	registrations RegistrationStore,
	members MemberStore,
	waitlist WaitlistStore,
) *OutingService {
	return &OutingService{
		outings:       outings,
		teams:         teams,
		registrations: registrations,
		members:       members,
		waitlist:      waitlist,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service's time source. Used by tests to pin the
// signup window checks.
func (s *OutingService) SetClock(now func() time.Time) {
	s.now = now
}

// Register admits or rejects one signup. On success the registration and
// all of its members are persisted atomically and the refreshed event view
// is returned alongside the registration.
//
// Check order is fixed: shape/window/permission, then team resolution,
// then duplicate guard, then capacity, then the size re-check against the
// resolved team. Counts are read fresh here, never cached; the partial
// unique index remains the final arbiter for duplicate seats.
func (s *OutingService) Register(ctx context.Context, outingID string, req model.RegisterRequest) (*model.RegisterResponse, error) {
	o, err := s.outings.GetByID(ctx, outingID)
	if err != nil {
		return nil, err
	}

	players, err := normalizePlayers(req.Players)
	if err != nil {
		metrics.SignupsRejected.Inc()
		return nil, err
	}

	if err := rules.CheckSignup(o, req.Mode, players, 0, s.now()); err != nil {
		metrics.SignupsRejected.Inc()
		return nil, err
	}

	team, created, err := s.resolveTeam(ctx, o, req, players)
	if err != nil {
		metrics.SignupsRejected.Inc()
		return nil, err
	}
	// A team created for a signup that is subsequently rejected must not
	// survive the rejection.
	admitted := false
	defer func() {
		if created && !admitted {
			_ = s.teams.Delete(ctx, team.ID)
		}
	}()

	if err := s.checkDuplicates(ctx, outingID, players); err != nil {
		metrics.SignupsRejected.Inc()
		return nil, err
	}

	counts, err := s.liveCounts(ctx, outingID)
	if err != nil {
		return nil, err
	}
	if created {
		// The freshly created team is already in the count.
		counts.Teams--
	}
	if err := checkCapacity(o, counts, len(players), req.Mode.CreatesTeam()); err != nil {
		metrics.SignupsRejected.Inc()
		return nil, err
	}

	if req.Mode == model.ModeJoinTeam {
		existing, err := s.members.CountActiveByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		if err := rules.CheckRosterShape(o, req.Mode, players, existing); err != nil {
			metrics.SignupsRejected.Inc()
			return nil, err
		}
	}

	now := s.now()
	reg := &model.Registration{
		ID:            uuid.New().String(),
		OutingID:      outingID,
		Mode:          req.Mode,
		Status:        model.RegistrationRegistered,
		ContactName:   players[0].Name,
		ContactEmail:  players[0].Email,
		ContactPhone:  players[0].Phone,
		Notes:         strings.TrimSpace(req.Notes),
		PaymentStatus: "unpaid",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if team != nil {
		reg.TeamID = team.ID
	}

	members := buildMembers(reg, players, now)
	if err := s.registrations.CreateWithMembers(ctx, reg, members); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			metrics.SignupConflicts.Inc()
		}
		return nil, err
	}
	admitted = true

	if team != nil {
		if err := s.refreshTeamStatus(ctx, o, team); err != nil {
			return nil, err
		}
	}

	metrics.SignupsAccepted.Inc()

	event, err := s.enrich(ctx, o, true, false)
	if err != nil {
		return nil, err
	}
	return &model.RegisterResponse{Registration: reg, Event: event}, nil
}

// checkDuplicates is the advisory duplicate guard: it names colliding
// emails up front so the common case gets a clear message. The store
// constraint still backs it up under races.
func (s *OutingService) checkDuplicates(ctx context.Context, outingID string, players []model.Player) error {
	keys := make([]string, len(players))
	for i, p := range players {
		keys[i] = p.EmailKey()
	}
	taken, err := s.members.FindActiveByEmailKeys(ctx, outingID, keys)
	if err != nil {
		return err
	}
	if len(taken) == 0 {
		return nil
	}
	emails := make([]string, len(taken))
	for i, m := range taken {
		emails[i] = m.Email
	}
	return &rules.Violation{
		Rule:    rules.RuleDuplicate,
		Message: fmt.Sprintf("already registered for this outing: %s", strings.Join(emails, ", ")),
	}
}

// buildMembers turns the normalized roster into member rows owned by reg.
// The first player is the captain unless any player is explicitly flagged.
func buildMembers(reg *model.Registration, players []model.Player, now time.Time) []*model.TeamMember {
	flagged := false
	for _, p := range players {
		if p.IsCaptain {
			flagged = true
			break
		}
	}
	members := make([]*model.TeamMember, len(players))
	for i, p := range players {
		var handicap *float64
		if p.Handicap.Valid {
			v := p.Handicap.Value
			handicap = &v
		}
		members[i] = &model.TeamMember{
			ID:             uuid.New().String(),
			OutingID:       reg.OutingID,
			RegistrationID: reg.ID,
			TeamID:         reg.TeamID,
			Name:           p.Name,
			Email:          p.Email,
			EmailKey:       p.EmailKey(),
			IsGuest:        p.IsGuest,
			IsCaptain:      p.IsCaptain || (!flagged && i == 0),
			Handicap:       handicap,
			Status:         model.MemberActive,
			CreatedAt:      now,
		}
	}
	return members
}

// normalizePlayers trims names and emails and rejects rosters with missing
// details or repeated emails.
func normalizePlayers(in []model.Player) ([]model.Player, error) {
	seen := make(map[string]bool, len(in))
	out := make([]model.Player, 0, len(in))
	for _, p := range in {
		p.Name = strings.TrimSpace(p.Name)
		p.Email = strings.TrimSpace(p.Email)
		if p.Name == "" {
			return nil, &rules.Violation{Rule: rules.RulePlayers, Message: "every player needs a name"}
		}
		key := p.EmailKey()
		if key == "" || !isValidEmail(key) {
			return nil, &rules.Violation{Rule: rules.RulePlayers, Message: fmt.Sprintf("a valid email is required for %s", p.Name)}
		}
		if seen[key] {
			return nil, &rules.Violation{Rule: rules.RulePlayers, Message: fmt.Sprintf("duplicate email in request: %s", key)}
		}
		seen[key] = true
		out = append(out, p)
	}
	return out, nil
}

// isValidEmail does a minimal structural check on an already-normalized email.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
