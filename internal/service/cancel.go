package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairwaylabs/outings/internal/metrics"
	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/repository"
	"github.com/fairwaylabs/outings/internal/rules"
)

// loadOwnedRegistration fetches a registration under an outing and checks
// the caller's email against the submitter.
func (s *OutingService) loadOwnedRegistration(ctx context.Context, outingID, registrationID, email string) (*model.Outing, *model.Registration, error) {
	o, err := s.outings.GetByID(ctx, outingID)
	if err != nil {
		return nil, nil, err
	}
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	if reg.OutingID != outingID {
		return nil, nil, repository.ErrNotFound
	}
	if model.EmailKey(email) == "" || model.EmailKey(email) != model.EmailKey(reg.ContactEmail) {
		return nil, nil, ErrNotOwner
	}
	return o, reg, nil
}

// CancelRegistration flips a registration and all of its members to
// cancelled, and cancels the linked team once its active member count
// reaches zero. Cancelling an already-cancelled registration is a no-op
// success.
func (s *OutingService) CancelRegistration(ctx context.Context, outingID, registrationID, email string) (*model.EnrichedOuting, error) {
	o, reg, err := s.loadOwnedRegistration(ctx, outingID, registrationID, email)
	if err != nil {
		return nil, err
	}

	if reg.Status != model.RegistrationCancelled {
		now := s.now()
		reg.Status = model.RegistrationCancelled
		reg.CancelledAt = &now
		reg.UpdatedAt = now
		if err := s.registrations.Update(ctx, reg); err != nil {
			return nil, err
		}
		if err := s.members.CancelByRegistration(ctx, reg.ID); err != nil {
			return nil, err
		}
		if reg.TeamID != "" {
			if err := s.settleTeamAfterCancel(ctx, o, reg.TeamID); err != nil {
				return nil, err
			}
		}
		metrics.Cancellations.Inc()
	}

	return s.enrich(ctx, o, true, false)
}

// settleTeamAfterCancel cancels a team whose last active member just left
// and otherwise recomputes its completeness.
func (s *OutingService) settleTeamAfterCancel(ctx context.Context, o *model.Outing, teamID string) error {
	n, err := s.members.CountActiveByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.teams.UpdateStatus(ctx, teamID, model.TeamCancelled)
	}
	return s.refreshTeamStatusByID(ctx, o, teamID)
}

// EditRegistration amends a registration on behalf of its submitter:
// cancelling a subset of members, adding players, or updating notes, in
// one call. Added players go through the same defensive order as a new
// signup: duplicate guard, capacity, then constraints against the team's
// current active count.
func (s *OutingService) EditRegistration(ctx context.Context, outingID, registrationID string, req model.EditRegistrationRequest) (*model.EnrichedOuting, error) {
	o, reg, err := s.loadOwnedRegistration(ctx, outingID, registrationID, req.Email)
	if err != nil {
		return nil, err
	}
	if reg.Status == model.RegistrationCancelled {
		return nil, &rules.Violation{Rule: rules.RuleWindow, Message: "this registration has been cancelled"}
	}

	for _, id := range req.RemoveMemberIDs {
		m, err := s.members.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &rules.Violation{Rule: rules.RulePlayers, Message: fmt.Sprintf("member %s not found", id)}
			}
			return nil, err
		}
		if m.RegistrationID != reg.ID {
			return nil, &rules.Violation{Rule: rules.RulePlayers, Message: "member does not belong to this registration"}
		}
		if m.Status == model.MemberActive {
			if err := s.members.Cancel(ctx, m.ID); err != nil {
				return nil, err
			}
		}
	}

	if len(req.AddPlayers) > 0 {
		if err := s.addPlayers(ctx, o, reg, req.AddPlayers); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		reg.Notes = *req.Notes
		reg.UpdatedAt = s.now()
		if err := s.registrations.Update(ctx, reg); err != nil {
			return nil, err
		}
	}

	if reg.TeamID != "" {
		if err := s.settleTeamAfterCancel(ctx, o, reg.TeamID); err != nil {
			return nil, err
		}
	}

	return s.enrich(ctx, o, true, false)
}

// addPlayers validates and persists additional members for an existing
// registration. Duplicate and capacity checks see the post-removal state
// because removals were applied first.
func (s *OutingService) addPlayers(ctx context.Context, o *model.Outing, reg *model.Registration, add []model.Player) error {
	players, err := normalizePlayers(add)
	if err != nil {
		return err
	}

	if err := s.checkDuplicates(ctx, o.ID, players); err != nil {
		return err
	}

	counts, err := s.liveCounts(ctx, o.ID)
	if err != nil {
		return err
	}
	if err := checkCapacity(o, counts, len(players), false); err != nil {
		return err
	}

	if reg.TeamID != "" {
		existing, err := s.members.CountActiveByTeam(ctx, reg.TeamID)
		if err != nil {
			return err
		}
		if err := rules.CheckRosterShape(o, model.ModeJoinTeam, players, existing); err != nil {
			return err
		}
	}
	// Policy constraints apply to the added players themselves; the
	// member-guest composition rule was settled at signup time.
	if err := rules.CheckGuests(o, model.ModeJoinTeam, players); err != nil {
		return err
	}
	if err := rules.CheckHandicaps(o, players); err != nil {
		return err
	}

	now := s.now()
	members := make([]*model.TeamMember, 0, len(players))
	for _, m := range buildMembers(reg, players, now) {
		m.IsCaptain = false
		members = append(members, m)
	}
	if err := s.members.AddMembers(ctx, members); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			metrics.SignupConflicts.Inc()
		}
		return err
	}
	return nil
}
