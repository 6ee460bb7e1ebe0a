package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/repository"
	"github.com/fairwaylabs/outings/internal/rules"
)

// teamNameAttempts bounds the rename loop when a team name collides.
const teamNameAttempts = 3

// resolveTeam locates the target team for join_team signups and creates a
// fresh one for team-creating modes. The second return value reports
// whether a team was created (so a later rejection can remove it again).
func (s *OutingService) resolveTeam(ctx context.Context, o *model.Outing, req model.RegisterRequest, players []model.Player) (*model.Team, bool, error) {
	switch {
	case req.Mode == model.ModeJoinTeam:
		t, err := s.joinableTeam(ctx, o, req.TeamID)
		return t, false, err
	case req.Mode.CreatesTeam():
		t, err := s.createTeam(ctx, o, req, players)
		return t, true, err
	}
	return nil, false, nil
}

// joinableTeam fetches the join target and checks it can still accept
// members: same outing, status active or incomplete.
func (s *OutingService) joinableTeam(ctx context.Context, o *model.Outing, teamID string) (*model.Team, error) {
	if teamID == "" {
		return nil, &rules.Violation{Rule: rules.RuleTeam, Message: "a team id is required to join a team"}
	}
	t, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &rules.Violation{Rule: rules.RuleTeam, Message: "that team does not exist"}
		}
		return nil, err
	}
	if t.OutingID != o.ID {
		return nil, &rules.Violation{Rule: rules.RuleTeam, Message: "that team belongs to a different outing"}
	}
	if t.Status != model.TeamActive && t.Status != model.TeamIncomplete {
		return nil, &rules.Violation{Rule: rules.RuleTeam, Message: "that team is no longer accepting members"}
	}
	return t, nil
}

// createTeam allocates a team for a team-creating signup. Name collisions
// are detected through the store's uniqueness violation rather than a
// pre-check, and resolved by appending " (n)" for a bounded number of
// attempts.
func (s *OutingService) createTeam(ctx context.Context, o *model.Outing, req model.RegisterRequest, players []model.Player) (*model.Team, error) {
	base := strings.TrimSpace(req.TeamName)
	if base == "" {
		base = players[0].Name + " Team"
	}

	status := model.TeamActive
	if req.Mode == model.ModeCaptain || req.Mode == model.ModePartialTeam {
		// These modes expect more members later.
		status = model.TeamIncomplete
	}

	now := s.now()
	t := &model.Team{
		OutingID:     o.ID,
		CaptainName:  players[0].Name,
		CaptainEmail: players[0].Email,
		TargetSize:   targetSize(o, len(players)),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 1; attempt <= teamNameAttempts; attempt++ {
		t.ID = uuid.New().String()
		t.Name = base
		if attempt > 1 {
			t.Name = fmt.Sprintf("%s (%d)", base, attempt)
		}
		err := s.teams.Create(ctx, t)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, repository.ErrDuplicateTeamName) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate a unique team name for %q after %d attempts", base, teamNameAttempts)
}

// targetSize derives a new team's target: the exact size when configured,
// else the max, else the submitted roster size, else 4.
func targetSize(o *model.Outing, playerCount int) int {
	switch {
	case o.TeamSizeExact > 0:
		return o.TeamSizeExact
	case o.TeamSizeMax > 0:
		return o.TeamSizeMax
	case playerCount > 0:
		return playerCount
	}
	return 4
}

// refreshTeamStatus recomputes a team's completeness from its active
// member count. A count of zero is left for cancellation handling; status
// is only written when it changed.
func (s *OutingService) refreshTeamStatus(ctx context.Context, o *model.Outing, t *model.Team) error {
	n, err := s.members.CountActiveByTeam(ctx, t.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	threshold := o.SizeThreshold()
	if threshold == 0 {
		threshold = t.TargetSize
	}
	status := model.TeamIncomplete
	if n >= threshold {
		status = model.TeamActive
	}
	if status == t.Status {
		return nil
	}
	t.Status = status
	t.UpdatedAt = s.now()
	return s.teams.UpdateStatus(ctx, t.ID, status)
}

// refreshTeamStatusByID is refreshTeamStatus for callers that only hold
// the team id.
func (s *OutingService) refreshTeamStatusByID(ctx context.Context, o *model.Outing, teamID string) error {
	t, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	return s.refreshTeamStatus(ctx, o, t)
}
