package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fairwaylabs/outings/internal/model"
)

// ListOutings returns every outing enriched with metrics and summaries.
// Admin callers also get registration and waitlist detail per outing.
func (s *OutingService) ListOutings(ctx context.Context, admin bool) ([]model.EnrichedOuting, error) {
	outings, err := s.outings.List(ctx)
	if err != nil {
		return nil, err
	}
	enriched := make([]model.EnrichedOuting, 0, len(outings))
	for i := range outings {
		e, err := s.enrich(ctx, &outings[i], admin, admin)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, *e)
	}
	return enriched, nil
}

// GetOuting returns one enriched outing with team detail; admin callers
// additionally get the raw registration and waitlist lists.
func (s *OutingService) GetOuting(ctx context.Context, id string, admin bool) (*model.EnrichedOuting, error) {
	o, err := s.outings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, o, true, admin)
}

// enrich is the single enrichment function shared by every read and write
// response: stored fields plus derived labels, live metrics, remaining
// spots, and optionally full team/registration/waitlist detail.
func (s *OutingService) enrich(ctx context.Context, o *model.Outing, detail, admin bool) (*model.EnrichedOuting, error) {
	counts, err := s.liveCounts(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	e := &model.EnrichedOuting{
		Outing:      *o,
		DateLabel:   formatDateRange(o.StartDate, o.EndDate),
		RuleSummary: buildRuleSummary(o),
		Metrics: model.OutingMetrics{
			Registrations: counts.Registrations,
			Teams:         counts.Teams,
			Players:       counts.Players,
			Waitlist:      counts.Waitlist,
		},
	}
	if o.MaxPlayers > 0 {
		left := max(0, o.MaxPlayers-counts.Players)
		e.PlayerSpotsLeft = &left
	}
	if o.MaxTeams > 0 {
		left := max(0, o.MaxTeams-counts.Teams)
		e.TeamSpotsLeft = &left
	}

	if detail {
		teams, err := s.teams.ListByOuting(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		e.Teams = make([]model.TeamView, 0, len(teams))
		for _, t := range teams {
			view, err := s.teamView(ctx, o, t)
			if err != nil {
				return nil, err
			}
			e.Teams = append(e.Teams, *view)
		}
	}

	if admin {
		if e.Registrations, err = s.registrations.ListByOuting(ctx, o.ID); err != nil {
			return nil, err
		}
		if e.Waitlist, err = s.waitlist.ListByOuting(ctx, o.ID); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (s *OutingService) teamView(ctx context.Context, o *model.Outing, t model.Team) (*model.TeamView, error) {
	members, err := s.members.ListByTeam(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []model.TeamMember{}
	}

	threshold := o.SizeThreshold()
	if threshold == 0 {
		threshold = t.TargetSize
	}
	open := max(0, threshold-len(members))

	return &model.TeamView{
		Team:        t,
		MemberCount: len(members),
		SpotsOpen:   open,
		CanJoin: o.Status == model.OutingOpen &&
			o.ModeAllowed(model.ModeJoinTeam) &&
			(t.Status == model.TeamActive || t.Status == model.TeamIncomplete) &&
			open > 0,
		Members: members,
	}, nil
}

// formatDateRange renders a human-readable label for the outing's dates.
func formatDateRange(start, end time.Time) string {
	if start.IsZero() {
		return ""
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	switch {
	case end.IsZero() || (sy == ey && sm == em && sd == ed):
		return start.Format("Jan 2, 2006")
	case sy == ey && sm == em:
		return fmt.Sprintf("%s %d-%d, %d", start.Format("Jan"), sd, ed, sy)
	case sy == ey:
		return fmt.Sprintf("%s - %s, %d", start.Format("Jan 2"), end.Format("Jan 2"), sy)
	}
	return start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006")
}

// buildRuleSummary renders the outing's signup rules as short
// human-readable lines.
func buildRuleSummary(o *model.Outing) []string {
	var out []string

	switch {
	case o.TeamSizeExact > 0:
		out = append(out, fmt.Sprintf("Teams of exactly %d players", o.TeamSizeExact))
	case o.TeamSizeMin > 0 && o.TeamSizeMax > 0 && o.TeamSizeMin == o.TeamSizeMax:
		out = append(out, fmt.Sprintf("Teams of %d players", o.TeamSizeMax))
	case o.TeamSizeMax > 0:
		out = append(out, fmt.Sprintf("Teams of %d to %d players", o.TeamSizeMin, o.TeamSizeMax))
	}

	switch {
	case o.MemberOnly:
		out = append(out, "Members only")
	case o.AllowGuests:
		out = append(out, "Guests welcome")
	default:
		out = append(out, "No guests")
	}

	if o.RequirePartner {
		out = append(out, "Partner required")
	}

	if len(o.AllowedModes) > 0 {
		labels := make([]string, len(o.AllowedModes))
		for i, m := range o.AllowedModes {
			labels[i] = strings.ReplaceAll(string(m), "_", " ")
		}
		out = append(out, "Signup options: "+strings.Join(labels, ", "))
	}

	if o.RequireHandicap {
		out = append(out, fmt.Sprintf("Handicap index between %g and %g required", o.HandicapMin, o.HandicapMax))
	}

	return out
}
