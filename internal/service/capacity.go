package service

import (
	"context"
	"fmt"

	"github.com/fairwaylabs/outings/internal/model"
)

// CapacityError signals that an outing's configured ceiling would be
// exceeded. It is distinct from a plain validation failure so callers can
// offer the waitlist path when the outing allows it.
type CapacityError struct {
	Message           string
	WaitlistAvailable bool
}

func (e *CapacityError) Error() string {
	return e.Message
}

// Counts are the live aggregates for one outing, recomputed from store
// state immediately before every admission decision. Counters are never
// cached or incremented in place; filtering on status is the only source
// of truth.
type Counts struct {
	Registrations int
	Teams         int
	Players       int
	Waitlist      int
}

func (s *OutingService) liveCounts(ctx context.Context, outingID string) (Counts, error) {
	var c Counts
	var err error
	if c.Registrations, err = s.registrations.CountByStatus(ctx, outingID, model.RegistrationRegistered); err != nil {
		return c, err
	}
	if c.Teams, err = s.teams.CountActive(ctx, outingID); err != nil {
		return c, err
	}
	if c.Players, err = s.members.CountActiveByOuting(ctx, outingID); err != nil {
		return c, err
	}
	if c.Waitlist, err = s.waitlist.CountActive(ctx, outingID); err != nil {
		return c, err
	}
	return c, nil
}

// checkCapacity compares fresh counts against the outing's ceilings. A
// zero ceiling means unlimited. Two concurrent requests can both pass and
// slightly overshoot; that narrow window is tolerated and administratively
// correctable rather than guarded by a global lock.
func checkCapacity(o *model.Outing, c Counts, incomingPlayers int, createsTeam bool) error {
	if createsTeam && o.MaxTeams > 0 && c.Teams >= o.MaxTeams {
		return &CapacityError{
			Message:           fmt.Sprintf("all %d team spots are taken", o.MaxTeams),
			WaitlistAvailable: o.AutoWaitlist,
		}
	}
	if o.MaxPlayers > 0 && c.Players+incomingPlayers > o.MaxPlayers {
		return &CapacityError{
			Message:           fmt.Sprintf("this outing is limited to %d players; %d spots remain", o.MaxPlayers, o.MaxPlayers-c.Players),
			WaitlistAvailable: o.AutoWaitlist,
		}
	}
	return nil
}
