// Package rules implements the pure admissibility checks for a signup
// request. Nothing in here touches the store; callers pass in the outing
// configuration, the normalized roster and, for join requests, the target
// team's current active member count.
package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/fairwaylabs/outings/internal/model"
)

// Rule names surfaced in validation failures so clients can branch on them.
const (
	RuleMode      = "mode_not_allowed"
	RuleWindow    = "signups_closed"
	RuleRoster    = "roster_size"
	RulePartner   = "partner_required"
	RuleGuest     = "guest_policy"
	RuleHandicap  = "handicap"
	RulePlayers   = "player_details"
	RuleDuplicate = "duplicate_player"
	RuleTeam      = "team_unavailable"
	RuleConfig    = "outing_config"
)

// Violation is a user-facing validation failure naming the violated rule.
type Violation struct {
	Rule    string
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}

func violation(rule, format string, args ...any) *Violation {
	return &Violation{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// CheckSignup runs every admission rule for a signup in order, cheapest and
// most general first, and returns the first violation. existingTeamSize is
// the target team's current active member count and only matters for
// join_team; pass 0 otherwise.
func CheckSignup(o *model.Outing, mode model.Mode, players []model.Player, existingTeamSize int, now time.Time) error {
	if err := checkModeAllowed(o, mode); err != nil {
		return err
	}
	if err := checkWindow(o, now); err != nil {
		return err
	}
	if err := CheckRosterShape(o, mode, players, existingTeamSize); err != nil {
		return err
	}
	if o.RequirePartner && mode == model.ModeSingle {
		return violation(RulePartner, "this outing requires signing up with a partner; single signups are not accepted")
	}
	if err := CheckGuests(o, mode, players); err != nil {
		return err
	}
	return CheckHandicaps(o, players)
}

func checkModeAllowed(o *model.Outing, mode model.Mode) error {
	if !mode.Valid() {
		return violation(RuleMode, "unknown signup mode %q", string(mode))
	}
	if !o.ModeAllowed(mode) {
		return violation(RuleMode, "%s signups are not enabled for this outing", strings.ReplaceAll(string(mode), "_", " "))
	}
	return nil
}

func checkWindow(o *model.Outing, now time.Time) error {
	if o.Status != model.OutingOpen {
		return violation(RuleWindow, "signups are not open for this outing (status: %s)", o.Status)
	}
	if o.SignupOpensAt != nil && now.Before(*o.SignupOpensAt) {
		return violation(RuleWindow, "signups have not opened yet")
	}
	if o.SignupClosesAt != nil && now.After(*o.SignupClosesAt) {
		return violation(RuleWindow, "signups have closed")
	}
	return nil
}

// CheckRosterShape validates the player count against the mode and the
// outing's team-size bounds. Exported separately because the edit path
// re-runs it against the team's then-current size.
func CheckRosterShape(o *model.Outing, mode model.Mode, players []model.Player, existingTeamSize int) error {
	n := len(players)
	if n == 0 {
		return violation(RuleRoster, "at least one player is required")
	}
	switch {
	case mode.SoloOnly():
		if n != 1 {
			return violation(RuleRoster, "%s signups must have exactly one player, got %d", strings.ReplaceAll(string(mode), "_", " "), n)
		}
	case mode == model.ModeFullTeam:
		if o.TeamSizeExact > 0 {
			if n != o.TeamSizeExact {
				return violation(RuleRoster, "a full team for this outing is exactly %d players, got %d", o.TeamSizeExact, n)
			}
		} else {
			if n < o.TeamSizeMin {
				return violation(RuleRoster, "a full team needs at least %d players, got %d", o.TeamSizeMin, n)
			}
			if o.TeamSizeMax > 0 && n > o.TeamSizeMax {
				return violation(RuleRoster, "a team holds at most %d players, got %d", o.TeamSizeMax, n)
			}
		}
	case mode == model.ModePartialTeam:
		if o.TeamSizeExact > 0 && n >= o.TeamSizeExact {
			return violation(RuleRoster, "partial team signups must stay below %d players; use a full team signup instead", o.TeamSizeExact)
		}
		if o.TeamSizeMax > 0 && n > o.TeamSizeMax {
			return violation(RuleRoster, "a team holds at most %d players, got %d", o.TeamSizeMax, n)
		}
	case mode == model.ModeJoinTeam:
		limit := o.TeamSizeExact
		if limit == 0 {
			limit = o.TeamSizeMax
		}
		if limit > 0 && existingTeamSize+n > limit {
			return violation(RuleRoster, "that team has %d of %d spots filled; cannot add %d more", existingTeamSize, limit, n)
		}
	case mode == model.ModeMemberGuest:
		if o.TeamSizeMax > 0 && n > o.TeamSizeMax {
			return violation(RuleRoster, "a team holds at most %d players, got %d", o.TeamSizeMax, n)
		}
	}
	return nil
}

// CheckGuests enforces the outing's membership and guest policy.
func CheckGuests(o *model.Outing, mode model.Mode, players []model.Player) error {
	guests := 0
	for _, p := range players {
		if p.IsGuest {
			guests++
		}
	}
	if mode == model.ModeMemberGuest {
		if guests == 0 {
			return violation(RuleGuest, "member-guest signups must include at least one guest")
		}
		if guests == len(players) {
			return violation(RuleGuest, "member-guest signups must include at least one member")
		}
	}
	if guests > 0 {
		if o.MemberOnly {
			return violation(RuleGuest, "this outing is members only; guests cannot be registered")
		}
		if !o.AllowGuests {
			return violation(RuleGuest, "guests are not allowed for this outing")
		}
	}
	return nil
}

// CheckHandicaps enforces the handicap requirement per player, naming the
// offending player in the message.
func CheckHandicaps(o *model.Outing, players []model.Player) error {
	if !o.RequireHandicap {
		return nil
	}
	for _, p := range players {
		if !p.Handicap.Valid {
			return violation(RuleHandicap, "a handicap index is required for %s", p.Name)
		}
		if p.Handicap.Value < o.HandicapMin || p.Handicap.Value > o.HandicapMax {
			return violation(RuleHandicap, "handicap for %s must be between %g and %g", p.Name, o.HandicapMin, o.HandicapMax)
		}
	}
	return nil
}
