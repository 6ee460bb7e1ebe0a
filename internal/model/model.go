// Package model defines the core domain types for the golf outing signup system.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Mode is one of the eight signup shapes an outing can allow.
type Mode string

const (
	ModeSingle         Mode = "single"
	ModeSeekingPartner Mode = "seeking_partner"
	ModeSeekingTeam    Mode = "seeking_team"
	ModePartialTeam    Mode = "partial_team"
	ModeFullTeam       Mode = "full_team"
	ModeMemberGuest    Mode = "member_guest"
	ModeCaptain        Mode = "captain"
	ModeJoinTeam       Mode = "join_team"
)

// AllModes lists every signup mode in display order.
var AllModes = []Mode{
	ModeSingle, ModeSeekingPartner, ModeSeekingTeam, ModePartialTeam,
	ModeFullTeam, ModeMemberGuest, ModeCaptain, ModeJoinTeam,
}

// Valid reports whether m is one of the eight known modes.
func (m Mode) Valid() bool {
	for _, k := range AllModes {
		if m == k {
			return true
		}
	}
	return false
}

// CreatesTeam reports whether a signup in this mode creates a new team.
func (m Mode) CreatesTeam() bool {
	switch m {
	case ModePartialTeam, ModeFullTeam, ModeMemberGuest, ModeCaptain:
		return true
	}
	return false
}

// SoloOnly reports whether this mode admits exactly one player.
func (m Mode) SoloOnly() bool {
	switch m {
	case ModeSingle, ModeSeekingPartner, ModeSeekingTeam, ModeCaptain:
		return true
	}
	return false
}

// Lifecycle statuses. Records are never deleted: cancellation flips the
// status and aggregate counts filter on it.
const (
	OutingDraft     = "draft"
	OutingOpen      = "open"
	OutingClosed    = "closed"
	OutingWaitlist  = "waitlist"
	OutingCompleted = "completed"

	RegistrationRegistered = "registered"
	RegistrationWaitlisted = "waitlisted"
	RegistrationCancelled  = "cancelled"

	TeamActive     = "active"
	TeamIncomplete = "incomplete"
	TeamCancelled  = "cancelled"

	MemberActive    = "active"
	MemberCancelled = "cancelled"

	WaitlistActive    = "active"
	WaitlistConverted = "converted"
	WaitlistCancelled = "cancelled"
)

// ValidOutingStatus reports whether s is a known outing lifecycle status.
func ValidOutingStatus(s string) bool {
	switch s {
	case OutingDraft, OutingOpen, OutingClosed, OutingWaitlist, OutingCompleted:
		return true
	}
	return false
}

// Outing is one configured signup-enabled event.
//
// Zero means "not configured" for TeamSizeExact, MaxTeams and MaxPlayers;
// a nil signup window bound means unbounded on that side.
type Outing struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Format          string     `json:"format"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	SignupOpensAt   *time.Time `json:"signup_opens_at,omitempty"`
	SignupClosesAt  *time.Time `json:"signup_closes_at,omitempty"`
	Status          string     `json:"status"`
	TeamSizeMin     int        `json:"team_size_min"`
	TeamSizeMax     int        `json:"team_size_max"`
	TeamSizeExact   int        `json:"team_size_exact,omitempty"`
	MaxTeams        int        `json:"max_teams,omitempty"`
	MaxPlayers      int        `json:"max_players,omitempty"`
	AllowedModes    []Mode     `json:"allowed_modes"`
	MemberOnly      bool       `json:"member_only"`
	AllowGuests     bool       `json:"allow_guests"`
	RequirePartner  bool       `json:"require_partner"`
	RequireHandicap bool       `json:"require_handicap"`
	HandicapMin     float64    `json:"handicap_min"`
	HandicapMax     float64    `json:"handicap_max"`
	AutoWaitlist    bool       `json:"auto_waitlist"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ModeAllowed reports whether signups in mode m are enabled for this outing.
func (o *Outing) ModeAllowed(m Mode) bool {
	for _, k := range o.AllowedModes {
		if k == m {
			return true
		}
	}
	return false
}

// SizeThreshold is the member count at which a team counts as complete:
// the exact size when configured, otherwise the max.
func (o *Outing) SizeThreshold() int {
	if o.TeamSizeExact > 0 {
		return o.TeamSizeExact
	}
	return o.TeamSizeMax
}

// Registration is one accepted signup transaction.
type Registration struct {
	ID            string     `json:"id"`
	OutingID      string     `json:"outing_id"`
	Mode          Mode       `json:"mode"`
	Status        string     `json:"status"`
	ContactName   string     `json:"contact_name"`
	ContactEmail  string     `json:"contact_email"`
	ContactPhone  string     `json:"contact_phone,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	TeamID        string     `json:"team_id,omitempty"`
	PaymentStatus string     `json:"payment_status"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Team is a named roster container scoped to one outing. Name is unique
// per outing; Status is recomputed from active member counts, never stored
// as independent truth.
type Team struct {
	ID           string    `json:"id"`
	OutingID     string    `json:"outing_id"`
	Name         string    `json:"name"`
	CaptainName  string    `json:"captain_name"`
	CaptainEmail string    `json:"captain_email"`
	TargetSize   int       `json:"target_size"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TeamMember is one person's seat, owned by exactly one Registration and
// optionally attached to one Team. At most one active member may exist per
// (outing, EmailKey); the store enforces this with a partial unique index.
type TeamMember struct {
	ID             string    `json:"id"`
	OutingID       string    `json:"outing_id"`
	RegistrationID string    `json:"registration_id"`
	TeamID         string    `json:"team_id,omitempty"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmailKey       string    `json:"-"`
	IsGuest        bool      `json:"is_guest"`
	IsCaptain      bool      `json:"is_captain"`
	Handicap       *float64  `json:"handicap,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// WaitlistEntry records interest independently of teams and capacity.
type WaitlistEntry struct {
	ID        string    `json:"id"`
	OutingID  string    `json:"outing_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	EmailKey  string    `json:"-"`
	Phone     string    `json:"phone,omitempty"`
	Mode      Mode      `json:"mode,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailKey normalizes an email for uniqueness: lowercased and trimmed.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HandicapIndex is a handicap value as submitted by a signup form, which
// sends either a JSON number or a string. Anything that does not parse as
// a number stays invalid and is rejected per player by the rule checks.
type HandicapIndex struct {
	Value float64
	Valid bool
}

// UnmarshalJSON accepts numbers and numeric strings; null, empty and
// non-numeric input leave the index unset without failing the decode.
func (h *HandicapIndex) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		h.Value, h.Valid = f, true
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			h.Value, h.Valid = f, true
		}
		return nil
	}
	// wrong JSON type; left invalid so the rule check can name the player
	return nil
}

// MarshalJSON renders a set index as a number and an unset one as null.
func (h HandicapIndex) MarshalJSON() ([]byte, error) {
	if !h.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(h.Value)
}

// Player is one submitted roster entry in a signup request.
type Player struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	IsGuest   bool          `json:"is_guest,omitempty"`
	IsCaptain bool          `json:"is_captain,omitempty"`
	Handicap  HandicapIndex `json:"handicap,omitempty"`
}

// EmailKey returns the player's normalized email.
func (p Player) EmailKey() string {
	return EmailKey(p.Email)
}

// RegisterRequest is the payload for POST /outings/{id}/register.
type RegisterRequest struct {
	Mode     Mode     `json:"mode"`
	Players  []Player `json:"players"`
	TeamName string   `json:"team_name,omitempty"`
	TeamID   string   `json:"team_id,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// EditRegistrationRequest is the payload for PUT on a registration.
// Email must match the registration's submitter.
type EditRegistrationRequest struct {
	Email           string   `json:"email"`
	RemoveMemberIDs []string `json:"remove_member_ids,omitempty"`
	AddPlayers      []Player `json:"add_players,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// WaitlistRequest is the payload for POST /outings/{id}/waitlist.
type WaitlistRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Mode  Mode   `json:"mode,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// CreateOutingRequest is the administrative payload for creating an outing.
type CreateOutingRequest struct {
	Name            string     `json:"name"`
	Format          string     `json:"format"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	SignupOpensAt   *time.Time `json:"signup_opens_at,omitempty"`
	SignupClosesAt  *time.Time `json:"signup_closes_at,omitempty"`
	Status          string     `json:"status,omitempty"`
	TeamSizeMin     int        `json:"team_size_min"`
	TeamSizeMax     int        `json:"team_size_max"`
	TeamSizeExact   int        `json:"team_size_exact,omitempty"`
	MaxTeams        int        `json:"max_teams,omitempty"`
	MaxPlayers      int        `json:"max_players,omitempty"`
	AllowedModes    []Mode     `json:"allowed_modes"`
	MemberOnly      bool       `json:"member_only"`
	AllowGuests     *bool      `json:"allow_guests,omitempty"`
	RequirePartner  bool       `json:"require_partner"`
	RequireHandicap bool       `json:"require_handicap"`
	HandicapMin     float64    `json:"handicap_min,omitempty"`
	HandicapMax     float64    `json:"handicap_max,omitempty"`
	AutoWaitlist    bool       `json:"auto_waitlist"`
}

// UpdateOutingRequest is a partial administrative update; nil fields are
// left unchanged.
type UpdateOutingRequest struct {
	Name            *string    `json:"name,omitempty"`
	Format          *string    `json:"format,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	SignupOpensAt   *time.Time `json:"signup_opens_at,omitempty"`
	SignupClosesAt  *time.Time `json:"signup_closes_at,omitempty"`
	Status          *string    `json:"status,omitempty"`
	TeamSizeMin     *int       `json:"team_size_min,omitempty"`
	TeamSizeMax     *int       `json:"team_size_max,omitempty"`
	TeamSizeExact   *int       `json:"team_size_exact,omitempty"`
	MaxTeams        *int       `json:"max_teams,omitempty"`
	MaxPlayers      *int       `json:"max_players,omitempty"`
	AllowedModes    []Mode     `json:"allowed_modes,omitempty"`
	MemberOnly      *bool      `json:"member_only,omitempty"`
	AllowGuests     *bool      `json:"allow_guests,omitempty"`
	RequirePartner  *bool      `json:"require_partner,omitempty"`
	RequireHandicap *bool      `json:"require_handicap,omitempty"`
	HandicapMin     *float64   `json:"handicap_min,omitempty"`
	HandicapMax     *float64   `json:"handicap_max,omitempty"`
	AutoWaitlist    *bool      `json:"auto_waitlist,omitempty"`
}

// OutingMetrics are the live aggregate counts for one outing.
type OutingMetrics struct {
	Registrations int `json:"registrations"`
	Teams         int `json:"teams"`
	Players       int `json:"players"`
	Waitlist      int `json:"waitlist"`
}

// TeamView is a team enriched with live membership figures.
type TeamView struct {
	Team
	MemberCount int          `json:"member_count"`
	SpotsOpen   int          `json:"spots_open"`
	CanJoin     bool         `json:"can_join"`
	Members     []TeamMember `json:"members"`
}

// EnrichedOuting is the stored outing plus derived labels, live metrics
// and, where requested, full team/registration/waitlist detail.
type EnrichedOuting struct {
	Outing
	DateLabel       string          `json:"date_label"`
	RuleSummary     []string        `json:"rule_summary"`
	Metrics         OutingMetrics   `json:"metrics"`
	PlayerSpotsLeft *int            `json:"player_spots_left,omitempty"`
	TeamSpotsLeft   *int            `json:"team_spots_left,omitempty"`
	Teams           []TeamView      `json:"teams,omitempty"`
	Registrations   []Registration  `json:"registrations,omitempty"`
	Waitlist        []WaitlistEntry `json:"waitlist,omitempty"`
}

// RegisterResponse pairs a created registration with the refreshed event view.
type RegisterResponse struct {
	Registration *Registration   `json:"registration"`
	Event        *EnrichedOuting `json:"event"`
}

// StatusResponse answers "am I signed up?" for one email on one outing.
type StatusResponse struct {
	IsRegistered bool           `json:"is_registered"`
	IsWaitlisted bool           `json:"is_waitlisted"`
	Registration *Registration  `json:"registration,omitempty"`
	Waitlist     *WaitlistEntry `json:"waitlist,omitempty"`
}

// ErrorResponse is a standard JSON error envelope. Code distinguishes the
// machine-readable error kind where clients need to branch on it.
type ErrorResponse struct {
	Error             string `json:"error"`
	Rule              string `json:"rule,omitempty"`
	Code              string `json:"code,omitempty"`
	WaitlistAvailable bool   `json:"waitlist_available,omitempty"`
}
