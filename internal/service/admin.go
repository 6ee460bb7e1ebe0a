package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/rules"
)

// CreateOuting creates an outing from an administrative request.
func (s *OutingService) CreateOuting(ctx context.Context, req model.CreateOutingRequest) (*model.EnrichedOuting, error) {
	now := s.now()

	status := req.Status
	if status == "" {
		status = model.OutingDraft
	}
	allowGuests := true
	if req.AllowGuests != nil {
		allowGuests = *req.AllowGuests
	}

	o := &model.Outing{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(req.Name),
		Format:          strings.TrimSpace(req.Format),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		SignupOpensAt:   req.SignupOpensAt,
		SignupClosesAt:  req.SignupClosesAt,
		Status:          status,
		TeamSizeMin:     req.TeamSizeMin,
		TeamSizeMax:     req.TeamSizeMax,
		TeamSizeExact:   req.TeamSizeExact,
		MaxTeams:        req.MaxTeams,
		MaxPlayers:      req.MaxPlayers,
		AllowedModes:    req.AllowedModes,
		MemberOnly:      req.MemberOnly,
		AllowGuests:     allowGuests,
		RequirePartner:  req.RequirePartner,
		RequireHandicap: req.RequireHandicap,
		HandicapMin:     req.HandicapMin,
		HandicapMax:     req.HandicapMax,
		AutoWaitlist:    req.AutoWaitlist,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if o.EndDate.IsZero() {
		o.EndDate = o.StartDate
	}

	if err := validateOutingConfig(o); err != nil {
		return nil, err
	}
	if err := s.outings.Create(ctx, o); err != nil {
		return nil, err
	}
	return s.enrich(ctx, o, true, true)
}

// UpdateOuting applies a partial administrative update; nil fields are
// left unchanged and the configuration invariants are re-validated on the
// merged result.
func (s *OutingService) UpdateOuting(ctx context.Context, id string, req model.UpdateOutingRequest) (*model.EnrichedOuting, error) {
	o, err := s.outings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		o.Name = strings.TrimSpace(*req.Name)
	}
	if req.Format != nil {
		o.Format = strings.TrimSpace(*req.Format)
	}
	if req.StartDate != nil {
		o.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		o.EndDate = *req.EndDate
	}
	if req.SignupOpensAt != nil {
		o.SignupOpensAt = req.SignupOpensAt
	}
	if req.SignupClosesAt != nil {
		o.SignupClosesAt = req.SignupClosesAt
	}
	if req.Status != nil {
		o.Status = *req.Status
	}
	if req.TeamSizeMin != nil {
		o.TeamSizeMin = *req.TeamSizeMin
	}
	if req.TeamSizeMax != nil {
		o.TeamSizeMax = *req.TeamSizeMax
	}
	if req.TeamSizeExact != nil {
		o.TeamSizeExact = *req.TeamSizeExact
	}
	if req.MaxTeams != nil {
		o.MaxTeams = *req.MaxTeams
	}
	if req.MaxPlayers != nil {
		o.MaxPlayers = *req.MaxPlayers
	}
	if req.AllowedModes != nil {
		o.AllowedModes = req.AllowedModes
	}
	if req.MemberOnly != nil {
		o.MemberOnly = *req.MemberOnly
	}
	if req.AllowGuests != nil {
		o.AllowGuests = *req.AllowGuests
	}
	if req.RequirePartner != nil {
		o.RequirePartner = *req.RequirePartner
	}
	if req.RequireHandicap != nil {
		o.RequireHandicap = *req.RequireHandicap
	}
	if req.HandicapMin != nil {
		o.HandicapMin = *req.HandicapMin
	}
	if req.HandicapMax != nil {
		o.HandicapMax = *req.HandicapMax
	}
	if req.AutoWaitlist != nil {
		o.AutoWaitlist = *req.AutoWaitlist
	}
	o.UpdatedAt = s.now()

	if err := validateOutingConfig(o); err != nil {
		return nil, err
	}
	if err := s.outings.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.enrich(ctx, o, true, true)
}

// validateOutingConfig enforces the outing configuration invariants:
// name and dates present, known status and modes, teamSizeMin <= teamSizeMax,
// and teamSizeMin <= teamSizeExact <= teamSizeMax when exact is set.
func validateOutingConfig(o *model.Outing) error {
	fail := func(format string, args ...any) error {
		return &rules.Violation{Rule: rules.RuleConfig, Message: fmt.Sprintf(format, args...)}
	}
	if o.Name == "" {
		return fail("outing name is required")
	}
	if o.StartDate.IsZero() {
		return fail("start date is required")
	}
	if o.EndDate.Before(o.StartDate) {
		return fail("end date cannot be before start date")
	}
	if !model.ValidOutingStatus(o.Status) {
		return fail("unknown outing status %q", o.Status)
	}
	for _, m := range o.AllowedModes {
		if !m.Valid() {
			return fail("unknown signup mode %q", string(m))
		}
	}
	if o.TeamSizeMin < 1 {
		return fail("team size minimum must be at least 1")
	}
	if o.TeamSizeMax > 0 && o.TeamSizeMin > o.TeamSizeMax {
		return fail("team size minimum %d exceeds maximum %d", o.TeamSizeMin, o.TeamSizeMax)
	}
	if o.TeamSizeExact > 0 {
		if o.TeamSizeExact < o.TeamSizeMin {
			return fail("exact team size %d is below the minimum %d", o.TeamSizeExact, o.TeamSizeMin)
		}
		if o.TeamSizeMax > 0 && o.TeamSizeExact > o.TeamSizeMax {
			return fail("exact team size %d exceeds the maximum %d", o.TeamSizeExact, o.TeamSizeMax)
		}
	}
	if o.MaxTeams < 0 || o.MaxPlayers < 0 {
		return fail("capacity ceilings cannot be negative")
	}
	if o.RequireHandicap && o.HandicapMin > o.HandicapMax {
		return fail("handicap minimum %g exceeds maximum %g", o.HandicapMin, o.HandicapMax)
	}
	if o.SignupOpensAt != nil && o.SignupClosesAt != nil && o.SignupClosesAt.Before(*o.SignupOpensAt) {
		return fail("signup close cannot be before signup open")
	}
	return nil
}
