package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fairwaylabs/outings/internal/metrics"
	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/repository"
	"github.com/fairwaylabs/outings/internal/rules"
)

// JoinWaitlist records interest on the looser-validated path. It does not
// touch teams or capacity; the only admission rule is that the email must
// not already hold an active seat or an active waitlist entry.
func (s *OutingService) JoinWaitlist(ctx context.Context, outingID string, req model.WaitlistRequest) (*model.WaitlistEntry, error) {
	if _, err := s.outings.GetByID(ctx, outingID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, &rules.Violation{Rule: rules.RulePlayers, Message: "a name is required"}
	}
	key := model.EmailKey(email)
	if key == "" || !isValidEmail(key) {
		return nil, &rules.Violation{Rule: rules.RulePlayers, Message: "a valid email is required"}
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return nil, &rules.Violation{Rule: rules.RuleMode, Message: fmt.Sprintf("unknown signup mode %q", string(req.Mode))}
	}

	if _, err := s.members.FindActiveByEmail(ctx, outingID, key); err == nil {
		return nil, &rules.Violation{Rule: rules.RuleDuplicate, Message: fmt.Sprintf("%s is already registered for this outing", email)}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	entry := &model.WaitlistEntry{
		ID:        uuid.New().String(),
		OutingID:  outingID,
		Name:      name,
		Email:     email,
		EmailKey:  key,
		Phone:     strings.TrimSpace(req.Phone),
		Mode:      req.Mode,
		Notes:     strings.TrimSpace(req.Notes),
		Status:    model.WaitlistActive,
		CreatedAt: s.now(),
	}
	if err := s.waitlist.Create(ctx, entry); err != nil {
		return nil, err
	}
	metrics.WaitlistJoins.Inc()
	return entry, nil
}

// Status answers whether an email currently holds a seat or waitlist entry
// for an outing.
func (s *OutingService) Status(ctx context.Context, outingID, email string) (*model.StatusResponse, error) {
	if _, err := s.outings.GetByID(ctx, outingID); err != nil {
		return nil, err
	}
	key := model.EmailKey(email)
	if key == "" {
		return nil, &rules.Violation{Rule: rules.RulePlayers, Message: "an email is required"}
	}

	resp := &model.StatusResponse{}

	member, err := s.members.FindActiveByEmail(ctx, outingID, key)
	switch {
	case err == nil:
		resp.IsRegistered = true
		reg, err := s.registrations.GetByID(ctx, member.RegistrationID)
		if err != nil {
			return nil, err
		}
		resp.Registration = reg
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	entry, err := s.waitlist.FindActiveByEmail(ctx, outingID, key)
	switch {
	case err == nil:
		resp.IsWaitlisted = true
		resp.Waitlist = entry
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	return resp, nil
}
