package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/rules"
	"github.com/fairwaylabs/outings/internal/service"
)

func TestCancelRegistration(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting(func(o *model.Outing) { o.TeamSizeExact = 2 }))

	resp, err := svc.Register(ctx, "out-1", model.RegisterRequest{
		Mode:    model.ModeFullTeam,
		Players: roster("a@x.com", "b@x.com"),
	})
	require.NoError(t, err)
	regID := resp.Registration.ID

	t.Run("requires the submitter's email", func(t *testing.T) {
		_, err := svc.CancelRegistration(ctx, "out-1", regID, "someone-else@x.com")
		assert.ErrorIs(t, err, service.ErrNotOwner)
	})

	t.Run("cancels members and the emptied team", func(t *testing.T) {
		event, err := svc.CancelRegistration(ctx, "out-1", regID, "A@x.com")
		require.NoError(t, err)
		assert.Equal(t, 0, event.Metrics.Players)
		assert.Equal(t, 0, event.Metrics.Registrations)
		assert.Equal(t, 0, event.Metrics.Teams)
		assert.Empty(t, event.Teams)
	})

	t.Run("is idempotent", func(t *testing.T) {
		event, err := svc.CancelRegistration(ctx, "out-1", regID, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, 0, event.Metrics.Players)
		assert.Equal(t, 0, event.Metrics.Registrations)
	})
}

// Registering, cancelling and re-registering the same email succeeds:
// the active-scoped uniqueness permits a new seat once the old one is
// cancelled.
func TestReRegisterAfterCancel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting())

	resp, err := svc.Register(ctx, "out-1", model.RegisterRequest{Mode: model.ModeSingle, Players: roster("a@x.com")})
	require.NoError(t, err)

	_, err = svc.CancelRegistration(ctx, "out-1", resp.Registration.ID, "a@x.com")
	require.NoError(t, err)

	again, err := svc.Register(ctx, "out-1", model.RegisterRequest{Mode: model.ModeSingle, Players: roster("a@x.com")})
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationRegistered, again.Registration.Status)
	assert.Equal(t, 1, again.Event.Metrics.Players)
}

// Cancelling one of two registrations on a team demotes the team to
// incomplete rather than cancelling it.
func TestCancelKeepsPartiallyFilledTeam(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting(func(o *model.Outing) { o.TeamSizeExact = 2 }))

	first, err := svc.Register(ctx, "out-1", model.RegisterRequest{
		Mode:    model.ModePartialTeam,
		Players: roster("a@x.com"),
	})
	require.NoError(t, err)
	teamID := first.Event.Teams[0].ID

	second, err := svc.Register(ctx, "out-1", model.RegisterRequest{
		Mode:    model.ModeJoinTeam,
		TeamID:  teamID,
		Players: roster("b@x.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TeamActive, second.Event.Teams[0].Status)

	event, err := svc.CancelRegistration(ctx, "out-1", second.Registration.ID, "b@x.com")
	require.NoError(t, err)
	require.Len(t, event.Teams, 1)
	assert.Equal(t, model.TeamIncomplete, event.Teams[0].Status)
	assert.Equal(t, 1, event.Teams[0].MemberCount)
}

func TestEditRegistration(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting(func(o *model.Outing) { o.TeamSizeExact = 3 }))

	resp, err := svc.Register(ctx, "out-1", model.RegisterRequest{
		Mode:    model.ModePartialTeam,
		Players: roster("a@x.com", "b@x.com"),
	})
	require.NoError(t, err)
	regID := resp.Registration.ID
	team := resp.Event.Teams[0]
	assert.Equal(t, model.TeamIncomplete, team.Status)

	t.Run("wrong email is rejected", func(t *testing.T) {
		_, err := svc.EditRegistration(ctx, "out-1", regID, model.EditRegistrationRequest{
			Email:      "b@x.com",
			AddPlayers: roster("c@x.com"),
		})
		assert.ErrorIs(t, err, service.ErrNotOwner)
	})

	t.Run("adding the final player completes the team", func(t *testing.T) {
		event, err := svc.EditRegistration(ctx, "out-1", regID, model.EditRegistrationRequest{
			Email:      "a@x.com",
			AddPlayers: roster("c@x.com"),
		})
		require.NoError(t, err)
		require.Len(t, event.Teams, 1)
		assert.Equal(t, model.TeamActive, event.Teams[0].Status)
		assert.Equal(t, 3, event.Teams[0].MemberCount)
	})

	t.Run("adding past the team bound is rejected", func(t *testing.T) {
		_, err := svc.EditRegistration(ctx, "out-1", regID, model.EditRegistrationRequest{
			Email:      "a@x.com",
			AddPlayers: roster("d@x.com"),
		})
		var v *rules.Violation
		require.True(t, errors.As(err, &v))
		assert.Equal(t, rules.RuleRoster, v.Rule)
	})

	t.Run("adding an already registered email is rejected", func(t *testing.T) {
		_, err := svc.EditRegistration(ctx, "out-1", regID, model.EditRegistrationRequest{
			Email:      "a@x.com",
			AddPlayers: roster("b@x.com"),
		})
		var v *rules.Violation
		require.True(t, errors.As(err, &v))
		assert.Equal(t, rules.RuleDuplicate, v.Rule)
	})
}

func TestEditRemovesMembersAndUpdatesNotes(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t, openOuting(func(o *model.Outing) { o.TeamSizeExact = 2 }))

	resp, err := svc.Register(ctx, "out-1", model.RegisterRequest{
		Mode:    model.ModeFullTeam,
		Players: roster("a@x.com", "b@x.com"),
	})
	require.NoError(t, err)
	regID := resp.Registration.ID

	var removeID string
	for _, m := range resp.Event.Teams[0].Members {
		if m.Email == "b@x.com" {
			removeID = m.ID
		}
	}
	require.NotEmpty(t, removeID)

	notes := "down to one"
	event, err := svc.EditRegistration(ctx, "out-1", regID, model.EditRegistrationRequest{
		Email:           "a@x.com",
		RemoveMemberIDs: []string{removeID},
		Notes:           &notes,
	})
	require.NoError(t, err)
	require.Len(t, event.Teams, 1)
	assert.Equal(t, model.TeamIncomplete, event.Teams[0].Status)
	assert.Equal(t, 1, event.Teams[0].MemberCount)
	assert.Equal(t, 1, event.Metrics.Players)

	// The freed seat is open for someone else now.
	_, err = svc.Register(ctx, "out-1", model.RegisterRequest{Mode: model.ModeSingle, Players: roster("b@x.com")})
	require.NoError(t, err)

	t.Run("removing someone else's member fails", func(t *testing.T) {
		_, err := svc.Register(ctx, "out-1", model.RegisterRequest{Mode: model.ModeSingle, Players: roster("z@x.com")})
		require.NoError(t, err)

		otherMember, err := st.Members().FindActiveByEmail(ctx, "out-1", "z@x.com")
		require.NoError(t, err)

		_, err = svc.EditRegistration(ctx, "out-1", regID, model.EditRegistrationRequest{
			Email:           "a@x.com",
			RemoveMemberIDs: []string{otherMember.ID},
		})
		var v *rules.Violation
		require.True(t, errors.As(err, &v))
		assert.Equal(t, rules.RulePlayers, v.Rule)
	})

	t.Run("cancelled registration cannot be edited", func(t *testing.T) {
		_, err := svc.CancelRegistration(ctx, "out-1", regID, "a@x.com")
		require.NoError(t, err)
		_, err = svc.EditRegistration(ctx, "out-1", regID, model.EditRegistrationRequest{
			Email:      "a@x.com",
			AddPlayers: roster("q@x.com"),
		})
		var v *rules.Violation
		require.True(t, errors.As(err, &v))
	})
}
