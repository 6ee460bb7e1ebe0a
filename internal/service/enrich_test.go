package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/outings/internal/model"
)

func TestGetOutingEnrichment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting(func(o *model.Outing) {
		o.TeamSizeExact = 4
		o.MaxPlayers = 8
		o.MaxTeams = 2
	}))

	_, err := svc.Register(ctx, "out-1", model.RegisterRequest{
		Mode:     model.ModePartialTeam,
		TeamName: "Early Birds",
		Players:  roster("a@x.com", "b@x.com"),
	})
	require.NoError(t, err)
	_, err = svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{Name: "W", Email: "w@x.com"})
	require.NoError(t, err)

	e, err := svc.GetOuting(ctx, "out-1", false)
	require.NoError(t, err)

	assert.Equal(t, "Jun 20-21, 2026", e.DateLabel)
	assert.Contains(t, e.RuleSummary, "Teams of exactly 4 players")
	assert.Contains(t, e.RuleSummary, "Guests welcome")

	assert.Equal(t, 1, e.Metrics.Registrations)
	assert.Equal(t, 1, e.Metrics.Teams)
	assert.Equal(t, 2, e.Metrics.Players)
	assert.Equal(t, 1, e.Metrics.Waitlist)
	require.NotNil(t, e.PlayerSpotsLeft)
	assert.Equal(t, 6, *e.PlayerSpotsLeft)
	require.NotNil(t, e.TeamSpotsLeft)
	assert.Equal(t, 1, *e.TeamSpotsLeft)

	require.Len(t, e.Teams, 1)
	view := e.Teams[0]
	assert.Equal(t, "Early Birds", view.Name)
	assert.Equal(t, model.TeamIncomplete, view.Status)
	assert.Equal(t, 2, view.MemberCount)
	assert.Equal(t, 2, view.SpotsOpen)
	assert.True(t, view.CanJoin)

	// Non-admin reads never expose the raw registration or waitlist lists.
	assert.Nil(t, e.Registrations)
	assert.Nil(t, e.Waitlist)
}

func TestGetOutingAdminDetail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting())

	_, err := svc.Register(ctx, "out-1", model.RegisterRequest{Mode: model.ModeSingle, Players: roster("a@x.com")})
	require.NoError(t, err)
	_, err = svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{Name: "W", Email: "w@x.com"})
	require.NoError(t, err)

	e, err := svc.GetOuting(ctx, "out-1", true)
	require.NoError(t, err)
	require.Len(t, e.Registrations, 1)
	require.Len(t, e.Waitlist, 1)
	assert.Equal(t, "a@x.com", e.Registrations[0].ContactEmail)
}

func TestListOutings(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t, openOuting())
	require.NoError(t, st.Outings().Create(ctx, openOuting(func(o *model.Outing) {
		o.ID = "out-2"
		o.Name = "Guest Day"
		o.Status = model.OutingDraft
	})))

	list, err := svc.ListOutings(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, e := range list {
		// List is the summary view; team detail is reserved for single reads.
		assert.Nil(t, e.Teams)
		assert.Nil(t, e.Registrations)
	}
}
