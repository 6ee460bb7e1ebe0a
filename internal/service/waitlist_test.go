package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/repository"
	"github.com/fairwaylabs/outings/internal/rules"
)

func TestJoinWaitlist(t *testing.T) {
	ctx := context.Background()
	// Waitlist admission ignores the signup window entirely.
	svc, _ := newService(t, openOuting(func(o *model.Outing) { o.Status = model.OutingWaitlist }))

	entry, err := svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{
		Name:  "Walt",
		Email: " Walt@X.com ",
		Mode:  model.ModeSingle,
	})
	require.NoError(t, err)
	assert.Equal(t, model.WaitlistActive, entry.Status)
	assert.Equal(t, "Walt@X.com", entry.Email)

	t.Run("second active entry is a conflict", func(t *testing.T) {
		_, err := svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{Name: "Walt", Email: "walt@x.com"})
		assert.ErrorIs(t, err, repository.ErrDuplicateWaitlist)
	})

	t.Run("requires name and valid email", func(t *testing.T) {
		_, err := svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{Email: "a@x.com"})
		var v *rules.Violation
		require.True(t, errors.As(err, &v))

		_, err = svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{Name: "A", Email: "nope"})
		require.True(t, errors.As(err, &v))
	})
}

func TestWaitlistRejectsRegisteredEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting())

	_, err := svc.Register(ctx, "out-1", model.RegisterRequest{Mode: model.ModeSingle, Players: roster("a@x.com")})
	require.NoError(t, err)

	_, err = svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{Name: "A", Email: "a@x.com"})
	var v *rules.Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, rules.RuleDuplicate, v.Rule)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, openOuting())

	resp, err := svc.Register(ctx, "out-1", model.RegisterRequest{Mode: model.ModeSingle, Players: roster("a@x.com")})
	require.NoError(t, err)
	_, err = svc.JoinWaitlist(ctx, "out-1", model.WaitlistRequest{Name: "W", Email: "w@x.com"})
	require.NoError(t, err)

	st, err := svc.Status(ctx, "out-1", "A@x.com")
	require.NoError(t, err)
	assert.True(t, st.IsRegistered)
	assert.False(t, st.IsWaitlisted)
	require.NotNil(t, st.Registration)
	assert.Equal(t, resp.Registration.ID, st.Registration.ID)

	st, err = svc.Status(ctx, "out-1", "w@x.com")
	require.NoError(t, err)
	assert.False(t, st.IsRegistered)
	assert.True(t, st.IsWaitlisted)
	require.NotNil(t, st.Waitlist)

	st, err = svc.Status(ctx, "out-1", "stranger@x.com")
	require.NoError(t, err)
	assert.False(t, st.IsRegistered)
	assert.False(t, st.IsWaitlisted)
	assert.Nil(t, st.Registration)
	assert.Nil(t, st.Waitlist)
}
