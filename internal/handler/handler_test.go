package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/outings/internal/handler"
	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/service"
	"github.com/fairwaylabs/outings/internal/storetest"
)

const adminCode = "sekrit"

var testTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T, outings ...*model.Outing) http.Handler {
	t.Helper()
	st := storetest.New()
	svc := service.NewOutingService(st.Outings(), st.Teams(), st.Registrations(), st.Members(), st.Waitlist())
	svc.SetClock(func() time.Time { return testTime })
	for _, o := range outings {
		require.NoError(t, st.Outings().Create(context.Background(), o))
	}
	return handler.Routes(handler.NewOutingHandler(svc), adminCode)
}

func openOuting() *model.Outing {
	return &model.Outing{
		ID:           "out-1",
		Name:         "Member Cup",
		StartDate:    time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		Status:       model.OutingOpen,
		TeamSizeMin:  1,
		TeamSizeMax:  4,
		AllowedModes: model.AllModes,
		AllowGuests:  true,
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
}

func do(t *testing.T, srv http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newServer(t, openOuting())

	rec := do(t, srv, http.MethodPost, "/outings/out-1/register", model.RegisterRequest{
		Mode:     model.ModeFullTeam,
		TeamName: "The Mulligans",
		Players: []model.Player{
			{Name: "Ann", Email: "ann@x.com"},
			{Name: "Bob", Email: "bob@x.com"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[model.RegisterResponse](t, rec)
	require.NotNil(t, resp.Registration)
	assert.Equal(t, model.RegistrationRegistered, resp.Registration.Status)
	require.NotNil(t, resp.Event)
	assert.Equal(t, 2, resp.Event.Metrics.Players)

	t.Run("rule violation is a 400 naming the rule", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/outings/out-1/register", model.RegisterRequest{
			Mode:    model.ModeSingle,
			Players: []model.Player{{Name: "Ann", Email: "ann2@x.com"}, {Name: "Bo", Email: "bo@x.com"}},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		e := decode[model.ErrorResponse](t, rec)
		assert.Equal(t, "roster_size", e.Rule)
	})

	t.Run("duplicate player fails the advisory guard", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/outings/out-1/register", model.RegisterRequest{
			Mode:    model.ModeSingle,
			Players: []model.Player{{Name: "Ann", Email: "ANN@x.com"}},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		e := decode[model.ErrorResponse](t, rec)
		assert.Equal(t, "duplicate_player", e.Rule)
	})

	t.Run("unknown outing is a 404", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/outings/nope/register", model.RegisterRequest{
			Mode:    model.ModeSingle,
			Players: []model.Player{{Name: "Z", Email: "z@x.com"}},
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown body fields are rejected", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/outings/out-1/register",
			map[string]any{"mode": "single", "surprise": true})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCapacityConflictResponse(t *testing.T) {
	o := openOuting()
	o.MaxPlayers = 1
	o.AutoWaitlist = true
	srv := newServer(t, o)

	rec := do(t, srv, http.MethodPost, "/outings/out-1/register", model.RegisterRequest{
		Mode:    model.ModeSingle,
		Players: []model.Player{{Name: "Ann", Email: "ann@x.com"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/outings/out-1/register", model.RegisterRequest{
		Mode:    model.ModeSingle,
		Players: []model.Player{{Name: "Bob", Email: "bob@x.com"}},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	e := decode[model.ErrorResponse](t, rec)
	assert.Equal(t, "capacity_exceeded", e.Code)
	assert.True(t, e.WaitlistAvailable)
}

func TestWaitlistAndStatusEndpoints(t *testing.T) {
	srv := newServer(t, openOuting())

	rec := do(t, srv, http.MethodPost, "/outings/out-1/waitlist", model.WaitlistRequest{
		Name:  "Walt",
		Email: "walt@x.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/outings/out-1/waitlist", model.WaitlistRequest{
		Name:  "Walt",
		Email: "WALT@x.com",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	e := decode[model.ErrorResponse](t, rec)
	assert.Equal(t, "already_waitlisted", e.Code)

	rec = do(t, srv, http.MethodGet, "/outings/out-1/status?email=walt@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[model.StatusResponse](t, rec)
	assert.False(t, st.IsRegistered)
	assert.True(t, st.IsWaitlisted)
}

func TestCancelEndpoint(t *testing.T) {
	srv := newServer(t, openOuting())

	rec := do(t, srv, http.MethodPost, "/outings/out-1/register", model.RegisterRequest{
		Mode:    model.ModeSingle,
		Players: []model.Player{{Name: "Ann", Email: "ann@x.com"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	regID := decode[model.RegisterResponse](t, rec).Registration.ID

	rec = do(t, srv, http.MethodDelete, "/outings/out-1/registrations/"+regID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/outings/out-1/registrations/"+regID+"?email=other@x.com", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/outings/out-1/registrations/"+regID+"?email=ann@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	event := decode[model.EnrichedOuting](t, rec)
	assert.Equal(t, 0, event.Metrics.Players)
}

func TestAdminEndpoints(t *testing.T) {
	srv := newServer(t)

	create := model.CreateOutingRequest{
		Name:         "Fall Classic",
		StartDate:    time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		TeamSizeMin:  1,
		TeamSizeMax:  4,
		AllowedModes: []model.Mode{model.ModeSingle},
	}

	rec := do(t, srv, http.MethodPost, "/admin/outings", create)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/admin/outings", create, "X-Admin-Code", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/admin/outings", create, "X-Admin-Code", adminCode)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.EnrichedOuting](t, rec)
	assert.Equal(t, model.OutingDraft, created.Status)

	status := model.OutingOpen
	rec = do(t, srv, http.MethodPut, "/admin/outings/"+created.ID,
		model.UpdateOutingRequest{Status: &status}, "X-Admin-Code", adminCode)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.EnrichedOuting](t, rec)
	assert.Equal(t, model.OutingOpen, updated.Status)

	rec = do(t, srv, http.MethodGet, "/admin/outings", nil, "X-Admin-Code", adminCode)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.EnrichedOuting](t, rec)
	require.Len(t, list, 1)
}
