package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEventForm() EventForm {
	return EventForm{
		Name:            "March Game",
		StartDate:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		MaxTasksPerUser: 5,
		UserIDs:         []uint{1, 2, 3},
	}
}

func TestCreateEventValidatesLocally(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	}, "t")
	svc := NewAdminService(c)
	ctx := context.Background()

	var vErr ValidationError

	form := validEventForm()
	form.Name = "   "
	_, err := svc.CreateEvent(ctx, form)
	assert.ErrorAs(t, err, &vErr)

	form = validEventForm()
	form.EndDate = form.StartDate
	_, err = svc.CreateEvent(ctx, form)
	assert.ErrorAs(t, err, &vErr)

	form = validEventForm()
	form.MaxTasksPerUser = 0
	_, err = svc.CreateEvent(ctx, form)
	assert.ErrorAs(t, err, &vErr)

	form = validEventForm()
	form.UserIDs = []uint{1}
	_, err = svc.CreateEvent(ctx, form)
	assert.ErrorAs(t, err, &vErr)

	assert.Zero(t, requests, "validation failures never reach the network")
}

func TestCreateEventSendsForm(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/events", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Event{ID: 5, Name: "March Game", InvitedCount: 3})
	}, "t")
	svc := NewAdminService(c)

	form := validEventForm()
	form.Name = "  March Game  "
	event, err := svc.CreateEvent(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, uint(5), event.ID)
	assert.Equal(t, int64(3), event.InvitedCount)
	assert.Equal(t, "March Game", body["name"], "name is trimmed")
	assert.Equal(t, "2025-03-01T10:00:00Z", body["startDate"])
	assert.Len(t, body["userIds"], 3)
}

func TestUpdateEventSkipsParticipantCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		json.NewEncoder(w).Encode(Event{ID: 5, IsActive: false})
	}, "t")
	svc := NewAdminService(c)

	form := validEventForm()
	form.UserIDs = nil
	event, err := svc.UpdateEvent(context.Background(), 5, form)
	require.NoError(t, err)
	assert.Equal(t, uint(5), event.ID)
}

func TestUpdateEventStatusSendsRawBool(t *testing.T) {
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/admin/events/5/status", r.URL.Path)
		json.NewEncoder(w).Encode(Event{ID: 5, IsActive: false})
	}, "t")
	svc := NewAdminService(c)

	event, err := svc.UpdateEventStatus(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Equal(t, "false", string(body), "the body is a bare JSON boolean")
	assert.False(t, event.IsActive)
}

func TestUsersAreNormalized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"username":"a","roles":["admin"]},
			{"username":"b"}
		]`))
	}, "t")
	svc := NewAdminService(c)

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, true, users[0]["isAdmin"])
	assert.Equal(t, false, users[1]["isAdmin"])
}

func TestUpdateUserPatchesFields(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"username": "renamed", "isAdmin": true})
	}, "t")
	svc := NewAdminService(c)

	user, err := svc.UpdateUser(context.Background(), 7, map[string]any{"username": "renamed"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"username": "renamed"}, body)
	assert.Equal(t, "renamed", user["username"])
	assert.Equal(t, true, user["isAdmin"])
}

func TestDeleteEvent(t *testing.T) {
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}, "t")
	svc := NewAdminService(c)

	require.NoError(t, svc.DeleteEvent(context.Background(), 5))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/admin/events/5", path)
}
