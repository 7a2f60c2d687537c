package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondRejectsNonPendingLocally(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	}, "t")
	svc := NewInvitationService(c)

	inv := &Invitation{ID: 1, Status: InvitationAccepted}
	err := svc.Respond(context.Background(), inv, true)
	assert.ErrorIs(t, err, ErrAlreadyResponded)
	assert.Zero(t, requests, "no network call for a non-pending invitation")
}

func TestRespondUpdatesInvitationInPlace(t *testing.T) {
	respondedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body["accept"])
		json.NewEncoder(w).Encode(Invitation{
			ID: 1, Status: InvitationAccepted, ResponseAt: &respondedAt,
		})
	}, "t")
	svc := NewInvitationService(c)

	inv := &Invitation{ID: 1, Status: InvitationPending}
	require.NoError(t, svc.Respond(context.Background(), inv, true))
	assert.Equal(t, InvitationAccepted, inv.Status)
	require.NotNil(t, inv.ResponseAt)
	assert.True(t, inv.ResponseAt.Equal(respondedAt))
}

func TestRespondFailureLeavesInvitationUntouched(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "already responded"})
	}, "t")
	svc := NewInvitationService(c)

	inv := &Invitation{ID: 1, Status: InvitationPending}
	err := svc.Respond(context.Background(), inv, false)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, InvitationPending, inv.Status, "local state unchanged on failure")
	assert.Nil(t, inv.ResponseAt)
}

func TestMyInvitationsAndPending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/invitations/my-invitations":
			json.NewEncoder(w).Encode([]Invitation{
				{ID: 1, Status: InvitationAccepted},
				{ID: 2, Status: InvitationPending},
			})
		case "/api/invitations/my-invitations/pending":
			json.NewEncoder(w).Encode([]Invitation{{ID: 2, Status: InvitationPending}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, "t")
	svc := NewInvitationService(c)

	all, err := svc.MyInvitations(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.PendingInvitations(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(2), pending[0].ID)
}

func TestAcceptedInvitation(t *testing.T) {
	invitations := []Invitation{
		{ID: 1, EventID: 10, Status: InvitationDeclined},
		{ID: 2, EventID: 10, Status: InvitationAccepted},
		{ID: 3, EventID: 20, Status: InvitationAccepted},
	}

	// Event scoped.
	got := AcceptedInvitation(invitations, 20)
	require.NotNil(t, got)
	assert.Equal(t, uint(3), got.ID)

	// Zero event id: first accepted wins.
	got = AcceptedInvitation(invitations, 0)
	require.NotNil(t, got)
	assert.Equal(t, uint(2), got.ID)

	assert.Nil(t, AcceptedInvitation(invitations, 30))
	assert.Nil(t, AcceptedInvitation(nil, 0))
}
