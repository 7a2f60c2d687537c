package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret-task-game/client"
)

// actor bundles one participant's client stack against the live server.
type actor struct {
	session     *client.Session
	auth        *client.AuthService
	invitations *client.InvitationService
	tasks       *client.TaskService
	submissions *client.SubmissionService
	admin       *client.AdminService
	id          uint
}

func newActor(t *testing.T, baseURL string) *actor {
	t.Helper()

	session := client.NewSession(filepath.Join(t.TempDir(), "session.json"))
	c := client.NewClient(baseURL, session.Token)
	return &actor{
		session:     session,
		auth:        client.NewAuthService(c, session),
		invitations: client.NewInvitationService(c),
		tasks:       client.NewTaskService(c),
		submissions: client.NewSubmissionService(c),
		admin:       client.NewAdminService(c),
	}
}

func (a *actor) register(t *testing.T, ctx context.Context, username, email string) {
	t.Helper()
	user, err := a.auth.Register(ctx, username, email, "secret123")
	require.NoError(t, err)
	a.id = uint(client.IntField(user, "id", "Id", "ID"))
	require.NotZero(t, a.id)
	require.True(t, a.session.IsAuthenticated())
}

// TestFullGameRound drives a whole round through the real router with the
// client library: admin creates the event, a participant accepts and creates
// a task, the recipient works it to completion with a file, and the results
// page plus preview flow close the loop.
func TestFullGameRound(t *testing.T) {
	r := setupTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx := context.Background()

	t.Setenv("ADMIN_EMAILS", "admin@example.com")
	admin := newActor(t, srv.URL)
	admin.register(t, ctx, "admin", "admin@example.com")
	require.True(t, admin.session.IsAdmin())

	alice := newActor(t, srv.URL)
	alice.register(t, ctx, "alice", "alice@example.com")
	bob := newActor(t, srv.URL)
	bob.register(t, ctx, "bob", "bob@example.com")

	// Admin creates the event over both participants.
	event, err := admin.admin.CreateEvent(ctx, client.EventForm{
		Name:            "Game Round",
		Description:     "end to end",
		StartDate:       time.Now().Add(-time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		MaxTasksPerUser: 5,
		UserIDs:         []uint{alice.id, bob.id},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), event.InvitedCount)

	// Alice sees exactly one pending invitation naming her counterpart.
	pending, err := alice.invitations.PendingInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].ChrisMaUsername, "with two players the ring is a swap")

	// With the invitation still Pending, task creation fails server-side.
	_, err = alice.tasks.CreateTask(ctx, client.TaskForm{Title: "too soon", Description: "d"},
		&client.Invitation{ID: pending[0].ID, Status: client.InvitationAccepted})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)

	require.NoError(t, alice.invitations.Respond(ctx, &pending[0], true))
	assert.Equal(t, client.InvitationAccepted, pending[0].Status)

	// Responding again is rejected locally.
	assert.ErrorIs(t, alice.invitations.Respond(ctx, &pending[0], false), client.ErrAlreadyResponded)

	// Create + assign in one flow.
	task, err := alice.tasks.CreateTask(ctx, client.TaskForm{
		Title:       "hide a drawing",
		Description: "somewhere bob will find it",
		Priority:    3,
	}, &pending[0])
	require.NoError(t, err)
	assert.Equal(t, bob.id, task.AssigneeID)

	// Bob sees the assignment and works it forward.
	assignments, err := bob.tasks.MyAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "hide a drawing", assignments[0].TaskTitle)
	assert.Equal(t, client.AssignmentPending, assignments[0].Status)

	updated, err := bob.tasks.UpdateAssignmentStatus(ctx, assignments[0].ID, client.AssignmentInProgress)
	require.NoError(t, err)
	assert.Equal(t, client.AssignmentInProgress, updated.Status)

	// Skipping ahead is refused.
	_, err = bob.tasks.UpdateAssignmentStatus(ctx, assignments[0].ID, client.AssignmentReviewed)
	require.ErrorAs(t, err, &apiErr)

	// Submit with a photo.
	submission, err := bob.submissions.Submit(ctx, assignments[0].ID, "found the spot", []client.Upload{
		{Name: "proof.png", ContentType: "image/png", Data: []byte("png bytes")},
	})
	require.NoError(t, err)
	require.Len(t, submission.Files, 1)

	// The results page keeps the creator anonymous while the event runs.
	completed, err := bob.tasks.CompletedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "hide a drawing", completed[0].TaskTitle)
	assert.Equal(t, "bob", completed[0].SubmittedByUsername)
	assert.Empty(t, completed[0].CreatedByUsername, "creator hidden until the event ends")

	// Preview the submitted file end to end.
	manager := client.NewPreviewManager(bob.submissions, t.TempDir())
	preview, err := manager.Open(ctx, completed[0].Files[0])
	require.NoError(t, err)
	assert.True(t, preview.IsImage)
	data, err := os.ReadFile(preview.Path)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
	manager.Close()

	// Once the event is over, the creator is revealed.
	require.NoError(t, DB.Model(&Event{}).Where("id = ?", event.ID).
		Update("end_date", time.Now().Add(-time.Minute)).Error)
	completed, err = bob.tasks.CompletedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "alice", completed[0].CreatedByUsername)
}

// TestEventLifecycleViaClient covers the admin surface end to end: status
// flip with the raw-bool body, user patching, and the cascade delete.
func TestEventLifecycleViaClient(t *testing.T) {
	r := setupTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx := context.Background()

	t.Setenv("ADMIN_EMAILS", "admin@example.com")
	admin := newActor(t, srv.URL)
	admin.register(t, ctx, "admin", "admin@example.com")

	alice := newActor(t, srv.URL)
	alice.register(t, ctx, "alice", "alice@example.com")
	bob := newActor(t, srv.URL)
	bob.register(t, ctx, "bob", "bob@example.com")

	event, err := admin.admin.CreateEvent(ctx, client.EventForm{
		Name:            "Short Round",
		StartDate:       time.Now(),
		EndDate:         time.Now().Add(time.Hour),
		MaxTasksPerUser: 1,
		UserIDs:         []uint{alice.id, bob.id},
	})
	require.NoError(t, err)
	assert.True(t, event.IsActive)

	// Deactivate, then confirm task creation is blocked for the invitee.
	event, err = admin.admin.UpdateEventStatus(ctx, event.ID, false)
	require.NoError(t, err)
	assert.False(t, event.IsActive)

	pending, err := alice.invitations.PendingInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, alice.invitations.Respond(ctx, &pending[0], true))

	_, err = alice.tasks.CreateTask(ctx, client.TaskForm{Title: "t", Description: "d"}, &pending[0])
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)

	// Promote bob, rename him, then tear the event down.
	user, err := admin.admin.UpdateUser(ctx, bob.id, map[string]any{"username": "bobby", "isAdmin": true})
	require.NoError(t, err)
	assert.Equal(t, "bobby", user["username"])
	assert.Equal(t, true, user["isAdmin"])

	require.NoError(t, admin.admin.DeleteEvent(ctx, event.ID))

	invitations, err := alice.invitations.MyInvitations(ctx)
	require.NoError(t, err)
	assert.Empty(t, invitations)
}
