package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoMatchingInvitation means the assignee for a task could not be
// resolved from the invitations at hand. The flow fails rather than guess.
var ErrNoMatchingInvitation = errors.New("no matching invitation")

// TaskCreatedUnassignedError reports the partial outcome of the two-step
// create-then-assign flow: the task exists but the follow-up assignment
// request failed. The first step is never rolled back.
type TaskCreatedUnassignedError struct {
	Task *Task
	Err  error
}

func (e *TaskCreatedUnassignedError) Error() string {
	return fmt.Sprintf("task %d created but not assigned: %v", e.Task.ID, e.Err)
}

func (e *TaskCreatedUnassignedError) Unwrap() error { return e.Err }

// TaskForm is the creator's input for a new task.
type TaskForm struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    int
}

// TaskService wraps the /tasks endpoints for both game roles.
type TaskService struct {
	client *Client
}

func NewTaskService(c *Client) *TaskService {
	return &TaskService{client: c}
}

// CreateTask validates the form, creates the task under the given accepted
// invitation, then immediately assigns it. The two steps are separate
// requests: when the second fails the task stays created and the error is
// a *TaskCreatedUnassignedError carrying it.
func (s *TaskService) CreateTask(ctx context.Context, form TaskForm, invitation *Invitation) (*Task, error) {
	title := strings.TrimSpace(form.Title)
	description := strings.TrimSpace(form.Description)
	if title == "" || description == "" {
		return nil, ValidationError("title and description are required")
	}

	if invitation == nil || invitation.Status != InvitationAccepted {
		return nil, ValidationError("an accepted invitation is required to create tasks")
	}

	priority := form.Priority
	if priority == 0 {
		priority = 2
	}
	if priority < 1 || priority > 4 {
		return nil, ValidationError("priority must be between 1 and 4")
	}

	body := map[string]any{
		"title":        title,
		"description":  description,
		"priority":     priority,
		"invitationId": invitation.ID,
	}
	if form.DueDate != nil {
		body["dueDate"] = form.DueDate.Format(time.RFC3339)
	}

	var task Task
	if err := s.client.SendJSON(ctx, "POST", "/api/tasks", body, &task); err != nil {
		return nil, err
	}

	if err := s.AssignTask(ctx, task.ID, invitation); err != nil {
		return &task, &TaskCreatedUnassignedError{Task: &task, Err: err}
	}
	return &task, nil
}

// AssignTask issues the assignment request for an existing task. A nil
// invitation sends an empty body and lets the backend resolve the
// assignee.
func (s *TaskService) AssignTask(ctx context.Context, taskID uint, invitation *Invitation) error {
	path := fmt.Sprintf("/api/tasks/%d/assign", taskID)
	if invitation == nil {
		return s.client.SendJSON(ctx, "POST", path, nil, nil)
	}
	return s.client.SendJSON(ctx, "POST", path,
		map[string]any{"invitationId": invitation.ID}, nil)
}

// ResolveInvitation finds the invitation that determines an existing
// task's assignee. Precedence: match by invitation id, then by event id,
// and only when the set is down to a single invitation, that one. No match
// is an ErrNoMatchingInvitation, never a guess.
func ResolveInvitation(task *Task, invitations []Invitation) (*Invitation, error) {
	if task.InvitationID != 0 {
		for i := range invitations {
			if invitations[i].ID == task.InvitationID {
				return &invitations[i], nil
			}
		}
	}

	for i := range invitations {
		if invitations[i].EventID == task.EventID {
			return &invitations[i], nil
		}
	}

	if len(invitations) == 1 {
		return &invitations[0], nil
	}

	return nil, ErrNoMatchingInvitation
}

func (s *TaskService) MyCreatedTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := s.client.GetJSON(ctx, "/api/tasks/my-created-tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) MyAssignments(ctx context.Context) ([]Assignment, error) {
	var assignments []Assignment
	if err := s.client.GetJSON(ctx, "/api/tasks/my-assignments", &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UpdateAssignmentStatus moves an assignment forward. The body is the raw
// JSON-encoded status string.
func (s *TaskService) UpdateAssignmentStatus(ctx context.Context, assignmentID uint, status string) (*Assignment, error) {
	raw, err := json.Marshal(status)
	if err != nil {
		return nil, err
	}

	var assignment Assignment
	if err := s.client.SendRaw(ctx, "PATCH",
		fmt.Sprintf("/api/tasks/assignments/%d/status", assignmentID), raw, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CompletedTasks fetches the results page, normalized per entry.
func (s *TaskService) CompletedTasks(ctx context.Context) ([]CompletedTask, error) {
	var raw []map[string]any
	if err := s.client.GetJSON(ctx, "/api/tasks/completed", &raw); err != nil {
		return nil, err
	}

	tasks := make([]CompletedTask, 0, len(raw))
	for _, payload := range raw {
		tasks = append(tasks, NormalizeCompletedTask(payload))
	}
	return tasks, nil
}
