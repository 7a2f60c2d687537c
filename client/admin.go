package client

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ValidationError is a local precondition failure: the request was rejected
// before any network call was made.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// AdminService wraps the /admin endpoints: user management and the event
// lifecycle.
type AdminService struct {
	client *Client
}

func NewAdminService(c *Client) *AdminService {
	return &AdminService{client: c}
}

// Users lists every registered user as raw payloads so the normalization
// accessors apply.
func (s *AdminService) Users(ctx context.Context) ([]map[string]any, error) {
	var users []map[string]any
	if err := s.client.GetJSON(ctx, "/api/admin/users", &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = NormalizeUser(users[i])
	}
	return users, nil
}

func (s *AdminService) User(ctx context.Context, userID uint) (map[string]any, error) {
	var user map[string]any
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/admin/users/%d", userID), &user); err != nil {
		return nil, err
	}
	return NormalizeUser(user), nil
}

// UpdateUser patches the given fields only.
func (s *AdminService) UpdateUser(ctx context.Context, userID uint, fields map[string]any) (map[string]any, error) {
	var user map[string]any
	if err := s.client.SendJSON(ctx, "PATCH", fmt.Sprintf("/api/admin/users/%d", userID), fields, &user); err != nil {
		return nil, err
	}
	return NormalizeUser(user), nil
}

// EventForm carries everything needed to create or update an event.
type EventForm struct {
	Name            string
	Description     string
	StartDate       time.Time
	EndDate         time.Time
	MaxTasksPerUser int
	IsActive        bool
	UserIDs         []uint
}

// validate enforces the form's preconditions locally: missing name, an end
// date not after the start date, a cap below 1, or fewer than two
// participants never reach the network.
func (f *EventForm) validate(requireParticipants bool) error {
	if strings.TrimSpace(f.Name) == "" {
		return ValidationError("event name is required")
	}
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return ValidationError("start and end dates are required")
	}
	if !f.EndDate.After(f.StartDate) {
		return ValidationError("end date must be after start date")
	}
	if f.MaxTasksPerUser < 1 {
		return ValidationError("max tasks per user must be at least 1")
	}
	if requireParticipants && len(f.UserIDs) < 2 {
		return ValidationError("select at least 2 participants")
	}
	return nil
}

func (s *AdminService) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := s.client.GetJSON(ctx, "/api/admin/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *AdminService) Event(ctx context.Context, eventID uint) (*Event, error) {
	var event Event
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/admin/events/%d", eventID), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent validates locally, then creates the event with its
// participant set. The backend runs the secret pairing and sends the
// invitations.
func (s *AdminService) CreateEvent(ctx context.Context, form EventForm) (*Event, error) {
	if err := form.validate(true); err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":            strings.TrimSpace(form.Name),
		"description":     form.Description,
		"startDate":       form.StartDate.Format(time.RFC3339),
		"endDate":         form.EndDate.Format(time.RFC3339),
		"maxTasksPerUser": form.MaxTasksPerUser,
		"userIds":         form.UserIDs,
	}

	var event Event
	if err := s.client.SendJSON(ctx, "POST", "/api/admin/events", body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent replaces the mutable fields of an existing event.
func (s *AdminService) UpdateEvent(ctx context.Context, eventID uint, form EventForm) (*Event, error) {
	if err := form.validate(false); err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":            strings.TrimSpace(form.Name),
		"description":     form.Description,
		"startDate":       form.StartDate.Format(time.RFC3339),
		"endDate":         form.EndDate.Format(time.RFC3339),
		"maxTasksPerUser": form.MaxTasksPerUser,
		"isActive":        form.IsActive,
	}

	var event Event
	if err := s.client.SendJSON(ctx, "PUT", fmt.Sprintf("/api/admin/events/%d", eventID), body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEventStatus flips the active flag. The wire body is a raw JSON
// boolean, not an object.
func (s *AdminService) UpdateEventStatus(ctx context.Context, eventID uint, isActive bool) (*Event, error) {
	raw := []byte("false")
	if isActive {
		raw = []byte("true")
	}

	var event Event
	if err := s.client.SendRaw(ctx, "PATCH", fmt.Sprintf("/api/admin/events/%d/status", eventID), raw, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes the event and everything it owns.
func (s *AdminService) DeleteEvent(ctx context.Context, eventID uint) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/admin/events/%d", eventID))
}
