package client

import "time"

// Invitation statuses.
const (
	InvitationPending  = "Pending"
	InvitationAccepted = "Accepted"
	InvitationDeclined = "Declined"
)

// Assignment statuses.
const (
	AssignmentPending    = "Pending"
	AssignmentInProgress = "InProgress"
	AssignmentCompleted  = "Completed"
	AssignmentReviewed   = "Reviewed"
)

// Invitation is one event invitation as the invitee sees it.
type Invitation struct {
	ID              uint       `json:"id"`
	EventID         uint       `json:"eventId"`
	EventName       string     `json:"eventName"`
	ChrisMaUsername string     `json:"chrisMaUsername"`
	Status          string     `json:"status"`
	InvitedAt       time.Time  `json:"invitedAt"`
	ResponseAt      *time.Time `json:"responseAt"`
}

// Task is a created task on the creator's dashboard.
type Task struct {
	ID           uint       `json:"id"`
	EventID      uint       `json:"eventId"`
	InvitationID uint       `json:"invitationId"`
	CreatedByID  uint       `json:"createdById"`
	AssigneeID   uint       `json:"assigneeId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"dueDate"`
	Priority     int        `json:"priority"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Assignment is the denormalized card on the recipient's dashboard.
type Assignment struct {
	ID              uint       `json:"id"`
	TaskID          uint       `json:"taskId"`
	TaskTitle       string     `json:"taskTitle"`
	TaskDescription string     `json:"taskDescription"`
	Priority        int        `json:"priority"`
	EventName       string     `json:"eventName"`
	Status          string     `json:"status"`
	DueDate         *time.Time `json:"dueDate"`
	AssignedAt      time.Time  `json:"assignedAt"`
}

// Submission is a completed assignment's record. Files stay as raw payloads
// so the normalization accessors apply regardless of endpoint casing.
type Submission struct {
	ID               uint             `json:"id"`
	TaskAssignmentID uint             `json:"taskAssignmentId"`
	Notes            string           `json:"notes"`
	SubmittedAt      time.Time        `json:"submittedAt"`
	Files            []map[string]any `json:"files"`
}

// Event is the admin view of one event.
type Event struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	MaxTasksPerUser int       `json:"maxTasksPerUser"`
	IsActive        bool      `json:"isActive"`
	InvitedCount    int64     `json:"invitedCount"`
	AcceptedCount   int64     `json:"acceptedCount"`
	TaskCount       int64     `json:"taskCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PriorityLabel renders the 1..4 priority enum; anything out of range
// reads as Medium, matching the dashboards.
func PriorityLabel(priority int) string {
	switch priority {
	case 1:
		return "Low"
	case 3:
		return "High"
	case 4:
		return "Critical"
	default:
		return "Medium"
	}
}
