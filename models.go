package main

import (
	"time"
)

// User represents a registered participant
type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Username    string     `json:"username" gorm:"uniqueIndex;not null"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null"`
	Password    string     `json:"password,omitempty"` // bind JSON but never return in responses
	IsAdmin     bool       `json:"isAdmin"`
	IsActive    bool       `json:"isActive" gorm:"default:true"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Event is a time-boxed game round created by an admin
type Event struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"not null"`
	Description     string    `json:"description"`
	StartDate       time.Time `json:"startDate" gorm:"not null"`
	EndDate         time.Time `json:"endDate" gorm:"not null"`
	MaxTasksPerUser int       `json:"maxTasksPerUser" gorm:"not null;default:5"`
	IsActive        bool      `json:"isActive" gorm:"default:true"`
	CreatedByID     uint      `json:"createdById" gorm:"index;not null"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Invitations []Invitation `gorm:"foreignKey:EventID" json:"invitations,omitempty"`
	Tasks       []Task       `gorm:"foreignKey:EventID" json:"tasks,omitempty"`
}

// EventView adds the computed counts the admin dashboard shows.
type EventView struct {
	Event
	InvitedCount  int64 `json:"invitedCount"`
	AcceptedCount int64 `json:"acceptedCount"`
	TaskCount     int64 `json:"taskCount"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "Pending"
	InvitationAccepted InvitationStatus = "Accepted"
	InvitationDeclined InvitationStatus = "Declined"
)

// Invitation links a user to an event and carries the secret pairing:
// ChrisMa is the user this invitee creates tasks for, ChrisChild is the
// user who creates tasks for this invitee. The latter is never exposed
// while the event is running.
type Invitation struct {
	ID                 uint             `json:"id" gorm:"primaryKey"`
	EventID            uint             `json:"eventId" gorm:"index;not null"`
	UserID             uint             `json:"userId" gorm:"index;not null"`
	ChrisMaUserID      uint             `json:"chrisMaUserId" gorm:"not null"`
	ChrisMaUsername    string           `json:"chrisMaUsername" gorm:"not null"`
	ChrisChildUserID   uint             `json:"-" gorm:"not null"`
	ChrisChildUsername string           `json:"-" gorm:"not null"`
	Status             InvitationStatus `json:"status" gorm:"type:varchar(16);not null;default:'Pending'"`
	InvitedAt          time.Time        `json:"invitedAt"`
	ResponseAt         *time.Time       `json:"responseAt"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

// InvitationView is what invitees see: invitation plus event name.
type InvitationView struct {
	ID              uint             `json:"id"`
	EventID         uint             `json:"eventId"`
	EventName       string           `json:"eventName"`
	ChrisMaUsername string           `json:"chrisMaUsername"`
	Status          InvitationStatus `json:"status"`
	InvitedAt       time.Time        `json:"invitedAt"`
	ResponseAt      *time.Time       `json:"responseAt"`
}

type TaskPriority int

const (
	PriorityLow      TaskPriority = 1
	PriorityMedium   TaskPriority = 2
	PriorityHigh     TaskPriority = 3
	PriorityCritical TaskPriority = 4
)

func (p TaskPriority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// Task is a secret task created by an accepted invitee for their ChrisMa
type Task struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	EventID      uint         `json:"eventId" gorm:"index;not null"`
	InvitationID uint         `json:"invitationId" gorm:"index"`
	CreatedByID  uint         `json:"createdById" gorm:"index;not null"`
	AssigneeID   uint         `json:"assigneeId" gorm:"index"`
	Title        string       `json:"title" gorm:"not null"`
	Description  string       `json:"description" gorm:"not null"`
	DueDate      *time.Time   `json:"dueDate"`
	Priority     TaskPriority `json:"priority" gorm:"not null;default:2"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
}

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "Pending"
	AssignmentInProgress AssignmentStatus = "InProgress"
	AssignmentCompleted  AssignmentStatus = "Completed"
	AssignmentReviewed   AssignmentStatus = "Reviewed"
)

// legalAssignmentMove reports whether from -> to is a permitted step.
// The chain is Pending -> InProgress -> Completed -> Reviewed, one step
// at a time, never backwards.
func legalAssignmentMove(from, to AssignmentStatus) bool {
	switch from {
	case AssignmentPending:
		return to == AssignmentInProgress
	case AssignmentInProgress:
		return to == AssignmentCompleted
	case AssignmentCompleted:
		return to == AssignmentReviewed
	default:
		return false
	}
}

// TaskAssignment binds a task to its recipient and drives their workflow
type TaskAssignment struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	TaskID     uint             `json:"taskId" gorm:"uniqueIndex;not null"`
	AssigneeID uint             `json:"assigneeId" gorm:"index;not null"`
	Status     AssignmentStatus `json:"status" gorm:"type:varchar(16);not null;default:'Pending'"`
	DueDate    *time.Time       `json:"dueDate"`
	AssignedAt time.Time        `json:"assignedAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`

	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}

// AssignmentView is the denormalized card the recipient dashboard renders.
type AssignmentView struct {
	ID              uint             `json:"id"`
	TaskID          uint             `json:"taskId"`
	TaskTitle       string           `json:"taskTitle"`
	TaskDescription string           `json:"taskDescription"`
	Priority        TaskPriority     `json:"priority"`
	EventName       string           `json:"eventName"`
	Status          AssignmentStatus `json:"status"`
	DueDate         *time.Time       `json:"dueDate"`
	AssignedAt      time.Time        `json:"assignedAt"`
}

// Submission records the one-shot completion of an assignment
type Submission struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	TaskAssignmentID uint      `json:"taskAssignmentId" gorm:"uniqueIndex;not null"`
	Notes            string    `json:"notes"`
	SubmittedAt      time.Time `json:"submittedAt"`

	Files []SubmissionFile `gorm:"foreignKey:SubmissionID" json:"files"`
}

// SubmissionFile is an immutable uploaded attachment. StorageKey is the
// on-disk blob name, never exposed over the wire.
type SubmissionFile struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SubmissionID uint      `json:"submissionId" gorm:"index;not null"`
	FileName     string    `json:"fileName" gorm:"not null"`
	FileSize     int64     `json:"fileSize"`
	ContentType  string    `json:"contentType"`
	Position     int       `json:"-" gorm:"not null;default:0"`
	StorageKey   string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CompletedTaskView is the results-page card. CreatedByUsername stays empty
// until the event end date has passed so the game keeps its anonymity.
type CompletedTaskView struct {
	ID                  uint             `json:"id"`
	TaskTitle           string           `json:"taskTitle"`
	TaskDescription     string           `json:"taskDescription"`
	EventName           string           `json:"eventName"`
	EventEndDate        time.Time        `json:"eventEndDate"`
	Notes               string           `json:"notes"`
	SubmittedAt         time.Time        `json:"submittedAt"`
	SubmittedByUsername string           `json:"submittedByUsername"`
	CreatedByUsername   string           `json:"createdByUsername"`
	Files               []SubmissionFile `json:"files"`
}
