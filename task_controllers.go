package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// -----------------------------
// Tasks (creator side)
// -----------------------------

type CreateTaskRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description" binding:"required"`
	DueDate      string `json:"dueDate"`
	Priority     int    `json:"priority"`
	InvitationID uint   `json:"invitationId"`
}

// acceptedInvitationFor picks the invitation a new task is created under.
// An explicit id wins; otherwise the caller must hold exactly one accepted
// invitation in an active event, or the request is ambiguous.
func acceptedInvitationFor(userID uint, invitationID uint) (*Invitation, int, string) {
	if invitationID != 0 {
		var inv Invitation
		if err := DB.Preload("Event").First(&inv, invitationID).Error; err != nil {
			return nil, http.StatusNotFound, "invitation not found"
		}
		if inv.UserID != userID {
			return nil, http.StatusForbidden, "this invitation belongs to someone else"
		}
		if inv.Status != InvitationAccepted {
			return nil, http.StatusConflict, "invitation has not been accepted"
		}
		if !inv.Event.IsActive {
			return nil, http.StatusConflict, "event is not active"
		}
		return &inv, 0, ""
	}

	var invitations []Invitation
	if err := DB.Preload("Event").
		Where("user_id = ? AND status = ?", userID, InvitationAccepted).
		Find(&invitations).Error; err != nil {
		return nil, http.StatusInternalServerError, "db error: " + err.Error()
	}

	active := invitations[:0]
	for _, inv := range invitations {
		if inv.Event.IsActive {
			active = append(active, inv)
		}
	}

	switch len(active) {
	case 0:
		return nil, http.StatusConflict, "no accepted invitation — accept an event invitation first"
	case 1:
		inv := active[0]
		return &inv, 0, ""
	default:
		return nil, http.StatusBadRequest, "multiple accepted invitations — specify invitationId"
	}
}

func CreateTask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body CreateTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	title := strings.TrimSpace(body.Title)
	description := strings.TrimSpace(body.Description)
	if title == "" || description == "" {
		jsonError(c, http.StatusBadRequest, "title and description are required")
		return
	}

	priority := TaskPriority(body.Priority)
	if body.Priority == 0 {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		jsonError(c, http.StatusBadRequest, "priority must be between 1 (Low) and 4 (Critical)")
		return
	}

	var dueDate *time.Time
	if body.DueDate != "" {
		parsed, err := parseDate(body.DueDate)
		if err != nil {
			jsonError(c, http.StatusBadRequest, "invalid dueDate format")
			return
		}
		dueDate = &parsed
	}

	inv, code, msg := acceptedInvitationFor(userID, body.InvitationID)
	if inv == nil {
		jsonError(c, code, msg)
		return
	}

	var taskCount int64
	if err := DB.Model(&Task{}).
		Where("event_id = ? AND created_by_id = ?", inv.EventID, userID).
		Count(&taskCount).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	if taskCount >= int64(inv.Event.MaxTasksPerUser) {
		jsonError(c, http.StatusConflict, "task limit for this event reached")
		return
	}

	task := Task{
		EventID:      inv.EventID,
		InvitationID: inv.ID,
		CreatedByID:  userID,
		AssigneeID:   inv.ChrisMaUserID,
		Title:        title,
		Description:  description,
		DueDate:      dueDate,
		Priority:     priority,
	}

	if err := DB.Create(&task).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "could not create task: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, task)
}

func GetMyCreatedTasks(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var tasks []Task
	if err := DB.Where("created_by_id = ?", userID).Order("created_at desc").Find(&tasks).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// -----------------------------
// Assignment
// -----------------------------

type AssignTaskRequest struct {
	AssigneeID   uint `json:"assigneeId"`
	InvitationID uint `json:"invitationId"`
}

// resolveAssignee finds the recipient for a task: explicit assignee, the
// task's own invitation, the creator's accepted invitation in the same
// event, and finally the event's sole accepted invitation. No guessing
// beyond that.
func resolveAssignee(task *Task, body AssignTaskRequest) (uint, bool) {
	if body.AssigneeID != 0 {
		return body.AssigneeID, true
	}

	invitationID := body.InvitationID
	if invitationID == 0 {
		invitationID = task.InvitationID
	}
	if invitationID != 0 {
		var inv Invitation
		if err := DB.First(&inv, invitationID).Error; err == nil && inv.Status == InvitationAccepted {
			return inv.ChrisMaUserID, true
		}
	}

	var inv Invitation
	if err := DB.Where("event_id = ? AND user_id = ? AND status = ?",
		task.EventID, task.CreatedByID, InvitationAccepted).First(&inv).Error; err == nil {
		return inv.ChrisMaUserID, true
	}

	var accepted []Invitation
	if err := DB.Where("event_id = ? AND status = ?", task.EventID, InvitationAccepted).
		Find(&accepted).Error; err == nil && len(accepted) == 1 {
		return accepted[0].ChrisMaUserID, true
	}

	return 0, false
}

func AssignTask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var task Task
	if err := DB.First(&task, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "task not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	if task.CreatedByID != userID {
		jsonError(c, http.StatusForbidden, "only the task creator can assign it")
		return
	}

	var existing TaskAssignment
	if err := DB.Where("task_id = ?", task.ID).First(&existing).Error; err == nil {
		jsonError(c, http.StatusConflict, "task is already assigned")
		return
	} else if err != gorm.ErrRecordNotFound {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	// The body is optional: an empty POST relies purely on resolution.
	var body AssignTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			jsonError(c, http.StatusBadRequest, "invalid body: "+err.Error())
			return
		}
	}

	assigneeID, found := resolveAssignee(&task, body)
	if !found {
		jsonError(c, http.StatusNotFound, "no matching invitation to resolve the assignee")
		return
	}

	assignment := TaskAssignment{
		TaskID:     task.ID,
		AssigneeID: assigneeID,
		Status:     AssignmentPending,
		DueDate:    task.DueDate,
		AssignedAt: time.Now(),
	}

	if err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		task.AssigneeID = assigneeID
		return tx.Save(&task).Error
	}); err != nil {
		jsonError(c, http.StatusInternalServerError, "could not assign task: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// -----------------------------
// Assignments (recipient side)
// -----------------------------

func assignmentViewOf(a TaskAssignment, task Task, eventName string) AssignmentView {
	return AssignmentView{
		ID:              a.ID,
		TaskID:          task.ID,
		TaskTitle:       task.Title,
		TaskDescription: task.Description,
		Priority:        task.Priority,
		EventName:       eventName,
		Status:          a.Status,
		DueDate:         a.DueDate,
		AssignedAt:      a.AssignedAt,
	}
}

func GetMyAssignments(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var assignments []TaskAssignment
	if err := DB.Preload("Task").Preload("Task.Event").
		Where("assignee_id = ?", userID).
		Order("assigned_at desc").Find(&assignments).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, assignmentViewOf(a, a.Task, a.Task.Event.Name))
	}
	c.JSON(http.StatusOK, views)
}

// UpdateAssignmentStatus accepts a raw JSON-encoded status string body
// ("InProgress", "Completed", ...) and only permits forward steps.
func UpdateAssignmentStatus(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "could not read body")
		return
	}
	var status string
	if err := json.Unmarshal(raw, &status); err != nil {
		jsonError(c, http.StatusBadRequest, "body must be a JSON-encoded status string")
		return
	}

	var assignment TaskAssignment
	if err := DB.Preload("Task").Preload("Task.Event").First(&assignment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "assignment not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	if assignment.AssigneeID != userID {
		jsonError(c, http.StatusForbidden, "this assignment belongs to someone else")
		return
	}

	next := AssignmentStatus(status)
	if !legalAssignmentMove(assignment.Status, next) {
		jsonError(c, http.StatusConflict, "cannot move assignment from "+string(assignment.Status)+" to "+status)
		return
	}

	assignment.Status = next
	if err := DB.Save(&assignment).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "could not update status: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, assignmentViewOf(assignment, assignment.Task, assignment.Task.Event.Name))
}

// -----------------------------
// Results
// -----------------------------

// GetCompletedTasks returns every submitted task. The creator's username is
// included only once the event end date has passed; until then the game is
// anonymous and the field is left empty.
func GetCompletedTasks(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var assignments []TaskAssignment
	if err := DB.Preload("Task").Preload("Task.Event").
		Where("status IN ?", []AssignmentStatus{AssignmentCompleted, AssignmentReviewed}).
		Find(&assignments).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	now := time.Now()
	views := make([]CompletedTaskView, 0, len(assignments))
	for _, a := range assignments {
		var submission Submission
		if err := DB.Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).Where("task_assignment_id = ?", a.ID).First(&submission).Error; err != nil {
			continue
		}

		var submitter, creator User
		DB.First(&submitter, a.AssigneeID)
		DB.First(&creator, a.Task.CreatedByID)

		view := CompletedTaskView{
			ID:                  a.Task.ID,
			TaskTitle:           a.Task.Title,
			TaskDescription:     a.Task.Description,
			EventName:           a.Task.Event.Name,
			EventEndDate:        a.Task.Event.EndDate,
			Notes:               submission.Notes,
			SubmittedAt:         submission.SubmittedAt,
			SubmittedByUsername: submitter.Username,
			Files:               submission.Files,
		}
		if now.After(a.Task.Event.EndDate) {
			view.CreatedByUsername = creator.Username
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}
