package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// -----------------------------
// Helper functions
// -----------------------------

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// getUserIDFromContext expects AuthMiddleware to set "user_id" (uint) in context.
// If not present -> unauthorized.
func getUserIDFromContext(c *gin.Context) (uint, bool) {
	uid, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := uid.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		_ = v
		return 0, false
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id64), true
}

// parseDate accepts RFC3339 or plain YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
	}
	return t, err
}

// -----------------------------
// Admin: users
// -----------------------------

func GetAllUsers(c *gin.Context) {
	var users []User
	if err := DB.Order("username asc").Find(&users).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	c.JSON(http.StatusOK, users)
}

func GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user User
	if err := DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "user not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, user)
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"isActive"`
	IsAdmin  *bool   `json:"isAdmin"`
}

func UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user User
	if err := DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "user not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	var body UpdateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	if body.Username != nil {
		trimmed := strings.TrimSpace(*body.Username)
		if trimmed == "" {
			jsonError(c, http.StatusBadRequest, "username cannot be empty")
			return
		}
		user.Username = trimmed
	}
	if body.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*body.Email))
		if trimmed == "" {
			jsonError(c, http.StatusBadRequest, "email cannot be empty")
			return
		}
		user.Email = trimmed
	}
	if body.IsActive != nil {
		user.IsActive = *body.IsActive
	}
	if body.IsAdmin != nil {
		user.IsAdmin = *body.IsAdmin
	}

	if err := DB.Save(&user).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "could not update user: "+err.Error())
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, user)
}

// -----------------------------
// Admin: events
// -----------------------------

type CreateEventRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	StartDate       string `json:"startDate" binding:"required"`
	EndDate         string `json:"endDate" binding:"required"`
	MaxTasksPerUser int    `json:"maxTasksPerUser"`
	UserIDs         []uint `json:"userIds" binding:"required"`
}

func CreateEvent(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body CreateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		jsonError(c, http.StatusBadRequest, "event name is required")
		return
	}

	start, err := parseDate(body.StartDate)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid startDate format (use RFC3339 or YYYY-MM-DD)")
		return
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid endDate format (use RFC3339 or YYYY-MM-DD)")
		return
	}
	if !end.After(start) {
		jsonError(c, http.StatusBadRequest, "end date must be after start date")
		return
	}

	if body.MaxTasksPerUser == 0 {
		body.MaxTasksPerUser = 5
	}
	if body.MaxTasksPerUser < 1 {
		jsonError(c, http.StatusBadRequest, "maxTasksPerUser must be at least 1")
		return
	}

	if len(body.UserIDs) < 2 {
		jsonError(c, http.StatusBadRequest, "an event needs at least 2 participants")
		return
	}

	// All participants must exist and be active.
	var participants []User
	if err := DB.Where("id IN ? AND is_active = ?", body.UserIDs, true).Find(&participants).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	if len(participants) != len(body.UserIDs) {
		jsonError(c, http.StatusBadRequest, "one or more selected users do not exist or are inactive")
		return
	}

	ev := Event{
		Name:            name,
		Description:     body.Description,
		StartDate:       start,
		EndDate:         end,
		MaxTasksPerUser: body.MaxTasksPerUser,
		IsActive:        true,
		CreatedByID:     userID,
	}

	invitations := buildInvitations(&ev, participants)

	if err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ev).Error; err != nil {
			return err
		}
		for i := range invitations {
			invitations[i].EventID = ev.ID
		}
		return tx.Create(&invitations).Error
	}); err != nil {
		jsonError(c, http.StatusInternalServerError, "could not create event: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, eventView(ev))
}

// eventView attaches the computed counts the dashboard shows.
func eventView(ev Event) EventView {
	view := EventView{Event: ev}
	DB.Model(&Invitation{}).Where("event_id = ?", ev.ID).Count(&view.InvitedCount)
	DB.Model(&Invitation{}).Where("event_id = ? AND status = ?", ev.ID, InvitationAccepted).Count(&view.AcceptedCount)
	DB.Model(&Task{}).Where("event_id = ?", ev.ID).Count(&view.TaskCount)
	return view
}

func GetAllEvents(c *gin.Context) {
	var events []Event
	if err := DB.Order("start_date asc").Find(&events).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	views := make([]EventView, 0, len(events))
	for _, ev := range events {
		views = append(views, eventView(ev))
	}
	c.JSON(http.StatusOK, views)
}

func GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var ev Event
	if err := DB.Preload("Invitations").First(&ev, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "event not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, eventView(ev))
}

type UpdateEventRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	StartDate       string `json:"startDate" binding:"required"`
	EndDate         string `json:"endDate" binding:"required"`
	MaxTasksPerUser int    `json:"maxTasksPerUser" binding:"required"`
	IsActive        *bool  `json:"isActive"`
}

func UpdateEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var ev Event
	if err := DB.First(&ev, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "event not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	var body UpdateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		jsonError(c, http.StatusBadRequest, "event name is required")
		return
	}

	start, err := parseDate(body.StartDate)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid startDate format")
		return
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid endDate format")
		return
	}
	if !end.After(start) {
		jsonError(c, http.StatusBadRequest, "end date must be after start date")
		return
	}
	if body.MaxTasksPerUser < 1 {
		jsonError(c, http.StatusBadRequest, "maxTasksPerUser must be at least 1")
		return
	}

	ev.Name = name
	ev.Description = body.Description
	ev.StartDate = start
	ev.EndDate = end
	ev.MaxTasksPerUser = body.MaxTasksPerUser
	if body.IsActive != nil {
		ev.IsActive = *body.IsActive
	}

	if err := DB.Save(&ev).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "could not update event: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, eventView(ev))
}

// UpdateEventStatus accepts a raw JSON-encoded bool body, matching the
// PATCH /admin/events/:id/status wire contract.
func UpdateEventStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "could not read body")
		return
	}
	var isActive bool
	if err := json.Unmarshal(raw, &isActive); err != nil {
		jsonError(c, http.StatusBadRequest, "body must be a JSON boolean")
		return
	}

	var ev Event
	if err := DB.First(&ev, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "event not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	ev.IsActive = isActive
	if err := DB.Save(&ev).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "could not update status: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, eventView(ev))
}

func DeleteEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var ev Event
	if err := DB.First(&ev, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "event not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	// The event owns everything below it: invitations, tasks, assignments,
	// submissions and their files all go in one transaction.
	var staleKeys []string
	if err := DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&Task{}).Where("event_id = ?", ev.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			var assignmentIDs []uint
			if err := tx.Model(&TaskAssignment{}).Where("task_id IN ?", taskIDs).Pluck("id", &assignmentIDs).Error; err != nil {
				return err
			}

			if len(assignmentIDs) > 0 {
				var submissionIDs []uint
				if err := tx.Model(&Submission{}).Where("task_assignment_id IN ?", assignmentIDs).Pluck("id", &submissionIDs).Error; err != nil {
					return err
				}

				if len(submissionIDs) > 0 {
					if err := tx.Model(&SubmissionFile{}).Where("submission_id IN ?", submissionIDs).Pluck("storage_key", &staleKeys).Error; err != nil {
						return err
					}
					if err := tx.Where("submission_id IN ?", submissionIDs).Delete(&SubmissionFile{}).Error; err != nil {
						return err
					}
					if err := tx.Where("id IN ?", submissionIDs).Delete(&Submission{}).Error; err != nil {
						return err
					}
				}

				if err := tx.Where("id IN ?", assignmentIDs).Delete(&TaskAssignment{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("id IN ?", taskIDs).Delete(&Task{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("event_id = ?", ev.ID).Delete(&Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Event{}, ev.ID).Error
	}); err != nil {
		jsonError(c, http.StatusInternalServerError, "delete failed: "+err.Error())
		return
	}

	// Blob cleanup is best-effort once the rows are gone.
	for _, key := range staleKeys {
		FileStore.Remove(key)
	}

	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}
