package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// -----------------------------
// Invitations
// -----------------------------

func invitationView(inv Invitation, eventName string) InvitationView {
	return InvitationView{
		ID:              inv.ID,
		EventID:         inv.EventID,
		EventName:       eventName,
		ChrisMaUsername: inv.ChrisMaUsername,
		Status:          inv.Status,
		InvitedAt:       inv.InvitedAt,
		ResponseAt:      inv.ResponseAt,
	}
}

func listInvitations(c *gin.Context, pendingOnly bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	query := DB.Preload("Event").Where("user_id = ?", userID)
	if pendingOnly {
		query = query.Where("status = ?", InvitationPending)
	}

	var invitations []Invitation
	if err := query.Order("invited_at desc").Find(&invitations).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	views := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		views = append(views, invitationView(inv, inv.Event.Name))
	}
	c.JSON(http.StatusOK, views)
}

func GetMyInvitations(c *gin.Context) {
	listInvitations(c, false)
}

func GetPendingInvitations(c *gin.Context) {
	listInvitations(c, true)
}

func GetInvitation(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var inv Invitation
	if err := DB.Preload("Event").First(&inv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "invitation not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	if inv.UserID != userID {
		jsonError(c, http.StatusForbidden, "this invitation belongs to someone else")
		return
	}

	c.JSON(http.StatusOK, invitationView(inv, inv.Event.Name))
}

type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// RespondToInvitation moves a Pending invitation to Accepted or Declined,
// exactly once. Responding twice is a conflict, never an overwrite.
func RespondToInvitation(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body RespondRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	var inv Invitation
	if err := DB.Preload("Event").First(&inv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "invitation not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	if inv.UserID != userID {
		jsonError(c, http.StatusForbidden, "this invitation belongs to someone else")
		return
	}

	if inv.Status != InvitationPending {
		jsonError(c, http.StatusConflict, "invitation has already been responded to")
		return
	}

	now := time.Now()
	if *body.Accept {
		inv.Status = InvitationAccepted
	} else {
		inv.Status = InvitationDeclined
	}
	inv.ResponseAt = &now

	if err := DB.Save(&inv).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "could not update invitation: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, invitationView(inv, inv.Event.Name))
}
