package client

import (
	"context"
	"errors"
	"fmt"
)

// ErrAlreadyResponded guards the Pending -> Accepted/Declined transition:
// an invitation may be responded to exactly once.
var ErrAlreadyResponded = errors.New("invitation has already been responded to")

// InvitationService wraps the /invitations endpoints.
type InvitationService struct {
	client *Client
}

func NewInvitationService(c *Client) *InvitationService {
	return &InvitationService{client: c}
}

func (s *InvitationService) MyInvitations(ctx context.Context) ([]Invitation, error) {
	var invitations []Invitation
	if err := s.client.GetJSON(ctx, "/api/invitations/my-invitations", &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (s *InvitationService) PendingInvitations(ctx context.Context) ([]Invitation, error) {
	var invitations []Invitation
	if err := s.client.GetJSON(ctx, "/api/invitations/my-invitations/pending", &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (s *InvitationService) Invitation(ctx context.Context, invitationID uint) (*Invitation, error) {
	var invitation Invitation
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/invitations/%d", invitationID), &invitation); err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Respond accepts or declines a pending invitation with a single request.
// A non-Pending invitation is rejected locally before any network call.
// On failure the passed invitation is left untouched; on success its
// status and response timestamp are updated in place.
func (s *InvitationService) Respond(ctx context.Context, invitation *Invitation, accept bool) error {
	if invitation.Status != InvitationPending {
		return ErrAlreadyResponded
	}

	var updated Invitation
	err := s.client.SendJSON(ctx, "POST",
		fmt.Sprintf("/api/invitations/%d/respond", invitation.ID),
		map[string]bool{"accept": accept}, &updated)
	if err != nil {
		return err
	}

	invitation.Status = updated.Status
	invitation.ResponseAt = updated.ResponseAt
	return nil
}

// AcceptedInvitation returns the invitation that unlocks task creation for
// the given event, or nil when none exists. The caller re-derives this
// after every invitation refresh.
func AcceptedInvitation(invitations []Invitation, eventID uint) *Invitation {
	for i := range invitations {
		if invitations[i].Status == InvitationAccepted &&
			(eventID == 0 || invitations[i].EventID == eventID) {
			return &invitations[i]
		}
	}
	return nil
}
