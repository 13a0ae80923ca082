// Package share implements the share-request workflow: a pending request is
// answered exactly once, and accepting it clones the checklist to the receiver.
package share

import (
	"context"
	"strings"

	"checklist-api/internal/apperr"
	"checklist-api/internal/clone"
	"checklist-api/internal/models"
	"checklist-api/pkg/logger"
)

type Requests interface {
	Create(ctx context.Context, r *models.ShareRequest) error
	Get(ctx context.Context, id string) (*models.ShareRequest, error)
	ListPending(ctx context.Context, receiverID string) ([]models.PendingShare, error)
	Transition(ctx context.Context, id string, from, to models.ShareStatus) (*models.ShareRequest, bool, error)
}

type Profiles interface {
	GetByName(ctx context.Context, name string) (*models.Profile, error)
}

type Checklists interface {
	Get(ctx context.Context, id string) (*models.Checklist, error)
}

type Cloner interface {
	Clone(ctx context.Context, sourceID, ownerID string) (*clone.Result, error)
}

type Action string

const (
	Accept Action = "accept"
	Reject Action = "reject"
)

// ParseAction accepts "accept"/"accepted" and "reject"/"rejected".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "accepted":
		return Accept, nil
	case "reject", "rejected":
		return Reject, nil
	}
	return "", apperr.Validation("action must be accept or reject")
}

// Outcome is the result of responding to a request. Checklist is set on accept.
type Outcome struct {
	Request   *models.ShareRequest `json:"request"`
	Checklist *models.Checklist    `json:"checklist,omitempty"`
}

type Service struct {
	requests   Requests
	profiles   Profiles
	checklists Checklists
	cloner     Cloner
}

func NewService(requests Requests, profiles Profiles, checklists Checklists, cloner Cloner) *Service {
	return &Service{requests: requests, profiles: profiles, checklists: checklists, cloner: cloner}
}

// Create offers checklistID, owned by senderID, to the profile named receiverName.
func (s *Service) Create(ctx context.Context, checklistID, senderID, receiverName string) (*models.ShareRequest, error) {
	receiver, err := s.profiles.GetByName(ctx, receiverName)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("receiver profile not found")
		}
		return nil, err
	}
	checklist, err := s.checklists.Get(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if checklist.ProfileID != senderID {
		return nil, apperr.Validation("checklist does not belong to sender")
	}
	if receiver.ID == senderID {
		return nil, apperr.Validation("cannot share a checklist with yourself")
	}
	req := &models.ShareRequest{
		ChecklistID: checklistID,
		SenderID:    senderID,
		ReceiverID:  receiver.ID,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Share request created", "id", req.ID, "checklist_id", checklistID, "receiver_id", receiver.ID)
	return req, nil
}

func (s *Service) ListPending(ctx context.Context, receiverID string) ([]models.PendingShare, error) {
	return s.requests.ListPending(ctx, receiverID)
}

// Respond answers a pending request. The status change is claimed first with a
// conditional update, so a request is answered at most once even when responses
// race. When receiverID is non-empty it must match the request's receiver.
//
// An accepted request stays accepted even when the clone behind it fails; any
// partial copy already written stays too. The clone ignores cancellation of ctx
// so a client disconnect cannot cut a copy short.
func (s *Service) Respond(ctx context.Context, requestID, receiverID string, action Action) (*Outcome, error) {
	current, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if receiverID != "" && current.ReceiverID != receiverID {
		return nil, apperr.Validation("share request is not addressed to this profile")
	}
	if current.Status != models.SharePending {
		return nil, apperr.Validation("share request already processed")
	}

	to := models.ShareRejected
	if action == Accept {
		to = models.ShareAccepted
	}
	req, ok, err := s.requests.Transition(ctx, requestID, models.SharePending, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validation("share request already processed")
	}
	if to == models.ShareRejected {
		logger.Info(ctx, "Share request rejected", "id", requestID)
		return &Outcome{Request: req}, nil
	}

	res, err := s.cloner.Clone(context.WithoutCancel(ctx), req.ChecklistID, req.ReceiverID)
	if err != nil {
		logger.Error(ctx, "Share clone failed", "error", err, "id", requestID)
		return nil, err
	}
	logger.Info(ctx, "Share request accepted", "id", requestID, "checklist_id", res.Checklist.ID)
	return &Outcome{Request: req, Checklist: res.Checklist}, nil
}
