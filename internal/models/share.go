package models

import "time"

type ShareStatus string

const (
	SharePending  ShareStatus = "pending"
	ShareAccepted ShareStatus = "accepted"
	ShareRejected ShareStatus = "rejected"
)

// ShareRequest is an offer from SenderID to copy ChecklistID into ReceiverID's account.
type ShareRequest struct {
	ID          string      `json:"id"`
	ChecklistID string      `json:"checklist_id"`
	SenderID    string      `json:"sender_id"`
	ReceiverID  string      `json:"receiver_id"`
	Status      ShareStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// PendingShare is a pending request joined with what the receiver needs to decide on it.
type PendingShare struct {
	ShareRequest
	ChecklistTitle string  `json:"checklist_title"`
	SenderName     string  `json:"sender_name"`
	SenderAvatar   *string `json:"sender_avatar_url"`
}
