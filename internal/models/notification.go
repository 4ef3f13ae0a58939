package models

import "time"

// NotificationTypeEditing marks review notifications raised when an
// employee submits a product edit.
const NotificationTypeEditing = "editing"

// Notification is an ephemeral review message addressed to a role.
// It is created when a draft is submitted and deleted when the draft
// is approved or rejected.
type Notification struct {
	ID           string    `db:"id" json:"id"`
	Message      string    `db:"message" json:"message"`
	Type         string    `db:"type" json:"type"`
	SenderID     string    `db:"sender_id" json:"senderId"`
	ReceiverRole string    `db:"receiver_role" json:"receiverRole"`
	RelatedID    string    `db:"related_id" json:"relatedId"`
	Read         bool      `db:"read" json:"read"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
}
