package domain

import "time"

// RecipientRole identifies which party of a parcel a notification targets.
type RecipientRole string

const (
	RecipientSender   RecipientRole = "Sender"
	RecipientReceiver RecipientRole = "Receiver"
)

// Notification is a recorded outbound message simulating SMS delivery.
type Notification struct {
	ID        string
	Timestamp time.Time
	Recipient RecipientRole
	Phone     string
	Message   string
}
