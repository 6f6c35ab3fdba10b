package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/finquest/finquest/core"
)

// Notification types
const (
	TypeGeneral      = "general"
	TypeAnnouncement = "announcement"
	TypeReminder     = "reminder"
)

// Notification is a staff broadcast record. Delivery (push/email) happens
// out-of-band; this service only tracks the record and its sent state.
type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsSent    bool       `json:"is_sent"`
	SentAt    *time.Time `json:"sent_at"`    // UTC
	CreatedAt time.Time  `json:"created_at"` // UTC
}

// NewNotification contains information needed to create a new Notification.
type NewNotification struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=general announcement reminder"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	if nn.Type == "" {
		nn.Type = TypeGeneral
	}
	return validate.Struct(nn)
}
