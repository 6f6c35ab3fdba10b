package reward

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/finquest/finquest/core"
)

// Redemption statuses
const (
	StatusPending   = "pending"
	StatusFulfilled = "fulfilled"
	StatusRejected  = "rejected"
)

var redemptionStatuses = []string{StatusPending, StatusFulfilled, StatusRejected}

func IsValidStatus(status string) bool {
	for _, s := range redemptionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Reward struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	XPCost       int       `json:"xp_cost"`
	IsActive     bool      `json:"is_active"`
	VoucherCodes []string  `json:"-"` // pool drawn from on fulfillment; never exposed
	CreatedAt    time.Time `json:"created_at"` // UTC
}

type Redemption struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	RewardID    string    `json:"reward_id"`
	Status      string    `json:"status"`
	VoucherCode string    `json:"voucher_code,omitempty"`
	RedeemedAt  time.Time `json:"redeemed_at"` // UTC
}

// NewReward contains information needed to create a new Reward.
type NewReward struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	XPCost       int      `json:"xp_cost" validate:"required,gt=0"`
	IsActive     bool     `json:"is_active"`
	VoucherCodes []string `json:"voucher_codes"`
}

func (nr *NewReward) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	return validate.Struct(nr)
}

// UpdateReward defines what information may be provided to modify an existing Reward.
type UpdateReward struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	XPCost       *int     `json:"xp_cost" validate:"omitempty,gt=0"`
	IsActive     *bool    `json:"is_active"`
	VoucherCodes []string `json:"voucher_codes"`
}

func (ur *UpdateReward) Validate(validate *validator.Validate) error {
	ur.Title = core.CleanString(ur.Title)
	return validate.Struct(ur)
}
