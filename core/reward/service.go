package reward

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/finquest/finquest/core/progress"
)

var (
	// errors
	ErrNotFound       = errors.New("reward not found")
	ErrInactive       = errors.New("reward is not active")
	ErrInsufficientXP = errors.New("not enough XP to redeem this reward")
	ErrInvalidStatus  = errors.New("invalid redemption status")
)

type (
	Repository interface {
		QueryRewards(ctx context.Context, activeOnly bool) ([]Reward, error)
		GetRewardByID(ctx context.Context, id string) (Reward, error)
		CreateReward(ctx context.Context, rwd Reward) (Reward, error)
		UpdateReward(ctx context.Context, rwd Reward) (Reward, error)
		DeleteReward(ctx context.Context, id string) error

		CreateRedemption(ctx context.Context, red Redemption) (Redemption, error)
		GetRedemptionByID(ctx context.Context, id string) (Redemption, error)
		QueryRedemptions(ctx context.Context, userID string) ([]Redemption, error)
		UpdateRedemption(ctx context.Context, red Redemption) (Redemption, error)
	}

	Service struct {
		repo        Repository
		progressSvc *progress.Service
	}
)

func NewService(repo Repository, progressSvc *progress.Service) *Service {
	return &Service{repo: repo, progressSvc: progressSvc}
}

// QueryActive returns the rewards currently redeemable.
func (svc *Service) QueryActive(ctx context.Context) ([]Reward, error) {
	return svc.repo.QueryRewards(ctx, true)
}

// QueryAll returns every reward. Admin use.
func (svc *Service) QueryAll(ctx context.Context) ([]Reward, error) {
	return svc.repo.QueryRewards(ctx, false)
}

// Redeem records a pending redemption request for the user. The XP balance
// is checked at request time only; XP is not decremented nor reserved, and
// fulfillment happens out-of-band. Two borderline concurrent requests can
// therefore both pass the check (see DESIGN.md).
func (svc *Service) Redeem(ctx context.Context, userID, rewardID string) (Redemption, error) {
	rwd, err := svc.repo.GetRewardByID(ctx, rewardID)
	if err != nil {
		return Redemption{}, err
	}
	if !rwd.IsActive {
		return Redemption{}, ErrInactive
	}

	profile, err := svc.progressSvc.GetProfile(ctx, userID)
	if err != nil {
		return Redemption{}, pkgerrors.Wrap(err, "getting profile")
	}
	if profile.XP < rwd.XPCost {
		return Redemption{}, ErrInsufficientXP
	}

	red := Redemption{
		UserID:     userID,
		RewardID:   rewardID,
		Status:     StatusPending,
		RedeemedAt: time.Now().UTC(),
	}
	return svc.repo.CreateRedemption(ctx, red)
}

// QueryRedemptions returns redemptions, optionally filtered to one user
// (empty userID returns all; admin use).
func (svc *Service) QueryRedemptions(ctx context.Context, userID string) ([]Redemption, error) {
	return svc.repo.QueryRedemptions(ctx, userID)
}

// SetStatus moves a redemption to the given status. Fulfilling draws a
// voucher code from the reward's pool when one is available.
func (svc *Service) SetStatus(ctx context.Context, id, status string) (Redemption, error) {
	if !IsValidStatus(status) {
		return Redemption{}, ErrInvalidStatus
	}
	red, err := svc.repo.GetRedemptionByID(ctx, id)
	if err != nil {
		return Redemption{}, err
	}

	if status == StatusFulfilled && red.VoucherCode == "" {
		rwd, err := svc.repo.GetRewardByID(ctx, red.RewardID)
		if err != nil {
			return Redemption{}, err
		}
		if len(rwd.VoucherCodes) > 0 {
			red.VoucherCode = rwd.VoucherCodes[0]
			rwd.VoucherCodes = rwd.VoucherCodes[1:]
			if _, err = svc.repo.UpdateReward(ctx, rwd); err != nil {
				return Redemption{}, pkgerrors.Wrap(err, "consuming voucher code")
			}
		}
	}

	red.Status = status
	return svc.repo.UpdateRedemption(ctx, red)
}

func (svc *Service) Create(ctx context.Context, nr NewReward) (Reward, error) {
	rwd := Reward{
		Title:        nr.Title,
		Description:  nr.Description,
		Icon:         nr.Icon,
		XPCost:       nr.XPCost,
		IsActive:     nr.IsActive,
		VoucherCodes: nr.VoucherCodes,
		CreatedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateReward(ctx, rwd)
}

func (svc *Service) Update(ctx context.Context, id string, ur UpdateReward) (Reward, error) {
	rwd, err := svc.repo.GetRewardByID(ctx, id)
	if err != nil {
		return Reward{}, err
	}
	if ur.Title != "" {
		rwd.Title = ur.Title
	}
	if ur.Description != "" {
		rwd.Description = ur.Description
	}
	if ur.Icon != "" {
		rwd.Icon = ur.Icon
	}
	if ur.XPCost != nil {
		rwd.XPCost = *ur.XPCost
	}
	if ur.IsActive != nil {
		rwd.IsActive = *ur.IsActive
	}
	if ur.VoucherCodes != nil {
		rwd.VoucherCodes = ur.VoucherCodes
	}
	return svc.repo.UpdateReward(ctx, rwd)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteReward(ctx, id)
}
