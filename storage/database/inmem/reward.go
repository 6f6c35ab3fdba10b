package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/finquest/finquest/core/reward"
)

type rewardRepository struct {
	db *rewardTable
}

var _ reward.Repository = (*rewardRepository)(nil) // interface compliance check

func NewRewardRepository(db *DB) reward.Repository {
	return &rewardRepository{db: db.reward}
}

func (repo *rewardRepository) QueryRewards(ctx context.Context, activeOnly bool) ([]reward.Reward, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rewards := make([]reward.Reward, 0, len(repo.db.rewards))
	for _, rwd := range repo.db.rewards {
		if activeOnly && !rwd.IsActive {
			continue
		}
		rewards = append(rewards, *rwd)
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].XPCost < rewards[j].XPCost })
	return rewards, nil
}

func (repo *rewardRepository) GetRewardByID(ctx context.Context, id string) (reward.Reward, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rwd, ok := repo.db.rewards[id]; ok {
		return *rwd, nil
	}
	return reward.Reward{}, reward.ErrNotFound
}

func (repo *rewardRepository) CreateReward(ctx context.Context, rwd reward.Reward) (reward.Reward, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rwd.ID = uuid.NewString()
	repo.db.rewards[rwd.ID] = &rwd
	return rwd, nil
}

func (repo *rewardRepository) UpdateReward(ctx context.Context, rwd reward.Reward) (reward.Reward, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.rewards[rwd.ID]
	if !ok {
		return reward.Reward{}, reward.ErrNotFound
	}
	rwd.CreatedAt = orig.CreatedAt
	repo.db.rewards[rwd.ID] = &rwd
	return rwd, nil
}

func (repo *rewardRepository) DeleteReward(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.rewards, id)
	return nil
}

func (repo *rewardRepository) CreateRedemption(ctx context.Context, red reward.Redemption) (reward.Redemption, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	red.ID = uuid.NewString()
	repo.db.redemptions[red.ID] = &red
	return red, nil
}

func (repo *rewardRepository) GetRedemptionByID(ctx context.Context, id string) (reward.Redemption, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if red, ok := repo.db.redemptions[id]; ok {
		return *red, nil
	}
	return reward.Redemption{}, reward.ErrNotFound
}

func (repo *rewardRepository) QueryRedemptions(ctx context.Context, userID string) ([]reward.Redemption, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reds []reward.Redemption
	for _, red := range repo.db.redemptions {
		if userID != "" && red.UserID != userID {
			continue
		}
		reds = append(reds, *red)
	}
	sort.Slice(reds, func(i, j int) bool { return reds[i].RedeemedAt.After(reds[j].RedeemedAt) })
	return reds, nil
}

func (repo *rewardRepository) UpdateRedemption(ctx context.Context, red reward.Redemption) (reward.Redemption, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.redemptions[red.ID]
	if !ok {
		return reward.Redemption{}, reward.ErrNotFound
	}
	red.RedeemedAt = orig.RedeemedAt
	repo.db.redemptions[red.ID] = &red
	return red, nil
}
