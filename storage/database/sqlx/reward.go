package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/reward"
)

type rewardRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Icon         string         `db:"icon"`
	XPCost       int            `db:"xp_cost"`
	IsActive     bool           `db:"is_active"`
	VoucherCodes pq.StringArray `db:"voucher_codes"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r rewardRow) model() reward.Reward {
	return reward.Reward{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Icon:         r.Icon,
		XPCost:       r.XPCost,
		IsActive:     r.IsActive,
		VoucherCodes: r.VoucherCodes,
		CreatedAt:    r.CreatedAt,
	}
}

type redemptionRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	RewardID    string    `db:"reward_id"`
	Status      string    `db:"status"`
	VoucherCode string    `db:"voucher_code"`
	RedeemedAt  time.Time `db:"redeemed_at"`
}

func (r redemptionRow) model() reward.Redemption {
	return reward.Redemption(r)
}

type rewardRepository struct {
	db *sqlx.DB
}

var _ reward.Repository = (*rewardRepository)(nil) // interface compliance check

func NewRewardRepository(db *sqlx.DB) reward.Repository {
	return &rewardRepository{db: db}
}

func (repo *rewardRepository) QueryRewards(ctx context.Context, activeOnly bool) ([]reward.Reward, error) {
	query := `SELECT * FROM reward`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY xp_cost, created_at`

	var rows []rewardRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying rewards")
	}
	rewards := make([]reward.Reward, 0, len(rows))
	for _, row := range rows {
		rewards = append(rewards, row.model())
	}
	return rewards, nil
}

func (repo *rewardRepository) GetRewardByID(ctx context.Context, id string) (reward.Reward, error) {
	var row rewardRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM reward WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return reward.Reward{}, reward.ErrNotFound
		}
		return reward.Reward{}, errors.Wrap(err, "getting reward")
	}
	return row.model(), nil
}

func (repo *rewardRepository) CreateReward(ctx context.Context, rwd reward.Reward) (reward.Reward, error) {
	var row rewardRow
	query := `
INSERT INTO reward (title, description, icon, xp_cost, is_active, voucher_codes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		rwd.Title, rwd.Description, rwd.Icon, rwd.XPCost, rwd.IsActive,
		pq.Array(rwd.VoucherCodes), rwd.CreatedAt,
	)
	if err != nil {
		return reward.Reward{}, errors.Wrap(err, "creating reward")
	}
	return row.model(), nil
}

func (repo *rewardRepository) UpdateReward(ctx context.Context, rwd reward.Reward) (reward.Reward, error) {
	var row rewardRow
	query := `
UPDATE reward
SET title = $2, description = $3, icon = $4, xp_cost = $5, is_active = $6, voucher_codes = $7
WHERE id = $1
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		rwd.ID, rwd.Title, rwd.Description, rwd.Icon, rwd.XPCost, rwd.IsActive,
		pq.Array(rwd.VoucherCodes),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return reward.Reward{}, reward.ErrNotFound
		}
		return reward.Reward{}, errors.Wrap(err, "updating reward")
	}
	return row.model(), nil
}

func (repo *rewardRepository) DeleteReward(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM reward WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting reward")
	}
	return nil
}

func (repo *rewardRepository) CreateRedemption(ctx context.Context, red reward.Redemption) (reward.Redemption, error) {
	var row redemptionRow
	query := `
INSERT INTO redemption (user_id, reward_id, status, voucher_code, redeemed_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		red.UserID, red.RewardID, red.Status, red.VoucherCode, red.RedeemedAt,
	)
	if err != nil {
		return reward.Redemption{}, errors.Wrap(err, "creating redemption")
	}
	return row.model(), nil
}

func (repo *rewardRepository) GetRedemptionByID(ctx context.Context, id string) (reward.Redemption, error) {
	var row redemptionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM redemption WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return reward.Redemption{}, reward.ErrNotFound
		}
		return reward.Redemption{}, errors.Wrap(err, "getting redemption")
	}
	return row.model(), nil
}

func (repo *rewardRepository) QueryRedemptions(ctx context.Context, userID string) ([]reward.Redemption, error) {
	query := `SELECT * FROM redemption`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY redeemed_at DESC`

	var rows []redemptionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying redemptions")
	}
	reds := make([]reward.Redemption, 0, len(rows))
	for _, row := range rows {
		reds = append(reds, row.model())
	}
	return reds, nil
}

func (repo *rewardRepository) UpdateRedemption(ctx context.Context, red reward.Redemption) (reward.Redemption, error) {
	var row redemptionRow
	query := `
UPDATE redemption
SET status = $2, voucher_code = $3
WHERE id = $1
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query, red.ID, red.Status, red.VoucherCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return reward.Redemption{}, reward.ErrNotFound
		}
		return reward.Redemption{}, errors.Wrap(err, "updating redemption")
	}
	return row.model(), nil
}
