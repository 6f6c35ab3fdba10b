package reward

import (
	"context"
	"strconv"
	"testing"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/progress"
)

type fakeRepo struct {
	rewards     map[string]Reward
	redemptions map[string]Redemption
	nextID      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rewards: make(map[string]Reward), redemptions: make(map[string]Redemption)}
}

func (r *fakeRepo) QueryRewards(_ context.Context, activeOnly bool) ([]Reward, error) {
	var out []Reward
	for _, rwd := range r.rewards {
		if !activeOnly || rwd.IsActive {
			out = append(out, rwd)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetRewardByID(_ context.Context, id string) (Reward, error) {
	if rwd, ok := r.rewards[id]; ok {
		return rwd, nil
	}
	return Reward{}, ErrNotFound
}

func (r *fakeRepo) CreateReward(_ context.Context, rwd Reward) (Reward, error) {
	r.nextID++
	rwd.ID = "r" + strconv.Itoa(r.nextID)
	r.rewards[rwd.ID] = rwd
	return rwd, nil
}

func (r *fakeRepo) UpdateReward(_ context.Context, rwd Reward) (Reward, error) {
	r.rewards[rwd.ID] = rwd
	return rwd, nil
}

func (r *fakeRepo) DeleteReward(_ context.Context, id string) error {
	delete(r.rewards, id)
	return nil
}

func (r *fakeRepo) CreateRedemption(_ context.Context, red Redemption) (Redemption, error) {
	r.nextID++
	red.ID = "red" + strconv.Itoa(r.nextID)
	r.redemptions[red.ID] = red
	return red, nil
}

func (r *fakeRepo) GetRedemptionByID(_ context.Context, id string) (Redemption, error) {
	if red, ok := r.redemptions[id]; ok {
		return red, nil
	}
	return Redemption{}, ErrNotFound
}

func (r *fakeRepo) QueryRedemptions(_ context.Context, userID string) ([]Redemption, error) {
	var out []Redemption
	for _, red := range r.redemptions {
		if userID == "" || red.UserID == userID {
			out = append(out, red)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateRedemption(_ context.Context, red Redemption) (Redemption, error) {
	r.redemptions[red.ID] = red
	return red, nil
}

// minimal profile store backing the balance check
type fakeProfileRepo struct {
	profiles map[string]progress.Profile
}

func (r *fakeProfileRepo) GetProfileByUserID(_ context.Context, userID string) (progress.Profile, error) {
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	return progress.Profile{}, progress.ErrProfileNotFound
}

func (r *fakeProfileRepo) CreateProfile(_ context.Context, p progress.Profile) (progress.Profile, error) {
	r.profiles[p.UserID] = p
	return p, nil
}

func (r *fakeProfileRepo) UpdateProfile(_ context.Context, p progress.Profile, _ ...core.DBExecutor) (progress.Profile, error) {
	r.profiles[p.UserID] = p
	return p, nil
}

func (r *fakeProfileRepo) QueryTopProfiles(context.Context, int) ([]progress.Profile, error) {
	return nil, nil
}

type noopProgressRepo struct{}

func (noopProgressRepo) GetProgress(context.Context, string, string) (progress.Progress, error) {
	return progress.Progress{}, progress.ErrNotFound
}
func (noopProgressRepo) QueryUserProgress(context.Context, string) ([]progress.Progress, error) {
	return nil, nil
}
func (noopProgressRepo) UpsertProgress(_ context.Context, p progress.Progress, _ ...core.DBExecutor) (progress.Progress, error) {
	return p, nil
}

type noopCatalogRepo struct{ catalog.Repository }

func setup(xp int) (*Service, *fakeRepo) {
	profRepo := &fakeProfileRepo{profiles: map[string]progress.Profile{
		"user1": {ID: "p1", UserID: "user1", XP: xp, Level: 1},
	}}
	progressSvc := progress.NewService(nil, noopProgressRepo{}, profRepo, catalog.NewService(noopCatalogRepo{}))

	repo := newFakeRepo()
	return NewService(repo, progressSvc), repo
}

func TestService_Redeem(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(120)

	rwd, err := svc.Create(ctx, NewReward{Title: "Movie Voucher", XPCost: 100, IsActive: true})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	red, err := svc.Redeem(ctx, "user1", rwd.ID)
	if err != nil {
		t.Fatalf("Redeem() failed: %v", err)
	}
	if red.Status != StatusPending {
		t.Errorf("status = %q; want %q", red.Status, StatusPending)
	}
	if red.UserID != "user1" || red.RewardID != rwd.ID {
		t.Errorf("redemption = %+v", red)
	}
}

func TestService_Redeem_insufficientXP(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(50)

	rwd, err := svc.Create(ctx, NewReward{Title: "Movie Voucher", XPCost: 100, IsActive: true})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = svc.Redeem(ctx, "user1", rwd.ID); err != ErrInsufficientXP {
		t.Errorf("err = %v; want ErrInsufficientXP", err)
	}
}

func TestService_Redeem_inactiveReward(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(500)

	rwd, err := svc.Create(ctx, NewReward{Title: "Retired", XPCost: 100, IsActive: false})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = svc.Redeem(ctx, "user1", rwd.ID); err != ErrInactive {
		t.Errorf("err = %v; want ErrInactive", err)
	}
	if _, err = svc.Redeem(ctx, "user1", "missing"); err != ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(500)

	rwd, err := svc.Create(ctx, NewReward{Title: "Voucher", XPCost: 100, IsActive: true, VoucherCodes: []string{"CODE-1", "CODE-2"}})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	red, err := svc.Redeem(ctx, "user1", rwd.ID)
	if err != nil {
		t.Fatalf("Redeem() failed: %v", err)
	}

	red, err = svc.SetStatus(ctx, red.ID, StatusFulfilled)
	if err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}
	if red.Status != StatusFulfilled || red.VoucherCode != "CODE-1" {
		t.Errorf("redemption = %+v; want fulfilled with CODE-1", red)
	}
	if got := repo.rewards[rwd.ID].VoucherCodes; len(got) != 1 || got[0] != "CODE-2" {
		t.Errorf("remaining codes = %v; want [CODE-2]", got)
	}

	if _, err = svc.SetStatus(ctx, red.ID, "bogus"); err != ErrInvalidStatus {
		t.Errorf("err = %v; want ErrInvalidStatus", err)
	}
}
