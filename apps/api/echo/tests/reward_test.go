package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/finquest/finquest/core/reward"
	"github.com/finquest/finquest/core/user"
	testutil "github.com/finquest/finquest/tests"
)

func Test_rewardApi_query(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	active := testutil.CreateReward(t, rewardRepo, "Movie ticket", 50, true)
	testutil.CreateReward(t, rewardRepo, "Retired voucher", 10, false)

	tests := []httpTest{
		{name: "Auth required", path: "/api/rewards", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Active only", path: "/api/rewards", token: getToken(t, student), wantCode: http.StatusOK,
			wantData: marchallList(t, active),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_rewardApi_redeem(t *testing.T) {
	app := setup(t)

	rich := testutil.CreateUser(t, usrRepo, "Rich", "rich", "rich@test.cd", "", []string{user.RoleStudent}, true)
	broke := testutil.CreateUser(t, usrRepo, "Broke", "broke", "broke@test.cd", "", []string{user.RoleStudent}, true)
	testutil.CreateProfile(t, profileRepo, rich.ID, rich.Name, 120, 3, nil)
	testutil.CreateProfile(t, profileRepo, broke.ID, broke.Name, 10, 1, nil)

	rwd := testutil.CreateReward(t, rewardRepo, "Movie ticket", 50, true, "CODE-1")
	inactive := testutil.CreateReward(t, rewardRepo, "Retired voucher", 10, false)

	tests := []httpTest{
		{
			name: "Unknown reward", path: "/api/rewards/lol/redeem", token: getToken(t, rich),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Inactive reward", path: "/api/rewards/" + inactive.ID + "/redeem", token: getToken(t, rich),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: reward.ErrInactive.Error()}),
		},
		{
			name: "Not enough XP", path: "/api/rewards/" + rwd.ID + "/redeem", token: getToken(t, broke),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: reward.ErrInsufficientXP.Error()}),
		},
		{name: "Redeemed", path: "/api/rewards/" + rwd.ID + "/redeem", token: getToken(t, rich), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
				}
				var red reward.Redemption
				if err := json.Unmarshal(rec.Body.Bytes(), &red); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if red.Status != reward.StatusPending {
					t.Errorf("failed! status = %q; want %q", red.Status, reward.StatusPending)
				}
				if red.UserID != rich.ID || red.RewardID != rwd.ID {
					t.Errorf("failed! userID = %q, rewardID = %q", red.UserID, red.RewardID)
				}
				if red.VoucherCode != "" {
					t.Error("failed! voucher code assigned before fulfillment")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("My redemptions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/me/redemptions", getToken(t, rich), nil)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var reds []reward.Redemption
		if err := json.Unmarshal(rec.Body.Bytes(), &reds); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(reds) != 1 {
			t.Fatalf("failed! len(reds) = %d; want 1", len(reds))
		}

		// other users see nothing
		req, rec = newAuthRequest(http.MethodGet, "/api/me/redemptions", getToken(t, broke), nil)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		reds = nil
		if err := json.Unmarshal(rec.Body.Bytes(), &reds); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(reds) != 0 {
			t.Errorf("failed! len(reds) = %d; want 0", len(reds))
		}
	})
}
