package user

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	secretKey = []byte("secret")
	passwordResetTimeoutDelta = 3 * 24 * time.Hour

	now := time.Now()
	usr := User{
		ID:        "3c6e7e4a-0b3f-4a21-9f1e-1b7c9b1f2a10",
		Name:      "T",
		Username:  "t",
		Email:     "t@test.test",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken, err := MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := passwordResetTimeoutDelta + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	nowFunc = time.Now // reset

	otherUsr := usr
	otherUsr.ID = "b19c9a44-55f7-4f0a-8da3-37a1de8f5f10"

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "valid token", usr: usr, token: validToken},
		{name: "empty token", usr: usr, token: "", wantErr: errInvalidToken},
		{name: "malformed token", usr: usr, token: "not-a-real-token", wantErr: errInvalidToken},
		{name: "token for another user", usr: otherUsr, token: validToken, wantErr: errInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: errTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMakeToken_invalidatedByPasswordChange(t *testing.T) {
	secretKey = []byte("secret")
	passwordResetTimeoutDelta = 3 * 24 * time.Hour

	usr := User{ID: "3c6e7e4a-0b3f-4a21-9f1e-1b7c9b1f2a10"}
	_ = usr.SetPassword("oldpwd")

	token, err := MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	if err = verifyToken(usr, token); err != nil {
		t.Fatalf("verifyToken() before use failed: %v", err)
	}

	_ = usr.SetPassword("newpwd")
	if err = verifyToken(usr, token); err != errInvalidToken {
		t.Errorf("verifyToken() after password change = %v; want errInvalidToken", err)
	}
}
