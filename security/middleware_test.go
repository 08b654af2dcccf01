package security

import (
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "test-access-secret")

	token, err := SignAccessToken("user-123")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	userID, err := VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want user-123", userID)
	}
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "test-access-secret")

	if _, err := VerifyAccessToken("not-a-token"); err == nil {
		t.Error("garbage token should be rejected")
	}
}

func TestVerifyAccessTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret-a")
	token, err := SignAccessToken("user-123")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	t.Setenv("JWT_ACCESS_SECRET", "secret-b")
	if _, err := VerifyAccessToken(token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestVerifyRefreshTokenRejectsAccessToken(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "same-secret")
	t.Setenv("JWT_REFRESH_SECRET", "same-secret")

	// Same signing secret, wrong type claim
	token, err := SignAccessToken("user-123")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := VerifyRefreshToken(token); err == nil {
		t.Error("access token should not pass refresh verification")
	}
}
