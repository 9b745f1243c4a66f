package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/licimar/licimar-backend/pkg/config"
	"github.com/licimar/licimar-backend/pkg/enums"
)

var testJWTCfg = config.JWTConfig{
	Secret:            "test-secret-do-not-reuse",
	Issuer:            "licimar",
	ExpirationMinutes: 15,
}

func TestMintAndParseRoundTrip(t *testing.T) {
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "carlos",
		Role:     enums.UserRoleOperator,
		JTI:      "session-123",
	}

	token, err := MintAccessToken(testJWTCfg, time.Now().UTC(), payload)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(testJWTCfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("expected user id %s, got %s", payload.UserID, claims.UserID)
	}
	if claims.Username != "carlos" {
		t.Fatalf("expected username carlos, got %s", claims.Username)
	}
	if claims.Role != enums.UserRoleOperator {
		t.Fatalf("expected operator role, got %s", claims.Role)
	}
	if claims.ID != "session-123" {
		t.Fatalf("expected jti preserved, got %s", claims.ID)
	}
}

func TestMintGeneratesJTIWhenEmpty(t *testing.T) {
	token, err := MintAccessToken(testJWTCfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	claims, err := ParseAccessToken(testJWTCfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testJWTCfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRole("root"),
	})
	if err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTCfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleOperator,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := testJWTCfg
	other.Secret = "a-different-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := MintAccessToken(testJWTCfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleOperator,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := testJWTCfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}

func TestExpiredTokenParsesOnlyWithAllowExpired(t *testing.T) {
	issuedAt := time.Now().UTC().Add(-2 * time.Hour)
	token, err := MintAccessToken(testJWTCfg, issuedAt, AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleOperator,
		JTI:    "expired-session",
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	if _, err := ParseAccessToken(testJWTCfg, token); err == nil {
		t.Fatal("expected strict parse to reject expired token")
	}

	claims, err := ParseAccessTokenAllowExpired(testJWTCfg, token)
	if err != nil {
		t.Fatalf("ParseAccessTokenAllowExpired: %v", err)
	}
	if claims.ID != "expired-session" {
		t.Fatalf("expected jti from expired token, got %s", claims.ID)
	}
}
