package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/config"
	"github.com/mknind/backoffice/pkg/enums"
)

var testCfg = config.JWTConfig{Secret: "secret", Issuer: "backoffice"}

func TestMintAndParseAccessToken(t *testing.T) {
	userID := uuid.New()
	token, err := MintAccessToken(testCfg, time.Now(), time.Hour, userID, enums.RoleCustomer)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(testCfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.RoleCustomer {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if !claims.CanActFor(userID) || claims.CanActFor(uuid.New()) {
		t.Fatalf("customer should only act for itself")
	}
}

func TestAdminCanActForAnyone(t *testing.T) {
	claims := &AccessTokenClaims{UserID: uuid.New(), Role: enums.RoleAdmin}
	if !claims.CanActFor(uuid.New()) {
		t.Fatalf("admin should act for any customer")
	}
	var none *AccessTokenClaims
	if none.CanActFor(uuid.New()) {
		t.Fatalf("nil claims act for nobody")
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	userID := uuid.New()
	expired, err := MintAccessToken(testCfg, time.Now().Add(-2*time.Hour), time.Hour, userID, enums.RoleAdmin)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(testCfg, expired); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	other := config.JWTConfig{Secret: "secret", Issuer: "someone-else"}
	foreign, err := MintAccessToken(other, time.Now(), time.Hour, userID, enums.RoleAdmin)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(testCfg, foreign); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}

	wrongKey := config.JWTConfig{Secret: "other", Issuer: "backoffice"}
	forged, _ := MintAccessToken(wrongKey, time.Now(), time.Hour, userID, enums.RoleAdmin)
	if _, err := ParseAccessToken(testCfg, forged); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
}

func TestParseRejectsUnknownRole(t *testing.T) {
	claims := AccessTokenClaims{
		UserID: uuid.New(),
		Role:   "vendor",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testCfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testCfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(testCfg, signed); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}

func TestMintValidatesInput(t *testing.T) {
	if _, err := MintAccessToken(config.JWTConfig{}, time.Now(), time.Hour, uuid.New(), enums.RoleAdmin); err == nil {
		t.Fatalf("expected missing secret error")
	}
	if _, err := MintAccessToken(testCfg, time.Now(), time.Hour, uuid.New(), "owner"); err == nil {
		t.Fatalf("expected invalid role error")
	}
	if _, err := MintAccessToken(testCfg, time.Now(), 0, uuid.New(), enums.RoleAdmin); err == nil {
		t.Fatalf("expected ttl error")
	}
}
