package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-16-chars"
const testIssuer = "calen-auth"

// signToken はテスト用のトークンを発行する。
func signToken(t *testing.T, secret string, claims jwt.Claims, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("トークンの署名に失敗: %v", err)
	}
	return signed
}

func validClaims(subject string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func TestNewTokenVerifier_ShortSecret(t *testing.T) {
	if _, err := NewTokenVerifier("short", testIssuer); err == nil {
		t.Fatal("短すぎるシークレットはエラーを返すべき")
	}
}

func TestVerify_ValidToken(t *testing.T) {
	v, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier がエラーを返した: %v", err)
	}

	tokenStr := signToken(t, testSecret, validClaims("user-123"), jwt.SigningMethodHS256)

	userID, err := v.Verify(tokenStr)
	if err != nil {
		t.Fatalf("Verify がエラーを返した: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want user-123", userID)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	v, _ := NewTokenVerifier(testSecret, testIssuer)

	tokenStr := signToken(t, "another-secret-16-chars-long", validClaims("user-123"), jwt.SigningMethodHS256)

	if _, err := v.Verify(tokenStr); err == nil {
		t.Fatal("異なるシークレットで署名されたトークンは拒否されるべき")
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	v, _ := NewTokenVerifier(testSecret, testIssuer)

	claims := validClaims("user-123")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	tokenStr := signToken(t, testSecret, claims, jwt.SigningMethodHS256)

	if _, err := v.Verify(tokenStr); err == nil {
		t.Fatal("期限切れトークンは拒否されるべき")
	}
}

func TestVerify_MissingExpiration(t *testing.T) {
	v, _ := NewTokenVerifier(testSecret, testIssuer)

	claims := validClaims("user-123")
	claims.ExpiresAt = nil
	tokenStr := signToken(t, testSecret, claims, jwt.SigningMethodHS256)

	if _, err := v.Verify(tokenStr); err == nil {
		t.Fatal("有効期限のないトークンは拒否されるべき")
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	v, _ := NewTokenVerifier(testSecret, testIssuer)

	claims := validClaims("user-123")
	claims.Issuer = "evil-issuer"
	tokenStr := signToken(t, testSecret, claims, jwt.SigningMethodHS256)

	if _, err := v.Verify(tokenStr); err == nil {
		t.Fatal("異なる発行者のトークンは拒否されるべき")
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	v, _ := NewTokenVerifier(testSecret, testIssuer)

	tokenStr := signToken(t, testSecret, validClaims(""), jwt.SigningMethodHS256)

	if _, err := v.Verify(tokenStr); err == nil {
		t.Fatal("subクレームのないトークンは拒否されるべき")
	}
}

func TestVerify_GarbageInput(t *testing.T) {
	v, _ := NewTokenVerifier(testSecret, testIssuer)

	for _, input := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := v.Verify(input); err == nil {
			t.Errorf("Verify(%q) はエラーを返すべき", input)
		}
	}
}
