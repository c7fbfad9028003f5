// Package auth はアクセストークンの検証を提供する。
// トークンの発行（ログイン・リフレッシュ）は外部の認証コラボレータが担い、
// 本サービスは共有シークレットによるHS256署名の検証のみを行う。
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier はJWTアクセストークンを検証し、ユーザーIDを取り出す。
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier はTokenVerifierを生成する。
// secretは認証コラボレータと共有するHMACシークレット。
func NewTokenVerifier(secret, issuer string) (*TokenVerifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("JWT secret must be at least 16 characters")
	}
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}, nil
}

// Verify はトークン文字列を検証し、subクレームのユーザーIDを返す。
// 署名・有効期限・発行者・署名アルゴリズム（HS256固定）を検証する。
func (v *TokenVerifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("token expired")
		}
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return claims.Subject, nil
}
