// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeSync is the only scope accepted by the sync trigger.
const ScopeSync = "leaderboard:sync"

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongScope   = errors.New("token does not grant sync")
)

// TriggerClaims identify whoever may start a sync (a cron job, an admin).
type TriggerClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// IssueTriggerToken signs an HS256 token for subject. ttl <= 0 means no expiry.
func IssueTriggerToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}

	now := time.Now()
	claims := TriggerClaims{
		Scope: ScopeSync,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign trigger token: %w", err)
	}
	return signed, nil
}

type TriggerValidator struct {
	secret []byte
}

func NewTriggerValidator(secret string) *TriggerValidator {
	return &TriggerValidator{secret: []byte(secret)}
}

// Validate checks signature, expiry and scope.
func (v *TriggerValidator) Validate(tokenString string) (*TriggerClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &TriggerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TriggerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Scope != ScopeSync {
		return nil, ErrWrongScope
	}

	return claims, nil
}
