package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"atb/news-api/pkg/util"

	"github.com/golang-jwt/jwt/v5"
)

const resetTokenSize = 32

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenMaker signs and verifies session tokens. The secret and expiry are
// process-wide configuration loaded once at startup; verification depends
// only on the token and the clock, there is no shared mutable state.
type TokenMaker struct {
	secret  []byte
	expires time.Duration
}

func NewTokenMaker(secret string, expires time.Duration) *TokenMaker {
	return &TokenMaker{
		secret:  []byte(secret),
		expires: expires,
	}
}

// Issue signs a new token asserting userID.
func (t *TokenMaker) Issue(userID string) (string, error) {
	now := time.Now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(t.expires).Unix(),
	})

	return tok.SignedString(t.secret)
}

// Verify checks the signature and expiry of tokenStr and returns the
// asserted user ID plus the issue time. Any malformed, tampered or
// expired token fails with ErrInvalidToken.
func (t *TokenMaker) Verify(tokenStr string) (userID string, issuedAt time.Time, err error) {
	tok, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tk.Method.Alg())
		}

		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", time.Time{}, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, ErrInvalidToken
	}

	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", time.Time{}, ErrInvalidToken
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return "", time.Time{}, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(exp) {
		return "", time.Time{}, ErrInvalidToken
	}

	return userID, time.Unix(int64(iat), 0), nil
}

// NewResetToken generates a random password-reset token. The raw form is
// mailed to the user, only the hash is persisted.
func NewResetToken() (raw, hashed string, err error) {
	raw, err = util.GenerateToken(resetTokenSize)
	if err != nil {
		return "", "", err
	}

	return raw, HashResetToken(raw), nil
}

// HashResetToken is the one-way transform applied both when a reset token
// is created and when an incoming one is looked up, so the raw token never
// touches the database.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
