package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigningKey marks a process misconfiguration: token issuance and
// verification fail closed rather than run unsigned.
var ErrNoSigningKey = errors.New("jwt signing key not configured")

// ErrInvalidToken covers every structural, cryptographic, or expiry failure.
// Callers never see partial claims.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies the signed session tokens carried in the login
// cookie. The key is loaded once at startup; rotating it invalidates all
// outstanding tokens.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
}

func (t Tokens) ttl() time.Duration {
	if t.TTL > 0 {
		return t.TTL
	}
	return 24 * time.Hour
}

// Issue signs a token embedding the user id and username with an absolute
// expiry of TTL from now.
func (t Tokens) Issue(userID uint, username string) (string, error) {
	if len(t.Secret) == 0 {
		return "", ErrNoSigningKey
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"userId":   float64(userID),
		"username": username,
		"exp":      now.Add(t.ttl()).Unix(),
		"iat":      now.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.Secret)
}

// Verify checks signature and expiry and extracts the identity claims.
func (t Tokens) Verify(tokenStr string) (Claims, error) {
	if len(t.Secret) == 0 {
		return Claims{}, ErrNoSigningKey
	}
	tok, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	id, ok := mapc["userId"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	name, ok := mapc["username"].(string)
	if !ok || name == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uint(id), Username: name}, nil
}
