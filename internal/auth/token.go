package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/elskow/murmures-api/internal/config"
)

type TokenKind string

const (
	TokenActivation TokenKind = "activation"
	TokenSession    TokenKind = "session"
)

const resetTokenBytes = 32

// Claims is shared by both signed token kinds. Kind prevents an activation
// token from being accepted as a session and vice versa.
type Claims struct {
	Kind  TokenKind `json:"kind"`
	Email string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret        []byte
	activationTTL time.Duration
	sessionTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(config *config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:        []byte(config.JWTSecret),
		activationTTL: config.ActivationTokenTTL,
		sessionTTL:    config.SessionTokenTTL,
		now:           time.Now,
	}
}

func (t *TokenIssuer) MintActivation(email string) (string, error) {
	return t.sign(&Claims{Kind: TokenActivation, Email: email}, t.activationTTL)
}

// VerifyActivation returns the email the token was minted for.
func (t *TokenIssuer) VerifyActivation(token string) (string, error) {
	claims, err := t.parse(token, TokenActivation)
	if err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", ErrTokenInvalid
	}
	return claims.Email, nil
}

func (t *TokenIssuer) MintSession(userID string) (string, error) {
	claims := &Claims{Kind: TokenSession}
	claims.Subject = userID
	return t.sign(claims, t.sessionTTL)
}

// VerifySession returns the subject user id.
func (t *TokenIssuer) VerifySession(token string) (string, error) {
	claims, err := t.parse(token, TokenSession)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (t *TokenIssuer) SessionTTL() time.Duration {
	return t.sessionTTL
}

func (t *TokenIssuer) ActivationTTL() time.Duration {
	return t.activationTTL
}

func (t *TokenIssuer) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := t.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.Kind, err)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(tokenString string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Kind != kind {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// NewResetToken returns 256 random bits, hex encoded.
func NewResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
