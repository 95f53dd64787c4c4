package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(clock *testClock) *TokenIssuer {
	issuer := NewTokenIssuer(newTestConfig())
	issuer.now = clock.Now
	return issuer
}

func TestTokenIssuer_Activation(t *testing.T) {
	clock := newTestClock()
	issuer := newTestIssuer(clock)

	token, err := issuer.MintActivation("alice@example.com")
	require.NoError(t, err)

	tests := []struct {
		name      string
		advance   time.Duration
		wantEmail string
		wantErr   error
	}{
		{
			name:      "fresh token",
			wantEmail: "alice@example.com",
		},
		{
			name:      "just before expiry",
			advance:   119 * time.Second,
			wantEmail: "alice@example.com",
		},
		{
			name:    "past 120 seconds",
			advance: 2 * time.Second,
			wantErr: ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Advance(tt.advance)

			email, err := issuer.VerifyActivation(token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, email)
		})
	}
}

func TestTokenIssuer_Session(t *testing.T) {
	clock := newTestClock()
	issuer := newTestIssuer(clock)

	token, err := issuer.MintSession("user-1")
	require.NoError(t, err)

	subject, err := issuer.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)

	clock.Advance(7*24*time.Hour + time.Second)
	_, err = issuer.VerifySession(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_KindsAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(newTestClock())

	activation, err := issuer.MintActivation("alice@example.com")
	require.NoError(t, err)
	session, err := issuer.MintSession("user-1")
	require.NoError(t, err)

	_, err = issuer.VerifySession(activation)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.VerifyActivation(session)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	clock := newTestClock()
	issuer := newTestIssuer(clock)

	otherCfg := newTestConfig()
	otherCfg.JWTSecret = "another-secret"
	other := NewTokenIssuer(otherCfg)
	other.now = clock.Now

	forged, err := other.MintSession("user-1")
	require.NoError(t, err)

	noneClaims := &Claims{Kind: TokenSession}
	noneClaims.Subject = "user-1"
	noneClaims.ExpiresAt = jwt.NewNumericDate(clock.Now().Add(time.Hour))
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, noneClaims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Kind: TokenSession}).
		SignedString([]byte(newTestConfig().JWTSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: forged},
		{name: "alg none", token: unsigned},
		{name: "missing expiry", token: noExpiry},
		{name: "garbage", token: "invalid.token.here"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.VerifySession(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestNewResetToken(t *testing.T) {
	first, err := NewResetToken()
	require.NoError(t, err)
	second, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, first)
	assert.NotEqual(t, first, second)
}
