package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/murmures-api/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:            "test-secret-key",
		ActivationTokenTTL:   120 * time.Second,
		SessionTokenTTL:      7 * 24 * time.Hour,
		ResetTokenTTL:        time.Hour,
		BcryptCost:           bcrypt.MinCost,
		PendingSweepInterval: time.Minute,
		CookieName:           "token",
	}
}

// testClock is a settable clock shared by the service and its token issuer.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentMail struct {
	email string
	token string
}

// recordingNotifier keeps every message instead of delivering it.
type recordingNotifier struct {
	mu          sync.Mutex
	activations []sentMail
	resets      []sentMail
	err         error
}

func (n *recordingNotifier) SendActivation(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.activations = append(n.activations, sentMail{email: email, token: token})
	return nil
}

func (n *recordingNotifier) SendReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.resets = append(n.resets, sentMail{email: email, token: token})
	return nil
}

func (n *recordingNotifier) lastActivation(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.activations, "no activation mail sent")
	return n.activations[len(n.activations)-1]
}

func (n *recordingNotifier) lastReset(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.resets, "no reset mail sent")
	return n.resets[len(n.resets)-1]
}

type testEnv struct {
	svc      *Service
	repo     *mockRepository
	notifier *recordingNotifier
	clock    *testClock
	tokens   *TokenIssuer
	metrics  *Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	clock := newTestClock()
	repo := newMockRepository()
	notifier := &recordingNotifier{}

	tokens := NewTokenIssuer(cfg)
	tokens.now = clock.Now

	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	svc := NewService(cfg, newTestLogger(t), repo, tokens, NewBcryptHasher(cfg.BcryptCost), notifier, metrics)
	svc.now = clock.Now

	return &testEnv{
		svc:      svc,
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// activeUser stores an activated user with the given password.
func (e *testEnv) activeUser(t *testing.T, username, email, password string) *User {
	t.Helper()
	hash, err := e.svc.hasher.Hash(password)
	require.NoError(t, err)
	return e.repo.addUser(&User{Username: username, Email: email, PasswordHash: hash})
}
