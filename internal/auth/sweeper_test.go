package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RemovesExpiredPendingAccounts(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	env.clock.Advance(121 * time.Second)

	sweeper := NewSweeper(env.svc, 10*time.Millisecond, newTestLogger(t))
	sweeper.Start()
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		return env.repo.pendingCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSweeper_KeepsLivePendingAccounts(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	sweeper := NewSweeper(env.svc, 5*time.Millisecond, newTestLogger(t))
	sweeper.Start()
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()

	assert.Equal(t, 1, env.repo.pendingCount())
}

func TestSweeper_DisabledAndIdempotentStop(t *testing.T) {
	env := newTestEnv(t)
	sweeper := NewSweeper(env.svc, 0, newTestLogger(t))
	sweeper.Start()
	sweeper.Stop()
	sweeper.Stop()
}
