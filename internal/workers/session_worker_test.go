package workers

import (
	"context"
	"testing"
	"time"

	"donation_backend/internal/auth"
	"donation_backend/internal/services"
	"donation_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionWorker_RemovesExpiredAndStops(t *testing.T) {
	repo := testutil.NewFakeSessionRepo()
	signer, err := auth.NewTokenSigner("secret")
	require.NoError(t, err)
	sessions := services.NewSessionService(repo, signer, time.Hour)

	ctx := context.Background()
	keep, err := sessions.Create(ctx, nil, 1)
	require.NoError(t, err)
	drop, err := sessions.Create(ctx, nil, 2)
	require.NoError(t, err)
	repo.Expire(drop.SessionID)

	runCtx, cancel := context.WithCancel(ctx)
	done := NewSessionWorker(nil, sessions, time.Hour).Start(runCtx)

	// первая очистка выполняется сразу при старте
	assert.Eventually(t, func() bool { return repo.Len() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	_, err = sessions.Resolve(ctx, nil, keep.Token)
	assert.NoError(t, err)
}

func TestSessionWorker_KeepsRunningAfterPanic(t *testing.T) {
	repo := testutil.NewFakeSessionRepo()
	signer, err := auth.NewTokenSigner("secret")
	require.NoError(t, err)
	sessions := services.NewSessionService(repo, signer, time.Hour)

	ctx := context.Background()
	drop, err := sessions.Create(ctx, nil, 1)
	require.NoError(t, err)
	repo.Expire(drop.SessionID)
	repo.CleanupPanics = 1

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := NewSessionWorker(nil, sessions, 10*time.Millisecond).Start(runCtx)

	// первый запуск паникует, следующий тик все равно чистит
	assert.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
