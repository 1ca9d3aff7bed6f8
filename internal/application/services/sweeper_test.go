package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "filesharing-api/internal/domain/filegroup"
)

func TestSweeperRunReapsOnStartup(t *testing.T) {
	blobs, repo, notifier := newFakeBlobStore(), newFakeRepo(), &fakeNotifier{}
	svc := newTestService(t, blobs, repo, notifier)

	files := makeFileHeaders(t, []testFile{{"old.txt", []byte("x")}})
	fg, err := svc.CreateFileGroup(context.Background(), files, time.Second)
	require.NoError(t, err)

	svc.clockNow = func() time.Time { return time.Now().Add(time.Minute) }

	sw := NewSweeper(svc, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	// the startup sweep fires before the first tick
	assert.Eventually(t, func() bool {
		_, _, err := svc.Resolve(context.Background(), fg.ID)
		return errors.Is(err, domain.ErrNotFound)
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}

	assert.Zero(t, blobs.count())
}
