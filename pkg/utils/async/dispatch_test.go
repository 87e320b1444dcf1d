package async_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmkit/pje-agent/pkg/utils/async"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

func loggedContext(buf *safeBuffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	return ctxlog.With(context.Background(), logger)
}

func TestDispatchRunsHandler(t *testing.T) {
	done := make(chan struct{})

	async.Dispatch(context.Background(), func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not executed")
	}
}

func TestDispatchSurvivesCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	async.Dispatch(ctx, func(ctx context.Context) error {
		done <- ctx.Err()
		return nil
	})

	select {
	case err := <-done:
		// The handler runs on a fresh background context
		gt.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler was not executed")
	}
}

func TestDispatchLogsHandlerError(t *testing.T) {
	buf := &safeBuffer{}
	ctx := loggedContext(buf)

	ran := make(chan struct{})
	async.Dispatch(ctx, func(ctx context.Context) error {
		defer close(ran)
		return goerr.New("boom")
	})

	<-ran
	waitForLog(t, buf, "error in async handler")
}

func TestDispatchRecoversPanic(t *testing.T) {
	buf := &safeBuffer{}
	ctx := loggedContext(buf)

	async.Dispatch(ctx, func(ctx context.Context) error {
		panic("catastrophe")
	})

	waitForLog(t, buf, "panic in async handler")
}

func waitForLog(t *testing.T, buf *safeBuffer, want string) {
	t.Helper()

	deadline := time.After(time.Second)
	for {
		if strings.Contains(buf.String(), want) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("log output %q does not contain %q", buf.String(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
