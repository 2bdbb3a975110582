package async

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/jonwraymond/asyncops/result"
)

func TestMakeCancelable_CancelBeforeSettle(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})

	handle, cancel := MakeCancelable(context.Background(), func(ctx context.Context) result.Result[int] {
		defer close(finished)
		<-release
		return result.Ok(99)
	})

	cancel()

	res := handle.Await(context.Background())
	if !errors.Is(res.Err(), ErrCanceled) {
		t.Fatalf("Await() error = %v, want ErrCanceled", res.Err())
	}

	// The wrapped operation keeps running and its late value is dropped.
	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("wrapped operation did not run to completion")
	}
	if got := handle.Await(context.Background()); !errors.Is(got.Err(), ErrCanceled) {
		t.Errorf("late settlement replaced outcome: %v", got)
	}
}

func TestMakeCancelable_SettleBeforeCancel(t *testing.T) {
	handle, cancel := MakeCancelable(context.Background(), Value("real"))

	res := handle.Await(context.Background())
	if res.Value() != "real" {
		t.Fatalf("Await() = %v, want ok(real)", res)
	}

	cancel()

	if got := handle.Await(context.Background()); got.Value() != "real" {
		t.Errorf("cancel after settlement changed outcome to %v", got)
	}
}

func TestMakeCancelable_GoexitSettlesHandle(t *testing.T) {
	handle, _ := MakeCancelable(context.Background(), func(ctx context.Context) result.Result[int] {
		runtime.Goexit()
		return result.Ok(1)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if res := handle.Await(ctx); !errors.Is(res.Err(), ErrAbandoned) {
		t.Errorf("Await() error = %v, want ErrAbandoned", res.Err())
	}
}

func TestMakeCancelable_OperationFailurePassesThrough(t *testing.T) {
	testErr := errors.New("own failure")
	handle, _ := MakeCancelable(context.Background(), Fail[int](testErr))

	if res := handle.Await(context.Background()); res.Err() != testErr {
		t.Errorf("Await() error = %v, want %v", res.Err(), testErr)
	}
}

func TestMakeCancelable_CancelIsIdempotent(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	handle, cancel := MakeCancelable(context.Background(), func(ctx context.Context) result.Result[int] {
		<-release
		return result.Ok(1)
	})

	cancel()
	cancel()
	cancel()

	if res := handle.Await(context.Background()); !errors.Is(res.Err(), ErrCanceled) {
		t.Errorf("Await() error = %v, want ErrCanceled", res.Err())
	}
}

func TestMakeCancelable_SignalsOperationContext(t *testing.T) {
	observed := make(chan error, 1)

	handle, cancel := MakeCancelable(context.Background(), func(ctx context.Context) result.Result[int] {
		<-ctx.Done()
		observed <- ctx.Err()
		return result.Err[int](ctx.Err())
	})

	cancel()
	handle.Await(context.Background())

	select {
	case err := <-observed:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("operation saw %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("operation context was never canceled")
	}
}
