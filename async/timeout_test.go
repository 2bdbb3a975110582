package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonwraymond/asyncops/result"
)

func TestWithTimeout_SettlesFirst(t *testing.T) {
	clock := clockwork.NewFakeClock()

	res := WithTimeout(context.Background(), Value(42), time.Second, WithClock(clock))
	if res.Value() != 42 {
		t.Errorf("WithTimeout() = %v, want ok(42)", res)
	}
}

func TestWithTimeout_FailurePassesThrough(t *testing.T) {
	clock := clockwork.NewFakeClock()
	testErr := errors.New("upstream failed")

	res := WithTimeout(context.Background(), Fail[int](testErr), time.Second, WithClock(clock))
	if res.Err() != testErr {
		t.Errorf("WithTimeout() error = %v, want %v", res.Err(), testErr)
	}
}

func TestWithTimeout_TimerFiresFirst(t *testing.T) {
	clock := clockwork.NewFakeClock()
	release := make(chan struct{})
	finished := make(chan error, 1)

	op := func(ctx context.Context) result.Result[int] {
		<-release
		finished <- ctx.Err()
		return result.Ok(1)
	}

	done := make(chan result.Result[int], 1)
	go func() {
		done <- WithTimeout(context.Background(), op, 500*time.Millisecond, WithClock(clock))
	}()

	clock.BlockUntil(1)
	clock.Advance(500 * time.Millisecond)

	res := <-done
	if !errors.Is(res.Err(), ErrTimeout) {
		t.Fatalf("WithTimeout() error = %v, want ErrTimeout", res.Err())
	}

	// The operation was not stopped; it finishes on its own and observes
	// its canceled context.
	close(release)
	select {
	case err := <-finished:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("operation ctx.Err() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("detached operation did not finish")
	}
}

func TestWithTimeout_ParentCanceled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	defer close(release)

	done := make(chan result.Result[string], 1)
	go func() {
		done <- WithTimeout(ctx, func(context.Context) result.Result[string] {
			<-release
			return result.Ok("late")
		}, time.Hour, WithClock(clock))
	}()

	clock.BlockUntil(1)
	cancel()

	res := <-done
	if !errors.Is(res.Err(), context.Canceled) {
		t.Errorf("WithTimeout() error = %v, want context.Canceled", res.Err())
	}
}

func TestWithTimeout_RealClock(t *testing.T) {
	res := WithTimeout(context.Background(), func(ctx context.Context) result.Result[int] {
		time.Sleep(200 * time.Millisecond)
		return result.Ok(1)
	}, 10*time.Millisecond)

	if !errors.Is(res.Err(), ErrTimeout) {
		t.Errorf("WithTimeout() error = %v, want ErrTimeout", res.Err())
	}
}

func TestWithTimeout_PanicBecomesFailure(t *testing.T) {
	res := WithTimeout(context.Background(), func(ctx context.Context) result.Result[int] {
		panic("boom")
	}, time.Second)

	var pe *PanicError
	if !errors.As(res.Err(), &pe) {
		t.Fatalf("WithTimeout() error = %v, want *PanicError", res.Err())
	}
	if pe.Value != "boom" {
		t.Errorf("PanicError.Value = %v, want boom", pe.Value)
	}
}

func TestTimeout_ComposesWithRetry(t *testing.T) {
	var calls atomic.Int32
	op := func(ctx context.Context) result.Result[string] {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return result.Err[string](ctx.Err())
		}
		return result.Ok("second attempt")
	}

	res := Retry(context.Background(), Timeout(op, 20*time.Millisecond), noDelay(3))
	if res.Value() != "second attempt" {
		t.Errorf("Retry(Timeout()) = %v, want ok(second attempt)", res)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestTimeoutFunc(t *testing.T) {
	v, err := TimeoutFunc(context.Background(), func(ctx context.Context) (int, error) {
		return 3, nil
	}, time.Second)

	if err != nil || v != 3 {
		t.Errorf("TimeoutFunc() = (%d, %v), want (3, nil)", v, err)
	}
}
