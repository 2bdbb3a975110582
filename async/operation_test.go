package async

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonwraymond/asyncops/result"
)

func TestCall_NilOperation(t *testing.T) {
	res := Call[int](context.Background(), nil)
	if !errors.Is(res.Err(), ErrNilOperation) {
		t.Errorf("Call(nil) error = %v, want ErrNilOperation", res.Err())
	}
}

func TestCall_RecoversPanic(t *testing.T) {
	res := Call(context.Background(), func(ctx context.Context) result.Result[int] {
		panic(errors.New("kaboom"))
	})

	var pe *PanicError
	if !errors.As(res.Err(), &pe) {
		t.Fatalf("Call() error = %v, want *PanicError", res.Err())
	}
	if !errors.Is(res.Err(), ErrPanic) {
		t.Error("PanicError should match ErrPanic")
	}
	if len(pe.Stack) == 0 {
		t.Error("PanicError.Stack should be captured")
	}
	if !strings.Contains(pe.Error(), "kaboom") {
		t.Errorf("Error() = %q, want it to mention the panic value", pe.Error())
	}
}

func TestCall_GoexitReportsAbandoned(t *testing.T) {
	res := Call(context.Background(), func(ctx context.Context) result.Result[int] {
		runtime.Goexit()
		return result.Ok(1)
	})
	if !errors.Is(res.Err(), ErrAbandoned) {
		t.Errorf("Call() error = %v, want ErrAbandoned", res.Err())
	}
}

func TestCall_PassesResultThrough(t *testing.T) {
	testErr := errors.New("domain failure")
	if res := Call(context.Background(), Fail[string](testErr)); res.Err() != testErr {
		t.Errorf("Call() error = %v, want %v", res.Err(), testErr)
	}
	if res := Call(context.Background(), Value("v")); res.Value() != "v" {
		t.Errorf("Call() = %v, want ok(v)", res)
	}
}

func TestFromFunc(t *testing.T) {
	op := FromFunc(func(ctx context.Context) (int, error) { return 4, nil })
	if res := op(context.Background()); res.Value() != 4 {
		t.Errorf("FromFunc op = %v, want ok(4)", res)
	}

	testErr := errors.New("x")
	op = FromFunc(func(ctx context.Context) (int, error) { return 0, testErr })
	if res := op(context.Background()); res.Err() != testErr {
		t.Errorf("FromFunc op error = %v, want %v", res.Err(), testErr)
	}
}

func TestSleep(t *testing.T) {
	clock := clockwork.NewFakeClock()

	done := make(chan error, 1)
	go func() {
		done <- Sleep(context.Background(), time.Minute, WithClock(clock))
	}()

	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	if err := <-done; err != nil {
		t.Errorf("Sleep() error = %v", err)
	}
}

func TestSleep_ContextCanceled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Sleep(ctx, time.Hour, WithClock(clock))
	}()

	clock.BlockUntil(1)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
}

func TestSleep_NonPositive(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) error = %v", err)
	}
	if err := Sleep(context.Background(), -time.Second); err != nil {
		t.Errorf("Sleep(-1s) error = %v", err)
	}
}
