package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDeferred_FirstResolveWins(t *testing.T) {
	d, resolve, _ := NewDeferred[string]()

	if !resolve("first") {
		t.Error("first resolve should report it settled the handle")
	}
	if resolve("second") {
		t.Error("second resolve should be a no-op")
	}

	if got := d.Await(context.Background()); got.Value() != "first" {
		t.Errorf("Await() = %v, want ok(first)", got)
	}
}

func TestDeferred_RejectAfterResolveIsNoop(t *testing.T) {
	d, resolve, reject := NewDeferred[int]()

	resolve(1)
	if reject(errors.New("late")) {
		t.Error("reject after resolve should report false")
	}

	if got := d.Await(context.Background()); !got.OK() || got.Value() != 1 {
		t.Errorf("Await() = %v, want ok(1)", got)
	}
}

func TestDeferred_ResolveAfterReject(t *testing.T) {
	d, resolve, reject := NewDeferred[int]()
	testErr := errors.New("rejected")

	reject(testErr)
	resolve(5)

	if got := d.Await(context.Background()); got.Err() != testErr {
		t.Errorf("Await() error = %v, want %v", got.Err(), testErr)
	}
}

func TestDeferred_ManyAwaiters(t *testing.T) {
	d, resolve, _ := NewDeferred[int]()

	const awaiters = 16
	got := make([]int, awaiters)

	var wg sync.WaitGroup
	for i := range awaiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = d.Await(context.Background()).Value()
		}()
	}

	resolve(7)
	wg.Wait()

	for i, v := range got {
		if v != 7 {
			t.Errorf("awaiter %d got %d, want 7", i, v)
		}
	}
}

func TestDeferred_ConcurrentSettlersOneWinner(t *testing.T) {
	d, resolve, reject := NewDeferred[int]()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var won bool
			if i%2 == 0 {
				won = resolve(i)
			} else {
				won = reject(errors.New("odd"))
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("winning settlements = %d, want 1", wins)
	}
	if !d.Settled() {
		t.Error("Deferred should be settled")
	}
}

func TestDeferred_AwaitContextCanceled(t *testing.T) {
	d, resolve, _ := NewDeferred[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	got := d.Await(ctx)
	if !errors.Is(got.Err(), ErrCanceled) {
		t.Errorf("Await() error = %v, want ErrCanceled", got.Err())
	}
	if !errors.Is(got.Err(), context.DeadlineExceeded) {
		t.Errorf("Await() error = %v, want context.DeadlineExceeded", got.Err())
	}
	if d.Settled() {
		t.Fatal("giving up on Await must not settle the Deferred")
	}

	resolve(3)
	if got := d.Await(context.Background()); got.Value() != 3 {
		t.Errorf("Await() = %v, want ok(3)", got)
	}
}

func TestDeferred_Peek(t *testing.T) {
	d, resolve, _ := NewDeferred[string]()

	if d.Peek().IsSome() {
		t.Error("Peek() on pending Deferred should be none")
	}

	resolve("v")
	r, ok := d.Peek().Get()
	if !ok || r.Value() != "v" {
		t.Errorf("Peek() = (%v, %v), want (ok(v), true)", r, ok)
	}

	select {
	case <-d.Done():
	default:
		t.Error("Done() should be closed after settlement")
	}
}

func TestDeferred_AsOperation(t *testing.T) {
	a, resolveA, _ := NewDeferred[int]()
	b, resolveB, _ := NewDeferred[int]()

	resolveA(1)
	resolveB(2)

	res := Sequence(context.Background(), []Operation[int]{a.Operation(), b.Operation()})
	values := res.Value()
	if len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Errorf("Sequence(deferreds) = %v, want [1 2]", values)
	}
}
