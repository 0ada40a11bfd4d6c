package insight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestGate() *Gate[string] {
	return NewGate[string](NewMemoryStore[string](0), zerolog.Nop())
}

func fallbackText() string { return "fallback" }

func TestGate_StoredResultIsReused(t *testing.T) {
	g := newTestGate()
	key := Key{Scope: "p1", Subject: "growth:height"}
	var calls int32

	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "done", nil
	}

	for i := 0; i < 3; i++ {
		got, err := g.Do(context.Background(), key, 1, fn, fallbackText)
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		if got != "done" {
			t.Fatalf("got %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 computation, got %d", calls)
	}
}

func TestGate_ConcurrentCallsShareOneComputation(t *testing.T) {
	g := newTestGate()
	key := Key{Scope: "p1", Subject: "growth:weight"}
	release := make(chan struct{})
	var calls int32

	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const callers = 5
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = g.Do(context.Background(), key, 1, fn, fallbackText)
		}(i)
	}

	// Give the goroutines time to join the pending call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected 1 computation, got %d", calls)
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("caller %d got %q", i, r)
		}
	}
}

func TestGate_StaleResultIsDiscarded(t *testing.T) {
	g := newTestGate()
	key := Key{Scope: "p1", Subject: "growth:height"}

	fn := func(context.Context) (string, error) {
		// The profile is edited while the analysis is pending.
		g.Observe("p1", 2)
		return "old", nil
	}

	_, err := g.Do(context.Background(), key, 1, fn, fallbackText)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}

	if _, ok, _ := g.store.Get(context.Background(), "p1:growth:height@1"); ok {
		t.Error("stale result must not be stored")
	}

	got, err := g.Do(context.Background(), key, 2, func(context.Context) (string, error) {
		return "new", nil
	}, fallbackText)
	if err != nil || got != "new" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestGate_OlderRevisionRejectedUpFront(t *testing.T) {
	g := newTestGate()
	g.Observe("p1", 5)

	called := false
	_, err := g.Do(context.Background(), Key{Scope: "p1", Subject: "x"}, 4, func(context.Context) (string, error) {
		called = true
		return "", nil
	}, fallbackText)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if called {
		t.Error("fn should not run for an outdated revision")
	}
}

func TestGate_FailureUsesFallbackWithoutStoring(t *testing.T) {
	g := newTestGate()
	key := Key{Scope: "p1", Subject: "dev:S1"}
	var calls int32

	failing := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("timeout")
	}

	got, err := g.Do(context.Background(), key, 1, failing, fallbackText)
	if err != nil {
		t.Fatalf("failure must not propagate: %v", err)
	}
	if got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}

	if _, err := g.Do(context.Background(), key, 1, failing, fallbackText); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("fallback must not be cached, want 2 calls got %d", calls)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore[int](time.Millisecond)
	ctx := context.Background()
	_ = s.Set(ctx, "k", 7)

	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestKeyString(t *testing.T) {
	k := Key{Scope: "abc", Subject: "growth:head"}
	if k.String() != "abc:growth:head" {
		t.Errorf("Key.String() = %s", k.String())
	}
}

func TestGate_CancelledCallerDoesNotCancelSharedRun(t *testing.T) {
	g := newTestGate()
	key := Key{Scope: "p1", Subject: "growth:head"}
	started := make(chan struct{})
	release := make(chan struct{})

	fn := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "computed", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan string, 1)
	go func() {
		got, _ := g.Do(ctx, key, 1, fn, fallbackText)
		done <- got
	}()

	<-started
	cancel()
	close(release)

	if got := <-done; got != "computed" {
		t.Errorf("got %q, want computed result", got)
	}
	// The result was stored, so a later caller reuses it.
	got, err := g.Do(context.Background(), key, 1, func(context.Context) (string, error) {
		return "recomputed", nil
	}, fallbackText)
	if err != nil || got != "computed" {
		t.Errorf("second Do = %q, %v", got, err)
	}
}
