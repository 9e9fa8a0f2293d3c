package workerpool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPoolProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	processed := make(map[string]bool)

	pool, err := New(Config{Workers: 4, QueueSize: 16}, func(ctx context.Context, job *Job) error {
		mu.Lock()
		processed[job.ID] = true
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	pool.Start()
	for _, id := range []string{"a", "b", "c"} {
		if err := pool.Submit(&Job{ID: id}); err != nil {
			t.Fatalf("submit %s: %v", id, err)
		}
	}
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	for _, id := range []string{"a", "b", "c"} {
		if !processed[id] {
			t.Errorf("job %s not processed", id)
		}
	}
}

func TestPoolRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	pool, err := New(Config{Workers: 1, QueueSize: 4, MaxRetries: 2, RetryDelay: time.Millisecond}, func(ctx context.Context, job *Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	pool.Start()
	if err := pool.Submit(&Job{ID: "retry"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcome := <-pool.Outcomes()
	if outcome.Err != nil {
		t.Errorf("expected eventual success, got %v", outcome.Err)
	}
	if outcome.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", outcome.Attempts)
	}

	pool.Stop()

	stats := pool.Stats()
	if stats.Retried != 2 {
		t.Errorf("expected 2 retries, got %d", stats.Retried)
	}
}

func TestPoolExhaustsRetries(t *testing.T) {
	pool, err := New(Config{Workers: 1, QueueSize: 4, MaxRetries: 1, RetryDelay: time.Millisecond}, func(ctx context.Context, job *Job) error {
		return errors.New("permanent")
	}, nil)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	pool.Start()
	if err := pool.Submit(&Job{ID: "doomed"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcome := <-pool.Outcomes()
	if outcome.Err == nil {
		t.Error("expected failure outcome")
	}
	if outcome.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", outcome.Attempts)
	}

	pool.Stop()
}

func TestSubmitAfterStop(t *testing.T) {
	pool, err := New(Config{Workers: 1, QueueSize: 1}, func(ctx context.Context, job *Job) error {
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	pool.Start()
	pool.Stop()

	if err := pool.Submit(&Job{ID: "late"}); err != ErrStopped {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestConcurrentSubmitDuringStop(t *testing.T) {
	pool, err := New(Config{Workers: 2, QueueSize: 1}, func(ctx context.Context, job *Job) error {
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	pool.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				err := pool.Submit(&Job{ID: "racer"})
				if err == ErrStopped {
					return
				}
				if err != nil && err != ErrQueueFull {
					t.Errorf("unexpected submit error: %v", err)
					return
				}
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	pool.Stop()
	wg.Wait()
}

func TestNewRequiresHandler(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Error("expected error for nil handler")
	}
}
