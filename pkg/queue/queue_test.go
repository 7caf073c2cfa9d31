package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/atelier/pkg/queue"
)

// ─── Job types ────────────────────────────────────────────────────────────────

var echoCalls atomic.Int32

type echoJob struct {
	Val string
}

func (j *echoJob) Handle() error {
	echoCalls.Add(1)
	return nil
}

type failJob struct {
	Reason string
}

func (j *failJob) Handle() error {
	return errors.New("always fails")
}

type failedRecord struct {
	jobType  string
	attempts int
}

type recordingStore struct {
	mu      sync.Mutex
	records []failedRecord
}

func (s *recordingStore) SaveFailed(jobType string, _ []byte, _ error, attempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, failedRecord{jobType: jobType, attempts: attempts})
	return nil
}

func (s *recordingStore) all() []failedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]failedRecord, len(s.records))
	copy(out, s.records)
	return out
}

var store = &recordingStore{}

func init() {
	// Start workers so jobs actually get processed in tests.
	ctx, cancel := context.WithCancel(context.Background())
	_ = cancel
	queue.StartWorkers(ctx, 2)

	queue.Register("*queue_test.echoJob", func() queue.Job { return &echoJob{} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{} })
	queue.UseFailedStore(store)
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestDispatchAndProcess(t *testing.T) {
	before := echoCalls.Load()
	if err := queue.Dispatch(&echoJob{Val: "hello"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if echoCalls.Load() == before {
		t.Error("expected the job to have been handled")
	}
}

func TestFailedJobRetryAndPersist(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	if err := queue.Dispatch(&failJob{Reason: "retry-test"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// 1 attempt + 1s backoff + slack.
	time.Sleep(2500 * time.Millisecond)

	if len(queue.FailedJobs()) == 0 {
		t.Error("expected at least one failed job")
	}

	var found bool
	for _, r := range store.all() {
		if r.jobType == "*queue_test.failJob" && r.attempts == 1 {
			found = true
		}
	}
	if !found {
		t.Error("expected the failed job to reach the durable store")
	}
}

func TestDispatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			queue.Dispatch(&echoJob{Val: "c"}) //nolint:errcheck
		}()
	}
	wg.Wait()
}
