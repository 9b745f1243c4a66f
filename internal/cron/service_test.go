package cron

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/licimar/licimar-backend/pkg/logger"
)

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
	refuse   bool
}

func (l *fakeLock) Acquire(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquires++
	if l.refuse {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
	l.held = false
	return nil
}

type recordingJob struct {
	mu   sync.Mutex
	name string
	runs int
	err  error
	done chan struct{}
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(context.Context) error {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
	if j.done != nil {
		select {
		case j.done <- struct{}{}:
		default:
		}
	}
	return j.err
}

func (j *recordingJob) runCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestServiceRunsJobsImmediately(t *testing.T) {
	lock := &fakeLock{}
	job := &recordingJob{name: "sweep", done: make(chan struct{}, 1)}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on startup")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if job.runCount() != 1 {
		t.Fatalf("expected exactly one run, got %d", job.runCount())
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}
}

func TestServiceSkipsCycleWhenLockRefused(t *testing.T) {
	lock := &fakeLock{refuse: true}
	job := &recordingJob{name: "sweep"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-errCh

	if job.runCount() != 0 {
		t.Fatalf("expected no runs without the lock, got %d", job.runCount())
	}
	if lock.releases != 0 {
		t.Fatalf("expected no release when never acquired, got %d", lock.releases)
	}
}

func TestServiceContinuesAfterJobFailure(t *testing.T) {
	lock := &fakeLock{}
	failing := &recordingJob{name: "broken", err: errors.New("boom")}
	healthy := &recordingJob{name: "sweep", done: make(chan struct{}, 1)}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, healthy),
		Lock:     lock,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	select {
	case <-healthy.done:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy job did not run after failing job")
	}
	cancel()
	<-errCh

	if failing.runCount() != 1 || healthy.runCount() != 1 {
		t.Fatalf("expected both jobs to run once, got %d and %d", failing.runCount(), healthy.runCount())
	}
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &recordingJob{name: "a"})
	registry.Register(nil)
	registry.Register(&recordingJob{name: "b"})

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name() != "a" || jobs[1].Name() != "b" {
		t.Fatalf("unexpected order: %s, %s", jobs[0].Name(), jobs[1].Name())
	}
}
