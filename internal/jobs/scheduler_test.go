package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type blockingRevalidator struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (r *blockingRevalidator) Revalidate(context.Context) {
	r.once.Do(func() { close(r.started) })
	<-r.release
}

func TestStartDisabledWhenIntervalZero(t *testing.T) {
	rv := &blockingRevalidator{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(rv, 0, zerolog.Nop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-rv.started:
		t.Fatal("disabled scheduler ran a revalidation")
	case <-time.After(50 * time.Millisecond):
	}
	s.Stop()
}

func TestStopWaitsForInFlightRevalidation(t *testing.T) {
	rv := &blockingRevalidator{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(rv, time.Second, zerolog.Nop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-rv.started:
	case <-time.After(3 * time.Second):
		t.Fatal("revalidation never started")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a revalidation was running")
	case <-time.After(100 * time.Millisecond):
	}

	close(rv.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop never returned after the job finished")
	}
}
