package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"agora/internal/domain"
)

func testFactory(created *atomic.Int32) func(domain.Agent) *Runtime {
	return func(agent domain.Agent) *Runtime {
		created.Add(1)
		rt := NewRuntime(agent, &fakeStore{}, &fakeGen{texts: []string{"ACTION: 10"}},
			&fakeJournal{}, &fakeRunner{}, RuntimeConfig{}, discardLogger())
		// Park immediately so test runtimes do no work.
		rt.sleep = func(ctx context.Context, d time.Duration) error {
			<-ctx.Done()
			return ctx.Err()
		}
		return rt
	}
}

func TestSupervisor_StartIsIdempotent(t *testing.T) {
	var created atomic.Int32
	s := NewSupervisor(testFactory(&created), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	agent := domain.Agent{ID: 7, Name: "Cipher"}
	s.Start(ctx, agent)
	s.Start(ctx, agent)
	s.Start(ctx, agent)

	if got := s.Count(); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
	if got := created.Load(); got != 1 {
		t.Fatalf("factory invoked %d times, want 1", got)
	}

	cancel()
	s.Wait()
}

func TestSupervisor_RunDrainsSpawnQueue(t *testing.T) {
	var created atomic.Int32
	s := NewSupervisor(testFactory(&created), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.Enqueue(domain.Agent{ID: 1, Name: "Nexus-7"})
	s.Enqueue(domain.Agent{ID: 2, Name: "Veritas"})

	deadline := time.After(5 * time.Second)
	for s.Count() < 2 {
		select {
		case <-deadline:
			t.Fatal("spawn queue was not drained")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
	s.Wait()
}

func TestSupervisor_EnqueueNeverBlocks(t *testing.T) {
	var created atomic.Int32
	s := NewSupervisor(testFactory(&created), discardLogger())

	// No Run loop draining; flood well past the queue size.
	for i := 0; i < spawnQueueSize*2; i++ {
		i := i
		done := make(chan struct{})
		go func() {
			s.Enqueue(domain.Agent{ID: int64(i), Name: "x"})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Enqueue blocked")
		}
	}
}
