package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestEnqueueRunsTask(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 4, Workers: 1})
	defer d.Close()

	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	<-done
}

func TestEnqueueSaturatedQueueReturnsFull(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	gate := make(chan struct{})
	block := func() error { <-gate; return nil }

	var full int
	for i := 0; i < 3; i++ {
		if err := d.Enqueue(context.Background(), "send.text", "sendMessage", block); errors.Is(err, ErrQueueFull) {
			full++
		}
	}
	if full == 0 {
		t.Fatal("expected at least one ErrQueueFull with a blocked worker and a single-slot queue")
	}

	close(gate)
	d.Close()
}

func TestEnqueueAfterCloseReturnsClosed(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	d.Close()

	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("enqueue after close = %v, want ErrQueueClosed", err)
	}
}

func TestCloseIsSafeAgainstConcurrentEnqueue(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 2, Workers: 2})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
				if errors.Is(err, ErrQueueClosed) {
					return
				}
			}
		}()
	}

	d.Close()
	wg.Wait()

	if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("enqueue after close = %v, want ErrQueueClosed", err)
	}
}
