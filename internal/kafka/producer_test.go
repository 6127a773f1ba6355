package kafka

import (
	"context"
	"testing"
	"time"
)

func waitClosed(t *testing.T, p *Producer) {
	t.Helper()
	select {
	case <-p.closeCh:
	case <-time.After(2 * time.Second):
		t.Fatal("producer tidak selesai shutdown")
	}
}

// Urutan shutdown cmd/api: Close() dulu, baru cancel(). Dua-duanya bisa
// sampai ke goroutine dalam urutan apa saja; tidak boleh panic.
func TestProducerShutdownCloseThenCancel(t *testing.T) {
	for i := 0; i < 500; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
		p.Start(ctx)
		p.Close()
		cancel()
		waitClosed(t, p)
	}
}

func TestProducerShutdownCancelThenClose(t *testing.T) {
	for i := 0; i < 500; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
		p.Start(ctx)
		cancel()
		p.Close()
		waitClosed(t, p)
	}
}

func TestProducerCloseIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
	p.Start(ctx)
	p.Close()
	p.Close()
	waitClosed(t, p)
}

func TestNewConsumerClampsWorkers(t *testing.T) {
	c := NewConsumer([]string{"localhost:9092"}, "g", "t", 0)
	defer c.r.Close()
	if c.workers != 1 {
		t.Fatalf("workers = %d, want 1", c.workers)
	}
}
