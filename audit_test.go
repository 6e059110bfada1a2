package openleads

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	events []AuditEvent
	gate   chan struct{}
}

func (s *captureSink) Emit(_ context.Context, event AuditEvent) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestAuditDispatcherDeliversAndFlushesOnClose(t *testing.T) {
	sink := &captureSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)

	for i := 0; i < 5; i++ {
		d.Enqueue(context.Background(), AuditEvent{Event: auditEventOTPRequest, Email: testEmail})
	}
	d.Close()

	if sink.count() != 5 {
		t.Fatalf("delivered %d events, want 5", sink.count())
	}
	if d.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", d.Dropped())
	}
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	sink := &captureSink{gate: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1}, sink)

	// First event is picked up by the run loop and parks in Emit; give it a
	// moment to leave the buffer.
	d.Enqueue(context.Background(), AuditEvent{Event: auditEventLogin})
	deadline := time.Now().Add(time.Second)
	for len(d.ch) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	// Second fills the buffer, third overflows.
	d.Enqueue(context.Background(), AuditEvent{Event: auditEventLogin})
	d.Enqueue(context.Background(), AuditEvent{Event: auditEventLogin})

	if d.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", d.Dropped())
	}

	close(sink.gate)
	d.Close()

	if sink.count() != 2 {
		t.Fatalf("delivered %d events, want 2", sink.count())
	}
}

func TestAuditDisabledDispatcherIsNil(t *testing.T) {
	if d := newAuditDispatcher(AuditConfig{Enabled: false}, nil); d != nil {
		t.Fatal("disabled audit should produce a nil dispatcher")
	}

	// Nil dispatcher methods are no-ops.
	var d *auditDispatcher
	d.Enqueue(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher dropped counter should be 0")
	}
}
