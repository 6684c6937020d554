package bus

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBusExactKeyFilter(t *testing.T) {
	b := New()

	var got []Event
	cancel := b.Subscribe("watched", func(evt Event) {
		got = append(got, evt)
	})
	defer cancel()

	b.Publish(Event{Key: "other", NewValue: 1})
	b.Publish(Event{Key: "watched", NewValue: 2, OldValue: 1})

	if len(got) != 1 {
		t.Fatalf("expected 1 delivered event, got %d", len(got))
	}
	if got[0].NewValue != 2 || got[0].OldValue != 1 {
		t.Errorf("unexpected event payload: %+v", got[0])
	}
}

func TestBusSynchronousOrdering(t *testing.T) {
	b := New()

	var order []int
	cancel := b.Subscribe("k", func(evt Event) {
		order = append(order, evt.NewValue.(int))
	})
	defer cancel()

	// Publish is synchronous, so delivery order equals publish order
	for i := 0; i < 5; i++ {
		b.Publish(Event{Key: "k", NewValue: i})
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("expected in-order delivery, got %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 events, got %d", len(order))
	}
}

func TestBusCancel(t *testing.T) {
	b := New()

	count := 0
	cancel := b.Subscribe("k", func(Event) { count++ })

	b.Publish(Event{Key: "k"})
	cancel()
	b.Publish(Event{Key: "k"})

	if count != 1 {
		t.Errorf("expected no delivery after cancel, got %d events", count)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	b := New()

	count := 0
	cancel := b.SubscribeAll(func(Event) { count++ })
	defer cancel()

	b.Publish(Event{Key: "a"})
	b.Publish(Event{Key: "b"})

	if count != 2 {
		t.Errorf("expected 2 deliveries, got %d", count)
	}
}

func TestWatcherSignalsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	signaled := make(chan struct{}, 8)
	cancel := w.Subscribe(func() {
		select {
		case signaled <- struct{}{}:
		default:
		}
	})
	defer cancel()

	// simulate another process writing the store file
	if err := os.WriteFile(path, []byte(`{"k":"v"}`), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-signaled:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected watcher to signal external write")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
