package binding

import (
	"errors"
	"testing"
	"time"

	"github.com/tabstore/tabstore/lib/bus"
	"github.com/tabstore/tabstore/lib/manager"
	"github.com/tabstore/tabstore/lib/rawstore"
	"github.com/tabstore/tabstore/lib/rawstore/memstore"
)

func newTestEnv(t *testing.T) (*manager.Manager, *bus.Bus) {
	t.Helper()
	b := bus.New()
	m := manager.New(memstore.NewMemStore(nil), manager.WithBus(b))
	return m, b
}

func TestDefaultWhenAbsent(t *testing.T) {
	m, _ := newTestEnv(t)

	b := New(m, "missing", "fallback", manager.Options{})
	defer b.Close()

	if v := b.Value(); v != "fallback" {
		t.Errorf("expected default value, got %q", v)
	}
	if b.Loaded() {
		t.Errorf("expected Loaded()=false for absent key")
	}
}

func TestInitialLoadFromStore(t *testing.T) {
	m, _ := newTestEnv(t)
	m.SetItem("k", "persisted", manager.Options{})

	b := New(m, "k", "default", manager.Options{})
	defer b.Close()

	if v := b.Value(); v != "persisted" {
		t.Errorf("expected persisted value, got %q", v)
	}
	if !b.Loaded() {
		t.Errorf("expected Loaded()=true")
	}
}

func TestSetUpdatesMirrorAndStore(t *testing.T) {
	m, _ := newTestEnv(t)

	b := New(m, "k", 0, manager.Options{})
	defer b.Close()

	b.Set(42)

	if v := b.Value(); v != 42 {
		t.Errorf("expected mirror 42, got %d", v)
	}
	if v, ok := manager.GetItem[int](m, "k", manager.Options{}); !ok || v != 42 {
		t.Errorf("expected persisted 42, got %d (found=%v)", v, ok)
	}
	if b.Err() != nil {
		t.Errorf("expected no error, got %v", b.Err())
	}
}

func TestUpdateResolvesAgainstCurrent(t *testing.T) {
	m, _ := newTestEnv(t)

	b := New(m, "k", 10, manager.Options{})
	defer b.Close()

	b.Update(func(cur int) int { return cur + 5 })

	if v := b.Value(); v != 15 {
		t.Errorf("expected 15, got %d", v)
	}
}

// failingStore rejects all writes.
type failingStore struct {
	rawstore.Store
}

func (f *failingStore) Set(string, string) error {
	return errors.New("write rejected")
}

func TestFailedWriteLeavesMirrorUntouched(t *testing.T) {
	raw := &failingStore{Store: memstore.NewMemStore(nil)}
	m := manager.New(raw, manager.WithErrorHandler(func(*manager.Error) {}))

	b := New(m, "k", "initial", manager.Options{})
	defer b.Close()

	b.Set("next")

	// write failure must not silently desync the visible value
	if v := b.Value(); v != "initial" {
		t.Errorf("expected mirror unchanged after failed write, got %q", v)
	}
	if !errors.Is(b.Err(), ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed, got %v", b.Err())
	}
}

func TestUnavailableStoreDegradesToMemory(t *testing.T) {
	m := manager.New(nil)

	b := New(m, "k", "default", manager.Options{})
	defer b.Close()

	b.Set("memory-only")

	if v := b.Value(); v != "memory-only" {
		t.Errorf("expected in-memory update despite unavailable store, got %q", v)
	}
	if b.Err() != nil {
		t.Errorf("expected no error, got %v", b.Err())
	}
}

func TestRemoveResetsToDefault(t *testing.T) {
	m, _ := newTestEnv(t)

	b := New(m, "k", "default", manager.Options{})
	defer b.Close()

	b.Set("something")
	b.Remove()

	if v := b.Value(); v != "default" {
		t.Errorf("expected default after Remove, got %q", v)
	}
	if m.HasItem("k", manager.Options{}) {
		t.Errorf("expected persisted value to be gone")
	}
}

func TestInProcessBroadcastConvergesBindings(t *testing.T) {
	m, _ := newTestEnv(t)

	a := New(m, "shared", "", manager.Options{})
	defer a.Close()
	b := New(m, "shared", "", manager.Options{})
	defer b.Close()

	var notified []string
	cancel := b.OnChange(func(v string) {
		notified = append(notified, v)
	})
	defer cancel()

	a.Set("from-a")

	// the second binding applies the broadcast value directly
	if v := b.Value(); v != "from-a" {
		t.Errorf("expected second binding to converge, got %q", v)
	}
	if len(notified) == 0 || notified[len(notified)-1] != "from-a" {
		t.Errorf("expected OnChange notification, got %v", notified)
	}
}

func TestBroadcastIgnoresOtherKeys(t *testing.T) {
	m, _ := newTestEnv(t)

	a := New(m, "key-a", "initial", manager.Options{})
	defer a.Close()
	other := New(m, "key-b", "", manager.Options{})
	defer other.Close()

	other.Set("unrelated")

	if v := a.Value(); v != "initial" {
		t.Errorf("expected unrelated write to be ignored, got %q", v)
	}
}

func TestRefreshPicksUpExternalWrite(t *testing.T) {
	m, _ := newTestEnv(t)

	b := New(m, "k", "default", manager.Options{})
	defer b.Close()

	// a write bypassing the bus (e.g. from another process)
	off := manager.Bool(false)
	m.SetItem("k", "external", manager.Options{SyncAcrossTabs: off})

	if v := b.Value(); v != "default" {
		t.Fatalf("expected stale mirror before refresh, got %q", v)
	}

	b.Refresh()
	if v := b.Value(); v != "external" {
		t.Errorf("expected refreshed value, got %q", v)
	}
}

func TestRebind(t *testing.T) {
	m, _ := newTestEnv(t)
	m.SetItem("first", "one", manager.Options{})
	m.SetItem("second", "two", manager.Options{})

	b := New(m, "first", "", manager.Options{})
	defer b.Close()

	if v := b.Value(); v != "one" {
		t.Fatalf("expected initial key value, got %q", v)
	}

	b.Rebind("second")
	if v := b.Value(); v != "two" {
		t.Errorf("expected rebound key value, got %q", v)
	}

	// broadcasts for the old key no longer apply
	m.SetItem("first", "changed", manager.Options{})
	if v := b.Value(); v != "two" {
		t.Errorf("expected old-key broadcast to be ignored, got %q", v)
	}
}

func TestMetadataAccessors(t *testing.T) {
	clock := time.UnixMilli(1_000_000)
	m := manager.New(memstore.NewMemStore(nil), manager.WithClock(func() time.Time { return clock }))

	b := New(m, "k", "", manager.Options{TTL: time.Minute})
	defer b.Close()
	b.Set("v")

	if b.Expired() {
		t.Errorf("expected fresh record to not be expired")
	}
	created, ok := b.CreatedAt()
	if !ok || created.UnixMilli() != 1_000_000 {
		t.Errorf("unexpected CreatedAt: %v (ok=%v)", created, ok)
	}
	expires, ok := b.ExpiresAt()
	if !ok || expires.UnixMilli() != 1_060_000 {
		t.Errorf("unexpected ExpiresAt: %v (ok=%v)", expires, ok)
	}
	d, ok := b.Remaining()
	if !ok || d != time.Minute {
		t.Errorf("unexpected Remaining: %v (ok=%v)", d, ok)
	}
}

func TestRemainingWithoutTTL(t *testing.T) {
	m, _ := newTestEnv(t)

	b := New(m, "k", "", manager.Options{})
	defer b.Close()
	b.Set("v")

	if _, ok := b.Remaining(); ok {
		t.Errorf("expected Remaining to report no TTL")
	}
	if _, ok := b.ExpiresAt(); ok {
		t.Errorf("expected ExpiresAt to report no TTL")
	}
}

func TestExpirationSweepResetsValue(t *testing.T) {
	m, _ := newTestEnv(t)

	// short real TTL so the sweep interval (ttl/10) stays small
	b := New(m, "k", "default", manager.Options{TTL: 100 * time.Millisecond})
	defer b.Close()
	b.Set("v")

	deadline := time.After(2 * time.Second)
	for {
		if b.Value() == "default" && !m.HasItem("k", manager.Options{}) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected sweep to remove expired value and reset mirror")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	m, _ := newTestEnv(t)
	b := New(m, "k", "", manager.Options{TTL: time.Minute})
	b.Close()
	b.Close()
}
