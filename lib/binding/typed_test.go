package binding

import (
	"reflect"
	"testing"

	"github.com/tabstore/tabstore/lib/manager"
)

func TestListMutators(t *testing.T) {
	m, _ := newTestEnv(t)

	l := NewList[string](m, "list", nil, manager.Options{})
	defer l.Close()

	l.Push("a", "b", "c")
	l.Insert(1, "x")
	l.RemoveAt(3)
	l.UpdateAt(0, "A")

	want := []string{"A", "x", "b"}
	if got := l.Value(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	l.Filter(func(s string) bool { return s != "x" })
	if got := l.Value(); !reflect.DeepEqual(got, []string{"A", "b"}) {
		t.Errorf("expected filtered list, got %v", got)
	}

	// out-of-range indexes are no-ops
	l.RemoveAt(99)
	l.UpdateAt(-1, "nope")
	if got := l.Value(); !reflect.DeepEqual(got, []string{"A", "b"}) {
		t.Errorf("expected list unchanged, got %v", got)
	}

	l.ClearAll()
	if got := l.Value(); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestListPersists(t *testing.T) {
	m, _ := newTestEnv(t)

	l := NewList[int](m, "nums", nil, manager.Options{})
	l.Push(1, 2, 3)
	l.Close()

	reloaded := NewList[int](m, "nums", nil, manager.Options{})
	defer reloaded.Close()
	if got := reloaded.Value(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("expected persisted list, got %v", got)
	}
}

func TestObjectMutators(t *testing.T) {
	m, _ := newTestEnv(t)

	o := NewObject[string](m, "obj", nil, manager.Options{})
	defer o.Close()

	o.SetField("name", "ada")
	o.Merge(map[string]string{"role": "engineer", "city": "london"})
	o.DeleteField("city")

	want := map[string]string{"name": "ada", "role": "engineer"}
	if got := o.Value(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFlagMutators(t *testing.T) {
	m, _ := newTestEnv(t)

	f := NewFlag(m, "flag", false, manager.Options{})
	defer f.Close()

	f.Toggle()
	if !f.Value() {
		t.Errorf("expected true after toggle")
	}
	f.Toggle()
	if f.Value() {
		t.Errorf("expected false after second toggle")
	}
	f.SetOn()
	if !f.Value() {
		t.Errorf("expected true after SetOn")
	}
	f.SetOff()
	if f.Value() {
		t.Errorf("expected false after SetOff")
	}
}

func TestCounterClamps(t *testing.T) {
	m, _ := newTestEnv(t)

	c := NewCounter(m, "count", 5, manager.Options{}, WithMin(0), WithMax(10))
	defer c.Close()

	c.Add(100)
	if v := c.Value(); v != 10 {
		t.Errorf("expected clamp to max, got %d", v)
	}
	c.Add(-100)
	if v := c.Value(); v != 0 {
		t.Errorf("expected clamp to min, got %d", v)
	}

	c.Increment()
	c.Increment()
	c.Decrement()
	if v := c.Value(); v != 1 {
		t.Errorf("expected 1, got %d", v)
	}

	c.Reset()
	if v := c.Value(); v != 5 {
		t.Errorf("expected default after reset, got %d", v)
	}
}

func TestGroup(t *testing.T) {
	m, _ := newTestEnv(t)

	g := NewGroup(m, []string{"a", "b", "c"}, 0, manager.Options{})
	defer g.Close()

	g.Set("a", 1)
	g.SetAll(7)

	values := g.Values()
	for _, key := range []string{"a", "b", "c"} {
		if values[key] != 7 {
			t.Errorf("expected key %q to be 7, got %d", key, values[key])
		}
	}

	if g.Binding("a") == nil {
		t.Errorf("expected binding accessor to return member")
	}
	if g.Binding("unknown") != nil {
		t.Errorf("expected nil for unknown key")
	}

	g.RemoveAll()
	for key, v := range g.Values() {
		if v != 0 {
			t.Errorf("expected key %q reset to default, got %d", key, v)
		}
	}
	if m.HasItem("a", manager.Options{}) {
		t.Errorf("expected persisted entries to be removed")
	}
}
