package cache

import (
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory[string](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}

	c.Set("a", "value")
	got, ok := c.Get("a")
	if !ok || got != "value" {
		t.Errorf("Get(a) = %q, %v, want value, true", got, ok)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory[int](time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("a", 1)
	c.SetTTL("b", 2, 10*time.Minute)

	current = current.Add(5 * time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be expired after default TTL")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v, want 2, true", v, ok)
	}

	current = current.Add(6 * time.Minute)
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be expired after explicit TTL")
	}
}

func TestMemoryInvalidateAndClear(t *testing.T) {
	c := NewMemory[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be gone after Invalidate")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to survive Invalidate(a)")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	c := NewMemory[int](time.Minute)
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Set("shared", n)
				c.Get("shared")
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
