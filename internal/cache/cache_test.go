package cache

import (
	"testing"
	"time"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := New(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Set("k", "v")

	v, ok := c.Get("k")

	if !ok || v != "v" {
		t.Fatalf("get = (%v, %v), want (v, true)", v, ok)
	}

	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10 * time.Millisecond)

	c.Set("k", 42)

	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after ttl elapsed")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after clear")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected miss after clear")
	}
}
