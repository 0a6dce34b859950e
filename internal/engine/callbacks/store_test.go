package callbacks

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCanonicalCode(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"1234567890123456", "1234567890123456"},
		{json.Number("1234567890123456"), "1234567890123456"},
		{int64(42), "42"},
		{42, "42"},
		{float64(42), "42"},
	}
	for _, c := range cases {
		if got := CanonicalCode(c.in); got != c.want {
			t.Errorf("CanonicalCode(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestRegisterGetRemove(t *testing.T) {
	store := NewStore(time.Hour)

	store.Register(int64(1234567890123456), &Registration{WebhookURL: "https://a.example/wh"})

	// Numeric and string forms of the same code locate the same entry.
	reg, ok := store.Get("1234567890123456")
	if !ok {
		t.Fatal("expected registration by string code")
	}
	if reg.WebhookURL != "https://a.example/wh" {
		t.Errorf("unexpected webhook url %s", reg.WebhookURL)
	}

	if store.Len() != 1 {
		t.Errorf("expected size 1, got %d", store.Len())
	}

	store.Remove("1234567890123456")
	if _, ok := store.Get(int64(1234567890123456)); ok {
		t.Error("expected registration gone after remove")
	}
	if store.Len() != 0 {
		t.Errorf("expected size 0, got %d", store.Len())
	}
}

func TestTTLEviction(t *testing.T) {
	store := NewStore(time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Register("111", &Registration{WebhookURL: "https://a.example/wh"})
	store.Register("222", &Registration{WebhookURL: "https://b.example/wh"})

	// Inside the TTL both entries survive a sweep.
	if n := store.Sweep(); n != 0 {
		t.Errorf("expected no evictions inside ttl, got %d", n)
	}

	store.now = func() time.Time { return now.Add(time.Hour + time.Minute) }

	// Lazy eviction on read.
	if _, ok := store.Get("111"); ok {
		t.Error("expected expired registration to be evicted on read")
	}

	// Sweep clears the rest.
	if n := store.Sweep(); n != 1 {
		t.Errorf("expected 1 eviction from sweep, got %d", n)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
}

func TestEvictSparesReRegisteredEntry(t *testing.T) {
	store := NewStore(time.Hour)

	stale := &Registration{WebhookURL: "https://old.example/wh"}
	store.Register("111", stale)

	// A re-registration lands between observing the stale entry and
	// deleting it.
	fresh := &Registration{WebhookURL: "https://new.example/wh"}
	store.Register("111", fresh)

	if store.evict("111", stale) {
		t.Error("evict must not delete an entry it did not observe")
	}
	reg, ok := store.Get("111")
	if !ok || reg.WebhookURL != "https://new.example/wh" {
		t.Errorf("expected fresh registration to survive, got %+v", reg)
	}
	if store.Len() != 1 {
		t.Errorf("expected size 1, got %d", store.Len())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	store := NewStore(0)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Register("333", &Registration{WebhookURL: "https://c.example/wh"})

	store.now = func() time.Time { return now.Add(1000 * time.Hour) }
	if _, ok := store.Get("333"); !ok {
		t.Error("expected entry to survive with ttl disabled")
	}
}
