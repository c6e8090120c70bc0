package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttlSeconds int) *Cache {
	t.Helper()
	c, err := New(true, t.TempDir(), ttlSeconds)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestPutAndGet(t *testing.T) {
	c := newTestCache(t, 3600)
	payload := json.RawMessage(`{"rows":[[1,"dog"]]}`)

	if err := c.Put("key1", payload); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("Get missed a freshly stored entry")
	}
	if string(got) != string(payload) {
		t.Errorf("Get = %s, want %s", got, payload)
	}

	if _, ok := c.Get("other"); ok {
		t.Error("Get hit for a key that was never stored")
	}
}

func TestDisabledCache(t *testing.T) {
	c, err := New(false, "", 3600)
	if err != nil {
		t.Fatal(err)
	}
	if c.Enabled() {
		t.Error("Enabled() = true for a disabled cache")
	}
	if err := c.Put("key", json.RawMessage(`{}`)); err != nil {
		t.Errorf("Put on disabled cache: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("disabled cache should always miss")
	}
}

func TestExpiredEntryIsRemoved(t *testing.T) {
	c := newTestCache(t, 60)

	// Plant an entry that was created well past the TTL.
	entry := Entry{
		Key:       HashKey("stale"),
		Result:    json.RawMessage(`{}`),
		CreatedAt: time.Now().Add(-2 * time.Hour),
		TTL:       60,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(c.Dir(), HashKey("stale")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("stale"); ok {
		t.Error("Get hit an expired entry")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired entry file should be removed on read")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := newTestCache(t, 0)

	entry := Entry{
		Key:       HashKey("old"),
		Result:    json.RawMessage(`{"ok":true}`),
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(c.Dir(), HashKey("old")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("old"); !ok {
		t.Error("zero TTL should keep entries forever")
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t, 3600)
	for _, key := range []string{"a", "b", "c"} {
		if err := c.Put(key, json.RawMessage(`{}`)); err != nil {
			t.Fatal(err)
		}
	}
	// A stray non-cache file survives a clear.
	stray := filepath.Join(c.Dir(), "notes.txt")
	if err := os.WriteFile(stray, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d after clear, want 0", stats.Entries)
	}
	if _, err := os.Stat(stray); err != nil {
		t.Error("clear removed a non-cache file")
	}
}

func TestGetStats(t *testing.T) {
	c := newTestCache(t, 60)
	if err := c.Put("fresh", json.RawMessage(`{"rows":[]}`)); err != nil {
		t.Fatal(err)
	}

	entry := Entry{
		Key:       HashKey("stale"),
		Result:    json.RawMessage(`{}`),
		CreatedAt: time.Now().Add(-time.Hour),
		TTL:       60,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(c.Dir(), HashKey("stale")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.Expired != 1 {
		t.Errorf("Expired = %d, want 1", stats.Expired)
	}
	if stats.TotalBytes == 0 {
		t.Error("TotalBytes = 0, want > 0")
	}
	if stats.Dir != c.Dir() {
		t.Errorf("Dir = %q, want %q", stats.Dir, c.Dir())
	}
}

func TestBuildKey(t *testing.T) {
	a := BuildKey("fp1", "SELECT * FROM animal")
	if a != BuildKey("fp1", "SELECT * FROM animal") {
		t.Error("identical inputs should produce identical keys")
	}
	if a == BuildKey("fp2", "SELECT * FROM animal") {
		t.Error("a different fingerprint should change the key")
	}
	if a == BuildKey("fp1", "SELECT * FROM species") {
		t.Error("different SQL should change the key")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex characters", len(a))
	}
}
