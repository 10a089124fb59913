package livestore

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreWriteReadRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := map[string]string{"text": "hello", "userId": "7"}
	if err := s.Write(ctx, "universal_chat/m1", in); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	raw, err := s.Read(ctx, "universal_chat/m1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: got %v, want %v", out, in)
	}
}

func TestMemoryStoreReadMissingPath(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Read(context.Background(), "nowhere")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreBranchReconstruction(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Thread metadata at an interior path plus messages below it must come
	// back as one nested object
	if err := s.Write(ctx, "chats/7", map[string]string{"studentName": "Asha"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Write(ctx, "chats/7/messages/m1", map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Write(ctx, "chats/9/messages/m2", map[string]string{"text": "yo"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	raw, err := s.Read(ctx, "chats")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var tree map[string]struct {
		StudentName string                       `json:"studentName"`
		Messages    map[string]map[string]string `json:"messages"`
	}
	if err := json.Unmarshal(raw, &tree); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(tree) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(tree))
	}
	if tree["7"].StudentName != "Asha" {
		t.Errorf("thread 7 studentName = %q, want Asha", tree["7"].StudentName)
	}
	if tree["7"].Messages["m1"]["text"] != "hi" {
		t.Errorf("thread 7 message m1 = %v", tree["7"].Messages["m1"])
	}
	if tree["9"].Messages["m2"]["text"] != "yo" {
		t.Errorf("thread 9 message m2 = %v", tree["9"].Messages["m2"])
	}
}

func TestMemoryStorePatchMergesFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Write(ctx, "chats/7/messages/m1", map[string]string{"text": "before", "userId": "7"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Patch(ctx, "chats/7/messages/m1", map[string]interface{}{"text": "after"}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	raw, err := s.Read(ctx, "chats/7/messages/m1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out["text"] != "after" {
		t.Errorf("text = %q, want after", out["text"])
	}
	if out["userId"] != "7" {
		t.Errorf("userId lost by patch: %v", out)
	}
}

func TestMemoryStoreDeleteRemovesSubtree(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Write(ctx, "chats/7/messages/m1", map[string]string{"text": "a"})
	_ = s.Write(ctx, "chats/7/messages/m2", map[string]string{"text": "b"})
	_ = s.Write(ctx, "universal_chat/m3", map[string]string{"text": "c"})

	if err := s.Delete(ctx, "chats/7"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := s.Read(ctx, "chats/7"); err != ErrNotFound {
		t.Errorf("subtree survived delete: err=%v", err)
	}
	if _, err := s.Read(ctx, "universal_chat/m3"); err != nil {
		t.Errorf("unrelated path affected by delete: %v", err)
	}
}

func TestMemoryStoreSubscribe(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var mu sync.Mutex
	var snapshots []json.RawMessage

	unsubscribe, err := s.Subscribe(ctx, "universal_chat", func(value json.RawMessage) {
		mu.Lock()
		snapshots = append(snapshots, value)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubscribe()

	// Initial delivery carries the current (empty) value
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snapshots) >= 1
	})
	mu.Lock()
	if snapshots[0] != nil {
		t.Errorf("initial snapshot = %s, want nil for empty path", snapshots[0])
	}
	mu.Unlock()

	if err := s.Write(ctx, "universal_chat/m1", map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snapshots) >= 2 && snapshots[len(snapshots)-1] != nil
	})

	mu.Lock()
	last := snapshots[len(snapshots)-1]
	mu.Unlock()
	var tree map[string]map[string]string
	if err := json.Unmarshal(last, &tree); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if tree["m1"]["text"] != "hi" {
		t.Errorf("snapshot after write = %v", tree)
	}

	// No deliveries after unsubscribe
	unsubscribe()
	mu.Lock()
	count := len(snapshots)
	mu.Unlock()
	_ = s.Write(ctx, "universal_chat/m2", map[string]string{"text": "later"})
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if len(snapshots) != count {
		t.Errorf("received %d snapshots after unsubscribe", len(snapshots)-count)
	}
	mu.Unlock()
}

func TestPathAffects(t *testing.T) {
	cases := []struct {
		sub, changed string
		want         bool
	}{
		{"chats", "chats/7/messages/m1", true},
		{"chats/7/messages", "chats/7", true},
		{"chats/7", "chats/7", true},
		{"chats/7", "chats/77", false},
		{"universal_chat", "chats/7", false},
	}
	for _, c := range cases {
		if got := pathAffects(c.sub, c.changed); got != c.want {
			t.Errorf("pathAffects(%q, %q) = %v, want %v", c.sub, c.changed, got, c.want)
		}
	}
}

func TestNewPushKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		k := NewPushKey()
		if k == "" {
			t.Fatal("empty push key")
		}
		if seen[k] {
			t.Fatalf("duplicate push key %s", k)
		}
		seen[k] = true
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
