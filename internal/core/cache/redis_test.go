package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoadCachesValue(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	loads := 0
	load := func(context.Context) ([]byte, error) {
		loads++
		return []byte(`"v"`), nil
	}
	for range 3 {
		b, err := c.GetOrLoad(ctx, "k", time.Minute, load)
		if err != nil || string(b) != `"v"` {
			t.Fatalf("GetOrLoad = %q, %v", b, err)
		}
	}
	if loads != 1 {
		t.Fatalf("loads = %d, want 1", loads)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestDeleteDuringLoadSkipsWrite(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	b, err := c.GetOrLoad(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		if err := c.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		return []byte("stale"), nil
	})
	if err != nil || string(b) != "stale" {
		t.Fatalf("GetOrLoad = %q, %v", b, err)
	}
	if mr.Exists("k") {
		t.Fatal("stale value written after Delete")
	}

	b, _ = c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return []byte("fresh"), nil })
	if string(b) != "fresh" {
		t.Fatalf("reload = %q", b)
	}
	if got, _ := mr.Get("k"); got != "fresh" {
		t.Fatalf("cached = %q, want fresh", got)
	}
}

func TestLoadSurvivesCallerCancel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the Redis read fails on the cancelled ctx and falls through to load
	b, err := c.GetOrLoad(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return []byte("ok"), nil
	})
	if err != nil || string(b) != "ok" {
		t.Fatalf("GetOrLoad = %q, %v", b, err)
	}
}

func TestLoadErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")
	if _, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if mr.Exists("k") {
		t.Fatal("error result cached")
	}
}
