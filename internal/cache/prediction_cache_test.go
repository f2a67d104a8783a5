package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"

	"pettech-backend/internal/vision"
)

func newTestCache(t *testing.T, tag string) (*PredictionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPredictionCache(client, time.Minute, tag), mr
}

func TestPredictionCache_MissThenHit(t *testing.T) {
	c, mr := newTestCache(t, "v1")
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "abc"); err != nil || ok {
		t.Fatalf("Get on empty cache = ok:%v err:%v", ok, err)
	}

	want := vision.Prediction{Label: "Fungal", Confidence: 72.34}
	if err := c.Set(ctx, "abc", want); err != nil {
		t.Fatalf("Set error = %v", err)
	}

	got, ok, err := c.Get(ctx, "abc")
	if err != nil || !ok || got != want {
		t.Fatalf("Get = %+v ok:%v err:%v", got, ok, err)
	}

	if ttl := mr.TTL("pettech:prediction:v1:abc"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "abc"); ok {
		t.Fatalf("entry must expire")
	}
}

func TestPredictionCache_ScopedByModel(t *testing.T) {
	c, mr := newTestCache(t, "v1")
	ctx := context.Background()
	if err := c.Set(ctx, "abc", vision.Prediction{Label: "Healthy", Confidence: 99}); err != nil {
		t.Fatalf("Set error = %v", err)
	}

	other := NewPredictionCache(redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()}), time.Minute, "v2")
	if _, ok, _ := other.Get(ctx, "abc"); ok {
		t.Fatalf("different model tag must not share entries")
	}
}

func TestPredictionCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, "v1")
	if err := mr.Set("pettech:prediction:v1:bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := c.Get(context.Background(), "bad"); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
