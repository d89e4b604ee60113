package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestListKey(t *testing.T) {
	if got := ListKey(KindTasks, "u1"); got != "tracker:tasks:u1" {
		t.Errorf("ListKey = %q", got)
	}
	keys := OwnerKeys("u1")
	if len(keys) != 3 || keys[2] != "tracker:watchlist:u1" {
		t.Errorf("OwnerKeys = %v", keys)
	}
	if got := GenKey(keys[0]); got != "tracker:tasks:u1:gen" {
		t.Errorf("GenKey = %q", got)
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := Noop()
	if err := c.Set(ctx, "k", 0, []int{1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var dst []int
	ok, gen, err := c.Get(ctx, "k", &dst)
	if ok || gen != 0 || err != nil {
		t.Errorf("Get = %v, %d, %v, want miss", ok, gen, err)
	}
	if err := c.Invalidate(ctx, "k"); err != nil {
		t.Errorf("Invalidate: %v", err)
	}
}

func TestNewRedisClampsTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	c := NewRedis(client, -time.Second).(*redisCache)
	if c.ttl != 0 {
		t.Errorf("ttl = %v, want 0", c.ttl)
	}
	// no keys means no round trip
	if err := c.Invalidate(context.Background()); err != nil {
		t.Errorf("Invalidate() = %v", err)
	}
}
