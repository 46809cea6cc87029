package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testLedger(t *testing.T) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	l, err := Connect(context.Background(), "redis://"+mr.Addr(), "feedpress:test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, mr
}

func TestRedisLedgerAddAndList(t *testing.T) {
	l, mr := testLedger(t)
	ctx := context.Background()

	for _, g := range []string{"a1", "a2", "a1"} {
		if err := l.AddProcessedGUID(ctx, g); err != nil {
			t.Fatalf("add %s: %v", g, err)
		}
	}

	guids, err := l.ProcessedGUIDs(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(guids) != 2 {
		t.Errorf("expected 2 guids, got %d", len(guids))
	}
	if ok, _ := mr.SIsMember("feedpress:test", "a2"); !ok {
		t.Error("expected a2 in the redis set")
	}
}

func TestRedisLedgerEmpty(t *testing.T) {
	l, _ := testLedger(t)

	guids, err := l.ProcessedGUIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(guids) != 0 {
		t.Errorf("expected empty ledger, got %v", guids)
	}
}

func TestConnectHostPort(t *testing.T) {
	mr := miniredis.RunT(t)

	l, err := Connect(context.Background(), mr.Addr(), "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer l.Close()
	if l.key != "feedpress:processed" {
		t.Errorf("expected default key, got %q", l.key)
	}
}

func TestConnectUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Connect(context.Background(), addr, ""); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestRedisLedgerServerDown(t *testing.T) {
	l, mr := testLedger(t)
	mr.Close()

	if err := l.AddProcessedGUID(context.Background(), "a1"); err == nil {
		t.Error("expected error when server is down")
	}
}
