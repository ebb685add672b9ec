package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func sampleGroup() model.OlapGroup {
	pizza := "Пицца"
	group := model.NewOlapGroup()
	group.Add(pizza, model.OlapRow{DishCategory: &pizza, DishName: "Маргарита", DishDiscountSumInt: 1200.5, GuestNum: 3})
	group.Add(model.OtherCategory, model.OlapRow{DishName: "Вода", DishDiscountSumInt: 90, GuestNum: 1})
	return group
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	state, err := store.State(ctx, 42)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != StateIdle {
		t.Fatalf("expected idle for new chat, got %s", state)
	}
	if _, ok, err := store.OlapGroup(ctx, 42); err != nil || ok {
		t.Fatalf("expected no cached report, got ok=%v err=%v", ok, err)
	}

	if err := store.SetState(ctx, 42, StateAwaitingReportMenuChoice); err != nil {
		t.Fatalf("set state: %v", err)
	}
	if state, _ := store.State(ctx, 42); state != StateAwaitingReportMenuChoice {
		t.Fatalf("unexpected state: %s", state)
	}
	if state, _ := store.State(ctx, 7); state != StateIdle {
		t.Fatalf("state leaked to another chat: %s", state)
	}

	if err := store.SetOlapGroup(ctx, 42, sampleGroup()); err != nil {
		t.Fatalf("set olap: %v", err)
	}
	group, ok, err := store.OlapGroup(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("get olap: ok=%v err=%v", ok, err)
	}
	if len(group.Categories) != 2 || group.Categories[0] != "Пицца" || group.Categories[1] != model.OtherCategory {
		t.Fatalf("unexpected categories: %v", group.Categories)
	}
	rows, _ := group.Lookup("Пицца")
	if len(rows) != 1 || rows[0].GuestNum != 3 || rows[0].DishDiscountSumInt != 1200.5 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	replacement := model.NewOlapGroup()
	replacement.Add("Супы", model.OlapRow{DishName: "Борщ", GuestNum: 5})
	if err := store.SetOlapGroup(ctx, 42, replacement); err != nil {
		t.Fatalf("replace olap: %v", err)
	}
	group, _, _ = store.OlapGroup(ctx, 42)
	if len(group.Categories) != 1 || group.Categories[0] != "Супы" {
		t.Fatalf("expected report to be replaced, got %v", group.Categories)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	_, client := newMiniRedisClient(t)
	store, err := NewStore(StoreTypeRedis, WithRedisClient(client), WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}

func TestRedisStoreExpires(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	store := NewRedisStore(client, time.Minute)
	defer store.Close()
	ctx := context.Background()

	if err := store.SetState(ctx, 1, StateAwaitingServerChoice); err != nil {
		t.Fatalf("set state: %v", err)
	}
	if ttl := mr.TTL(stateKey(1)); ttl != time.Minute {
		t.Fatalf("unexpected ttl: %s", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if state, _ := store.State(ctx, 1); state != StateIdle {
		t.Fatalf("expected idle after expiry, got %s", state)
	}
}

func TestRedisStoreIgnoresUnknownState(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	store := NewRedisStore(client, 0)
	defer store.Close()

	if err := mr.Set(stateKey(5), "SOMETHING_OLD"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if state, err := store.State(context.Background(), 5); err != nil || state != StateIdle {
		t.Fatalf("expected idle, got %s %v", state, err)
	}
}

func TestNewStoreValidates(t *testing.T) {
	if _, err := NewStore(StoreTypeRedis); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewStore("etcd"); !errors.Is(err, ErrInvalidStoreType) {
		t.Fatalf("expected ErrInvalidStoreType, got %v", err)
	}
	store, err := NewStore(StoreTypeMemory)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("unexpected store type %T", store)
	}
}

func TestStateFreeText(t *testing.T) {
	if !StateAwaitingNewUserName.FreeText() || StateAwaitingMenuChoice.FreeText() {
		t.Fatal("unexpected free text classification")
	}
	if State("BOGUS").Valid() {
		t.Fatal("unexpected valid state")
	}
}
