package telegram

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KirillkoTankisto/iiko-bot/internal/handlers"
)

func TestPoolKeepsChatOrder(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int64][]string)

	p := newPool(3, func(_ context.Context, in handlers.Inbound) {
		// the first message of a chat is slow so a later one would overtake it
		// if both ran at once
		if in.Text == "0" {
			time.Sleep(20 * time.Millisecond)
		}
		mu.Lock()
		seen[in.ChatID] = append(seen[in.ChatID], in.Text)
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() {
		done <- p.run(context.Background())
	}()

	chats := []int64{1, 2, -1001234567890}
	for i := 0; i < 10; i++ {
		for _, chatID := range chats {
			if !p.submit(context.Background(), handlers.Inbound{ChatID: chatID, Text: fmt.Sprint(i)}) {
				t.Fatal("submit rejected")
			}
		}
	}
	p.close()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, chatID := range chats {
		got := seen[chatID]
		if len(got) != 10 {
			t.Fatalf("chat %d: expected 10 updates, got %v", chatID, got)
		}
		for i, text := range got {
			if text != fmt.Sprint(i) {
				t.Fatalf("chat %d: out of order: %v", chatID, got)
			}
		}
	}
}

func TestPoolPinsChatToWorker(t *testing.T) {
	p := newPool(4, func(context.Context, handlers.Inbound) {})

	for _, chatID := range []int64{0, 5, -5, -1001234567890, 1<<62 + 3} {
		w := p.worker(chatID)
		if w < 0 || w >= 4 {
			t.Fatalf("chat %d: worker %d out of range", chatID, w)
		}
		if p.worker(chatID) != w {
			t.Fatalf("chat %d: worker is not stable", chatID)
		}
	}
}

func TestPoolSubmitStopsWithContext(t *testing.T) {
	p := newPool(1, func(context.Context, handlers.Inbound) {})
	for i := 0; i < queueSize; i++ {
		p.submit(context.Background(), handlers.Inbound{ChatID: 1})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if p.submit(ctx, handlers.Inbound{ChatID: 1}) {
		t.Fatal("expected submit to give up on a full queue after cancel")
	}
}
