package telegram

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/KirillkoTankisto/iiko-bot/internal/handlers"
)

// queueSize is the number of updates buffered per worker before submit blocks.
const queueSize = 64

// pool runs a fixed number of workers. Every chat is pinned to one worker,
// so updates of a chat are handled in arrival order while different chats
// proceed in parallel.
type pool struct {
	handler UpdateHandler
	queues  []chan handlers.Inbound
}

func newPool(workers int, handler UpdateHandler) *pool {
	if workers <= 0 {
		workers = 1
	}
	queues := make([]chan handlers.Inbound, workers)
	for i := range queues {
		queues[i] = make(chan handlers.Inbound, queueSize)
	}
	return &pool{handler: handler, queues: queues}
}

// worker returns the queue index that owns chatID.
func (p *pool) worker(chatID int64) int {
	return int(uint64(chatID) % uint64(len(p.queues)))
}

// submit enqueues in on the worker owning its chat. It reports false when
// ctx is done before the update could be queued.
func (p *pool) submit(ctx context.Context, in handlers.Inbound) bool {
	select {
	case p.queues[p.worker(in.ChatID)] <- in:
		return true
	case <-ctx.Done():
		return false
	}
}

// run starts the workers and blocks until close is called and every queued
// update has been handled.
func (p *pool) run(ctx context.Context) error {
	var g errgroup.Group
	for _, queue := range p.queues {
		queue := queue
		g.Go(func() error {
			for in := range queue {
				p.handler(ctx, in)
			}
			return nil
		})
	}
	return g.Wait()
}

// close stops accepting updates. Queued updates are still handled.
func (p *pool) close() {
	for _, queue := range p.queues {
		close(queue)
	}
}
