package bot

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roteirista/roteirista/internal/telegram"
)

const (
	// queueSize bounds the per-chat inbox. A chat with a full inbox
	// backpressures the poll loop instead of dropping messages.
	queueSize = 16

	// pollRetryDelay spaces out polls after a transport failure so a
	// broken network does not spin the loop.
	pollRetryDelay = 3 * time.Second
)

// Run polls for updates until ctx is canceled, dispatching each message
// to a per-chat worker goroutine. Messages within one chat are handled
// strictly in order, one at a time; different chats proceed concurrently,
// so one chat's pending network call never blocks another chat.
func (b *Bot) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	queues := make(map[int64]chan *telegram.Message)

	g.Go(func() error {
		var offset int64
		for {
			updates, err := b.transport.Updates(ctx, offset)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				b.logger.Warn("polling failed", "error", err)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(pollRetryDelay):
				}
				continue
			}

			for _, u := range updates {
				offset = u.UpdateID + 1
				if u.Message == nil || u.Message.Text == "" {
					continue
				}

				q, ok := queues[u.Message.Chat.ID]
				if !ok {
					q = make(chan *telegram.Message, queueSize)
					queues[u.Message.Chat.ID] = q
					chatID := u.Message.Chat.ID
					g.Go(func() error {
						b.worker(ctx, chatID, q)
						return nil
					})
				}

				select {
				case q <- u.Message:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})

	return g.Wait()
}

// worker drains one chat's inbox, serializing handling per chat id.
func (b *Bot) worker(ctx context.Context, chatID int64, q <-chan *telegram.Message) {
	b.logger.Debug("chat worker started", "chat_id", chatID)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			b.handleMessage(ctx, msg)
		}
	}
}
