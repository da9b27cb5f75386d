// Package realtime is the fire-and-forget side channel: a typing-indicator
// signal published over Redis pub/sub and the page-level cache-invalidation
// hook. Nothing in the lifecycle core depends on either delivery.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TypingEvent is the payload broadcast while someone types a comment on a
// story.
type TypingEvent struct {
	EventID string    `json:"event_id"`
	StoryID uint      `json:"story_id"`
	UserID  uint      `json:"user_id"`
	SentAt  time.Time `json:"sent_at"`
}

// Publisher wraps the optional Redis client. A nil client disables the
// channel; every method is nil-safe so callers never branch.
type Publisher struct {
	cli *redis.Client
	log *slog.Logger
}

func NewPublisher(cli *redis.Client, log *slog.Logger) *Publisher {
	return &Publisher{cli: cli, log: log}
}

// PublishTyping broadcasts a typing signal on the story's channel. Errors
// are logged and dropped.
func (p *Publisher) PublishTyping(ctx context.Context, storyID, userID uint) {
	if p == nil || p.cli == nil {
		return
	}
	ev := TypingEvent{
		EventID: uuid.NewString(),
		StoryID: storyID,
		UserID:  userID,
		SentAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	channel := fmt.Sprintf("story:%d:typing", storyID)
	if err := p.cli.Publish(ctx, channel, payload).Err(); err != nil {
		p.log.Warn("typing publish failed", "story_id", storyID, "error", err)
	}
}

// Invalidate drops cached page fragments after a successful mutation.
// Implements the stories.Invalidator hook.
func (p *Publisher) Invalidate(ctx context.Context, keys ...string) {
	if p == nil || p.cli == nil || len(keys) == 0 {
		return
	}
	if err := p.cli.Del(ctx, keys...).Err(); err != nil {
		p.log.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
