package redis

import (
	"context"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/repository"
)

// FeedNotifier broadcasts audit inserts to every instance sharing the Redis
// channel so each instance can refresh its subscribers.
type FeedNotifier struct {
	client  redislib.UniversalClient
	channel string
	logger  *zap.Logger
}

var _ repository.AuditNotifier = (*FeedNotifier)(nil)

func NewFeedNotifier(client redislib.UniversalClient, channel string, logger *zap.Logger) *FeedNotifier {
	if channel == "" {
		channel = "erp:audit:feed"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedNotifier{client: client, channel: channel, logger: logger}
}

func (n *FeedNotifier) Publish(ctx context.Context, eventID string) error {
	return n.client.Publish(ctx, n.channel, eventID).Err()
}

// Listen blocks until ctx is done, calling onChange for every published id.
func (n *FeedNotifier) Listen(ctx context.Context, onChange func(eventID string)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	n.logger.Info("audit feed listener subscribed", zap.String("channel", n.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			onChange(msg.Payload)
		}
	}
}
