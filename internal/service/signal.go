package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/shiftwyse/shiftwyse"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func channelName(partition string) string {
	return "signal:" + strings.ReplaceAll(partition, "/", ":")
}

// Publish broadcasts a change signal for a partition. Signals carry no
// payload, subscribers reload the full record set on receipt.
func (s *SignalService) Publish(ctx context.Context, partition string) error {

	jsonstr, err := json.Marshal(shiftwyse.ChangeSignal{Partition: partition})
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channelName(partition), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe returns a channel of change signals for a partition and a
// close function. The returned channel is closed after close is called.
func (s *SignalService) Subscribe(ctx context.Context, partition string) (<-chan shiftwyse.ChangeSignal, func()) {

	pubsub := s.rdb.Subscribe(ctx, channelName(partition))
	out := make(chan shiftwyse.ChangeSignal, 8)

	go func() {
		defer close(out)
		for message := range pubsub.Channel() {
			var signal shiftwyse.ChangeSignal
			err := json.Unmarshal([]byte(message.Payload), &signal)
			if err != nil {
				slog.Error("failed to unmarshal change signal",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case out <- signal:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() {
		pubsub.Close()
	}
}
